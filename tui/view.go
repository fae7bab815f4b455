package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/scrubdeck/scrubdeck/color"
	"github.com/scrubdeck/scrubdeck/icon"
	"github.com/scrubdeck/scrubdeck/seek"
	"github.com/scrubdeck/scrubdeck/status"
	"github.com/scrubdeck/scrubdeck/style"
)

const (
	paddingX = 2
	paddingY = 1

	// barLine is the row of the played bar inside the player view.
	barLine = 4
)

var paddingStyle = lipgloss.NewStyle().Padding(paddingY, paddingX)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case playerState:
		output = b.viewPlayer()
	case endedState:
		output = b.viewEnded()
	case failedState:
		output = b.viewFailed()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) title() string {
	if b.snapshot.Source.Title != "" {
		return b.snapshot.Source.Title
	}
	if b.options.Title != "" {
		return b.options.Title
	}
	return b.snapshot.Source.URL
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			style.Truncate(b.width)(b.spinnerC.View() + " " + style.Fg(color.Purple)(b.title())),
		},
	)
}

func (b *statefulBubble) statusLine() string {
	s := b.snapshot.Status
	line := style.Status(s)(icon.Get(icon.ForStatus(s)) + " " + s.String())
	if s == status.Buffering || b.snapshot.SeekInFlight {
		line += " " + b.spinnerC.View()
	}

	switch b.snapshot.Dragging {
	case seek.ControlScrub:
		line += "  " + icon.Get(icon.Seek) + " " + style.Faint("scrubbing")
	case seek.ControlVolume:
		line += "  " + icon.Get(icon.Volume) + " " + style.Faint("volume")
	case seek.ControlBrightness:
		line += "  " + icon.Get(icon.Brightness) + " " + style.Faint("brightness")
	}
	return line
}

func (b *statefulBubble) levels() string {
	return fmt.Sprintf(
		"%s %3.0f%%   %s %3.0f%%",
		icon.Get(icon.Volume), b.snapshot.Volume*100,
		icon.Get(icon.Brightness), b.snapshot.Brightness*100,
	)
}

func (b *statefulBubble) viewPlayer() string {
	pos := b.snapshot.Position

	return b.renderLines(
		true,
		[]string{
			style.Title("Now Playing"),
			"",
			style.Truncate(b.width)(fmt.Sprintf("%s  %s", b.statusLine(), style.Fg(color.Purple)(b.title()))),
			"",
			b.playedC.ViewAs(pos.Fraction()),
			b.bufferedC.ViewAs(b.snapshot.BufferedFraction),
			b.snapshot.Label + "  " + style.Faint(fmt.Sprintf("loaded %.0f%%", b.snapshot.BufferedFraction*100)),
			"",
			b.levels(),
		},
	)
}

func (b *statefulBubble) viewEnded() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Finished"),
			"",
			style.Truncate(b.width)(icon.Get(icon.Replay) + " " + style.Fg(color.Purple)(b.title())),
			"",
			b.playedC.ViewAs(b.snapshot.Position.Fraction()),
			b.snapshot.Label,
		},
	)
}

func (b *statefulBubble) viewFailed() string {
	reason := "playback failed"
	if b.lastError != nil {
		reason = b.lastError.Error()
	}

	errorStyle := lipgloss.NewStyle().Foreground(color.Red).Bold(true)
	errorMsg := wrap.String(errorStyle.Render(reason), b.width-paddingX*2)

	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " " + b.title(),
			"",
			errorMsg,
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h+paddingY*2+1 {
			l += strings.Repeat("\n", b.height-h-paddingY*2-1)
		}
		l += "\n" + b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
