package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/mo"
	"github.com/scrubdeck/scrubdeck/color"
	"github.com/scrubdeck/scrubdeck/internal/ui"
	"github.com/scrubdeck/scrubdeck/log"
	"github.com/scrubdeck/scrubdeck/playback"
	"github.com/scrubdeck/scrubdeck/seek"
	"github.com/scrubdeck/scrubdeck/util"
)

// eventBuffer bounds how far the interface may lag behind the core.
const eventBuffer = 256

// gesture tracks a mouse drag until its axis is known.
type gesture struct {
	startX, startY int
	lastX, lastY   int
	axis           mo.Option[seek.Axis]
}

// statefulBubble mirrors the core state and forwards input to it.
type statefulBubble struct {
	state  state
	keymap *statefulKeymap

	ctrl    Controller
	options *Options

	// components
	spinnerC  spinner.Model
	playedC   progress.Model
	bufferedC progress.Model
	helpC     help.Model
	notifier  *ui.Model

	events chan playback.Event

	snapshot  playback.Snapshot
	lastError error
	gesture   mo.Option[gesture]

	width, height int
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// forward is registered as a core observer. It must never block the
// control goroutine, so events beyond the buffer are dropped.
func (b *statefulBubble) forward(ev playback.Event) {
	select {
	case b.events <- ev:
	default:
		log.Warnf("interface lagging, dropped %s event", ev.Kind)
	}
}

func (b *statefulBubble) resize(width, height int) {
	b.width = width
	b.height = height

	barWidth := util.Min(util.Max(width-paddingX*2, 10), 80)
	b.playedC.Width = barWidth
	b.bufferedC.Width = barWidth
	b.helpC.Width = width - paddingX*2
}

func newBubble(ctrl Controller, options *Options) *statefulBubble {
	bubble := &statefulBubble{
		keymap:   newStatefulKeymap(),
		ctrl:     ctrl,
		options:  options,
		notifier: &ui.Model{},
		events:   make(chan playback.Event, eventBuffer),
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(color.Purple)

	bubble.playedC = progress.New(progress.WithSolidFill(string(color.Played)), progress.WithoutPercentage())
	bubble.bufferedC = progress.New(progress.WithSolidFill(string(color.Buffered)), progress.WithoutPercentage())

	bubble.resize(80, 24)
	bubble.setState(loadingState)
	return bubble
}
