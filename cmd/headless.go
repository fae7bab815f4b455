package cmd

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/scrubdeck/scrubdeck/icon"
	"github.com/scrubdeck/scrubdeck/playback"
	"github.com/scrubdeck/scrubdeck/progress"
	"github.com/scrubdeck/scrubdeck/status"
	"github.com/scrubdeck/scrubdeck/timefmt"
	"github.com/scrubdeck/scrubdeck/util"
)

// progressLine renders a single ANSI-free status line of at most width cells.
func progressLine(s status.Status, pos progress.Position, width int) string {
	prefix := fmt.Sprintf("%s %-9s %s ", icon.Get(icon.ForStatus(s)), s, timefmt.Label(pos.CurrentSeconds, pos.TotalSeconds))

	barWidth := width - len([]rune(prefix)) - 2
	if barWidth < 10 {
		return strings.TrimRight(prefix, " ")
	}

	filled := int(math.Round(pos.Fraction() * float64(barWidth)))
	return prefix + "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
}

// headless follows the core without taking input until the item ends,
// the engine fails or ctx is done.
func headless(ctx context.Context, core *playback.Core) error {
	events := make(chan playback.Event, 64)
	core.Observe(func(ev playback.Event) {
		select {
		case events <- ev:
		default:
		}
	})

	var (
		current status.Status
		pos     progress.Position
		erase   = func() {}
	)
	defer func() { erase() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev.Kind {
			case playback.EventStatus:
				current = ev.Change.To
			case playback.EventPosition:
				pos = ev.Position
			case playback.EventSeekFailed:
				erase()
				erase = func() {}
				fmt.Fprintf(os.Stderr, "%s seek failed: %v\n", icon.Get(icon.Fail), ev.Err)
			case playback.EventEngineFailure:
				return ev.Err
			case playback.EventEndOfStream:
				erase()
				erase = func() {}
				fmt.Printf("%s finished %s\n", icon.Get(icon.Success), ev.EndOfStream.Source.Title)
				return nil
			default:
				continue
			}

			erase()
			erase = util.PrintErasable(progressLine(current, pos, util.TerminalWidth(80)))
		}
	}
}
