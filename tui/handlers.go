package tui

import (
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
	"github.com/scrubdeck/scrubdeck/internal/ui"
	"github.com/scrubdeck/scrubdeck/playback"
	"github.com/scrubdeck/scrubdeck/seek"
	"github.com/scrubdeck/scrubdeck/util"
)

type eventMsg playback.Event

type snapshotMsg playback.Snapshot

func (b *statefulBubble) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-b.events)
	}
}

// refresh resynchronizes with the core off the update loop.
func (b *statefulBubble) refresh() tea.Cmd {
	return func() tea.Msg {
		s, err := b.ctrl.Snapshot()
		if err != nil {
			return err
		}
		return snapshotMsg(s)
	}
}

// step seeks relative to the shown position.
func (b *statefulBubble) step(seconds float64) tea.Cmd {
	pos := b.snapshot.Position
	if pos.TotalSeconds <= 0 {
		return ui.Notify("not ready to seek yet")
	}

	target := util.Clamp(pos.CurrentSeconds+seconds, 0, pos.TotalSeconds)
	b.ctrl.UserSelectsSlider(target / pos.TotalSeconds)
	return nil
}

// nudge replays a short vertical drag on one half of the surface.
func (b *statefulBubble) nudge(at seek.Location, amount float64) {
	b.ctrl.UserBeginsDrag(seek.Vertical, at)
	b.ctrl.UserDragChanged(-amount * b.options.VerticalScale)
	b.ctrl.UserEndsDrag()
}

var (
	volumeSide     = seek.Location{X: 0.75, Y: 0.5}
	brightnessSide = seek.Location{X: 0.25, Y: 0.5}
)

func (b *statefulBubble) locate(x, y int) seek.Location {
	if b.width <= 0 || b.height <= 0 {
		return seek.Location{X: 0.5, Y: 0.5}
	}
	return seek.Location{
		X: float64(x) / float64(b.width),
		Y: float64(y) / float64(b.height),
	}
}

func (b *statefulBubble) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		b.gesture = mo.Some(gesture{startX: msg.X, startY: msg.Y, lastX: msg.X, lastY: msg.Y})

	case tea.MouseActionMotion:
		g, ok := b.gesture.Get()
		if !ok {
			return nil
		}

		dx, dy := msg.X-g.lastX, msg.Y-g.lastY
		if dx == 0 && dy == 0 {
			return nil
		}

		axis, known := g.axis.Get()
		if !known {
			axis = seek.Vertical
			if math.Abs(float64(dx)) >= math.Abs(float64(dy)) {
				axis = seek.Horizontal
			}
			g.axis = mo.Some(axis)
			b.ctrl.UserBeginsDrag(axis, b.locate(g.startX, g.startY))
		}

		b.ctrl.UserDragChanged(b.velocity(axis, dx, dy))
		g.lastX, g.lastY = msg.X, msg.Y
		b.gesture = mo.Some(g)

	case tea.MouseActionRelease:
		g, ok := b.gesture.Get()
		if !ok {
			return nil
		}
		b.gesture = mo.None[gesture]()

		if g.axis.IsPresent() {
			b.ctrl.UserEndsDrag()
			return nil
		}

		if fraction, onBar := b.barFraction(msg.X, msg.Y); onBar {
			b.ctrl.UserSelectsSlider(fraction)
		}
	}

	return nil
}

// velocity converts a cell delta into the units the core expects.
// A full-width horizontal drag spans the whole item; a full-height
// vertical drag spans the whole level range.
func (b *statefulBubble) velocity(axis seek.Axis, dx, dy int) float64 {
	if axis == seek.Horizontal {
		if b.width <= 0 {
			return 0
		}
		return float64(dx) / float64(b.width) * b.snapshot.Position.TotalSeconds * b.options.Sensitivity
	}

	if b.height <= 0 {
		return 0
	}
	return float64(dy) / float64(b.height) * b.options.VerticalScale
}

func (b *statefulBubble) barFraction(x, y int) (float64, bool) {
	if y != paddingY+barLine || b.playedC.Width <= 0 {
		return 0, false
	}

	offset := x - paddingX
	if offset < 0 || offset > b.playedC.Width {
		return 0, false
	}
	return float64(offset) / float64(b.playedC.Width), true
}
