package playback

import (
	"github.com/samber/mo"
	"github.com/scrubdeck/scrubdeck/log"
	"github.com/scrubdeck/scrubdeck/progress"
	"github.com/scrubdeck/scrubdeck/seek"
	"github.com/scrubdeck/scrubdeck/util"
)

type dragState struct {
	control  seek.Control
	fraction float64
}

// UserBeginsDrag starts a gesture at a normalized location of the player surface.
func (c *Core) UserBeginsDrag(axis seek.Axis, at seek.Location) {
	c.post(func() { c.beginDrag(axis, at) })
}

// UserDragChanged feeds the gesture velocity since the previous change.
func (c *Core) UserDragChanged(delta float64) {
	c.post(func() { c.dragChanged(delta) })
}

// UserEndsDrag finishes the gesture. A scrub commits its final target.
func (c *Core) UserEndsDrag() {
	c.post(c.endDrag)
}

func (c *Core) beginDrag(axis seek.Axis, at seek.Location) {
	control := seek.ClassifyDrag(axis, at, c.opts.BottomDeadZone)
	log.With(log.Fields{"axis": axis, "control": control}).Debug("drag began")

	switch control {
	case seek.ControlNone:
		c.drag = mo.None[dragState]()
	case seek.ControlScrub:
		base := c.tracker.Fraction()
		if req, _, ok := c.seeks.Pending(); ok {
			base = req.TargetFraction
		}

		if _, err := c.seeks.Begin(base, c.tracker.Position().TotalSeconds); err != nil {
			c.drag = mo.None[dragState]()
			c.reject(err)
			return
		}
		c.ended = false
		c.drag = mo.Some(dragState{control: control, fraction: base})
	default:
		c.drag = mo.Some(dragState{control: control})
	}
}

func (c *Core) dragChanged(delta float64) {
	d, ok := c.drag.Get()
	if !ok {
		return
	}

	switch d.control {
	case seek.ControlScrub:
		total := c.tracker.Position().TotalSeconds
		d.fraction = seek.ApplyHorizontalDrag(d.fraction, delta, total, c.opts.Sensitivity)
		c.drag = mo.Some(d)

		if _, err := c.seeks.Begin(d.fraction, total); err != nil {
			c.reject(err)
			return
		}

		c.emit(Event{
			Kind:     EventDragPreview,
			Control:  d.control,
			Position: progress.Position{CurrentSeconds: d.fraction * total, TotalSeconds: total},
		})

		if c.preview != nil && c.preview.Allow() {
			c.issueSeek()
		}
	case seek.ControlVolume:
		c.setVolume(seek.ApplyVerticalDrag(c.volume, delta, c.opts.VerticalScale))
	case seek.ControlBrightness:
		c.brightness = util.Clamp01(seek.ApplyVerticalDrag(c.brightness, delta, c.opts.VerticalScale))
		c.emit(Event{Kind: EventBrightness, Level: c.brightness})
	}
}

func (c *Core) endDrag() {
	d, ok := c.drag.Get()
	if !ok {
		return
	}
	c.drag = mo.None[dragState]()

	if d.control == seek.ControlScrub {
		c.issueSeek()
	}
}

func (c *Core) setVolume(level float64) {
	level = util.Clamp01(level)
	if level == c.volume {
		return
	}
	if err := c.engine.SetVolume(level); err != nil {
		log.Warnf("engine: set volume: %s", err)
		return
	}
	c.volume = level
	c.emit(Event{Kind: EventVolume, Level: level})
}
