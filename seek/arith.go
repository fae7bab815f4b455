// Package seek turns gestures into seek targets and serializes seeks against the media engine.
package seek

import (
	"math"

	"github.com/scrubdeck/scrubdeck/util"
)

const (
	// DefaultSensitivity divides horizontal drag velocity into seconds.
	DefaultSensitivity = 99.0
	// DefaultVerticalScale divides vertical drag velocity into a volume or brightness delta.
	DefaultVerticalScale = 10000.0
)

// ApplyHorizontalDrag moves baseFraction by velocityDelta/sensitivity seconds
// of a medium lasting totalSeconds. The result is always within [0,1]. While
// the duration is unknown the (clamped) base is returned unchanged.
func ApplyHorizontalDrag(baseFraction, velocityDelta, totalSeconds, sensitivity float64) float64 {
	base := util.Clamp01(baseFraction)
	if !util.Finite(totalSeconds) || totalSeconds <= 0 {
		return base
	}
	if !util.Finite(sensitivity) || sensitivity <= 0 {
		sensitivity = DefaultSensitivity
	}
	if math.IsNaN(velocityDelta) {
		velocityDelta = 0
	}

	seconds := util.Clamp(base*totalSeconds+velocityDelta/sensitivity, 0, totalSeconds)
	return util.Clamp01(seconds / totalSeconds)
}

// ApplyVerticalDrag returns currentValue - velocityDelta/scale. Upward drags
// report negative velocity, so they increase the value. The result is not
// clamped; every control applies its own range.
func ApplyVerticalDrag(currentValue, velocityDelta, scale float64) float64 {
	if !util.Finite(scale) || scale <= 0 {
		scale = DefaultVerticalScale
	}
	return currentValue - velocityDelta/scale
}

// Axis is the dominant direction of a drag.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Control is what a drag adjusts.
type Control int

const (
	ControlNone Control = iota
	ControlScrub
	ControlVolume
	ControlBrightness
)

func (c Control) String() string {
	switch c {
	case ControlScrub:
		return "scrub"
	case ControlVolume:
		return "volume"
	case ControlBrightness:
		return "brightness"
	default:
		return "none"
	}
}

// Location is a drag origin normalized to the player surface, (0,0) top left.
type Location struct {
	X, Y float64
}

// ClassifyDrag picks the control a drag adjusts. Drags that start inside the
// bottom dead zone (the control bar) adjust nothing. Vertical drags on the
// right half change the volume, on the left half the brightness.
func ClassifyDrag(axis Axis, at Location, bottomDeadZone float64) Control {
	if at.Y > 1-util.Clamp01(bottomDeadZone) {
		return ControlNone
	}
	if axis == Horizontal {
		return ControlScrub
	}
	if at.X > 0.5 {
		return ControlVolume
	}
	return ControlBrightness
}
