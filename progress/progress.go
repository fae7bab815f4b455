// Package progress tracks playback position and buffered range as reported by the media engine.
package progress

import (
	"math"

	"github.com/scrubdeck/scrubdeck/util"
)

// DefaultEpsilon is the backward jump, in seconds, tolerated before an update
// counts as a discontinuity.
const DefaultEpsilon = 0.5

// Position is the current playhead. TotalSeconds == 0 means the duration is
// not known yet.
type Position struct {
	CurrentSeconds float64 `json:"current_seconds"`
	TotalSeconds   float64 `json:"total_seconds"`
}

// Fraction returns CurrentSeconds/TotalSeconds, or 0 while the duration is unknown.
func (p Position) Fraction() float64 {
	if p.TotalSeconds <= 0 {
		return 0
	}
	return util.Clamp01(p.CurrentSeconds / p.TotalSeconds)
}

// BufferedRange is the contiguous span of loaded media.
type BufferedRange struct {
	StartSeconds    float64 `json:"start_seconds"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Update classifies one periodic sample.
type Update struct {
	// Progressing is true when the playhead moved forward since the previous sample.
	Progressing bool
	// Discontinuity is true when the playhead moved backward by more than the
	// tolerance and no seek explains it.
	Discontinuity bool
}

// Tracker owns Position and BufferedRange. It is not safe for concurrent use.
type Tracker struct {
	epsilon float64

	position  Position
	buffered  BufferedRange
	hasSample bool
	afterSeek bool
	stalled   int
}

// NewTracker returns an empty tracker. A non-positive epsilon selects DefaultEpsilon.
func NewTracker(epsilon float64) *Tracker {
	if !util.Finite(epsilon) || epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &Tracker{epsilon: epsilon}
}

func sanitize(v float64) float64 {
	if !util.Finite(v) || v < 0 {
		return 0
	}
	return v
}

// OnPeriodicUpdate records a position sample from the engine. Valid samples
// are stored exactly; negative or non-finite values are treated as zero and a
// position past the known total is pinned to it. A sample without a total
// keeps the total already known.
func (t *Tracker) OnPeriodicUpdate(currentSeconds, totalSeconds float64) Update {
	total := sanitize(totalSeconds)
	if total == 0 {
		total = t.position.TotalSeconds
	}
	current := sanitize(currentSeconds)
	if total > 0 {
		current = math.Min(current, total)
	}

	var u Update
	if t.hasSample {
		prev := t.position.CurrentSeconds
		u.Progressing = current > prev
		u.Discontinuity = !t.afterSeek && prev-current > t.epsilon
	}

	if u.Progressing || u.Discontinuity {
		t.stalled = 0
	} else if t.hasSample {
		t.stalled++
	}

	t.position = Position{CurrentSeconds: current, TotalSeconds: total}
	t.hasSample = true
	t.afterSeek = false
	return u
}

// OnBufferedRangeUpdate replaces the buffered range.
func (t *Tracker) OnBufferedRangeUpdate(startSeconds, durationSeconds float64) {
	t.buffered = BufferedRange{
		StartSeconds:    sanitize(startSeconds),
		DurationSeconds: sanitize(durationSeconds),
	}
}

// SetTotal records the duration announced when the item became ready.
func (t *Tracker) SetTotal(totalSeconds float64) {
	t.position.TotalSeconds = sanitize(totalSeconds)
	if t.position.TotalSeconds > 0 {
		t.position.CurrentSeconds = math.Min(t.position.CurrentSeconds, t.position.TotalSeconds)
	}
}

// ApplySeek moves the playhead to a confirmed seek target. The next periodic
// sample is never flagged as a discontinuity.
func (t *Tracker) ApplySeek(seconds float64) {
	seconds = sanitize(seconds)
	if t.position.TotalSeconds > 0 {
		seconds = math.Min(seconds, t.position.TotalSeconds)
	}
	t.position.CurrentSeconds = seconds
	t.hasSample = true
	t.afterSeek = true
	t.stalled = 0
}

// MarkEnded pins the playhead to the end of the media.
func (t *Tracker) MarkEnded() {
	t.position.CurrentSeconds = t.position.TotalSeconds
	t.stalled = 0
}

// ResetStall forgets non-advancing samples, e.g. those collected while paused.
func (t *Tracker) ResetStall() {
	t.stalled = 0
}

// Reset forgets everything, as when a new source is loaded.
func (t *Tracker) Reset() {
	*t = Tracker{epsilon: t.epsilon}
}

// Position returns the last recorded playhead.
func (t *Tracker) Position() Position {
	return t.position
}

// Fraction returns the playhead as a fraction of the total, 0 while unknown.
func (t *Tracker) Fraction() float64 {
	return t.position.Fraction()
}

// Buffered returns the raw buffered range.
func (t *Tracker) Buffered() BufferedRange {
	return t.buffered
}

// BufferedSeconds returns the end of the buffered range, bounded by the total when known.
func (t *Tracker) BufferedSeconds() float64 {
	end := t.buffered.StartSeconds + t.buffered.DurationSeconds
	if t.position.TotalSeconds > 0 {
		end = math.Min(end, t.position.TotalSeconds)
	}
	return end
}

// BufferedFraction returns (start+duration)/total clamped to [0,1], or 0
// while the duration is unknown.
func (t *Tracker) BufferedFraction() float64 {
	total := t.position.TotalSeconds
	if total <= 0 {
		return 0
	}
	return util.Clamp01((t.buffered.StartSeconds + t.buffered.DurationSeconds) / total)
}

// StalledFor returns how many consecutive samples failed to advance the playhead.
func (t *Tracker) StalledFor() int {
	return t.stalled
}
