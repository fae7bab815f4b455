// Package timefmt renders playback positions and durations as clock strings.
package timefmt

import (
	"fmt"
	"math"
)

const zero = "00:00"

// whole truncates seconds to a non-negative integer; NaN and negatives become 0.
func whole(seconds float64) int {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	if math.IsInf(seconds, 1) {
		return math.MaxInt32
	}
	return int(seconds)
}

func clock(seconds int, withHours bool) string {
	h := seconds / 3600
	m := (seconds / 60) % 60
	s := seconds % 60
	if withHours {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Position formats the current position. The hour field is shown only when the
// duration itself reaches an hour, so both labels keep the same width.
func Position(position, duration float64) string {
	p, d := whole(position), whole(duration)
	if p == 0 || d == 0 {
		return zero
	}
	return clock(p, d >= 3600)
}

// Duration formats the total duration.
func Duration(duration float64) string {
	d := whole(duration)
	if d == 0 {
		return zero
	}
	return clock(d, d >= 3600)
}

// Label renders "position/duration", as shown next to the progress bar.
func Label(position, duration float64) string {
	return Position(position, duration) + "/" + Duration(duration)
}

// DragLabel renders "position|duration", as shown while scrubbing.
func DragLabel(position, duration float64) string {
	return Position(position, duration) + "|" + Duration(duration)
}
