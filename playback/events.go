package playback

import (
	"github.com/scrubdeck/scrubdeck/lifecycle"
	"github.com/scrubdeck/scrubdeck/progress"
	"github.com/scrubdeck/scrubdeck/seek"
	"github.com/scrubdeck/scrubdeck/status"
)

// EventKind tells which Event fields are set.
type EventKind int

const (
	EventStatus EventKind = iota
	EventPosition
	EventBuffered
	EventDragPreview
	EventVolume
	EventBrightness
	EventSeekFailed
	EventEngineFailure
	EventEndOfStream
	EventRejected
)

var kindNames = map[EventKind]string{
	EventStatus:        "status",
	EventPosition:      "position",
	EventBuffered:      "buffered",
	EventDragPreview:   "drag-preview",
	EventVolume:        "volume",
	EventBrightness:    "brightness",
	EventSeekFailed:    "seek-failed",
	EventEngineFailure: "engine-failure",
	EventEndOfStream:   "end-of-stream",
	EventRejected:      "rejected",
}

func (k EventKind) String() string {
	return kindNames[k]
}

// Event is delivered to observers on the control goroutine.
type Event struct {
	Kind EventKind

	// EventStatus
	Change status.Change
	// EventPosition, EventDragPreview
	Position progress.Position
	// EventBuffered
	BufferedFraction float64
	// EventVolume, EventBrightness
	Level float64
	// EventDragPreview
	Control seek.Control
	// EventSeekFailed, EventEngineFailure, EventRejected
	Err error
	// EventEndOfStream
	EndOfStream lifecycle.EndOfStream
}

// Observer receives every Event. It runs on the control goroutine and must
// not block or call back into the Core synchronously.
type Observer func(Event)

// Snapshot is a consistent copy of the core state.
type Snapshot struct {
	Source           Source
	Status           status.Status
	Position         progress.Position
	Label            string
	BufferedFraction float64
	BufferedSeconds  float64
	Volume           float64
	Brightness       float64
	SeekInFlight     bool
	Dragging         seek.Control
	Ended            bool
}
