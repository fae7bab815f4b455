package playback

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by Snapshot once Run has returned.
	ErrClosed = errors.New("playback core closed")
	// ErrNoEngine is returned by Run when no engine was attached.
	ErrNoEngine = errors.New("playback core has no engine")
	// ErrItemFailed is the cause recorded when the engine marks the item failed.
	ErrItemFailed = errors.New("media item failed to load")
)

// EngineFailureError moves the player to Failed. It is always surfaced to
// the UI and never retried automatically.
type EngineFailureError struct {
	Op  string
	Err error
}

func (e *EngineFailureError) Error() string {
	return fmt.Sprintf("engine failure during %s: %v", e.Op, e.Err)
}

func (e *EngineFailureError) Unwrap() error {
	return e.Err
}
