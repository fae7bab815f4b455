// Package playback ties the status machine, progress tracker, seek
// coordinator and lifecycle reconciler to a media engine and a UI.
package playback

import (
	"github.com/scrubdeck/scrubdeck/lifecycle"
)

// Source identifies the media to play.
type Source = lifecycle.Source

// Engine is the decode/render backend. Seek completes asynchronously by
// calling done exactly once, from any goroutine.
type Engine interface {
	Load(src Source) error
	SetPaused(paused bool) error
	Seek(seconds float64, done func(ok bool))
	SetVolume(volume float64) error
	Close() error
}

// ItemStatus is the readiness of the loaded media as reported by the engine.
type ItemStatus int

const (
	ItemUnknown ItemStatus = iota
	ItemReadyToPlay
	ItemFailed
)

func (s ItemStatus) String() string {
	switch s {
	case ItemReadyToPlay:
		return "ready"
	case ItemFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Callbacks is what an Engine reports back. *Core implements it and every
// method is safe to call from any goroutine.
type Callbacks interface {
	PeriodicTimeUpdate(currentSeconds, totalSeconds float64)
	BufferedRangeUpdate(startSeconds, durationSeconds float64)
	ItemStatusChanged(item ItemStatus, totalSeconds float64)
	PlaybackLikelyToKeepUp(likely bool)
	PlaybackBufferEmpty(empty bool)
	EndOfStreamReached()
	EngineFailed(err error)
}

var _ Callbacks = (*Core)(nil)
