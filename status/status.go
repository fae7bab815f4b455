// Package status defines the player status and the single-writer machine that owns it.
package status

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Status is the coarse playback state shown to the user.
type Status int

const (
	Unknown Status = iota
	ReadyToPlay
	Buffering
	Playing
	Paused
	Failed
)

var names = [...]string{
	Unknown:     "unknown",
	ReadyToPlay: "ready",
	Buffering:   "buffering",
	Playing:     "playing",
	Paused:      "paused",
	Failed:      "failed",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(names) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return names[s]
}

// Active reports whether the engine should be producing frames in this status.
func (s Status) Active() bool {
	return s == Playing || s == Buffering
}

// ErrInvalidTransition is matched by every rejected transition request.
var ErrInvalidTransition = errors.New("invalid status transition")

// InvalidTransitionError carries the rejected edge.
type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// transitions lists the legal edges. Failed is reachable from anywhere and is
// handled separately.
var transitions = map[Status][]Status{
	Unknown:     {ReadyToPlay},
	ReadyToPlay: {Playing, Buffering, Paused},
	Playing:     {Paused, Buffering, ReadyToPlay},
	Paused:      {Playing, Buffering, ReadyToPlay},
	Buffering:   {Playing, Paused},
	Failed:      {ReadyToPlay},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to Status) bool {
	if to == Failed {
		return true
	}
	return lo.Contains(transitions[from], to)
}
