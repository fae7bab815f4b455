package tui

import "github.com/scrubdeck/scrubdeck/status"

type state int

const (
	loadingState state = iota
	playerState
	endedState
	failedState
)

func stateFor(s status.Status, ended bool) state {
	switch {
	case s == status.Failed:
		return failedState
	case ended:
		return endedState
	case s == status.Unknown:
		return loadingState
	default:
		return playerState
	}
}
