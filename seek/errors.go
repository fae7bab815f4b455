package seek

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ErrInvalidDuration is returned when a seek is attempted before the media
// duration is known. Retry after the item becomes ready.
var ErrInvalidDuration = errors.New("seek: media duration unknown")

// SeekFailedError reports an engine-side seek failure.
type SeekFailedError struct {
	IsLocalFile bool
}

func (e *SeekFailedError) Error() string {
	if e.IsLocalFile {
		return "seek failed on local file"
	}
	return "seek failed on remote source"
}

// FailurePolicy decides which seek failures put the player into Failed.
// The others leave it Paused at the last good position.
type FailurePolicy int

const (
	// FailRemoteOnly fails remote sources and silently pauses local files.
	FailRemoteOnly FailurePolicy = iota
	// FailAlways fails regardless of the source.
	FailAlways
	// FailNever always pauses silently.
	FailNever
)

var policyNames = map[FailurePolicy]string{
	FailRemoteOnly: "remote-only",
	FailAlways:     "always",
	FailNever:      "never",
}

func (p FailurePolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// FailurePolicyNames lists the accepted configuration values, default first.
func FailurePolicyNames() []string {
	return []string{FailRemoteOnly.String(), FailAlways.String(), FailNever.String()}
}

// ParseFailurePolicy resolves a configuration value.
func ParseFailurePolicy(name string) (FailurePolicy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if p, ok := lo.FindKey(policyNames, name); ok {
		return p, nil
	}
	return FailRemoteOnly, fmt.Errorf("unknown seek failure policy %q, expected one of: %s",
		name, strings.Join(FailurePolicyNames(), ", "))
}

// Fails reports whether a failed seek on the given source should enter Failed.
func (p FailurePolicy) Fails(isLocalFile bool) bool {
	switch p {
	case FailAlways:
		return true
	case FailNever:
		return false
	default:
		return !isLocalFile
	}
}
