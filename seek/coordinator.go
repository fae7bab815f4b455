package seek

import (
	"fmt"

	"github.com/scrubdeck/scrubdeck/log"
	"github.com/scrubdeck/scrubdeck/status"
	"github.com/scrubdeck/scrubdeck/util"
)

// Handle identifies one seek request. Begin calls that coalesce into an
// in-flight request return the same id with a newer revision.
type Handle struct {
	id       uint64
	revision uint64
}

// Valid reports whether h was returned by a successful Begin.
func (h Handle) Valid() bool {
	return h.id != 0
}

// Coalesced reports whether h replaced the target of an already issued seek.
// The engine must not be asked to seek for a coalesced handle; the latest
// target is reissued when the in-flight seek completes as Superseded.
func (h Handle) Coalesced() bool {
	return h.revision > 0
}

// Request is the in-flight seek.
type Request struct {
	TargetFraction float64
	TargetSeconds  float64
	IssuedAtStatus status.Status
	ResumeStatus   status.Status
}

// Outcome tells the caller what a completion did.
type Outcome int

const (
	// OutcomeStale completions belong to a cancelled request and changed nothing.
	OutcomeStale Outcome = iota
	// OutcomeSuperseded completions were overtaken by a coalesced target, which the
	// caller must now send to the engine.
	OutcomeSuperseded
	// OutcomeResumed completions restored the pre-seek status.
	OutcomeResumed
	// OutcomeFailed completions moved the player to status.Failed.
	OutcomeFailed
	// OutcomeFailedSilent completions left the player Paused.
	OutcomeFailedSilent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuperseded:
		return "superseded"
	case OutcomeResumed:
		return "resumed"
	case OutcomeFailed:
		return "failed"
	case OutcomeFailedSilent:
		return "failed-silent"
	default:
		return "stale"
	}
}

// Coordinator allows at most one seek in flight and restores the pre-seek
// status when it completes. It is not safe for concurrent use.
type Coordinator struct {
	machine *status.Machine
	policy  FailurePolicy

	isLocalFile bool
	lastID      uint64
	handle      Handle
	inflight    *Request
}

// NewCoordinator returns a coordinator driving machine.
func NewCoordinator(machine *status.Machine, policy FailurePolicy) *Coordinator {
	return &Coordinator{machine: machine, policy: policy}
}

// SetSource cancels any in-flight seek and records whether the new source is local.
func (c *Coordinator) SetSource(isLocalFile bool) {
	c.Cancel()
	c.isLocalFile = isLocalFile
}

// Begin pauses playback and opens a seek to targetFraction of totalSeconds.
// While another seek is in flight the new target replaces the old one and the
// original IssuedAtStatus is kept.
func (c *Coordinator) Begin(targetFraction, totalSeconds float64) (Handle, error) {
	if !util.Finite(totalSeconds) || totalSeconds <= 0 {
		return Handle{}, ErrInvalidDuration
	}

	fraction := util.Clamp01(targetFraction)

	if c.inflight != nil {
		c.inflight.TargetFraction = fraction
		c.inflight.TargetSeconds = fraction * totalSeconds
		c.handle.revision++
		return c.handle, nil
	}

	issued := c.machine.Current()
	if err := c.machine.Request(status.Paused); err != nil {
		return Handle{}, fmt.Errorf("begin seek: %w", err)
	}

	resume := issued
	if issued == status.Buffering {
		resume = status.Playing
	}

	c.lastID++
	c.handle = Handle{id: c.lastID}
	c.inflight = &Request{
		TargetFraction: fraction,
		TargetSeconds:  fraction * totalSeconds,
		IssuedAtStatus: issued,
		ResumeStatus:   resume,
	}
	return c.handle, nil
}

// Complete resolves the seek identified by h.
func (c *Coordinator) Complete(h Handle, ok bool) (Outcome, error) {
	if c.inflight == nil || h.id != c.handle.id {
		log.With(log.Fields{"handle": h.id, "ok": ok}).Debug("ignoring stale seek completion")
		return OutcomeStale, nil
	}

	if h.revision != c.handle.revision {
		return OutcomeSuperseded, nil
	}

	req := *c.inflight
	c.inflight = nil

	if ok {
		if err := c.machine.Request(req.ResumeStatus); err != nil {
			return OutcomeResumed, fmt.Errorf("resume after seek: %w", err)
		}
		return OutcomeResumed, nil
	}

	failure := &SeekFailedError{IsLocalFile: c.isLocalFile}
	if c.policy.Fails(c.isLocalFile) {
		if err := c.machine.Request(status.Failed); err != nil {
			return OutcomeFailed, fmt.Errorf("%w: %w", failure, err)
		}
		return OutcomeFailed, failure
	}

	if err := c.machine.Request(status.Paused); err != nil {
		return OutcomeFailedSilent, fmt.Errorf("%w: %w", failure, err)
	}
	return OutcomeFailedSilent, failure
}

// InFlight reports whether a seek is waiting for the engine.
func (c *Coordinator) InFlight() bool {
	return c.inflight != nil
}

// Pending returns the in-flight request and its latest handle.
func (c *Coordinator) Pending() (Request, Handle, bool) {
	if c.inflight == nil {
		return Request{}, Handle{}, false
	}
	return *c.inflight, c.handle, true
}

// Cancel discards the in-flight seek. A later completion for it is Stale.
func (c *Coordinator) Cancel() {
	c.inflight = nil
}

// ResumeStatus returns the status the in-flight seek will restore on success.
func (c *Coordinator) ResumeStatus() (status.Status, bool) {
	if c.inflight == nil {
		return status.Unknown, false
	}
	return c.inflight.ResumeStatus, true
}

// SetResumeStatus changes the status restored on success. It does nothing
// when no seek is in flight.
func (c *Coordinator) SetResumeStatus(s status.Status) {
	if c.inflight != nil {
		c.inflight.ResumeStatus = s
	}
}

// Policy returns the active failure policy.
func (c *Coordinator) Policy() FailurePolicy {
	return c.policy
}
