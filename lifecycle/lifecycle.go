// Package lifecycle reconciles application focus changes and end-of-stream
// with the player status.
package lifecycle

import (
	"github.com/samber/mo"
	"github.com/scrubdeck/scrubdeck/progress"
	"github.com/scrubdeck/scrubdeck/seek"
	"github.com/scrubdeck/scrubdeck/status"
)

// Source identifies the media being played.
type Source struct {
	URL               string            `json:"url"`
	Title             string            `json:"title,omitempty"`
	IsLocalFile       bool              `json:"is_local_file"`
	ResumeFromSeconds float64           `json:"resume_from_seconds"`
	Headers           map[string]string `json:"headers,omitempty"`
}

// EndOfStream is emitted when the media finishes.
type EndOfStream struct {
	Source       Source
	WasLocalFile bool
}

// Reconciler saves the status before an interruption and restores it afterwards.
type Reconciler struct {
	machine *status.Machine
	seeks   *seek.Coordinator
	tracker *progress.Tracker

	saved mo.Option[status.Status]
}

// NewReconciler wires a reconciler to the components it drives.
func NewReconciler(machine *status.Machine, seeks *seek.Coordinator, tracker *progress.Tracker) *Reconciler {
	return &Reconciler{machine: machine, seeks: seeks, tracker: tracker}
}

// OnBackground saves the current status and pauses. A seek in flight keeps
// going, but it now resumes into Paused; its own resume status is what gets
// saved. A second call without OnForeground keeps the first saved status.
func (r *Reconciler) OnBackground() error {
	if r.saved.IsPresent() {
		return nil
	}

	if resume, ok := r.seeks.ResumeStatus(); ok {
		r.saved = mo.Some(resume)
		r.seeks.SetResumeStatus(status.Paused)
		return nil
	}

	current := r.machine.Current()
	if current == status.Unknown || current == status.Failed {
		return nil
	}

	r.saved = mo.Some(current)
	return r.machine.Request(status.Paused)
}

// OnForeground restores the saved status, or pauses when nothing was saved.
// While a seek is in flight the restored status is handed to the seek instead.
func (r *Reconciler) OnForeground() error {
	target := r.saved.OrElse(status.Paused)
	r.saved = mo.None[status.Status]()

	if r.seeks.InFlight() {
		r.seeks.SetResumeStatus(target)
		return nil
	}

	switch r.machine.Current() {
	case status.Unknown, status.Failed:
		return nil
	}

	return r.machine.Request(target)
}

// Saved returns the status recorded by OnBackground, if any.
func (r *Reconciler) Saved() mo.Option[status.Status] {
	return r.saved
}

// Forget drops the saved status, as when a new source is loaded.
func (r *Reconciler) Forget() {
	r.saved = mo.None[status.Status]()
}

// OnEndOfStream pauses and pins the playhead to the end.
func (r *Reconciler) OnEndOfStream(source Source) (EndOfStream, error) {
	r.seeks.Cancel()
	r.tracker.MarkEnded()
	err := r.machine.Request(status.Paused)
	return EndOfStream{Source: source, WasLocalFile: source.IsLocalFile}, err
}
