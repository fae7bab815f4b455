package playback

import (
	"context"
	"errors"

	"github.com/samber/mo"
	"github.com/scrubdeck/scrubdeck/lifecycle"
	"github.com/scrubdeck/scrubdeck/log"
	"github.com/scrubdeck/scrubdeck/progress"
	"github.com/scrubdeck/scrubdeck/seek"
	"github.com/scrubdeck/scrubdeck/status"
	"github.com/scrubdeck/scrubdeck/timefmt"
	"github.com/scrubdeck/scrubdeck/util"
	"golang.org/x/time/rate"
)

const queueSize = 64

// Core owns every playback component. All mutation happens on the goroutine
// running Run; the exported methods only enqueue work for it.
type Core struct {
	opts   Options
	engine Engine

	machine *status.Machine
	tracker *progress.Tracker
	seeks   *seek.Coordinator
	life    *lifecycle.Reconciler

	observers []Observer

	source     Source
	ready      bool
	ended      bool
	paused     mo.Option[bool]
	volume     float64
	brightness float64
	drag       mo.Option[dragState]
	preview    *rate.Limiter
	engineBusy bool
	engineSeek seek.Handle

	ops  chan func()
	done chan struct{}
}

// New builds a core. Attach an engine before calling Run.
func New(opts Options) *Core {
	machine := status.NewMachine()
	tracker := progress.NewTracker(opts.DiscontinuityEpsilon)
	seeks := seek.NewCoordinator(machine, opts.FailurePolicy)

	c := &Core{
		opts:       opts,
		machine:    machine,
		tracker:    tracker,
		seeks:      seeks,
		life:       lifecycle.NewReconciler(machine, seeks, tracker),
		volume:     util.Clamp01(opts.Volume),
		brightness: util.Clamp01(opts.Brightness),
		ops:        make(chan func(), queueSize),
		done:       make(chan struct{}),
	}

	if opts.PreviewRate > 0 {
		c.preview = rate.NewLimiter(rate.Limit(opts.PreviewRate), 1)
	}

	// Registered first so the engine follows every change before any UI sees it.
	machine.Observe(c.onStatusChange)
	return c
}

// Attach sets the engine. It must be called before Run.
func (c *Core) Attach(engine Engine) {
	c.engine = engine
}

// Run processes queued work until ctx is done.
func (c *Core) Run(ctx context.Context) error {
	defer close(c.done)

	if c.engine == nil {
		return ErrNoEngine
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case op := <-c.ops:
			op()
		}
	}
}

// Done is closed once Run has returned.
func (c *Core) Done() <-chan struct{} {
	return c.done
}

func (c *Core) post(op func()) {
	select {
	case c.ops <- op:
	case <-c.done:
	}
}

// Observe registers an observer for every subsequent Event.
func (c *Core) Observe(obs Observer) {
	c.post(func() {
		c.observers = append(c.observers, obs)
	})
}

func (c *Core) emit(ev Event) {
	for _, obs := range c.observers {
		obs(ev)
	}
}

// Snapshot returns the current state once every previously queued operation ran.
func (c *Core) Snapshot() (Snapshot, error) {
	result := make(chan Snapshot, 1)
	c.post(func() {
		result <- c.snapshot()
	})

	select {
	case s := <-result:
		return s, nil
	case <-c.done:
		select {
		case s := <-result:
			return s, nil
		default:
			return Snapshot{}, ErrClosed
		}
	}
}

func (c *Core) snapshot() Snapshot {
	pos := c.tracker.Position()
	s := Snapshot{
		Source:           c.source,
		Status:           c.machine.Current(),
		Position:         pos,
		Label:            timefmt.Label(pos.CurrentSeconds, pos.TotalSeconds),
		BufferedFraction: c.tracker.BufferedFraction(),
		BufferedSeconds:  c.tracker.BufferedSeconds(),
		Volume:           c.volume,
		Brightness:       c.brightness,
		SeekInFlight:     c.seeks.InFlight(),
		Ended:            c.ended,
	}
	if d, ok := c.drag.Get(); ok {
		s.Dragging = d.control
		s.Position.CurrentSeconds = d.fraction * pos.TotalSeconds
		s.Label = timefmt.DragLabel(s.Position.CurrentSeconds, pos.TotalSeconds)
	}
	return s
}

// onStatusChange keeps the engine paused unless the status wants frames.
func (c *Core) onStatusChange(change status.Change) {
	log.With(log.Fields{"from": change.From, "to": change.To}).Debug("status changed")

	if change.To == status.Playing {
		c.tracker.ResetStall()
	}

	paused := !change.To.Active()
	if current, ok := c.paused.Get(); !ok || current != paused {
		if err := c.engine.SetPaused(paused); err != nil {
			log.Warnf("engine: set paused=%t: %s", paused, err)
		} else {
			c.paused = mo.Some(paused)
		}
	}

	c.emit(Event{Kind: EventStatus, Change: change})
}

// request asks the machine for a transition and reports rejections.
func (c *Core) request(to status.Status) {
	if err := c.machine.Request(to); err != nil {
		c.reject(err)
	}
}

func (c *Core) reject(err error) {
	log.Warn(err)
	c.emit(Event{Kind: EventRejected, Err: err})
}

func (c *Core) fail(err error) {
	log.Error(err)
	c.drag = mo.None[dragState]()
	c.seeks.Cancel()
	c.forgetEngineSeek()
	if rerr := c.machine.Request(status.Failed); rerr != nil {
		log.Warn(rerr)
	}
	c.emit(Event{Kind: EventEngineFailure, Err: err})
}

func (c *Core) emitPosition() {
	c.emit(Event{Kind: EventPosition, Position: c.tracker.Position()})
}

// LoadSource discards all state of the previous source and starts loading src.
func (c *Core) LoadSource(src Source) {
	c.post(func() { c.load(src) })
}

func (c *Core) load(src Source) {
	log.With(log.Fields{"url": src.URL, "local": src.IsLocalFile, "from": src.ResumeFromSeconds}).Info("loading source")

	c.source = src
	c.ready = false
	c.ended = false
	c.forgetEngineSeek()
	c.drag = mo.None[dragState]()
	c.seeks.SetSource(src.IsLocalFile)
	c.life.Forget()
	c.tracker.Reset()

	c.machine.Reset()
	c.request(status.ReadyToPlay)
	c.emitPosition()

	if err := c.engine.Load(src); err != nil {
		c.fail(&EngineFailureError{Op: "load", Err: err})
		return
	}

	if err := c.engine.SetVolume(c.volume); err != nil {
		log.Warnf("engine: set volume: %s", err)
	}
}

// Replay restarts the current source from the beginning.
func (c *Core) Replay() {
	c.post(c.replay)
}

func (c *Core) replay() {
	c.ended = false
	total := c.tracker.Position().TotalSeconds

	c.request(status.ReadyToPlay)
	c.request(status.Playing)

	if total > 0 {
		c.beginSeek(0, total)
	}
}

// Retry reloads the current source from the last known position.
func (c *Core) Retry() {
	c.post(c.retry)
}

func (c *Core) retry() {
	if c.source.URL == "" {
		c.reject(errors.New("retry: no source loaded"))
		return
	}

	src := c.source
	if pos := c.tracker.Position().CurrentSeconds; pos > 0 {
		src.ResumeFromSeconds = pos
	}
	c.load(src)
}

// UserRequestsPlayPause toggles between playing and paused.
func (c *Core) UserRequestsPlayPause() {
	c.post(c.togglePlayPause)
}

func (c *Core) togglePlayPause() {
	if resume, ok := c.seeks.ResumeStatus(); ok {
		if resume.Active() {
			c.seeks.SetResumeStatus(status.Paused)
		} else {
			c.seeks.SetResumeStatus(status.Playing)
		}
		return
	}

	switch c.machine.Current() {
	case status.Playing, status.Buffering:
		c.request(status.Paused)
	case status.Paused, status.ReadyToPlay:
		if c.ended {
			c.replay()
			return
		}
		c.request(status.Playing)
	case status.Failed:
		c.retry()
	default:
		c.reject(&status.InvalidTransitionError{From: c.machine.Current(), To: status.Playing})
	}
}

// UserSelectsSlider seeks straight to fraction of the media.
func (c *Core) UserSelectsSlider(fraction float64) {
	c.post(func() {
		c.beginSeek(fraction, c.tracker.Position().TotalSeconds)
	})
}

// beginSeek opens (or retargets) the seek request and hands it to the engine
// when the engine is idle.
func (c *Core) beginSeek(fraction, total float64) bool {
	if _, err := c.seeks.Begin(fraction, total); err != nil {
		c.reject(err)
		return false
	}
	c.ended = false
	c.issueSeek()
	return true
}

// issueSeek sends the latest pending target to the engine unless one is
// already outstanding.
func (c *Core) issueSeek() {
	if c.engineBusy {
		return
	}

	req, handle, ok := c.seeks.Pending()
	if !ok {
		return
	}

	c.engineBusy = true
	c.engineSeek = handle
	target := req.TargetSeconds

	log.With(log.Fields{"target": target}).Debug("issuing seek")
	c.engine.Seek(target, func(ok bool) {
		c.post(func() { c.onSeekDone(handle, target, ok) })
	})
}

// forgetEngineSeek detaches the outstanding engine seek so its completion
// is treated as stale.
func (c *Core) forgetEngineSeek() {
	c.engineBusy = false
	c.engineSeek = seek.Handle{}
}

func (c *Core) onSeekDone(handle seek.Handle, target float64, ok bool) {
	if handle != c.engineSeek {
		// Belongs to a source or request that no longer exists.
		_, _ = c.seeks.Complete(handle, ok)
		return
	}
	c.engineBusy = false

	if d, dragging := c.drag.Get(); dragging && d.control == seek.ControlScrub {
		// Previews never resolve the request; UserEndsDrag does.
		if ok {
			c.tracker.ApplySeek(target)
		}
		return
	}

	outcome, err := c.seeks.Complete(handle, ok)
	switch outcome {
	case seek.OutcomeStale:
		return
	case seek.OutcomeSuperseded:
		c.issueSeek()
		return
	case seek.OutcomeResumed:
		c.tracker.ApplySeek(target)
		c.emitPosition()
		if err != nil {
			c.reject(err)
		}
	case seek.OutcomeFailed, seek.OutcomeFailedSilent:
		log.With(log.Fields{"target": target, "outcome": outcome}).Warn(err)
		c.emit(Event{Kind: EventSeekFailed, Err: err})
	}
}

// ApplicationDidEnterBackground pauses and remembers what to restore.
func (c *Core) ApplicationDidEnterBackground() {
	c.post(func() {
		if err := c.life.OnBackground(); err != nil {
			c.reject(err)
		}
	})
}

// ApplicationDidBecomeActive restores the status saved on background.
func (c *Core) ApplicationDidBecomeActive() {
	c.post(func() {
		if err := c.life.OnForeground(); err != nil {
			c.reject(err)
		}
	})
}

// PeriodicTimeUpdate is called by the engine at a fixed cadence.
func (c *Core) PeriodicTimeUpdate(currentSeconds, totalSeconds float64) {
	c.post(func() { c.onPeriodic(currentSeconds, totalSeconds) })
}

func (c *Core) onPeriodic(currentSeconds, totalSeconds float64) {
	// While a seek is outstanding the engine still reports the old position.
	if c.seeks.InFlight() || c.ended {
		return
	}

	u := c.tracker.OnPeriodicUpdate(currentSeconds, totalSeconds)
	if u.Discontinuity {
		log.With(log.Fields{"position": currentSeconds}).Debug("position discontinuity")
	}

	switch current := c.machine.Current(); {
	case current == status.Buffering && u.Progressing:
		c.request(status.Playing)
	case current == status.Playing && c.opts.StallTicks > 0 && c.tracker.StalledFor() >= c.opts.StallTicks:
		c.request(status.Buffering)
	}

	c.emitPosition()
}

// BufferedRangeUpdate is called by the engine as loaded data grows.
func (c *Core) BufferedRangeUpdate(startSeconds, durationSeconds float64) {
	c.post(func() {
		before := c.tracker.BufferedFraction()
		c.tracker.OnBufferedRangeUpdate(startSeconds, durationSeconds)
		if after := c.tracker.BufferedFraction(); after != before {
			c.emit(Event{Kind: EventBuffered, BufferedFraction: after})
		}
	})
}

// ItemStatusChanged is called by the engine when the item readiness changes.
func (c *Core) ItemStatusChanged(item ItemStatus, totalSeconds float64) {
	c.post(func() { c.onItemStatus(item, totalSeconds) })
}

func (c *Core) onItemStatus(item ItemStatus, totalSeconds float64) {
	switch item {
	case ItemReadyToPlay:
		c.onReady(totalSeconds)
	case ItemFailed:
		c.fail(&EngineFailureError{Op: "load", Err: ErrItemFailed})
	default:
		log.Debugf("item status %s ignored", item)
	}
}

func (c *Core) onReady(totalSeconds float64) {
	if c.ready {
		c.tracker.SetTotal(totalSeconds)
		return
	}
	c.ready = true
	c.tracker.SetTotal(totalSeconds)

	if c.machine.Current() == status.Unknown {
		c.request(status.ReadyToPlay)
	}

	if c.opts.Autoplay && c.machine.Current() == status.ReadyToPlay {
		c.request(status.Playing)
	}

	total := c.tracker.Position().TotalSeconds
	if from := c.source.ResumeFromSeconds; from > c.opts.ResumeThreshold && total > 0 && from < total {
		log.Infof("resuming %s from %.1fs", c.source.URL, from)
		c.beginSeek(from/total, total)
	}

	c.emitPosition()
}

// PlaybackLikelyToKeepUp leaves Buffering once enough data is loaded.
func (c *Core) PlaybackLikelyToKeepUp(likely bool) {
	c.post(func() {
		if likely && c.machine.Current() == status.Buffering {
			c.request(status.Playing)
		}
	})
}

// PlaybackBufferEmpty enters Buffering when playback starved.
func (c *Core) PlaybackBufferEmpty(empty bool) {
	c.post(func() {
		if !empty || c.seeks.InFlight() {
			return
		}
		switch c.machine.Current() {
		case status.Playing:
			c.request(status.Buffering)
		case status.ReadyToPlay:
			if c.opts.Autoplay {
				c.request(status.Buffering)
			}
		}
	})
}

// EndOfStreamReached pauses at the end and tells observers.
func (c *Core) EndOfStreamReached() {
	c.post(func() {
		c.drag = mo.None[dragState]()
		c.forgetEngineSeek()
		ev, err := c.life.OnEndOfStream(c.source)
		if err != nil {
			c.reject(err)
		}
		c.ended = true
		c.emitPosition()
		c.emit(Event{Kind: EventEndOfStream, EndOfStream: ev})
	})
}

// EngineFailed reports an unrecoverable engine error.
func (c *Core) EngineFailed(err error) {
	c.post(func() {
		c.fail(&EngineFailureError{Op: "playback", Err: err})
	})
}
