package playback

import (
	"context"
	"sync"

	"github.com/scrubdeck/scrubdeck/status"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeEngine struct {
	mu      sync.Mutex
	loads   []Source
	paused  []bool
	seeks   []float64
	pending []func(bool)
	volume  float64
	loadErr error
	closed  bool
}

func (f *fakeEngine) Load(src Source) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, src)
	return f.loadErr
}

func (f *fakeEngine) SetPaused(paused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = append(f.paused, paused)
	return nil
}

func (f *fakeEngine) Seek(seconds float64, done func(ok bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, seconds)
	f.pending = append(f.pending, done)
}

func (f *fakeEngine) SetVolume(volume float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = volume
	return nil
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// finishSeek completes the oldest outstanding seek.
func (f *fakeEngine) finishSeek(ok bool) bool {
	f.mu.Lock()
	if len(f.pending) == 0 {
		f.mu.Unlock()
		return false
	}
	done := f.pending[0]
	f.pending = f.pending[1:]
	f.mu.Unlock()

	done(ok)
	return true
}

func (f *fakeEngine) seekTargets() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.seeks...)
}

func (f *fakeEngine) lastPaused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.paused) == 0 {
		return true
	}
	return f.paused[len(f.paused)-1]
}

func (f *fakeEngine) loaded() []Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Source(nil), f.loads...)
}

func (f *fakeEngine) currentVolume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) observe(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds(kind EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

type harness struct {
	core   *Core
	engine *fakeEngine
	events *recorder
	stop   func()
}

func startCore(opts Options) *harness {
	core := New(opts)
	engine := &fakeEngine{}
	core.Attach(engine)

	events := &recorder{}
	core.Observe(events.observe)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- core.Run(ctx) }()

	var once sync.Once
	return &harness{
		core:   core,
		engine: engine,
		events: events,
		stop: func() {
			once.Do(func() {
				cancel()
				<-errc
			})
		},
	}
}

func (h *harness) snapshot() Snapshot {
	s, err := h.core.Snapshot()
	So(err, ShouldBeNil)
	return s
}

// playing loads src, reports it ready with total seconds and waits until it plays.
func (h *harness) playing(src Source, total float64) Snapshot {
	h.core.LoadSource(src)
	h.core.ItemStatusChanged(ItemReadyToPlay, total)
	s := h.snapshot()
	So(s.Status, ShouldEqual, status.Playing)
	return s
}
