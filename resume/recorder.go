package resume

import (
	"context"
	"sync"
	"time"
)

// Recorder throttles position writes to a Store. It is safe for concurrent use.
type Recorder struct {
	store    Store
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	lastWrite map[string]time.Time
}

// NewRecorder writes at most once per interval and source.
func NewRecorder(store Store, interval time.Duration) *Recorder {
	return &Recorder{
		store:     store,
		interval:  interval,
		now:       time.Now,
		lastWrite: make(map[string]time.Time),
	}
}

// Record saves the position unless the previous write for url is too recent.
// It reports whether a write happened.
func (r *Recorder) Record(ctx context.Context, url, title string, pos, duration float64) (bool, error) {
	now := r.now()

	r.mu.Lock()
	last, seen := r.lastWrite[url]
	if seen && now.Sub(last) < r.interval {
		r.mu.Unlock()
		return false, nil
	}
	r.lastWrite[url] = now
	r.mu.Unlock()

	return true, r.Flush(ctx, url, title, pos, duration)
}

// Flush saves the position immediately.
func (r *Recorder) Flush(ctx context.Context, url, title string, pos, duration float64) error {
	if url == "" {
		return nil
	}
	return r.store.Put(ctx, url, &State{
		URL:             url,
		Title:           title,
		PosSeconds:      pos,
		DurationSeconds: duration,
		UpdatedAt:       r.now(),
	})
}

// Finish marks url as played to the end. The playhead is kept at duration.
func (r *Recorder) Finish(ctx context.Context, url, title string, duration float64) error {
	r.mu.Lock()
	delete(r.lastWrite, url)
	r.mu.Unlock()

	if url == "" {
		return nil
	}
	return r.store.Put(ctx, url, &State{
		URL:             url,
		Title:           title,
		PosSeconds:      duration,
		DurationSeconds: duration,
		Finished:        true,
		UpdatedAt:       r.now(),
	})
}
