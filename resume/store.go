// Package resume remembers where playback of each source stopped.
package resume

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

const (
	BackendGache  = "gache"
	BackendSqlite = "sqlite"
	BackendMemory = "memory"
)

// Backends lists the accepted values of resume.backend, default first.
var Backends = []string{BackendGache, BackendSqlite, BackendMemory}

// State is the remembered playback position of one source.
type State struct {
	URL             string    `json:"url" jsonschema:"description=Source URL or absolute file path"`
	Title           string    `json:"title,omitempty"`
	PosSeconds      float64   `json:"pos_seconds" jsonschema:"minimum=0"`
	DurationSeconds float64   `json:"duration_seconds" jsonschema:"minimum=0"`
	Finished        bool      `json:"finished"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Fraction returns the watched share, 0 while the duration is unknown.
func (s *State) Fraction() float64 {
	if s.DurationSeconds <= 0 {
		return 0
	}
	return min(1, max(0, s.PosSeconds/s.DurationSeconds))
}

// Store persists State by source URL. Get returns nil, nil for unknown URLs.
type Store interface {
	Put(ctx context.Context, url string, state *State) error
	Get(ctx context.Context, url string) (*State, error)
	Delete(ctx context.Context, url string) error
	List(ctx context.Context) ([]*State, error)
	Close() error
}

// NewStore creates a store for the given backend. Durable backends keep
// their data under dir; an empty dir yields a MemoryStore.
func NewStore(backend, dir string) (Store, error) {
	if backend == "" {
		backend = BackendGache
	}

	switch backend {
	case BackendGache:
		if dir == "" {
			return NewMemoryStore(), nil
		}
		return NewGacheStore(dir), nil
	case BackendSqlite:
		if dir == "" {
			return NewMemoryStore(), nil
		}
		return NewSqliteStore(dir)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown resume store backend: %s (supported: %s)", backend, strings.Join(Backends, ", "))
	}
}

// Lookup wraps Store.Get in an Option.
func Lookup(ctx context.Context, store Store, url string) (mo.Option[State], error) {
	state, err := store.Get(ctx, url)
	if err != nil {
		return mo.None[State](), err
	}
	if state == nil {
		return mo.None[State](), nil
	}
	return mo.Some(*state), nil
}

// sortByRecent orders states newest first.
func sortByRecent(states []*State) []*State {
	sort.SliceStable(states, func(i, j int) bool {
		return states[i].UpdatedAt.After(states[j].UpdatedAt)
	})
	return states
}

// MemoryStore implements Store using a map. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*State
}

// NewMemoryStore creates an in-memory resume store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*State)}
}

func (s *MemoryStore) Put(_ context.Context, url string, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *state
	clone.URL = url
	s.data[url] = &clone
	return nil
}

func (s *MemoryStore) Get(_ context.Context, url string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if val, ok := s.data[url]; ok {
		clone := *val
		return &clone, nil
	}
	return nil, nil
}

func (s *MemoryStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, url)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortByRecent(lo.MapToSlice(s.data, func(_ string, v *State) *State {
		clone := *v
		return &clone
	})), nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.data = make(map[string]*State)
	s.mu.Unlock()
	return nil
}
