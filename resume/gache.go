package resume

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/scrubdeck/scrubdeck/filesystem"
)

// GacheStore keeps every State in a single JSON document on the active filesystem.
type GacheStore struct {
	mu     sync.Mutex
	cacher *gache.Cache[map[string]*State]
}

// NewGacheStore stores its document as resume.json inside dir.
func NewGacheStore(dir string) *GacheStore {
	return &GacheStore{
		cacher: gache.New[map[string]*State](
			&gache.Options{
				Path:       filepath.Join(dir, "resume.json"),
				FileSystem: &filesystem.GacheFs{},
			},
		),
	}
}

func (s *GacheStore) load() (map[string]*State, error) {
	cached, expired, err := s.cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*State), nil
	}
	return cached, nil
}

func (s *GacheStore) Put(_ context.Context, url string, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return err
	}

	clone := *state
	clone.URL = url
	saved[url] = &clone
	return s.cacher.Set(saved)
}

func (s *GacheStore) Get(_ context.Context, url string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return nil, err
	}
	state, ok := saved[url]
	if !ok {
		return nil, nil
	}
	clone := *state
	return &clone, nil
}

func (s *GacheStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := saved[url]; !ok {
		return nil
	}

	delete(saved, url)
	return s.cacher.Set(saved)
}

func (s *GacheStore) List(_ context.Context) ([]*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return nil, err
	}
	return sortByRecent(lo.Values(saved)), nil
}

func (s *GacheStore) Close() error {
	return nil
}
