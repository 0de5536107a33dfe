package memory

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrInjected is returned by Set while a failure is injected.
var ErrInjected = errors.New("injected write failure")

// Store is an in-process Storage used by tests and by the daemon's --ephemeral mode.
type Store struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes int
	fail   bool
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Init(context.Context) error { return nil }

func (s *Store) Get(_ context.Context, keys ...string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

func (s *Store) Set(_ context.Context, items map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.WithStack(ErrInjected)
	}
	for k, v := range items {
		s.data[k] = append([]byte(nil), v...)
	}
	s.writes++
	return nil
}

func (s *Store) Close() error { return nil }

// FailWrites makes subsequent Set calls fail until called with false.
func (s *Store) FailWrites(fail bool) {
	s.mu.Lock()
	s.fail = fail
	s.mu.Unlock()
}

// Writes counts successful Set calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Raw returns the stored bytes for key.
func (s *Store) Raw(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}
