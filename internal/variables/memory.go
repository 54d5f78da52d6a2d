// internal/variables/memory.go
package variables

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore keeps variables in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	vars map[string]string
}

// NewMemoryStore returns a store seeded with initial, which may be nil.
func NewMemoryStore(initial map[string]string) *MemoryStore {
	vars := make(map[string]string, len(initial))
	maps.Copy(vars, initial)
	return &MemoryStore{vars: vars}
}

func (s *MemoryStore) Get(_ context.Context, name string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = value
	return nil
}

// List returns a snapshot; callers may modify it freely.
func (s *MemoryStore) List(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.vars), nil
}

func (s *MemoryStore) Close() error { return nil }
