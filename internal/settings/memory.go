package settings

import (
	"context"
	"sync"
)

// NewMemoryStore returns an in-memory settings store for tests and example
// wiring.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]map[string]string)}
}

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]map[string]string
}

func (s *MemoryStore) Get(_ context.Context, section, name string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	options, ok := s.values[section]
	if !ok {
		return "", false, nil
	}
	value, ok := options[name]
	return value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, section, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	options, ok := s.values[section]
	if !ok {
		options = make(map[string]string)
		s.values[section] = options
	}
	options[name] = value
	return nil
}
