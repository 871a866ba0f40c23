package permalinks

import (
	"context"
	"sync"
)

// NewMemoryStore creates the in-process store used by default and in tests.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64]string)}
}

// MemoryStore keeps old-permalink records in a mutex-guarded map.
type MemoryStore struct {
	mu      sync.Mutex
	records map[int64]string
}

func (s *MemoryStore) Set(_ context.Context, itemID int64, permalink string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[itemID] = permalink
	return nil
}

func (s *MemoryStore) Get(_ context.Context, itemID int64) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	permalink, ok := s.records[itemID]
	return permalink, ok, nil
}
