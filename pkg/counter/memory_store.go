package counter

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store for tests and single-instance setups.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]int64)}
}

// Increment implements Store.
func (s *MemoryStore) Increment(_ context.Context, key string, amount int64) (int64, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[key] += amount
	return s.counters[key], nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (int64, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counters[key], nil
}
