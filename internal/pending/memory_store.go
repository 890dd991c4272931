package pending

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	tx      Transaction
	expires time.Time
}

type memoryStore struct {
	mu      sync.RWMutex
	storage map[string]memoryEntry
}

// NewMemoryStore constructs an in-memory pending transaction store for unit
// tests and dev mode. Entries past their TTL behave as absent.
func NewMemoryStore() Store {
	return &memoryStore{storage: make(map[string]memoryEntry)}
}

func (s *memoryStore) Get(_ context.Context, id string) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.storage[id]
	if !ok || time.Now().After(entry.expires) {
		return Transaction{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return entry.tx, nil
}

func (s *memoryStore) Put(_ context.Context, tx Transaction, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage[tx.ID] = memoryEntry{tx: tx, expires: time.Now().Add(ttl)}
	return nil
}
