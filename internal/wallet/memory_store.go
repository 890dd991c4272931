package wallet

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBindingStore is an in-memory BindingStore for tests and development.
type MemoryBindingStore struct {
	mu       sync.RWMutex
	bindings map[string]Binding
}

// NewMemoryBindingStore builds an empty in-memory binding store.
func NewMemoryBindingStore() *MemoryBindingStore {
	return &MemoryBindingStore{bindings: make(map[string]Binding)}
}

func (s *MemoryBindingStore) Get(ctx context.Context, phone string) (Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bindings[phone]
	if !ok {
		return Binding{}, fmt.Errorf("%w: %s", ErrNotFound, phone)
	}
	return b, nil
}

func (s *MemoryBindingStore) Put(ctx context.Context, b Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[b.Phone] = b
	return nil
}
