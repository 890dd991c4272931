package account

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Account
}

// NewMemoryRepository constructs a concurrency-safe in-memory repository for
// unit tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Account)}
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acct, ok := r.storage[id]
	if !ok {
		return Account{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return acct, nil
}

func (r *memoryRepository) FindAll(_ context.Context) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Account, 0, len(r.storage))
	for _, acct := range r.storage {
		out = append(out, acct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepository) FindByClient(_ context.Context, clientID string) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Account
	for _, acct := range r.storage {
		if acct.ClientID == clientID {
			out = append(out, acct)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepository) FindByClientAndType(_ context.Context, clientID string, t Type) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Account
	for _, acct := range r.storage {
		if acct.ClientID == clientID && acct.Type == t {
			out = append(out, acct)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepository) Save(_ context.Context, acct *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.storage[acct.ID]
	if !ok {
		acct.Version = 1
		r.storage[acct.ID] = *acct
		return nil
	}
	if existing.Version != acct.Version {
		return fmt.Errorf("%w: %s", ErrVersionConflict, acct.ID)
	}
	acct.Version++
	r.storage[acct.ID] = *acct
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.storage, id)
	return nil
}

func (r *memoryRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage = make(map[string]Account)
	return nil
}
