package card

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]DebitCard
}

// NewMemoryRepository constructs an in-memory card repository for unit tests
// and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]DebitCard)}
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (DebitCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	card, ok := r.storage[id]
	if !ok {
		return DebitCard{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return card, nil
}

func (r *memoryRepository) FindAll(_ context.Context) ([]DebitCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]DebitCard, 0, len(r.storage))
	for _, card := range r.storage {
		out = append(out, card)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepository) FindByClient(_ context.Context, clientID string) ([]DebitCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []DebitCard
	for _, card := range r.storage {
		if card.ClientID == clientID {
			out = append(out, card)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepository) FindByNumber(_ context.Context, number string) (DebitCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, card := range r.storage {
		if card.Number == number {
			return card, nil
		}
	}
	return DebitCard{}, fmt.Errorf("%w: number %s", ErrNotFound, number)
}

func (r *memoryRepository) Save(_ context.Context, card *DebitCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[card.ID] = *card
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
	r.storage = make(map[string]DebitCard)
	return nil
}
