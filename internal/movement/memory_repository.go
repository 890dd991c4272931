package movement

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Movement
}

// NewMemoryRepository constructs an in-memory movement log for unit tests
// and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Movement)}
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Movement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mov, ok := r.storage[id]
	if !ok {
		return Movement{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return mov, nil
}

func (r *memoryRepository) FindAll(_ context.Context) ([]Movement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Movement, 0, len(r.storage))
	for _, mov := range r.storage {
		out = append(out, mov)
	}
	sortByDate(out)
	return out, nil
}

func (r *memoryRepository) FindByAccount(_ context.Context, accountID string) ([]Movement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Movement
	for _, mov := range r.storage {
		if mov.AccountID == accountID {
			out = append(out, mov)
		}
	}
	sortByDate(out)
	return out, nil
}

func (r *memoryRepository) FindByAccountBetween(_ context.Context, accountID string, from, to time.Time) ([]Movement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Movement
	for _, mov := range r.storage {
		if mov.AccountID == accountID && !mov.Date.Before(from) && !mov.Date.After(to) {
			out = append(out, mov)
		}
	}
	sortByDate(out)
	return out, nil
}

func (r *memoryRepository) CountByAccountBetween(ctx context.Context, accountID string, from, to time.Time) (int64, error) {
	movs, err := r.FindByAccountBetween(ctx, accountID, from, to)
	if err != nil {
		return 0, err
	}
	return int64(len(movs)), nil
}

func (r *memoryRepository) Save(_ context.Context, mov *Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[mov.ID] = *mov
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
	r.storage = make(map[string]Movement)
	return nil
}

func sortByDate(movs []Movement) {
	sort.Slice(movs, func(i, j int) bool {
		if movs[i].Date.Equal(movs[j].Date) {
			return movs[i].ID < movs[j].ID
		}
		return movs[i].Date.Before(movs[j].Date)
	})
}
