package transfer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository for tests and development.
type MemoryRepository struct {
	mu        sync.RWMutex
	transfers map[string]Transfer
}

// NewMemoryRepository builds an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{transfers: make(map[string]Transfer)}
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tr, ok := r.transfers[id]
	if !ok {
		return Transfer{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tr, nil
}

func (r *MemoryRepository) FindAll(ctx context.Context) ([]Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Transfer, 0, len(r.transfers))
	for _, tr := range r.transfers {
		out = append(out, tr)
	}
	sortByDate(out)
	return out, nil
}

func (r *MemoryRepository) FindByAccount(ctx context.Context, accountID string) ([]Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Transfer
	for _, tr := range r.transfers {
		if tr.From == accountID || tr.To == accountID {
			out = append(out, tr)
		}
	}
	sortByDate(out)
	return out, nil
}

func (r *MemoryRepository) FindByAccountBetween(ctx context.Context, accountID string, from, to time.Time) ([]Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Transfer
	for _, tr := range r.transfers {
		if tr.From != accountID && tr.To != accountID {
			continue
		}
		if tr.Date.Before(from) || tr.Date.After(to) {
			continue
		}
		out = append(out, tr)
	}
	sortByDate(out)
	return out, nil
}

func (r *MemoryRepository) Save(ctx context.Context, tr *Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers[tr.ID] = *tr
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transfers[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.transfers, id)
	return nil
}

func (r *MemoryRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers = make(map[string]Transfer)
	return nil
}

func sortByDate(ts []Transfer) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Date.Equal(ts[j].Date) {
			return ts[i].ID < ts[j].ID
		}
		return ts[i].Date.Before(ts[j].Date)
	})
}
