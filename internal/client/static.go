package client

import (
	"context"
	"fmt"
	"sync"
)

// StaticDirectory serves profiles from a fixed in-memory table. Used in tests
// and dev mode where the clients service is not running.
type StaticDirectory struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	credit   map[string]bool
}

// NewStaticDirectory builds an empty static directory.
func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{
		profiles: make(map[string]Profile),
		credit:   make(map[string]bool),
	}
}

// AddProfile registers a profile, optionally marking the client as a credit
// card holder.
func (d *StaticDirectory) AddProfile(p Profile, hasCreditCard bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[p.ID] = p
	d.credit[p.ID] = hasCreditCard
}

// Profile returns the registered profile or ErrNotFound.
func (d *StaticDirectory) Profile(_ context.Context, clientID string) (Profile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.profiles[clientID]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, clientID)
	}
	return p, nil
}

// HasCreditCard reports the registered credit flag.
func (d *StaticDirectory) HasCreditCard(_ context.Context, clientID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if _, ok := d.profiles[clientID]; !ok {
		return false, fmt.Errorf("%w: %s", ErrNotFound, clientID)
	}
	return d.credit[clientID], nil
}
