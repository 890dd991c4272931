// Package client looks up client profiles and credit holdings in the bank's
// client and credit services. The settlement core only consumes the result;
// retry policy beyond the circuit breaker belongs to the remote services.
package client

import (
	"context"
	"errors"
)

var (
	// ErrNotFound occurs when the clients service knows nothing about the id.
	ErrNotFound = errors.New("client not found")

	// ErrUnavailable occurs when the remote lookup cannot be completed, for
	// example while the circuit breaker is open.
	ErrUnavailable = errors.New("client service unavailable")
)

// Profile is the remote client record. Kind and Tier arrive as free-form
// strings and are validated by the consumer at its boundary.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"type"`
	Tier string `json:"profile"`
}

// Directory resolves client profiles and credit holdings.
type Directory interface {
	Profile(ctx context.Context, clientID string) (Profile, error)
	// HasCreditCard reports whether the client holds at least one credit
	// card with the credit service.
	HasCreditCard(ctx context.Context, clientID string) (bool, error)
}
