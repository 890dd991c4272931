// Package pending holds the short-lived hub-payment transaction records this
// service settles against. Records are created by the wallet hub and consumed
// exactly once by the pay path; the store expires whatever is never claimed.
package pending

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound occurs when no pending transaction exists for the key, either
// because it never existed or because its TTL elapsed.
var ErrNotFound = errors.New("pending transaction not found")

// State tags the lifecycle of a pending transaction.
type State string

const (
	StateRequested State = "requested"
	StatePaid      State = "paid"
	StateExpired   State = "expired"
	StateCompleted State = "completed"
)

// Transaction is the ephemeral record a hub payment settles against, keyed
// by its correlation id.
type Transaction struct {
	ID         string          `json:"id"`
	State      State           `json:"state"`
	Amount     decimal.Decimal `json:"amount"`
	AccountID  string          `json:"accountId"`
	Expiration time.Time       `json:"expiration"`
}

// Expired reports whether the transaction can no longer be paid at t.
func (t Transaction) Expired(at time.Time) bool {
	return t.State == StateExpired || t.Expiration.Before(at)
}

// Store is an ephemeral keyed store with expiration semantics.
type Store interface {
	Get(ctx context.Context, id string) (Transaction, error)
	Put(ctx context.Context, tx Transaction, ttl time.Duration) error
}
