// Package wallet handles the peer wallet event protocol: payment events
// settled against bound debit cards and the card link handshake. Bindings map
// a wallet phone number to a debit card; unbound identities are forwarded to
// the wallet hub unresolved.
package wallet

import (
	"context"
	"errors"
)

// ErrNotFound occurs when no binding exists for the phone number.
var ErrNotFound = errors.New("wallet binding not found")

// Binding links a wallet phone number to a debit card.
type Binding struct {
	Phone     string `json:"phone"`
	DebitCard string `json:"debitCard"`
}

// BindingStore is the shared phone-to-card map visible to every handler
// instance.
type BindingStore interface {
	Get(ctx context.Context, phone string) (Binding, error)
	Put(ctx context.Context, b Binding) error
}
