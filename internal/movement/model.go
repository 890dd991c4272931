package movement

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kivubank/accounts/internal/account"
)

// ErrNotFound occurs when no movement exists for the requested identifier.
var ErrNotFound = errors.New("movement not found")

// Movement is one accepted balance mutation in the ledger log.
type Movement struct {
	ID        string
	Kind      account.MovementKind
	Amount    decimal.Decimal
	Fee       decimal.Decimal
	Date      time.Time
	AccountID string
}

// Signed returns the movement's net balance effect: the kind-signed amount
// minus the transaction fee.
func (m Movement) Signed() decimal.Decimal {
	return m.Kind.Sign(m.Amount).Sub(m.Fee)
}

// Day returns the day of month the movement was made.
func (m Movement) Day() int {
	return m.Date.Day()
}
