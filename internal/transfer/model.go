package transfer

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound occurs when no transfer exists for the requested id.
	ErrNotFound = errors.New("transfer not found")

	// ErrExpired occurs when paying a pending transaction past its deadline.
	ErrExpired = errors.New("pending transaction has expired")

	// ErrAmountMismatch occurs when the paid amount differs from the amount
	// the pending transaction was issued for.
	ErrAmountMismatch = errors.New("amount does not match the pending transaction")

	// ErrAccountMismatch occurs when the paying account is not the one the
	// pending transaction was issued against.
	ErrAccountMismatch = errors.New("incorrect source account for the pending transaction")
)

// Transfer is the ledger-visible summary of a two-leg money movement. The
// balance changes themselves are the paired movements. To is empty for
// hub-payment legs; Correlation carries the pending-transaction id.
type Transfer struct {
	ID          string
	From        string
	To          string
	Amount      decimal.Decimal
	Correlation string
	Date        time.Time
}
