package account

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound occurs when no account exists for the requested identifier.
	ErrNotFound = errors.New("account not found")

	// ErrInsufficientFunds occurs when an outbound movement plus its fee
	// exceeds the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrValidation indicates a malformed request (missing kind, missing or
	// negative amount).
	ErrValidation = errors.New("invalid movement request")

	// ErrMovementDay indicates a fixed deposit account was asked to move
	// funds outside its contracted day of month.
	ErrMovementDay = errors.New("fixed deposit account can only move on its movement day")

	// ErrVersionConflict indicates a stale write was rejected by the store.
	// Callers may reload and retry.
	ErrVersionConflict = errors.New("account version conflict")
)

// Type identifies the account product.
type Type string

const (
	TypeCurrent      Type = "current"
	TypeSaving       Type = "saving"
	TypeFixedDeposit Type = "fixed_deposit"
)

// ParseType validates a free-form account type once at the boundary.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "current":
		return TypeCurrent, nil
	case "saving":
		return TypeSaving, nil
	case "fixed_deposit", "fixed deposit":
		return TypeFixedDeposit, nil
	default:
		return "", fmt.Errorf("%w: unknown account type %q", ErrValidation, s)
	}
}

// ClientKind classifies the owning client.
type ClientKind string

const (
	ClientPersonal ClientKind = "personal"
	ClientBusiness ClientKind = "business"
)

// ParseClientKind validates a client classification.
func ParseClientKind(s string) (ClientKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "personal":
		return ClientPersonal, nil
	case "business":
		return ClientBusiness, nil
	default:
		return "", fmt.Errorf("%w: unknown client kind %q", ErrValidation, s)
	}
}

// ClientTier captures the commercial tier of the owning client.
type ClientTier string

const (
	TierStandard ClientTier = "standard"
	TierVIP      ClientTier = "vip"
	TierSME      ClientTier = "sme"
)

// ParseClientTier validates a client tier. The legacy "pyme" spelling is
// accepted and normalized to sme.
func ParseClientTier(s string) (ClientTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard":
		return TierStandard, nil
	case "vip":
		return TierVIP, nil
	case "sme", "pyme":
		return TierSME, nil
	default:
		return "", fmt.Errorf("%w: unknown client tier %q", ErrValidation, s)
	}
}

// MovementKind is the closed set of ledger movement kinds. Sign is derived
// from the kind: outbound kinds debit the account.
type MovementKind string

const (
	KindDeposit            MovementKind = "deposit"
	KindWithdraw           MovementKind = "withdraw"
	KindTransferIn         MovementKind = "transfer_in"
	KindTransferOut        MovementKind = "transfer_out"
	KindPayTransaction     MovementKind = "pay_transaction"
	KindReceiveTransaction MovementKind = "receive_transaction"
	KindWalletIn           MovementKind = "wallet_in"
	KindWalletOut          MovementKind = "wallet_out"
	KindPay                MovementKind = "pay"
)

// ParseMovementKind validates a free-form movement kind once at the boundary.
func ParseMovementKind(s string) (MovementKind, error) {
	switch MovementKind(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))) {
	case KindDeposit:
		return KindDeposit, nil
	case KindWithdraw:
		return KindWithdraw, nil
	case KindTransferIn:
		return KindTransferIn, nil
	case KindTransferOut:
		return KindTransferOut, nil
	case KindPayTransaction:
		return KindPayTransaction, nil
	case KindReceiveTransaction:
		return KindReceiveTransaction, nil
	case KindWalletIn:
		return KindWalletIn, nil
	case KindWalletOut:
		return KindWalletOut, nil
	case KindPay:
		return KindPay, nil
	default:
		return "", fmt.Errorf("%w: unknown movement kind %q", ErrValidation, s)
	}
}

// Outbound reports whether the kind debits the account.
func (k MovementKind) Outbound() bool {
	switch k {
	case KindWithdraw, KindTransferOut, KindPayTransaction, KindWalletOut, KindPay:
		return true
	default:
		return false
	}
}

// Sign applies the kind's sign to an unsigned amount.
func (k MovementKind) Sign(amount decimal.Decimal) decimal.Decimal {
	if k.Outbound() {
		return amount.Neg()
	}
	return amount
}

// Account is the ledger entity owning a balance and its movement policy.
type Account struct {
	ID             string
	ClientID       string
	ClientKind     ClientKind
	ClientTier     ClientTier
	Type           Type
	Balance        decimal.Decimal
	MaintenanceFee decimal.Decimal
	// MovementLimit is the number of movements allowed per calendar month
	// before the surcharge fee applies. Zero means unlimited.
	MovementLimit int
	Holders       []string
	Signers       []string
	// MovementDay is the only day of month a fixed deposit account accepts
	// mutating movements.
	MovementDay int
	// Version guards against concurrent read-modify-write cycles; the store
	// rejects saves carrying a stale version.
	Version int64
}

// MovementValid reports whether the account can absorb the movement. Outbound
// kinds require balance >= amount + fee. Deposits are always accepted.
func (a *Account) MovementValid(kind MovementKind, amount, fee decimal.Decimal) (bool, error) {
	if kind == "" || amount.IsNegative() {
		return false, fmt.Errorf("%w: kind and a non-negative amount are mandatory", ErrValidation)
	}
	if !kind.Outbound() {
		return true, nil
	}
	return a.Balance.GreaterThanOrEqual(amount.Add(fee)), nil
}

// CanMutateOn reports whether the account accepts mutating movements at t.
// Only fixed deposit accounts are restricted.
func (a *Account) CanMutateOn(t time.Time) bool {
	return a.Type != TypeFixedDeposit || t.Day() == a.MovementDay
}

// WithinMonthlyLimit reports whether one more movement fits in the current
// month. Exceeding the limit does not block a movement, it prices a
// surcharge fee instead.
func (a *Account) WithinMonthlyLimit(countThisMonth int64) bool {
	if a.MovementLimit <= 0 {
		return true
	}
	return countThisMonth < int64(a.MovementLimit)
}

// Apply mutates the balance by the movement's signed amount minus its fee.
// Validation is the caller's responsibility; Apply is not self-serializing.
func (a *Account) Apply(kind MovementKind, amount, fee decimal.Decimal) {
	a.Balance = a.Balance.Add(kind.Sign(amount)).Sub(fee)
}
