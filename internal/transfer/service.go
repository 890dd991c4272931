package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kivubank/accounts/internal/account"
	"github.com/kivubank/accounts/internal/events"
	"github.com/kivubank/accounts/internal/movement"
	"github.com/kivubank/accounts/internal/pending"
)

// Service coordinates two-leg transfers and the asynchronous hub-payment
// settlement protocol.
type Service struct {
	transfers Repository
	movements movement.Repository
	accounts  account.Repository
	pending   pending.Store
	bus       events.Bus
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds a transfer service.
func NewService(transfers Repository, movements movement.Repository, accounts account.Repository,
	pendingStore pending.Store, bus events.Bus, logger *slog.Logger) *Service {
	return &Service{
		transfers: transfers,
		movements: movements,
		accounts:  accounts,
		pending:   pendingStore,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

// ExecuteInput captures a requested transfer between two accounts.
type ExecuteInput struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// Execute moves amount between two accounts as a paired debit and credit,
// recording one movement per leg and one transfer summary. Same-owner and
// cross-owner transfers follow the same path. The legs are not committed
// atomically; the debit is persisted before the credit.
func (s *Service) Execute(ctx context.Context, input ExecuteInput) (Transfer, error) {
	if !input.Amount.IsPositive() {
		return Transfer{}, fmt.Errorf("%w: amount must be positive", account.ErrValidation)
	}
	if input.From == input.To {
		return Transfer{}, fmt.Errorf("%w: source and destination are the same account", account.ErrValidation)
	}

	from, err := s.accounts.FindByID(ctx, input.From)
	if err != nil {
		return Transfer{}, err
	}
	to, err := s.accounts.FindByID(ctx, input.To)
	if err != nil {
		return Transfer{}, err
	}

	if from.Balance.LessThan(input.Amount) {
		return Transfer{}, fmt.Errorf("%w: account %s", account.ErrInsufficientFunds, from.ID)
	}

	now := s.now()
	if err := s.applyLeg(ctx, &from, account.KindTransferOut, input.Amount, now); err != nil {
		return Transfer{}, err
	}
	if err := s.applyLeg(ctx, &to, account.KindTransferIn, input.Amount, now); err != nil {
		return Transfer{}, err
	}

	tr := Transfer{
		ID:     uuid.NewString(),
		From:   from.ID,
		To:     to.ID,
		Amount: input.Amount,
		Date:   now,
	}
	if err := s.transfers.Save(ctx, &tr); err != nil {
		return Transfer{}, err
	}

	s.logger.Info("transfer executed", "transfer", tr.ID,
		"from", tr.From, "to", tr.To, "amount", tr.Amount)
	return tr, nil
}

// PayInput captures a hub payment against a pending transaction.
type PayInput struct {
	AccountID   string
	Correlation string
	Amount      decimal.Decimal
}

// PayPending settles a pending hub transaction: it checks expiration, amount
// and account identity against the pending record, publishes the paid event
// and debits the source account. The publish is fire-and-forget relative to
// the debit; the credit leg arrives later as a transfer-state event.
func (s *Service) PayPending(ctx context.Context, input PayInput) (Transfer, error) {
	acct, err := s.accounts.FindByID(ctx, input.AccountID)
	if err != nil {
		return Transfer{}, err
	}
	tx, err := s.pending.Get(ctx, input.Correlation)
	if err != nil {
		return Transfer{}, err
	}

	now := s.now()
	if tx.Expired(now) {
		return Transfer{}, fmt.Errorf("%w: %s", ErrExpired, tx.ID)
	}
	if !tx.Amount.Equal(input.Amount) {
		return Transfer{}, fmt.Errorf("%w: expected %s", ErrAmountMismatch, tx.Amount)
	}
	if tx.AccountID != acct.ID {
		return Transfer{}, fmt.Errorf("%w: %s", ErrAccountMismatch, acct.ID)
	}

	valid, err := acct.MovementValid(account.KindPayTransaction, input.Amount, decimal.Zero)
	if err != nil {
		return Transfer{}, err
	}
	if !valid {
		return Transfer{}, fmt.Errorf("%w: account %s", account.ErrInsufficientFunds, acct.ID)
	}

	evt := events.TransactionEvent{
		TransactionID: tx.ID,
		State:         events.TransactionPaid,
		Amount:        input.Amount,
	}
	if err := s.bus.Publish(ctx, events.StreamTransactions, evt); err != nil {
		s.logger.Error("publish paid event", "transaction", tx.ID, "error", err)
	}

	if err := s.applyLeg(ctx, &acct, account.KindPayTransaction, input.Amount, now); err != nil {
		return Transfer{}, err
	}

	tr := Transfer{
		ID:          uuid.NewString(),
		From:        acct.ID,
		Amount:      input.Amount,
		Correlation: tx.ID,
		Date:        now,
	}
	if err := s.transfers.Save(ctx, &tr); err != nil {
		return Transfer{}, err
	}

	s.logger.Info("pending transaction paid", "transaction", tx.ID,
		"account", acct.ID, "amount", input.Amount)
	return tr, nil
}

// CompleteSettlement credits the account named in a transfer-state event and
// republishes the event as completed. Events in any other state are ignored.
// Redelivered events credit again; delivery is at-least-once.
func (s *Service) CompleteSettlement(ctx context.Context, evt events.TransactionEvent) error {
	if evt.State != events.TransactionTransfer {
		return nil
	}

	acct, err := s.accounts.FindByID(ctx, evt.AccountID)
	if err != nil {
		return err
	}

	if err := s.applyLeg(ctx, &acct, account.KindReceiveTransaction, evt.Amount, s.now()); err != nil {
		return err
	}

	evt.State = events.TransactionCompleted
	if err := s.bus.Publish(ctx, events.StreamTransactions, evt); err != nil {
		return err
	}

	s.logger.Info("settlement completed", "transaction", evt.TransactionID,
		"account", acct.ID, "amount", evt.Amount)
	return nil
}

// applyLeg commits one balance change and its movement log entry. The balance
// is persisted before the log entry.
func (s *Service) applyLeg(ctx context.Context, acct *account.Account, kind account.MovementKind, amount decimal.Decimal, at time.Time) error {
	acct.Apply(kind, amount, decimal.Zero)
	if err := s.accounts.Save(ctx, acct); err != nil {
		return err
	}
	mov := movement.Movement{
		ID:        uuid.NewString(),
		Kind:      kind,
		Amount:    amount,
		Fee:       decimal.Zero,
		Date:      at,
		AccountID: acct.ID,
	}
	return s.movements.Save(ctx, &mov)
}

// Get fetches one transfer.
func (s *Service) Get(ctx context.Context, id string) (Transfer, error) {
	return s.transfers.FindByID(ctx, id)
}

// List returns every transfer summary.
func (s *Service) List(ctx context.Context) ([]Transfer, error) {
	return s.transfers.FindAll(ctx)
}

// ListByAccount returns the transfers an account took part in, on either side.
func (s *Service) ListByAccount(ctx context.Context, accountID string) ([]Transfer, error) {
	return s.transfers.FindByAccount(ctx, accountID)
}

// ListByAccountBetween returns an account's transfers inside [from, to].
func (s *Service) ListByAccountBetween(ctx context.Context, accountID string, from, to time.Time) ([]Transfer, error) {
	return s.transfers.FindByAccountBetween(ctx, accountID, from, to)
}

// Delete removes one transfer record without reconciling balances.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.transfers.Delete(ctx, id)
}

// DeleteAll clears the transfer log.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.transfers.DeleteAll(ctx)
}
