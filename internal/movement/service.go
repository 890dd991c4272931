package movement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kivubank/accounts/internal/account"
)

// Service validates, prices and commits single movements against accounts.
type Service struct {
	movements Repository
	accounts  account.Repository
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds a movement service.
func NewService(movements Repository, accounts account.Repository, logger *slog.Logger) *Service {
	return &Service{movements: movements, accounts: accounts, logger: logger, now: time.Now}
}

// SubmitInput captures a requested movement.
type SubmitInput struct {
	AccountID string
	Kind      account.MovementKind
	Amount    decimal.Decimal
}

// Submit validates and applies one movement. The account's fixed-schedule
// constraint rejects outright; the monthly limit only prices a surcharge.
// The account balance is persisted before the movement log entry, so a crash
// between the two writes leaves a balance change with no log entry.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (Movement, error) {
	if input.Amount.IsNegative() {
		return Movement{}, fmt.Errorf("%w: amount cannot be negative", account.ErrValidation)
	}

	acct, err := s.accounts.FindByID(ctx, input.AccountID)
	if err != nil {
		return Movement{}, err
	}

	now := s.now()
	from, to := monthWindow(now)
	countThisMonth, err := s.movements.CountByAccountBetween(ctx, input.AccountID, from, to)
	if err != nil {
		return Movement{}, err
	}

	if !acct.CanMutateOn(now) {
		return Movement{}, fmt.Errorf("%w: day %d of each month", account.ErrMovementDay, acct.MovementDay)
	}

	fee := decimal.Zero
	if !acct.WithinMonthlyLimit(countThisMonth) {
		fee = account.SurchargeFeeFor(acct.Type)
	}

	valid, err := acct.MovementValid(input.Kind, input.Amount, fee)
	if err != nil {
		return Movement{}, err
	}
	if !valid {
		return Movement{}, fmt.Errorf("%w: account %s", account.ErrInsufficientFunds, acct.ID)
	}

	acct.Apply(input.Kind, input.Amount, fee)
	if err := s.accounts.Save(ctx, &acct); err != nil {
		return Movement{}, err
	}

	mov := Movement{
		ID:        uuid.NewString(),
		Kind:      input.Kind,
		Amount:    input.Amount,
		Fee:       fee,
		Date:      now,
		AccountID: acct.ID,
	}
	if err := s.movements.Save(ctx, &mov); err != nil {
		return Movement{}, err
	}

	s.logger.Info("movement applied", "movement", mov.ID, "account", acct.ID,
		"kind", mov.Kind, "amount", mov.Amount, "fee", mov.Fee)
	return mov, nil
}

// AmendInput captures the replacement values for a stored movement.
type AmendInput struct {
	AccountID string
	Kind      account.MovementKind
	Amount    decimal.Decimal
}

// Amend reconciles the account with the difference between the stored
// movement's effect and the requested one, then overwrites the stored record
// with the requested values. The balance must still reflect the original
// movement; amendments do not account for intervening activity.
func (s *Service) Amend(ctx context.Context, movementID string, input AmendInput) (Movement, error) {
	stored, err := s.movements.FindByID(ctx, movementID)
	if err != nil {
		return Movement{}, err
	}

	acct, err := s.accounts.FindByID(ctx, input.AccountID)
	if err != nil {
		return Movement{}, err
	}

	diffKind, diffAmount := differenceMovement(stored, input.Kind, input.Amount)

	valid, err := acct.MovementValid(diffKind, diffAmount, decimal.Zero)
	if err != nil {
		return Movement{}, err
	}
	if !valid {
		return Movement{}, fmt.Errorf("%w: account %s", account.ErrInsufficientFunds, acct.ID)
	}

	acct.Apply(diffKind, diffAmount, decimal.Zero)
	if err := s.accounts.Save(ctx, &acct); err != nil {
		return Movement{}, err
	}

	stored.Kind = input.Kind
	stored.Amount = input.Amount
	stored.Fee = decimal.Zero
	if err := s.movements.Save(ctx, &stored); err != nil {
		return Movement{}, err
	}

	s.logger.Info("movement amended", "movement", stored.ID, "account", acct.ID,
		"kind", stored.Kind, "amount", stored.Amount)
	return stored, nil
}

// differenceMovement derives the synthetic movement that reconciles the
// account balance from the stored movement's effect to the requested one:
// a deposit when the amendment adds funds, a withdrawal when it removes them.
func differenceMovement(stored Movement, newKind account.MovementKind, newAmount decimal.Decimal) (account.MovementKind, decimal.Decimal) {
	newSigned := newKind.Sign(newAmount)
	diff := newSigned.Sub(stored.Signed())
	if diff.IsNegative() {
		return account.KindWithdraw, diff.Abs()
	}
	return account.KindDeposit, diff
}

// Get fetches one movement.
func (s *Service) Get(ctx context.Context, id string) (Movement, error) {
	return s.movements.FindByID(ctx, id)
}

// List returns the whole movement log.
func (s *Service) List(ctx context.Context) ([]Movement, error) {
	return s.movements.FindAll(ctx)
}

// ListByAccount returns an account's movements.
func (s *Service) ListByAccount(ctx context.Context, accountID string) ([]Movement, error) {
	return s.movements.FindByAccount(ctx, accountID)
}

// Delete removes one movement record without reconciling the balance.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.movements.Delete(ctx, id)
}

// DeleteAll clears the movement log.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.movements.DeleteAll(ctx)
}

// DailyAverageBalance reconstructs the month-to-date average balance from the
// current balance and the month's movement log, weighting each movement by
// the number of days it has been in effect.
func (s *Service) DailyAverageBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	acct, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	now := s.now()
	from, to := monthWindow(now)
	movs, err := s.movements.FindByAccountBetween(ctx, accountID, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	daysSoFar := decimal.NewFromInt(int64(now.Day()))

	sumSigned := decimal.Zero
	weighted := decimal.Zero
	for _, mov := range movs {
		signed := mov.Signed()
		sumSigned = sumSigned.Add(signed)
		daysInEffect := decimal.NewFromInt(int64(now.Day() - mov.Day() + 1))
		weighted = weighted.Add(signed.Mul(daysInEffect))
	}

	initial := acct.Balance.Sub(sumSigned).Mul(daysSoFar)
	return initial.Add(weighted).Div(daysSoFar), nil
}

// DailyAverageBalancesByClient computes the month-to-date average balance for
// each of a client's accounts.
func (s *Service) DailyAverageBalancesByClient(ctx context.Context, clientID string) (map[string]decimal.Decimal, error) {
	accounts, err := s.accounts.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal, len(accounts))
	for _, acct := range accounts {
		avg, err := s.DailyAverageBalance(ctx, acct.ID)
		if err != nil {
			return nil, err
		}
		out[acct.ID] = avg
	}
	return out, nil
}

// FeeEntry is one charged transaction fee.
type FeeEntry struct {
	Date time.Time
	Fee  decimal.Decimal
}

// FeesBetween lists the transaction fees charged to an account inside
// [from, to].
func (s *Service) FeesBetween(ctx context.Context, accountID string, from, to time.Time) ([]FeeEntry, error) {
	movs, err := s.movements.FindByAccountBetween(ctx, accountID, from, to)
	if err != nil {
		return nil, err
	}

	var out []FeeEntry
	for _, mov := range movs {
		if mov.Fee.IsPositive() {
			out = append(out, FeeEntry{Date: mov.Date, Fee: mov.Fee})
		}
	}
	return out, nil
}

// monthWindow returns the first and last instant of t's calendar month.
func monthWindow(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return first, last
}
