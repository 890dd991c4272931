package movement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kivubank/accounts/internal/account"
	"github.com/kivubank/accounts/internal/logging"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	svc      *Service
	accounts account.Repository
	store    Repository
}

func setup(t *testing.T, at time.Time) fixture {
	t.Helper()
	accounts := account.NewMemoryRepository()
	store := NewMemoryRepository()
	svc := NewService(store, accounts, logging.Discard())
	svc.now = func() time.Time { return at }
	return fixture{svc: svc, accounts: accounts, store: store}
}

func (f fixture) seedAccount(t *testing.T, acct account.Account) account.Account {
	t.Helper()
	if err := f.accounts.Save(context.Background(), &acct); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return acct
}

func (f fixture) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	acct, err := f.accounts.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load account: %v", err)
	}
	return acct.Balance
}

var midMonth = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestSubmitDeposit(t *testing.T) {
	f := setup(t, midMonth)
	f.seedAccount(t, account.Account{ID: "a1", Type: account.TypeSaving, Balance: dec("100"), MovementLimit: 10})

	mov, err := f.svc.Submit(context.Background(), SubmitInput{AccountID: "a1", Kind: account.KindDeposit, Amount: dec("50")})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !mov.Fee.IsZero() {
		t.Fatalf("expected no fee within the monthly allowance, got %s", mov.Fee)
	}
	if got := f.balance(t, "a1"); !got.Equal(dec("150")) {
		t.Fatalf("expected balance 150 got %s", got)
	}
}

func TestSubmitInsufficientFundsLeavesBalanceUnchanged(t *testing.T) {
	f := setup(t, midMonth)
	f.seedAccount(t, account.Account{ID: "a1", Type: account.TypeSaving, Balance: dec("30"), MovementLimit: 10})

	_, err := f.svc.Submit(context.Background(), SubmitInput{AccountID: "a1", Kind: account.KindWithdraw, Amount: dec("31")})
	if !errors.Is(err, account.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	if got := f.balance(t, "a1"); !got.Equal(dec("30")) {
		t.Fatalf("balance changed on rejected movement: %s", got)
	}

	movs, _ := f.store.FindByAccount(context.Background(), "a1")
	if len(movs) != 0 {
		t.Fatalf("expected no movement records, got %d", len(movs))
	}
}

func TestSubmitFixedDepositRestrictedToMovementDay(t *testing.T) {
	f := setup(t, midMonth) // day 10
	f.seedAccount(t, account.Account{ID: "fd", Type: account.TypeFixedDeposit, Balance: dec("100"), MovementLimit: 1, MovementDay: 15})

	_, err := f.svc.Submit(context.Background(), SubmitInput{AccountID: "fd", Kind: account.KindDeposit, Amount: dec("10")})
	if !errors.Is(err, account.ErrMovementDay) {
		t.Fatalf("expected movement day rejection, got %v", err)
	}

	f.svc.now = func() time.Time { return time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC) }
	if _, err := f.svc.Submit(context.Background(), SubmitInput{AccountID: "fd", Kind: account.KindDeposit, Amount: dec("10")}); err != nil {
		t.Fatalf("submit on movement day: %v", err)
	}
}

func TestSubmitSurchargeBeyondMonthlyLimit(t *testing.T) {
	f := setup(t, midMonth)
	f.seedAccount(t, account.Account{ID: "a1", Type: account.TypeSaving, Balance: dec("1000"), MovementLimit: 2})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		mov, err := f.svc.Submit(ctx, SubmitInput{AccountID: "a1", Kind: account.KindDeposit, Amount: dec("10")})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if !mov.Fee.IsZero() {
			t.Fatalf("movement %d within the allowance should be free, fee %s", i, mov.Fee)
		}
	}

	mov, err := f.svc.Submit(ctx, SubmitInput{AccountID: "a1", Kind: account.KindDeposit, Amount: dec("10")})
	if err != nil {
		t.Fatalf("surcharged submit: %v", err)
	}
	if !mov.Fee.Equal(dec("5")) {
		t.Fatalf("expected saving surcharge 5 got %s", mov.Fee)
	}

	// 1000 + 10 + 10 + (10 - 5)
	if got := f.balance(t, "a1"); !got.Equal(dec("1025")) {
		t.Fatalf("expected balance 1025 got %s", got)
	}
}

func TestSubmitSurchargeCountsAgainstFunds(t *testing.T) {
	f := setup(t, midMonth)
	f.seedAccount(t, account.Account{ID: "a1", Type: account.TypeSaving, Balance: dec("100"), MovementLimit: 1})

	ctx := context.Background()
	if _, err := f.svc.Submit(ctx, SubmitInput{AccountID: "a1", Kind: account.KindDeposit, Amount: dec("0")}); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// Balance 100, surcharge 5: withdrawing 96 needs 101.
	_, err := f.svc.Submit(ctx, SubmitInput{AccountID: "a1", Kind: account.KindWithdraw, Amount: dec("96")})
	if !errors.Is(err, account.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds including the surcharge, got %v", err)
	}
}

func TestAmendSameEffectIsNoOp(t *testing.T) {
	f := setup(t, midMonth)
	f.seedAccount(t, account.Account{ID: "a1", Type: account.TypeSaving, Balance: dec("120"), MovementLimit: 10})

	stored := Movement{ID: uuid.NewString(), Kind: account.KindDeposit, Amount: dec("20"), Date: midMonth, AccountID: "a1"}
	if err := f.store.Save(context.Background(), &stored); err != nil {
		t.Fatalf("seed movement: %v", err)
	}

	mov, err := f.svc.Amend(context.Background(), stored.ID, AmendInput{AccountID: "a1", Kind: account.KindDeposit, Amount: dec("20")})
	if err != nil {
		t.Fatalf("amend: %v", err)
	}

	if got := f.balance(t, "a1"); !got.Equal(dec("120")) {
		t.Fatalf("zero-magnitude difference must not move the balance, got %s", got)
	}
	if !mov.Amount.Equal(dec("20")) || mov.Kind != account.KindDeposit {
		t.Fatalf("unexpected amended record %s %s", mov.Kind, mov.Amount)
	}
}

func TestAmendAppliesDifference(t *testing.T) {
	f := setup(t, midMonth)
	f.seedAccount(t, account.Account{ID: "a1", Type: account.TypeSaving, Balance: dec("120"), MovementLimit: 10})

	stored := Movement{ID: uuid.NewString(), Kind: account.KindDeposit, Amount: dec("20"), Date: midMonth, AccountID: "a1"}
	if err := f.store.Save(context.Background(), &stored); err != nil {
		t.Fatalf("seed movement: %v", err)
	}

	// Deposit 20 becomes withdraw 30: difference is -50.
	mov, err := f.svc.Amend(context.Background(), stored.ID, AmendInput{AccountID: "a1", Kind: account.KindWithdraw, Amount: dec("30")})
	if err != nil {
		t.Fatalf("amend: %v", err)
	}

	if got := f.balance(t, "a1"); !got.Equal(dec("70")) {
		t.Fatalf("expected balance 70 got %s", got)
	}
	if mov.Kind != account.KindWithdraw || !mov.Amount.Equal(dec("30")) {
		t.Fatalf("stored record not overwritten: %s %s", mov.Kind, mov.Amount)
	}
}

func TestDailyAverageBalance(t *testing.T) {
	f := setup(t, midMonth) // day 10
	f.seedAccount(t, account.Account{ID: "a1", Type: account.TypeSaving, Balance: dec("100"), MovementLimit: 10})

	// One deposit of 50 on day 6, so the opening balance was 50.
	dep := Movement{
		ID:        uuid.NewString(),
		Kind:      account.KindDeposit,
		Amount:    dec("50"),
		Date:      time.Date(2026, time.March, 6, 9, 0, 0, 0, time.UTC),
		AccountID: "a1",
	}
	if err := f.store.Save(context.Background(), &dep); err != nil {
		t.Fatalf("seed movement: %v", err)
	}

	avg, err := f.svc.DailyAverageBalance(context.Background(), "a1")
	if err != nil {
		t.Fatalf("daily average: %v", err)
	}

	// (50*10 + 50*5) / 10 = 75
	if !avg.Equal(dec("75")) {
		t.Fatalf("expected average 75 got %s", avg)
	}
}

func TestFeesBetween(t *testing.T) {
	f := setup(t, midMonth)
	f.seedAccount(t, account.Account{ID: "a1", Type: account.TypeSaving, Balance: dec("100"), MovementLimit: 10})

	free := Movement{ID: uuid.NewString(), Kind: account.KindDeposit, Amount: dec("10"), Date: midMonth, AccountID: "a1"}
	charged := Movement{ID: uuid.NewString(), Kind: account.KindDeposit, Amount: dec("10"), Fee: dec("5"), Date: midMonth.Add(time.Hour), AccountID: "a1"}
	for _, mov := range []*Movement{&free, &charged} {
		if err := f.store.Save(context.Background(), mov); err != nil {
			t.Fatalf("seed movement: %v", err)
		}
	}

	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC)
	fees, err := f.svc.FeesBetween(context.Background(), "a1", from, to)
	if err != nil {
		t.Fatalf("fees: %v", err)
	}

	if len(fees) != 1 {
		t.Fatalf("expected one fee entry, got %d", len(fees))
	}
	if !fees[0].Fee.Equal(dec("5")) {
		t.Fatalf("expected fee 5 got %s", fees[0].Fee)
	}
}
