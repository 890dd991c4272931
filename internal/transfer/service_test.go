package transfer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kivubank/accounts/internal/account"
	"github.com/kivubank/accounts/internal/events"
	"github.com/kivubank/accounts/internal/logging"
	"github.com/kivubank/accounts/internal/movement"
	"github.com/kivubank/accounts/internal/pending"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// captureBus records published events instead of delivering them.
type captureBus struct {
	streams  []string
	payloads []any
}

func (b *captureBus) Publish(_ context.Context, stream string, payload any) error {
	b.streams = append(b.streams, stream)
	b.payloads = append(b.payloads, payload)
	return nil
}

type fixture struct {
	svc       *Service
	accounts  account.Repository
	movements movement.Repository
	transfers Repository
	pending   pending.Store
	bus       *captureBus
}

func setup(t *testing.T) fixture {
	t.Helper()
	accounts := account.NewMemoryRepository()
	movements := movement.NewMemoryRepository()
	transfers := NewMemoryRepository()
	store := pending.NewMemoryStore()
	bus := &captureBus{}
	svc := NewService(transfers, movements, accounts, store, bus, logging.Discard())
	return fixture{svc: svc, accounts: accounts, movements: movements, transfers: transfers, pending: store, bus: bus}
}

func (f fixture) seedAccount(t *testing.T, id, balance string) {
	t.Helper()
	acct := account.Account{ID: id, ClientID: "c-" + id, Type: account.TypeCurrent, Balance: dec(balance)}
	if err := f.accounts.Save(context.Background(), &acct); err != nil {
		t.Fatalf("seed account: %v", err)
	}
}

func (f fixture) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	acct, err := f.accounts.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load account: %v", err)
	}
	return acct.Balance
}

func TestExecuteTransfer(t *testing.T) {
	f := setup(t)
	f.seedAccount(t, "a1", "100")
	f.seedAccount(t, "a2", "100")

	tr, err := f.svc.Execute(context.Background(), ExecuteInput{From: "a1", To: "a2", Amount: dec("20")})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if got := f.balance(t, "a1"); !got.Equal(dec("80")) {
		t.Fatalf("expected source balance 80 got %s", got)
	}
	if got := f.balance(t, "a2"); !got.Equal(dec("120")) {
		t.Fatalf("expected destination balance 120 got %s", got)
	}

	movs, _ := f.movements.FindAll(context.Background())
	if len(movs) != 2 {
		t.Fatalf("expected two movements, got %d", len(movs))
	}
	kinds := map[account.MovementKind]bool{}
	for _, mov := range movs {
		kinds[mov.Kind] = true
	}
	if !kinds[account.KindTransferOut] || !kinds[account.KindTransferIn] {
		t.Fatalf("expected transfer_out and transfer_in legs, got %v", kinds)
	}

	stored, err := f.transfers.FindByID(context.Background(), tr.ID)
	if err != nil {
		t.Fatalf("load transfer: %v", err)
	}
	if stored.From != "a1" || stored.To != "a2" || !stored.Amount.Equal(dec("20")) {
		t.Fatalf("unexpected transfer record %+v", stored)
	}
}

func TestExecuteInsufficientFunds(t *testing.T) {
	f := setup(t)
	f.seedAccount(t, "a1", "10")
	f.seedAccount(t, "a2", "100")

	_, err := f.svc.Execute(context.Background(), ExecuteInput{From: "a1", To: "a2", Amount: dec("20")})
	if !errors.Is(err, account.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	if got := f.balance(t, "a1"); !got.Equal(dec("10")) {
		t.Fatalf("source balance changed: %s", got)
	}
	if got := f.balance(t, "a2"); !got.Equal(dec("100")) {
		t.Fatalf("destination balance changed: %s", got)
	}
}

func TestExecuteRejectsSelfTransfer(t *testing.T) {
	f := setup(t)
	f.seedAccount(t, "a1", "100")

	_, err := f.svc.Execute(context.Background(), ExecuteInput{From: "a1", To: "a1", Amount: dec("20")})
	if !errors.Is(err, account.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func seedPending(t *testing.T, store pending.Store, tx pending.Transaction) {
	t.Helper()
	if err := store.Put(context.Background(), tx, time.Minute); err != nil {
		t.Fatalf("seed pending: %v", err)
	}
}

func TestPayPending(t *testing.T) {
	f := setup(t)
	f.seedAccount(t, "a1", "100")
	seedPending(t, f.pending, pending.Transaction{
		ID:         "corr1",
		State:      pending.StateRequested,
		Amount:     dec("25"),
		AccountID:  "a1",
		Expiration: time.Now().Add(time.Minute),
	})

	tr, err := f.svc.PayPending(context.Background(), PayInput{AccountID: "a1", Correlation: "corr1", Amount: dec("25")})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}

	if got := f.balance(t, "a1"); !got.Equal(dec("75")) {
		t.Fatalf("expected balance 75 got %s", got)
	}
	if tr.To != "" || tr.Correlation != "corr1" {
		t.Fatalf("expected hub leg with correlation corr1, got %+v", tr)
	}

	if len(f.bus.streams) != 1 || f.bus.streams[0] != events.StreamTransactions {
		t.Fatalf("expected one transaction event, got %v", f.bus.streams)
	}
	evt := f.bus.payloads[0].(events.TransactionEvent)
	if evt.State != events.TransactionPaid || evt.TransactionID != "corr1" {
		t.Fatalf("unexpected event %+v", evt)
	}

	movs, _ := f.movements.FindByAccount(context.Background(), "a1")
	if len(movs) != 1 || movs[0].Kind != account.KindPayTransaction {
		t.Fatalf("expected one pay_transaction movement, got %v", movs)
	}
}

func TestPayPendingExpired(t *testing.T) {
	f := setup(t)
	f.seedAccount(t, "a1", "100")
	seedPending(t, f.pending, pending.Transaction{
		ID:         "corr1",
		State:      pending.StateRequested,
		Amount:     dec("999"), // mismatch must not mask expiration
		AccountID:  "other",
		Expiration: time.Now().Add(-time.Second),
	})

	_, err := f.svc.PayPending(context.Background(), PayInput{AccountID: "a1", Correlation: "corr1", Amount: dec("25")})
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected expired, got %v", err)
	}
	if len(f.bus.streams) != 0 {
		t.Fatalf("no event should be published on rejection, got %v", f.bus.streams)
	}
}

func TestPayPendingAmountMismatch(t *testing.T) {
	f := setup(t)
	f.seedAccount(t, "a1", "100")
	seedPending(t, f.pending, pending.Transaction{
		ID: "corr1", State: pending.StateRequested, Amount: dec("25"),
		AccountID: "a1", Expiration: time.Now().Add(time.Minute),
	})

	_, err := f.svc.PayPending(context.Background(), PayInput{AccountID: "a1", Correlation: "corr1", Amount: dec("24")})
	if !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("expected amount mismatch, got %v", err)
	}
	if got := f.balance(t, "a1"); !got.Equal(dec("100")) {
		t.Fatalf("balance changed on rejection: %s", got)
	}
}

func TestPayPendingAccountMismatch(t *testing.T) {
	f := setup(t)
	f.seedAccount(t, "a1", "100")
	seedPending(t, f.pending, pending.Transaction{
		ID: "corr1", State: pending.StateRequested, Amount: dec("25"),
		AccountID: "someone-else", Expiration: time.Now().Add(time.Minute),
	})

	_, err := f.svc.PayPending(context.Background(), PayInput{AccountID: "a1", Correlation: "corr1", Amount: dec("25")})
	if !errors.Is(err, ErrAccountMismatch) {
		t.Fatalf("expected account mismatch, got %v", err)
	}
}

func TestPayPendingUnknownCorrelation(t *testing.T) {
	f := setup(t)
	f.seedAccount(t, "a1", "100")

	_, err := f.svc.PayPending(context.Background(), PayInput{AccountID: "a1", Correlation: "ghost", Amount: dec("25")})
	if !errors.Is(err, pending.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCompleteSettlementCreditsAndRepublishes(t *testing.T) {
	f := setup(t)
	f.seedAccount(t, "a2", "10")

	evt := events.TransactionEvent{
		TransactionID: "corr1",
		State:         events.TransactionTransfer,
		AccountID:     "a2",
		Amount:        dec("25"),
	}
	if err := f.svc.CompleteSettlement(context.Background(), evt); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if got := f.balance(t, "a2"); !got.Equal(dec("35")) {
		t.Fatalf("expected balance 35 got %s", got)
	}

	movs, _ := f.movements.FindByAccount(context.Background(), "a2")
	if len(movs) != 1 || movs[0].Kind != account.KindReceiveTransaction {
		t.Fatalf("expected one receive_transaction movement, got %v", movs)
	}

	if len(f.bus.payloads) != 1 {
		t.Fatalf("expected one republished event, got %d", len(f.bus.payloads))
	}
	out := f.bus.payloads[0].(events.TransactionEvent)
	if out.State != events.TransactionCompleted {
		t.Fatalf("expected completed state, got %s", out.State)
	}
}

func TestCompleteSettlementIgnoresOtherStates(t *testing.T) {
	f := setup(t)
	f.seedAccount(t, "a2", "10")

	evt := events.TransactionEvent{TransactionID: "corr1", State: events.TransactionPaid, AccountID: "a2", Amount: dec("25")}
	if err := f.svc.CompleteSettlement(context.Background(), evt); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if got := f.balance(t, "a2"); !got.Equal(dec("10")) {
		t.Fatalf("balance changed for ignored state: %s", got)
	}
	if len(f.bus.payloads) != 0 {
		t.Fatalf("nothing should be republished, got %d events", len(f.bus.payloads))
	}
}
