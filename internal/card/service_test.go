package card

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kivubank/accounts/internal/account"
	"github.com/kivubank/accounts/internal/logging"
	"github.com/kivubank/accounts/internal/movement"
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
	cards    Repository
	accounts account.Repository
	store    movement.Repository
}

func setup(t *testing.T) fixture {
	t.Helper()
	cards := NewMemoryRepository()
	accounts := account.NewMemoryRepository()
	store := movement.NewMemoryRepository()
	svc := NewService(cards, accounts, store, logging.Discard())
	return fixture{svc: svc, cards: cards, accounts: accounts, store: store}
}

// seedWaterfall creates one client with four linked accounts holding the
// given balances, in order, behind a single card.
func (f fixture) seedWaterfall(t *testing.T, balances ...string) DebitCard {
	t.Helper()
	ctx := context.Background()

	ids := make([]string, 0, len(balances))
	for i, bal := range balances {
		acct := account.Account{
			ID:       string(rune('a'+i)) + "1",
			ClientID: "c1",
			Type:     account.TypeCurrent,
			Balance:  dec(bal),
		}
		if err := f.accounts.Save(ctx, &acct); err != nil {
			t.Fatalf("seed account: %v", err)
		}
		ids = append(ids, acct.ID)
	}

	card := DebitCard{ID: "card1", Number: "4000-1", ClientID: "c1", Accounts: ids}
	if err := f.cards.Save(ctx, &card); err != nil {
		t.Fatalf("seed card: %v", err)
	}
	return card
}

func (f fixture) balances(t *testing.T, card DebitCard) []string {
	t.Helper()
	out := make([]string, 0, len(card.Accounts))
	for _, id := range card.Accounts {
		acct, err := f.accounts.FindByID(context.Background(), id)
		if err != nil {
			t.Fatalf("load account %s: %v", id, err)
		}
		out = append(out, acct.Balance.String())
	}
	return out
}

func TestSpendCoveredByFirstAccount(t *testing.T) {
	f := setup(t)
	card := f.seedWaterfall(t, "50", "30", "20", "10")

	movs, err := f.svc.Spend(context.Background(), SpendInput{CardID: card.ID, Kind: account.KindPay, Amount: dec("30")})
	if err != nil {
		t.Fatalf("spend: %v", err)
	}

	if len(movs) != 1 {
		t.Fatalf("expected one movement, got %d", len(movs))
	}
	if !movs[0].Amount.Equal(dec("30")) {
		t.Fatalf("expected draw 30 got %s", movs[0].Amount)
	}

	want := []string{"20", "30", "20", "10"}
	for i, got := range f.balances(t, card) {
		if got != want[i] {
			t.Fatalf("account %d: expected balance %s got %s", i, want[i], got)
		}
	}
}

func TestSpendDrainsAccountsInOrder(t *testing.T) {
	f := setup(t)
	card := f.seedWaterfall(t, "50", "30", "20", "10")

	movs, err := f.svc.Spend(context.Background(), SpendInput{CardID: card.ID, Kind: account.KindPay, Amount: dec("100")})
	if err != nil {
		t.Fatalf("spend: %v", err)
	}

	// 100 is covered by the first three accounts; the fourth is untouched.
	if len(movs) != 3 {
		t.Fatalf("expected three movements, got %d", len(movs))
	}
	draws := []string{"50", "30", "20"}
	for i, mov := range movs {
		if !mov.Amount.Equal(dec(draws[i])) {
			t.Fatalf("movement %d: expected draw %s got %s", i, draws[i], mov.Amount)
		}
	}

	want := []string{"0", "0", "0", "10"}
	for i, got := range f.balances(t, card) {
		if got != want[i] {
			t.Fatalf("account %d: expected balance %s got %s", i, want[i], got)
		}
	}
}

func TestSpendBeyondTotalRejectedUntouched(t *testing.T) {
	f := setup(t)
	card := f.seedWaterfall(t, "50", "30", "20", "10")

	_, err := f.svc.Spend(context.Background(), SpendInput{CardID: card.ID, Kind: account.KindPay, Amount: dec("120")})
	if !errors.Is(err, account.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	want := []string{"50", "30", "20", "10"}
	for i, got := range f.balances(t, card) {
		if got != want[i] {
			t.Fatalf("account %d: expected balance %s got %s", i, want[i], got)
		}
	}

	movs, _ := f.store.FindAll(context.Background())
	if len(movs) != 0 {
		t.Fatalf("expected no movement records, got %d", len(movs))
	}
}

func TestSpendRequiresOutboundKind(t *testing.T) {
	f := setup(t)
	card := f.seedWaterfall(t, "50")

	_, err := f.svc.Spend(context.Background(), SpendInput{CardID: card.ID, Kind: account.KindDeposit, Amount: dec("10")})
	if !errors.Is(err, account.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRejectsDuplicateNumber(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	acct := account.Account{ID: "a1", ClientID: "c1", Type: account.TypeCurrent}
	if err := f.accounts.Save(ctx, &acct); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	if _, err := f.svc.Create(ctx, CreateInput{Number: "4000-1", ClientID: "c1", MainAccount: "a1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Create(ctx, CreateInput{Number: "4000-1", ClientID: "c1", MainAccount: "a1"}); !errors.Is(err, ErrNumberInUse) {
		t.Fatalf("expected number in use, got %v", err)
	}
}

func TestCreateRejectsForeignAccount(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	acct := account.Account{ID: "a1", ClientID: "someone-else", Type: account.TypeCurrent}
	if err := f.accounts.Save(ctx, &acct); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	_, err := f.svc.Create(ctx, CreateInput{Number: "4000-1", ClientID: "c1", MainAccount: "a1"})
	if !errors.Is(err, ErrWrongClient) {
		t.Fatalf("expected wrong client, got %v", err)
	}
}

func TestLinkAppendsToWaterfall(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, id := range []string{"a1", "a2"} {
		acct := account.Account{ID: id, ClientID: "c1", Type: account.TypeCurrent}
		if err := f.accounts.Save(ctx, &acct); err != nil {
			t.Fatalf("seed account: %v", err)
		}
	}

	card, err := f.svc.Create(ctx, CreateInput{Number: "4000-1", ClientID: "c1", MainAccount: "a1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	card, err = f.svc.Link(ctx, LinkInput{Number: card.Number, ClientID: "c1", AccountID: "a2"})
	if err != nil {
		t.Fatalf("link: %v", err)
	}

	if len(card.Accounts) != 2 || card.Accounts[1] != "a2" {
		t.Fatalf("expected a2 appended, got %v", card.Accounts)
	}
	if card.MainAccount() != "a1" {
		t.Fatalf("main account changed: %s", card.MainAccount())
	}
}

func TestMainBalance(t *testing.T) {
	f := setup(t)
	card := f.seedWaterfall(t, "50", "30")

	bal, err := f.svc.MainBalance(context.Background(), card.ID)
	if err != nil {
		t.Fatalf("main balance: %v", err)
	}
	if !bal.Equal(dec("50")) {
		t.Fatalf("expected 50 got %s", bal)
	}
}
