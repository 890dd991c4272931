package card

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kivubank/accounts/internal/account"
	"github.com/kivubank/accounts/internal/movement"
)

const lastMovementsLimit = 10

// Service manages debit cards and runs the waterfall settlement that pays a
// card charge across its linked accounts.
type Service struct {
	cards     Repository
	accounts  account.Repository
	movements movement.Repository
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds a card service.
func NewService(cards Repository, accounts account.Repository, movements movement.Repository, logger *slog.Logger) *Service {
	return &Service{cards: cards, accounts: accounts, movements: movements, logger: logger, now: time.Now}
}

// CreateInput captures the data needed to issue a card.
type CreateInput struct {
	Number      string
	ClientID    string
	MainAccount string
}

// Create issues a debit card bound to a main account the client owns.
func (s *Service) Create(ctx context.Context, input CreateInput) (DebitCard, error) {
	if err := s.checkAccountOwnership(ctx, input.MainAccount, input.ClientID); err != nil {
		return DebitCard{}, err
	}

	if _, err := s.cards.FindByNumber(ctx, input.Number); err == nil {
		return DebitCard{}, fmt.Errorf("%w: %s", ErrNumberInUse, input.Number)
	} else if !errors.Is(err, ErrNotFound) {
		return DebitCard{}, err
	}

	card := DebitCard{
		ID:       uuid.NewString(),
		Number:   input.Number,
		ClientID: input.ClientID,
		Accounts: []string{input.MainAccount},
	}
	if err := s.cards.Save(ctx, &card); err != nil {
		return DebitCard{}, err
	}

	s.logger.Info("debit card issued", "card", card.ID, "client", card.ClientID)
	return card, nil
}

// LinkInput captures a request to append an account to a card's waterfall.
type LinkInput struct {
	Number    string
	ClientID  string
	AccountID string
}

// Link appends an account the client owns to the end of the card's ordered
// account list.
func (s *Service) Link(ctx context.Context, input LinkInput) (DebitCard, error) {
	if err := s.checkAccountOwnership(ctx, input.AccountID, input.ClientID); err != nil {
		return DebitCard{}, err
	}

	card, err := s.cards.FindByNumber(ctx, input.Number)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DebitCard{}, fmt.Errorf("%w: %s", ErrNotIssued, input.Number)
		}
		return DebitCard{}, err
	}

	card.Accounts = append(card.Accounts, input.AccountID)
	if err := s.cards.Save(ctx, &card); err != nil {
		return DebitCard{}, err
	}
	return card, nil
}

// SpendInput captures a card charge settled by the waterfall.
type SpendInput struct {
	CardID string
	Kind   account.MovementKind
	Amount decimal.Decimal
}

// Spend drains the requested amount across the card's linked accounts in
// list order, fully consuming each balance before advancing. If the linked
// balances cannot cover the amount no account is touched. One movement is
// persisted per account actually drawn from.
func (s *Service) Spend(ctx context.Context, input SpendInput) ([]movement.Movement, error) {
	if !input.Kind.Outbound() {
		return nil, fmt.Errorf("%w: card charges must use an outbound kind", account.ErrValidation)
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", account.ErrValidation)
	}

	card, err := s.cards.FindByID(ctx, input.CardID)
	if err != nil {
		return nil, err
	}

	linked := make([]account.Account, 0, len(card.Accounts))
	total := decimal.Zero
	for _, id := range card.Accounts {
		acct, err := s.accounts.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		linked = append(linked, acct)
		total = total.Add(acct.Balance)
	}

	if total.LessThan(input.Amount) {
		return nil, fmt.Errorf("%w: linked accounts hold %s, charge is %s",
			account.ErrInsufficientFunds, total, input.Amount)
	}

	movements := make([]movement.Movement, 0, len(linked))
	remaining := input.Amount
	for i := range linked {
		if !remaining.IsPositive() {
			break
		}
		acct := &linked[i]

		draw := remaining
		if remaining.GreaterThan(acct.Balance) {
			draw = acct.Balance
		}
		remaining = remaining.Sub(draw)

		acct.Apply(input.Kind, draw, decimal.Zero)
		if err := s.accounts.Save(ctx, acct); err != nil {
			return movements, err
		}

		mov := movement.Movement{
			ID:        uuid.NewString(),
			Kind:      input.Kind,
			Amount:    draw,
			Fee:       decimal.Zero,
			Date:      s.now(),
			AccountID: acct.ID,
		}
		if err := s.movements.Save(ctx, &mov); err != nil {
			return movements, err
		}
		movements = append(movements, mov)
	}

	s.logger.Info("card charge settled", "card", card.ID, "amount", input.Amount,
		"accounts_touched", len(movements))
	return movements, nil
}

// LastMovements returns the ten most recent card charges across the card's
// linked accounts.
func (s *Service) LastMovements(ctx context.Context, cardID string) ([]movement.Movement, error) {
	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	var out []movement.Movement
	for _, accountID := range card.Accounts {
		movs, err := s.movements.FindByAccount(ctx, accountID)
		if err != nil {
			return nil, err
		}
		for _, mov := range movs {
			if mov.Kind == account.KindPay || mov.Kind == account.KindWithdraw {
				out = append(out, mov)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > lastMovementsLimit {
		out = out[:lastMovementsLimit]
	}
	return out, nil
}

// MainBalance returns the balance of the card's main account.
func (s *Service) MainBalance(ctx context.Context, cardID string) (decimal.Decimal, error) {
	card, err := s.cards.FindByID(ctx, cardID)
	if err != nil {
		return decimal.Zero, err
	}
	acct, err := s.accounts.FindByID(ctx, card.MainAccount())
	if err != nil {
		return decimal.Zero, err
	}
	return acct.Balance, nil
}

// Get fetches one card.
func (s *Service) Get(ctx context.Context, id string) (DebitCard, error) {
	return s.cards.FindByID(ctx, id)
}

// List returns every card.
func (s *Service) List(ctx context.Context) ([]DebitCard, error) {
	return s.cards.FindAll(ctx)
}

// ListByClient returns a client's cards.
func (s *Service) ListByClient(ctx context.Context, clientID string) ([]DebitCard, error) {
	return s.cards.FindByClient(ctx, clientID)
}

// UpdateNumber replaces the card's number.
func (s *Service) UpdateNumber(ctx context.Context, id, number string) (DebitCard, error) {
	card, err := s.cards.FindByID(ctx, id)
	if err != nil {
		return DebitCard{}, err
	}
	card.Number = number
	if err := s.cards.Save(ctx, &card); err != nil {
		return DebitCard{}, err
	}
	return card, nil
}

// Delete removes one card.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.cards.Delete(ctx, id)
}

// DeleteAll removes every card.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.cards.DeleteAll(ctx)
}

func (s *Service) checkAccountOwnership(ctx context.Context, accountID, clientID string) error {
	acct, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acct.ClientID != clientID {
		return fmt.Errorf("%w: account %s", ErrWrongClient, accountID)
	}
	return nil
}
