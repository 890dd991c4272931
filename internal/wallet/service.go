package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kivubank/accounts/internal/account"
	"github.com/kivubank/accounts/internal/card"
	"github.com/kivubank/accounts/internal/events"
	"github.com/kivubank/accounts/internal/movement"
)

// Service settles peer wallet events against bound debit cards. Handlers run
// under at-least-once delivery; business rejections publish a terminal result
// and acknowledge, only transport failures propagate for redelivery.
type Service struct {
	bindings  BindingStore
	cards     card.Repository
	accounts  account.Repository
	movements movement.Repository
	bus       events.Bus
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds a wallet event service.
func NewService(bindings BindingStore, cards card.Repository, accounts account.Repository,
	movements movement.Repository, bus events.Bus, logger *slog.Logger) *Service {
	return &Service{
		bindings:  bindings,
		cards:     cards,
		accounts:  accounts,
		movements: movements,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

// HandlePayment settles one peer payment event. A payment with a sender
// debits the sender's bound account before the receiver is credited; an
// unbound receiver causes the raw event to be forwarded unresolved. Exactly
// one terminal result event is published per request, except for the
// unbound-receiver forward, which carries no result from this service.
func (s *Service) HandlePayment(ctx context.Context, evt events.WalletPayment) error {
	if evt.From == "" {
		credited, err := s.creditReceiver(ctx, evt)
		if err != nil {
			return err
		}
		if credited {
			return s.publishResult(ctx, evt.To, events.ResultSuccess, "payment received")
		}
		return nil
	}

	if err := s.debitSender(ctx, evt); err != nil {
		if isRejection(err) {
			s.logger.Info("wallet payment rejected", "payment", evt.ID, "from", evt.From, "reason", err)
			return s.publishResult(ctx, evt.From, events.ResultFailed, err.Error())
		}
		return err
	}

	if _, err := s.creditReceiver(ctx, evt); err != nil {
		return err
	}
	return s.publishResult(ctx, evt.From, events.ResultSuccess, "payment sent")
}

// debitSender charges the payment to the sender's bound main account.
func (s *Service) debitSender(ctx context.Context, evt events.WalletPayment) error {
	acct, err := s.boundAccount(ctx, evt.From)
	if err != nil {
		return err
	}

	valid, err := acct.MovementValid(account.KindWalletOut, evt.Amount, decimal.Zero)
	if err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("%w: account %s", account.ErrInsufficientFunds, acct.ID)
	}

	return s.commit(ctx, &acct, account.KindWalletOut, evt.Amount)
}

// creditReceiver credits the receiver's bound main account and forwards the
// event to the wallet hub. An unbound receiver gets the raw event forwarded
// unresolved instead; that is not an error.
func (s *Service) creditReceiver(ctx context.Context, evt events.WalletPayment) (bool, error) {
	acct, err := s.boundAccount(ctx, evt.To)
	if errors.Is(err, ErrNotFound) || errors.Is(err, card.ErrNotFound) {
		s.logger.Info("wallet identity unbound, forwarding", "payment", evt.ID, "to", evt.To)
		return false, s.bus.Publish(ctx, events.StreamWalletForward, evt)
	}
	if err != nil {
		return false, err
	}

	if err := s.commit(ctx, &acct, account.KindWalletIn, evt.Amount); err != nil {
		return false, err
	}
	if err := s.bus.Publish(ctx, events.StreamWalletForward, evt); err != nil {
		return false, err
	}

	s.logger.Info("wallet payment credited", "payment", evt.ID, "to", evt.To,
		"account", acct.ID, "amount", evt.Amount)
	return true, nil
}

// HandleLink processes one card link request: it credits the card's main
// account with the wallet balance carried by the event, records the binding
// and republishes the event as confirmed. A card that cannot be resolved
// republishes a rejection instead.
func (s *Service) HandleLink(ctx context.Context, evt events.LinkEvent) error {
	if evt.State != events.LinkRequested {
		return nil
	}

	linked, err := s.cards.FindByID(ctx, evt.DebitCard)
	if err != nil {
		if errors.Is(err, card.ErrNotFound) {
			return s.republishLink(ctx, evt, events.LinkRejected)
		}
		return err
	}

	acct, err := s.accounts.FindByID(ctx, linked.MainAccount())
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return s.republishLink(ctx, evt, events.LinkRejected)
		}
		return err
	}

	acct.Apply(account.KindWalletIn, evt.Amount, decimal.Zero)
	if err := s.accounts.Save(ctx, &acct); err != nil {
		return err
	}

	if err := s.bindings.Put(ctx, Binding{Phone: evt.Phone, DebitCard: linked.ID}); err != nil {
		return err
	}

	s.logger.Info("wallet linked", "phone", evt.Phone, "card", linked.ID,
		"account", acct.ID, "amount", evt.Amount)
	return s.republishLink(ctx, evt, events.LinkConfirmed)
}

// boundAccount resolves a phone number through its binding and card to the
// card's main account.
func (s *Service) boundAccount(ctx context.Context, phone string) (account.Account, error) {
	binding, err := s.bindings.Get(ctx, phone)
	if err != nil {
		return account.Account{}, err
	}
	bound, err := s.cards.FindByID(ctx, binding.DebitCard)
	if err != nil {
		return account.Account{}, err
	}
	return s.accounts.FindByID(ctx, bound.MainAccount())
}

// commit applies one balance change and its movement log entry.
func (s *Service) commit(ctx context.Context, acct *account.Account, kind account.MovementKind, amount decimal.Decimal) error {
	acct.Apply(kind, amount, decimal.Zero)
	if err := s.accounts.Save(ctx, acct); err != nil {
		return err
	}
	mov := movement.Movement{
		ID:        uuid.NewString(),
		Kind:      kind,
		Amount:    amount,
		Fee:       decimal.Zero,
		Date:      s.now(),
		AccountID: acct.ID,
	}
	return s.movements.Save(ctx, &mov)
}

func (s *Service) publishResult(ctx context.Context, to string, status events.ResultStatus, message string) error {
	return s.bus.Publish(ctx, events.StreamWalletResults, events.WalletResult{
		To:      to,
		Status:  status,
		Message: message,
	})
}

func (s *Service) republishLink(ctx context.Context, evt events.LinkEvent, state events.LinkState) error {
	evt.State = state
	return s.bus.Publish(ctx, events.StreamWalletLinks, evt)
}

// isRejection reports whether the error is a business rejection that should
// terminate the request with a failed result rather than be redelivered.
func isRejection(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, card.ErrNotFound) ||
		errors.Is(err, account.ErrNotFound) ||
		errors.Is(err, account.ErrInsufficientFunds)
}
