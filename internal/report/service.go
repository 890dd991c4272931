// Package report composes account statements out of the ledger stores: the
// account snapshot, its cards, and the movements, fees and transfers of a
// reporting period.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kivubank/accounts/internal/account"
	"github.com/kivubank/accounts/internal/card"
	"github.com/kivubank/accounts/internal/movement"
	"github.com/kivubank/accounts/internal/transfer"
)

// Statement is one account's activity over a reporting period.
type Statement struct {
	Account   account.Account
	Cards     []card.DebitCard
	Movements []movement.Movement
	Transfers []transfer.Transfer
	TotalFees decimal.Decimal
	From      time.Time
	To        time.Time
}

// Service composes statements from the entity stores.
type Service struct {
	accounts  account.Repository
	cards     card.Repository
	movements movement.Repository
	transfers transfer.Repository
}

// NewService builds a report service.
func NewService(accounts account.Repository, cards card.Repository,
	movements movement.Repository, transfers transfer.Repository) *Service {
	return &Service{accounts: accounts, cards: cards, movements: movements, transfers: transfers}
}

// Statement assembles one account's statement for [from, to].
func (s *Service) Statement(ctx context.Context, accountID string, from, to time.Time) (Statement, error) {
	acct, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return Statement{}, err
	}

	cards, err := s.cardsFor(ctx, acct)
	if err != nil {
		return Statement{}, err
	}

	movs, err := s.movements.FindByAccountBetween(ctx, accountID, from, to)
	if err != nil {
		return Statement{}, err
	}

	trs, err := s.transfers.FindByAccountBetween(ctx, accountID, from, to)
	if err != nil {
		return Statement{}, err
	}

	fees := decimal.Zero
	for _, mov := range movs {
		fees = fees.Add(mov.Fee)
	}

	return Statement{
		Account:   acct,
		Cards:     cards,
		Movements: movs,
		Transfers: trs,
		TotalFees: fees,
		From:      from,
		To:        to,
	}, nil
}

// StatementsByClient assembles a statement per account the client owns.
func (s *Service) StatementsByClient(ctx context.Context, clientID string, from, to time.Time) ([]Statement, error) {
	accounts, err := s.accounts.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	out := make([]Statement, 0, len(accounts))
	for _, acct := range accounts {
		st, err := s.Statement(ctx, acct.ID, from, to)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// cardsFor lists the client's cards that include the account.
func (s *Service) cardsFor(ctx context.Context, acct account.Account) ([]card.DebitCard, error) {
	owned, err := s.cards.FindByClient(ctx, acct.ClientID)
	if err != nil {
		return nil, err
	}

	var out []card.DebitCard
	for _, c := range owned {
		for _, id := range c.Accounts {
			if id == acct.ID {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}
