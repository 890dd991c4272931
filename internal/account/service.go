package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kivubank/accounts/internal/client"
)

// Service owns the account lifecycle: opening after client-profile
// validation, policy assignment, and the few mutations the bank allows.
type Service struct {
	repo      Repository
	directory client.Directory
	logger    *slog.Logger
}

// NewService builds an account service.
func NewService(repo Repository, directory client.Directory, logger *slog.Logger) *Service {
	return &Service{repo: repo, directory: directory, logger: logger}
}

// CreateInput captures the data needed to open an account.
type CreateInput struct {
	ClientID    string
	Type        Type
	Balance     decimal.Decimal
	Holders     []string
	Signers     []string
	MovementDay int
}

// Create opens an account after validating the owning client with the
// remote directory. VIP and SME clients must already hold a credit card;
// personal clients may hold at most one account per product type.
func (s *Service) Create(ctx context.Context, input CreateInput) (Account, error) {
	if input.ClientID == "" {
		return Account{}, fmt.Errorf("%w: client id is mandatory", ErrValidation)
	}
	if input.Balance.IsNegative() {
		return Account{}, fmt.Errorf("%w: opening balance cannot be negative", ErrValidation)
	}
	if input.Type == TypeFixedDeposit && (input.MovementDay < 1 || input.MovementDay > 28) {
		return Account{}, fmt.Errorf("%w: fixed deposit accounts need a movement day between 1 and 28", ErrValidation)
	}

	profile, err := s.directory.Profile(ctx, input.ClientID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return Account{}, fmt.Errorf("%w: client %s", ErrNotFound, input.ClientID)
		}
		return Account{}, fmt.Errorf("lookup client %s: %w", input.ClientID, err)
	}

	kind, err := ParseClientKind(profile.Kind)
	if err != nil {
		return Account{}, err
	}
	tier, err := ParseClientTier(profile.Tier)
	if err != nil {
		return Account{}, err
	}

	if tier == TierVIP || tier == TierSME {
		hasCard, err := s.directory.HasCreditCard(ctx, input.ClientID)
		if err != nil {
			return Account{}, fmt.Errorf("lookup credit cards for %s: %w", input.ClientID, err)
		}
		if !hasCard {
			return Account{}, fmt.Errorf("%w: %s clients must hold a credit card", ErrValidation, tier)
		}
	}

	if kind == ClientPersonal {
		existing, err := s.repo.FindByClientAndType(ctx, input.ClientID, input.Type)
		if err != nil {
			return Account{}, err
		}
		if len(existing) > 0 {
			return Account{}, fmt.Errorf("%w: client already holds a %s account", ErrValidation, input.Type)
		}
	}

	acct := Account{
		ID:             uuid.NewString(),
		ClientID:       input.ClientID,
		ClientKind:     kind,
		ClientTier:     tier,
		Type:           input.Type,
		Balance:        input.Balance,
		MaintenanceFee: MaintenanceFeeFor(input.Type, tier),
		MovementLimit:  MovementLimitFor(input.Type),
		Holders:        input.Holders,
		Signers:        input.Signers,
		MovementDay:    input.MovementDay,
	}

	if err := s.repo.Save(ctx, &acct); err != nil {
		return Account{}, err
	}

	s.logger.Info("account opened", "account", acct.ID, "client", acct.ClientID, "type", acct.Type)
	return acct, nil
}

// Get fetches an account by id.
func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns every account.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.FindAll(ctx)
}

// ListByClient returns a client's accounts.
func (s *Service) ListByClient(ctx context.Context, clientID string) ([]Account, error) {
	return s.repo.FindByClient(ctx, clientID)
}

// UpdateMovementDay changes the contracted movement day. Only fixed deposit
// accounts carry one; everything else is ignored, matching the product rule
// that opened accounts are otherwise immutable.
func (s *Service) UpdateMovementDay(ctx context.Context, id string, day int) (Account, error) {
	acct, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if acct.Type == TypeFixedDeposit {
		if day < 1 || day > 28 {
			return Account{}, fmt.Errorf("%w: movement day must be between 1 and 28", ErrValidation)
		}
		acct.MovementDay = day
		if err := s.repo.Save(ctx, &acct); err != nil {
			return Account{}, err
		}
	}
	return acct, nil
}

// Delete removes an account record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("account deleted", "account", id)
	return nil
}

// DeleteAll removes every account record.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}
