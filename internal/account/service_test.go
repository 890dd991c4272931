package account

import (
	"context"
	"errors"
	"testing"

	"github.com/kivubank/accounts/internal/client"
	"github.com/kivubank/accounts/internal/logging"
)

func setupService(t *testing.T) (*Service, *client.StaticDirectory) {
	t.Helper()
	directory := client.NewStaticDirectory()
	svc := NewService(NewMemoryRepository(), directory, logging.Discard())
	return svc, directory
}

func TestCreateAssignsPolicy(t *testing.T) {
	svc, directory := setupService(t)
	directory.AddProfile(client.Profile{ID: "c1", Kind: "personal", Tier: "standard"}, false)

	acct, err := svc.Create(context.Background(), CreateInput{ClientID: "c1", Type: TypeSaving})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !acct.MaintenanceFee.IsZero() {
		t.Fatalf("saving accounts are maintenance free, got %s", acct.MaintenanceFee)
	}
	if acct.MovementLimit != 10 {
		t.Fatalf("expected movement limit 10 got %d", acct.MovementLimit)
	}
	if acct.ClientKind != ClientPersonal || acct.ClientTier != TierStandard {
		t.Fatalf("unexpected classification %s/%s", acct.ClientKind, acct.ClientTier)
	}
}

func TestCreateSMECurrentAccountIsFeeFree(t *testing.T) {
	svc, directory := setupService(t)
	directory.AddProfile(client.Profile{ID: "biz", Kind: "business", Tier: "sme"}, true)

	acct, err := svc.Create(context.Background(), CreateInput{ClientID: "biz", Type: TypeCurrent})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !acct.MaintenanceFee.IsZero() {
		t.Fatalf("SME current accounts are fee free, got %s", acct.MaintenanceFee)
	}
}

func TestCreateVIPRequiresCreditCard(t *testing.T) {
	svc, directory := setupService(t)
	directory.AddProfile(client.Profile{ID: "vip", Kind: "personal", Tier: "vip"}, false)

	_, err := svc.Create(context.Background(), CreateInput{ClientID: "vip", Type: TypeSaving})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreatePersonalClientOneAccountPerType(t *testing.T) {
	svc, directory := setupService(t)
	directory.AddProfile(client.Profile{ID: "c1", Kind: "personal", Tier: "standard"}, false)

	if _, err := svc.Create(context.Background(), CreateInput{ClientID: "c1", Type: TypeSaving}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{ClientID: "c1", Type: TypeSaving}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for second saving account, got %v", err)
	}
	// A different product type is still allowed.
	if _, err := svc.Create(context.Background(), CreateInput{ClientID: "c1", Type: TypeCurrent}); err != nil {
		t.Fatalf("different type create: %v", err)
	}
}

func TestCreateBusinessClientMayHoldSeveral(t *testing.T) {
	svc, directory := setupService(t)
	directory.AddProfile(client.Profile{ID: "biz", Kind: "business", Tier: "standard"}, false)

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), CreateInput{ClientID: "biz", Type: TypeCurrent}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
}

func TestCreateUnknownClient(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Create(context.Background(), CreateInput{ClientID: "ghost", Type: TypeSaving})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateFixedDepositRequiresMovementDay(t *testing.T) {
	svc, directory := setupService(t)
	directory.AddProfile(client.Profile{ID: "c1", Kind: "personal", Tier: "standard"}, false)

	_, err := svc.Create(context.Background(), CreateInput{ClientID: "c1", Type: TypeFixedDeposit})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	acct, err := svc.Create(context.Background(), CreateInput{ClientID: "c1", Type: TypeFixedDeposit, MovementDay: 15})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if acct.MovementDay != 15 {
		t.Fatalf("expected movement day 15 got %d", acct.MovementDay)
	}
}

func TestUpdateMovementDayOnlyFixedDeposit(t *testing.T) {
	svc, directory := setupService(t)
	directory.AddProfile(client.Profile{ID: "c1", Kind: "personal", Tier: "standard"}, false)

	saving, err := svc.Create(context.Background(), CreateInput{ClientID: "c1", Type: TypeSaving})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdateMovementDay(context.Background(), saving.ID, 10)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.MovementDay != 0 {
		t.Fatalf("saving accounts carry no movement day, got %d", updated.MovementDay)
	}
}

func TestVersionConflictOnStaleSave(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	acct := Account{ID: "a1", Type: TypeSaving}
	if err := repo.Save(ctx, &acct); err != nil {
		t.Fatalf("initial save: %v", err)
	}

	first, _ := repo.FindByID(ctx, "a1")
	second, _ := repo.FindByID(ctx, "a1")

	if err := repo.Save(ctx, &first); err != nil {
		t.Fatalf("save first copy: %v", err)
	}
	if err := repo.Save(ctx, &second); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}
