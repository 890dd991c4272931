package account

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestApplyDepositIncreasesByAmountMinusFee(t *testing.T) {
	acct := Account{Type: TypeSaving, Balance: dec("100")}

	acct.Apply(KindDeposit, dec("50"), dec("5"))

	if !acct.Balance.Equal(dec("145")) {
		t.Fatalf("expected balance 145 got %s", acct.Balance)
	}
}

func TestApplyOutboundDebits(t *testing.T) {
	acct := Account{Type: TypeCurrent, Balance: dec("100")}

	acct.Apply(KindWithdraw, dec("30"), dec("0"))

	if !acct.Balance.Equal(dec("70")) {
		t.Fatalf("expected balance 70 got %s", acct.Balance)
	}
}

func TestMovementValid(t *testing.T) {
	acct := Account{Type: TypeSaving, Balance: dec("20")}

	tests := []struct {
		name   string
		kind   MovementKind
		amount string
		fee    string
		want   bool
	}{
		{"deposit always valid", KindDeposit, "1000", "0", true},
		{"withdraw within balance", KindWithdraw, "20", "0", true},
		{"withdraw plus fee exceeds balance", KindWithdraw, "20", "5", false},
		{"transfer out exceeds balance", KindTransferOut, "21", "0", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := acct.MovementValid(tc.kind, dec(tc.amount), dec(tc.fee))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}

func TestMovementValidRejectsMissingKind(t *testing.T) {
	acct := Account{Type: TypeSaving, Balance: dec("20")}

	if _, err := acct.MovementValid("", dec("10"), decimal.Zero); err == nil {
		t.Fatal("expected validation error for missing kind")
	}
	if _, err := acct.MovementValid(KindDeposit, dec("-1"), decimal.Zero); err == nil {
		t.Fatal("expected validation error for negative amount")
	}
}

func TestCanMutateOn(t *testing.T) {
	fixed := Account{Type: TypeFixedDeposit, MovementDay: 15}
	onDay := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	offDay := time.Date(2026, time.March, 16, 10, 0, 0, 0, time.UTC)

	if !fixed.CanMutateOn(onDay) {
		t.Fatal("expected mutation allowed on the movement day")
	}
	if fixed.CanMutateOn(offDay) {
		t.Fatal("expected mutation rejected off the movement day")
	}

	saving := Account{Type: TypeSaving}
	if !saving.CanMutateOn(offDay) {
		t.Fatal("saving accounts have no movement day restriction")
	}
}

func TestWithinMonthlyLimit(t *testing.T) {
	unlimited := Account{Type: TypeCurrent, MovementLimit: 0}
	if !unlimited.WithinMonthlyLimit(10_000) {
		t.Fatal("limit zero means unlimited")
	}

	limited := Account{Type: TypeSaving, MovementLimit: 10}
	if !limited.WithinMonthlyLimit(9) {
		t.Fatal("expected movement 10 of 10 to fit")
	}
	if limited.WithinMonthlyLimit(10) {
		t.Fatal("expected movement 11 of 10 to exceed the limit")
	}
}

func TestParseMovementKind(t *testing.T) {
	kind, err := ParseMovementKind(" Transfer Out ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != KindTransferOut {
		t.Fatalf("expected %s got %s", KindTransferOut, kind)
	}

	if _, err := ParseMovementKind("reversal"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestParseClientTierNormalizesLegacySpelling(t *testing.T) {
	tier, err := ParseClientTier("PYME")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tier != TierSME {
		t.Fatalf("expected %s got %s", TierSME, tier)
	}
}
