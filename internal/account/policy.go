package account

import "github.com/shopspring/decimal"

// Per-product policy values. These mirror the product configuration the bank
// ships today; they change rarely enough that a table beats a config server.
var (
	currentMaintenanceFee      = decimal.NewFromInt(10)
	savingMaintenanceFee       = decimal.Zero
	fixedDepositMaintenanceFee = decimal.NewFromInt(5)

	savingSurcharge       = decimal.NewFromInt(5)
	fixedDepositSurcharge = decimal.NewFromInt(4)

	savingMovementLimit       = 10
	fixedDepositMovementLimit = 1
)

// MaintenanceFeeFor returns the monthly maintenance fee for an account of
// this type owned by a client of the given tier. SME clients hold current
// accounts fee-free.
func MaintenanceFeeFor(t Type, tier ClientTier) decimal.Decimal {
	switch t {
	case TypeCurrent:
		if tier == TierSME {
			return decimal.Zero
		}
		return currentMaintenanceFee
	case TypeSaving:
		return savingMaintenanceFee
	case TypeFixedDeposit:
		return fixedDepositMaintenanceFee
	default:
		return decimal.Zero
	}
}

// MovementLimitFor returns the monthly movement allowance for the account
// type. Zero means unlimited.
func MovementLimitFor(t Type) int {
	switch t {
	case TypeSaving:
		return savingMovementLimit
	case TypeFixedDeposit:
		return fixedDepositMovementLimit
	default:
		return 0
	}
}

// SurchargeFeeFor prices the transaction fee applied to movements made after
// the monthly allowance is used up.
func SurchargeFeeFor(t Type) decimal.Decimal {
	switch t {
	case TypeSaving:
		return savingSurcharge
	case TypeFixedDeposit:
		return fixedDepositSurcharge
	default:
		return decimal.Zero
	}
}
