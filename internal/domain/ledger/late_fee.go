package ledger

import (
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LateFeePolicy assesses the late fee owed once the grace period has
// elapsed. The caller decides whether the policy applies at all.
type LateFeePolicy interface {
	Assess(terms leasing.LeaseTerms, daysOverdue int) valueobject.Money
}

// FlatLateFeePolicy charges the lease's flat late fee once, regardless of
// how long the payment stays overdue. This is the default policy.
type FlatLateFeePolicy struct{}

// NewFlatLateFeePolicy creates the default flat policy
func NewFlatLateFeePolicy() FlatLateFeePolicy {
	return FlatLateFeePolicy{}
}

// Assess returns the lease's flat late fee
func (FlatLateFeePolicy) Assess(terms leasing.LeaseTerms, _ int) valueobject.Money {
	return terms.LateFee
}

// AccrualLateFeePolicy charges a per-day rate for every day overdue beyond
// a threshold. Offered for operators who prefer escalating fees over a
// single flat charge.
type AccrualLateFeePolicy struct {
	ThresholdDays int
	DailyRate     decimal.Decimal
}

// NewAccrualLateFeePolicy creates an accrual policy with the given
// threshold and per-day rate.
func NewAccrualLateFeePolicy(thresholdDays int, dailyRate decimal.Decimal) AccrualLateFeePolicy {
	return AccrualLateFeePolicy{ThresholdDays: thresholdDays, DailyRate: dailyRate}
}

// Assess returns rate * (daysOverdue - threshold), floored at zero
func (p AccrualLateFeePolicy) Assess(_ leasing.LeaseTerms, daysOverdue int) valueobject.Money {
	days := daysOverdue - p.ThresholdDays
	if days <= 0 {
		return valueobject.ZeroUSD()
	}
	return valueobject.NewMoneyUSD(p.DailyRate.Mul(decimal.NewFromInt(int64(days))))
}
