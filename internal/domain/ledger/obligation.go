package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ObligationState classifies a tenant's rent obligation for one period
type ObligationState string

const (
	// ObligationInactive means no active lease covers the period
	ObligationInactive ObligationState = "inactive"
	// ObligationNotDue means the due day has not arrived yet
	ObligationNotDue ObligationState = "not_due"
	// ObligationPaid means completed rent payments cover the full rent
	ObligationPaid ObligationState = "paid"
	// ObligationPartial means some rent was paid but a balance remains
	ObligationPartial ObligationState = "partial"
	// ObligationDue means the due day passed with nothing paid
	ObligationDue ObligationState = "due"
)

// String returns the string representation of ObligationState
func (s ObligationState) String() string {
	return string(s)
}

// RentObligation is the computed rent position of a tenant for one
// calendar month. It is derived, never stored.
type RentObligation struct {
	TenantID    uuid.UUID       `json:"tenant_id"`
	UnitID      uuid.UUID       `json:"unit_id"`
	LeaseID     uuid.UUID       `json:"lease_id"`
	PeriodMonth int             `json:"period_month"`
	PeriodYear  int             `json:"period_year"`
	State       ObligationState `json:"state"`
	RentDue     decimal.Decimal `json:"rent_due"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	Remaining   decimal.Decimal `json:"remaining"`
	DaysOverdue int             `json:"days_overdue"`
	LateFee     decimal.Decimal `json:"late_fee"`
	Urgent      bool            `json:"urgent"`
}

// urgentOverdueDays is the threshold past which an unpaid obligation is
// flagged for immediate attention.
const urgentOverdueDays = 5

// ComputeRentObligation classifies the rent position for the month containing
// asOf. Pure: all inputs are explicit and the same inputs always yield the
// same obligation.
//
// The due day anchors within the month of asOf, so daysOverdue counts from
// that month's due day. Late fees come from the policy and apply only once
// the grace period has fully elapsed; a paid obligation never carries one.
func ComputeRentObligation(lease *leasing.Lease, amountPaid valueobject.Money, asOf time.Time, policy LateFeePolicy) RentObligation {
	ob := RentObligation{
		PeriodMonth: int(asOf.Month()),
		PeriodYear:  asOf.Year(),
		State:       ObligationInactive,
		RentDue:     decimal.Zero,
		AmountPaid:  decimal.Zero,
		Remaining:   decimal.Zero,
		LateFee:     decimal.Zero,
	}
	if lease == nil {
		return ob
	}

	ob.TenantID = lease.TenantID
	ob.UnitID = lease.UnitID
	ob.LeaseID = lease.ID

	if !lease.IsActive() || !lease.Covers(asOf) {
		return ob
	}

	ob.RentDue = lease.MonthlyRent
	ob.AmountPaid = amountPaid.Amount()
	ob.Remaining = lease.MonthlyRent.Sub(ob.AmountPaid)
	if ob.Remaining.IsNegative() {
		ob.Remaining = decimal.Zero
	}

	if ob.AmountPaid.GreaterThanOrEqual(lease.MonthlyRent) {
		ob.State = ObligationPaid
		return ob
	}

	if asOf.Day() < lease.RentDueDay {
		ob.State = ObligationNotDue
		return ob
	}

	if ob.AmountPaid.IsPositive() {
		ob.State = ObligationPartial
	} else {
		ob.State = ObligationDue
	}

	ob.DaysOverdue = asOf.Day() - lease.RentDueDay
	ob.Urgent = ob.DaysOverdue > urgentOverdueDays

	if policy != nil && ob.DaysOverdue > lease.GracePeriodDays {
		ob.LateFee = policy.Assess(lease.Terms(), ob.DaysOverdue).Amount()
	}
	return ob
}
