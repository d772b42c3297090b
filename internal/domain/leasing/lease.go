package leasing

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LeaseStatus represents the status of a lease
type LeaseStatus string

const (
	LeaseStatusPending    LeaseStatus = "pending"    // awaiting approval/activation
	LeaseStatusActive     LeaseStatus = "active"     // currently in force
	LeaseStatusExpired    LeaseStatus = "expired"    // ended naturally, time-driven
	LeaseStatusTerminated LeaseStatus = "terminated" // ended early by a party
)

// IsValid checks if the status is a valid LeaseStatus
func (s LeaseStatus) IsValid() bool {
	switch s {
	case LeaseStatusPending, LeaseStatusActive, LeaseStatusExpired, LeaseStatusTerminated:
		return true
	}
	return false
}

// String returns the string representation of LeaseStatus
func (s LeaseStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no transition leaves this status
func (s LeaseStatus) IsTerminal() bool {
	return s == LeaseStatusExpired || s == LeaseStatusTerminated
}

// LeaseTerms holds the financial terms of a lease
type LeaseTerms struct {
	MonthlyRent     valueobject.Money
	SecurityDeposit valueobject.Money
	RentDueDay      int // day of month rent is due, 1-28
	LateFee         valueobject.Money
	GracePeriodDays int // days after the due day before a late fee applies
}

// Validate checks the lease terms
func (t LeaseTerms) Validate() error {
	if t.MonthlyRent.IsNegative() || t.MonthlyRent.IsZero() {
		return shared.NewValidationError("INVALID_RENT", "Monthly rent must be positive")
	}
	if t.SecurityDeposit.IsNegative() {
		return shared.NewValidationError("INVALID_DEPOSIT", "Security deposit cannot be negative")
	}
	if t.RentDueDay < 1 || t.RentDueDay > 28 {
		return shared.NewValidationError("INVALID_DUE_DAY", "Rent due day must be between 1 and 28")
	}
	if t.LateFee.IsNegative() {
		return shared.NewValidationError("INVALID_LATE_FEE", "Late fee cannot be negative")
	}
	if t.GracePeriodDays < 0 {
		return shared.NewValidationError("INVALID_GRACE_PERIOD", "Grace period cannot be negative")
	}
	return nil
}

// Lease relates one tenant to one unit over [StartDate, EndDate). At any
// instant at most one active lease may exist per tenant and per unit; the
// storage layer enforces this with partial unique indexes so creation is a
// single atomic operation, never a find-then-create.
type Lease struct {
	shared.BaseAggregateRoot
	TenantID        uuid.UUID       `json:"tenant_id"` // primary tenant (actor)
	CoTenantIDs     []uuid.UUID     `json:"co_tenant_ids,omitempty"`
	UnitID          uuid.UUID       `json:"unit_id"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"` // exclusive
	MonthlyRent     decimal.Decimal `json:"monthly_rent"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
	RentDueDay      int             `json:"rent_due_day"`
	LateFee         decimal.Decimal `json:"late_fee"`
	GracePeriodDays int             `json:"grace_period_days"`
	Status          LeaseStatus     `json:"status"`
	Notes           string          `json:"notes"`
	TerminatedAt    *time.Time      `json:"terminated_at,omitempty"`
	ExpiredAt       *time.Time      `json:"expired_at,omitempty"`
}

// NewLease creates a new lease. Status defaults to active; callers needing
// an approval workflow pass pending explicitly via NewPendingLease.
func NewLease(tenantID, unitID uuid.UUID, startDate, endDate time.Time, terms LeaseTerms) (*Lease, error) {
	return newLease(tenantID, unitID, startDate, endDate, terms, LeaseStatusActive)
}

// NewPendingLease creates a new lease awaiting activation
func NewPendingLease(tenantID, unitID uuid.UUID, startDate, endDate time.Time, terms LeaseTerms) (*Lease, error) {
	return newLease(tenantID, unitID, startDate, endDate, terms, LeaseStatusPending)
}

func newLease(tenantID, unitID uuid.UUID, startDate, endDate time.Time, terms LeaseTerms, status LeaseStatus) (*Lease, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_UNIT", "Unit ID cannot be empty")
	}
	if startDate.IsZero() || endDate.IsZero() {
		return nil, shared.NewValidationError("INVALID_DATES", "Start and end dates are required")
	}
	if !endDate.After(startDate) {
		return nil, shared.NewValidationError("INVALID_DATES", "End date must be after start date")
	}
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	l := &Lease{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		UnitID:            unitID,
		StartDate:         startDate,
		EndDate:           endDate,
		MonthlyRent:       terms.MonthlyRent.Amount(),
		SecurityDeposit:   terms.SecurityDeposit.Amount(),
		RentDueDay:        terms.RentDueDay,
		LateFee:           terms.LateFee.Amount(),
		GracePeriodDays:   terms.GracePeriodDays,
		Status:            status,
	}
	l.AddDomainEvent(NewLeaseCreatedEvent(l))
	return l, nil
}

// Terms returns the financial terms of the lease
func (l *Lease) Terms() LeaseTerms {
	return LeaseTerms{
		MonthlyRent:     valueobject.NewMoneyUSD(l.MonthlyRent),
		SecurityDeposit: valueobject.NewMoneyUSD(l.SecurityDeposit),
		RentDueDay:      l.RentDueDay,
		LateFee:         valueobject.NewMoneyUSD(l.LateFee),
		GracePeriodDays: l.GracePeriodDays,
	}
}

// Covers returns true if t falls within [StartDate, EndDate)
func (l *Lease) Covers(t time.Time) bool {
	return !t.Before(l.StartDate) && t.Before(l.EndDate)
}

// IsActive returns true if the lease is in force
func (l *Lease) IsActive() bool {
	return l.Status == LeaseStatusActive
}

// AddCoTenant attaches an additional tenant. Co-tenants do not alter the
// one-active-lease-per-tenant invariant, which binds the primary tenant.
func (l *Lease) AddCoTenant(tenantID uuid.UUID) error {
	if l.Status.IsTerminal() {
		return shared.NewConflictError("LEASE_ENDED", "Cannot modify a lease in a terminal state")
	}
	if tenantID == uuid.Nil {
		return shared.NewValidationError("INVALID_TENANT", "Co-tenant ID cannot be empty")
	}
	if tenantID == l.TenantID || slices.Contains(l.CoTenantIDs, tenantID) {
		return nil
	}
	l.CoTenantIDs = append(l.CoTenantIDs, tenantID)
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// Activate transitions a pending lease to active
func (l *Lease) Activate() error {
	if l.Status != LeaseStatusPending {
		return shared.NewConflictError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot activate lease in %s status", l.Status))
	}
	l.Status = LeaseStatusActive
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	l.AddDomainEvent(NewLeaseActivatedEvent(l))
	return nil
}

// Terminate ends the lease early. Idempotent when already terminated: the
// call is a no-op, not an error. Terminating an expired lease is a conflict.
// Returns true if the lease changed state.
func (l *Lease) Terminate(reason string) (bool, error) {
	if l.Status == LeaseStatusTerminated {
		return false, nil
	}
	if l.Status == LeaseStatusExpired {
		return false, shared.NewConflictError("LEASE_EXPIRED", "Cannot terminate an expired lease")
	}

	now := time.Now()
	l.Status = LeaseStatusTerminated
	l.TerminatedAt = &now
	if reason != "" {
		if l.Notes != "" {
			l.Notes += "\n"
		}
		l.Notes += "terminated: " + reason
	}
	l.UpdatedAt = now
	l.IncrementVersion()
	l.AddDomainEvent(NewLeaseTerminatedEvent(l, reason))
	return true, nil
}

// Expire marks an active lease whose end date has passed as expired.
// Time-driven only: never invoked by renewal or any user action.
// Returns true if the lease changed state.
func (l *Lease) Expire(now time.Time) (bool, error) {
	if l.Status != LeaseStatusActive {
		return false, nil
	}
	if now.Before(l.EndDate) {
		return false, shared.NewConflictError("LEASE_NOT_ELAPSED", "Lease end date has not passed")
	}
	l.Status = LeaseStatusExpired
	l.ExpiredAt = &now
	l.UpdatedAt = now
	l.IncrementVersion()
	l.AddDomainEvent(NewLeaseExpiredEvent(l))
	return true, nil
}

// Renew builds a new pending lease starting where this one ends, preserving
// deposit, grace period and late fee unless newRent overrides the rent.
// The receiver is never mutated: the old lease expires on its own schedule.
func (l *Lease) Renew(newEndDate time.Time, newRent *valueobject.Money) (*Lease, error) {
	if l.Status.IsTerminal() {
		return nil, shared.NewConflictError("LEASE_ENDED", "Cannot renew a lease in a terminal state")
	}
	if !newEndDate.After(l.EndDate) {
		return nil, shared.NewValidationError("INVALID_END_DATE", "Renewal end date must be after the current end date")
	}

	terms := l.Terms()
	if newRent != nil {
		terms.MonthlyRent = *newRent
	}

	renewed, err := NewPendingLease(l.TenantID, l.UnitID, l.EndDate, newEndDate, terms)
	if err != nil {
		return nil, err
	}
	renewed.CoTenantIDs = slices.Clone(l.CoTenantIDs)
	renewed.AddDomainEvent(NewLeaseRenewedEvent(l, renewed))
	return renewed, nil
}
