package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LeaseModel is the persistence model for the Lease domain entity.
//
// The one-active-lease-per-tenant and one-active-lease-per-unit invariants
// are enforced by partial unique indexes on (tenant_id) and (unit_id) scoped
// to status = 'active'. Those indexes live in the migrations, not in GORM
// tags, because GORM cannot express partial indexes portably.
type LeaseModel struct {
	AggregateModel
	TenantID        uuid.UUID          `gorm:"type:uuid;not null;index"`
	CoTenantIDs     pq.StringArray     `gorm:"type:uuid[]"`
	UnitID          uuid.UUID          `gorm:"type:uuid;not null;index"`
	StartDate       time.Time          `gorm:"not null"`
	EndDate         time.Time          `gorm:"not null;index"`
	MonthlyRent     decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	SecurityDeposit decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	RentDueDay      int                `gorm:"not null"`
	LateFee         decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	GracePeriodDays int                `gorm:"not null;default:0"`
	Status          leasing.LeaseStatus `gorm:"type:varchar(20);not null;index"`
	Notes           string             `gorm:"type:text"`
	TerminatedAt    *time.Time
	ExpiredAt       *time.Time
}

// TableName returns the table name for GORM
func (LeaseModel) TableName() string {
	return "leases"
}

// ToDomain converts the persistence model to a domain Lease entity.
func (m *LeaseModel) ToDomain() *leasing.Lease {
	l := &leasing.Lease{
		TenantID:        m.TenantID,
		CoTenantIDs:     arrayToUUIDs(m.CoTenantIDs),
		UnitID:          m.UnitID,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		MonthlyRent:     m.MonthlyRent,
		SecurityDeposit: m.SecurityDeposit,
		RentDueDay:      m.RentDueDay,
		LateFee:         m.LateFee,
		GracePeriodDays: m.GracePeriodDays,
		Status:          m.Status,
		Notes:           m.Notes,
		TerminatedAt:    m.TerminatedAt,
		ExpiredAt:       m.ExpiredAt,
	}
	l.BaseAggregateRoot = shared.BaseAggregateRoot{}
	m.PopulateAggregateRoot(&l.BaseAggregateRoot)
	return l
}

// FromDomain populates the persistence model from a domain Lease entity.
func (m *LeaseModel) FromDomain(l *leasing.Lease) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.TenantID = l.TenantID
	m.CoTenantIDs = uuidsToArray(l.CoTenantIDs)
	m.UnitID = l.UnitID
	m.StartDate = l.StartDate
	m.EndDate = l.EndDate
	m.MonthlyRent = l.MonthlyRent
	m.SecurityDeposit = l.SecurityDeposit
	m.RentDueDay = l.RentDueDay
	m.LateFee = l.LateFee
	m.GracePeriodDays = l.GracePeriodDays
	m.Status = l.Status
	m.Notes = l.Notes
	m.TerminatedAt = l.TerminatedAt
	m.ExpiredAt = l.ExpiredAt
}

// LeaseModelFromDomain creates a new persistence model from a domain Lease entity.
func LeaseModelFromDomain(l *leasing.Lease) *LeaseModel {
	m := &LeaseModel{}
	m.FromDomain(l)
	return m
}
