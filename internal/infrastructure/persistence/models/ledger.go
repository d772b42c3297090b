package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/ledger"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for the Payment domain entity.
// The unique index on transaction_id backs payment idempotency: a duplicate
// submission loses the insert race and is translated into a conflict.
type PaymentModel struct {
	AggregateModel
	TenantID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	UnitID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	LeaseID       *uuid.UUID           `gorm:"type:uuid;index"`
	Type          ledger.PaymentType   `gorm:"type:varchar(20);not null;index"`
	Amount        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Method        ledger.PaymentMethod `gorm:"type:varchar(20);not null"`
	Status        ledger.PaymentStatus `gorm:"type:varchar(20);not null;index"`
	PeriodMonth   int                  `gorm:"not null;default:0"`
	PeriodYear    int                  `gorm:"not null;default:0"`
	TransactionID string               `gorm:"type:varchar(100);not null;uniqueIndex"`
	PaidAt        *time.Time
	FailureReason string `gorm:"type:text"`
	Notes         string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *ledger.Payment {
	p := &ledger.Payment{
		TenantID:      m.TenantID,
		UnitID:        m.UnitID,
		LeaseID:       m.LeaseID,
		Type:          m.Type,
		Amount:        m.Amount,
		Method:        m.Method,
		Status:        m.Status,
		PeriodMonth:   m.PeriodMonth,
		PeriodYear:    m.PeriodYear,
		TransactionID: m.TransactionID,
		PaidAt:        m.PaidAt,
		FailureReason: m.FailureReason,
		Notes:         m.Notes,
	}
	p.BaseAggregateRoot = shared.BaseAggregateRoot{}
	m.PopulateAggregateRoot(&p.BaseAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *ledger.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.TenantID = p.TenantID
	m.UnitID = p.UnitID
	m.LeaseID = p.LeaseID
	m.Type = p.Type
	m.Amount = p.Amount
	m.Method = p.Method
	m.Status = p.Status
	m.PeriodMonth = p.PeriodMonth
	m.PeriodYear = p.PeriodYear
	m.TransactionID = p.TransactionID
	m.PaidAt = p.PaidAt
	m.FailureReason = p.FailureReason
	m.Notes = p.Notes
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
