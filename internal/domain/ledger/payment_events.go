package ledger

import (
	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the Payment aggregate
const (
	EventTypePaymentRecorded  = "ledger.payment.recorded"
	EventTypePaymentCompleted = "ledger.payment.completed"
	EventTypePaymentFailed    = "ledger.payment.failed"
)

// PaymentRecordedEvent is published when a payment enters the ledger
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	TenantID      uuid.UUID       `json:"tenant_id"`
	UnitID        uuid.UUID       `json:"unit_id"`
	Type          PaymentType     `json:"type"`
	Method        PaymentMethod   `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, "Payment", p.ID),
		TenantID:        p.TenantID,
		UnitID:          p.UnitID,
		Type:            p.Type,
		Method:          p.Method,
		Amount:          p.Amount,
		TransactionID:   p.TransactionID,
	}
}

// PaymentCompletedEvent is published when a payment completes
type PaymentCompletedEvent struct {
	shared.BaseDomainEvent
	TenantID      uuid.UUID       `json:"tenant_id"`
	UnitID        uuid.UUID       `json:"unit_id"`
	Type          PaymentType     `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
}

// NewPaymentCompletedEvent creates a new PaymentCompletedEvent
func NewPaymentCompletedEvent(p *Payment) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCompleted, "Payment", p.ID),
		TenantID:        p.TenantID,
		UnitID:          p.UnitID,
		Type:            p.Type,
		Amount:          p.Amount,
		TransactionID:   p.TransactionID,
	}
}

// PaymentFailedEvent is published when a payment fails
type PaymentFailedEvent struct {
	shared.BaseDomainEvent
	TenantID      uuid.UUID `json:"tenant_id"`
	TransactionID string    `json:"transaction_id"`
	Reason        string    `json:"reason"`
}

// NewPaymentFailedEvent creates a new PaymentFailedEvent
func NewPaymentFailedEvent(p *Payment, reason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentFailed, "Payment", p.ID),
		TenantID:        p.TenantID,
		TransactionID:   p.TransactionID,
		Reason:          reason,
	}
}
