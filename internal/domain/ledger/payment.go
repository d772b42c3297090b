package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentType represents what a payment is for
type PaymentType string

const (
	PaymentTypeRent       PaymentType = "rent"
	PaymentTypeServiceFee PaymentType = "service_fee"
	PaymentTypeDeposit    PaymentType = "deposit"
	PaymentTypeLateFee    PaymentType = "late_fee"
	PaymentTypeOther      PaymentType = "other"
)

// IsValid checks if the payment type is valid
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeRent, PaymentTypeServiceFee, PaymentTypeDeposit, PaymentTypeLateFee, PaymentTypeOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentType
func (t PaymentType) String() string {
	return string(t)
}

// PaymentMethod represents the method of payment
type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodCash, PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// statusRank orders the monotonic progression pending -> processing ->
// completed/failed -> refunded. A payment's status never moves to a lower
// rank; in particular a completed payment never regresses to processing.
var statusRank = map[PaymentStatus]int{
	PaymentStatusPending:    0,
	PaymentStatusProcessing: 1,
	PaymentStatusCompleted:  2,
	PaymentStatusFailed:     2,
	PaymentStatusRefunded:   3,
}

// CanAdvanceTo reports whether the progression s -> next is allowed
func (s PaymentStatus) CanAdvanceTo(next PaymentStatus) bool {
	switch {
	case s == next:
		return false
	case s == PaymentStatusFailed:
		return false // failed is terminal
	case next == PaymentStatusRefunded:
		return s == PaymentStatusCompleted
	case s == PaymentStatusCompleted:
		return false
	default:
		return statusRank[next] > statusRank[s]
	}
}

// Payment is an immutable, append-only ledger record. Only the
// pending -> processing -> completed/failed status progression mutates it,
// and that progression is triggered at most once per transaction ID.
type Payment struct {
	shared.BaseAggregateRoot
	TenantID      uuid.UUID       `json:"tenant_id"`
	UnitID        uuid.UUID       `json:"unit_id"`
	LeaseID       *uuid.UUID      `json:"lease_id,omitempty"`
	Type          PaymentType     `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	Status        PaymentStatus   `json:"status"`
	PeriodMonth   int             `json:"period_month,omitempty"` // rent only: obligation period
	PeriodYear    int             `json:"period_year,omitempty"`  // rent only: obligation period
	TransactionID string          `json:"transaction_id"`         // idempotency key
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	Notes         string          `json:"notes"`
}

// NewPaymentInput carries the fields needed to record a payment
type NewPaymentInput struct {
	TenantID      uuid.UUID
	UnitID        uuid.UUID
	LeaseID       *uuid.UUID
	Type          PaymentType
	Amount        valueobject.Money
	Method        PaymentMethod
	PeriodMonth   int
	PeriodYear    int
	TransactionID string
	Notes         string
}

// NewPayment creates a new pending payment
func NewPayment(in NewPaymentInput) (*Payment, error) {
	if in.TenantID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if in.UnitID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_UNIT", "Unit ID cannot be empty")
	}
	if !in.Type.IsValid() {
		return nil, shared.NewValidationError("INVALID_PAYMENT_TYPE", "Payment type is not valid")
	}
	if !in.Method.IsValid() {
		return nil, shared.NewValidationError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if in.Amount.IsNegative() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	if strings.TrimSpace(in.TransactionID) == "" {
		return nil, shared.NewValidationError("INVALID_TRANSACTION_ID", "Transaction ID is required")
	}
	if in.Type == PaymentTypeRent {
		if in.PeriodMonth < 1 || in.PeriodMonth > 12 {
			return nil, shared.NewValidationError("INVALID_PERIOD", "Rent payments require a period month between 1 and 12")
		}
		if in.PeriodYear < 2000 || in.PeriodYear > 2200 {
			return nil, shared.NewValidationError("INVALID_PERIOD", "Rent payments require a plausible period year")
		}
	} else if in.PeriodMonth != 0 || in.PeriodYear != 0 {
		return nil, shared.NewValidationError("INVALID_PERIOD", "Only rent payments carry an obligation period")
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          in.TenantID,
		UnitID:            in.UnitID,
		LeaseID:           in.LeaseID,
		Type:              in.Type,
		Amount:            in.Amount.Amount(),
		Method:            in.Method,
		Status:            PaymentStatusPending,
		PeriodMonth:       in.PeriodMonth,
		PeriodYear:        in.PeriodYear,
		TransactionID:     strings.TrimSpace(in.TransactionID),
		Notes:             in.Notes,
	}
	p.AddDomainEvent(NewPaymentRecordedEvent(p))
	return p, nil
}

// MarkProcessing advances a pending payment to processing
func (p *Payment) MarkProcessing() error {
	return p.advance(PaymentStatusProcessing)
}

// Complete marks the payment as completed at the given time
func (p *Payment) Complete(paidAt time.Time) error {
	if err := p.advance(PaymentStatusCompleted); err != nil {
		return err
	}
	p.PaidAt = &paidAt
	p.AddDomainEvent(NewPaymentCompletedEvent(p))
	return nil
}

// Fail marks the payment as failed with a reason
func (p *Payment) Fail(reason string) error {
	if err := p.advance(PaymentStatusFailed); err != nil {
		return err
	}
	p.FailureReason = reason
	p.AddDomainEvent(NewPaymentFailedEvent(p, reason))
	return nil
}

// Refund marks a completed payment as refunded
func (p *Payment) Refund() error {
	return p.advance(PaymentStatusRefunded)
}

func (p *Payment) advance(next PaymentStatus) error {
	if !p.Status.CanAdvanceTo(next) {
		return shared.NewConflictError("INVALID_STATUS_PROGRESSION",
			fmt.Sprintf("Payment status cannot move from %s to %s", p.Status, next))
	}
	p.Status = next
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsCompleted returns true if the payment completed
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

// GetAmountMoney returns the amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Amount)
}
