package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/ledger"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// ObligationMetrics records obligation outcomes. Nil disables recording.
type ObligationMetrics interface {
	RecordLateFeeAssessed(ctx context.Context)
}

// PaymentService records payments and answers rent obligation queries.
// Recording is idempotent on the transaction ID: replaying a submission
// returns the existing payment instead of creating a second ledger row.
type PaymentService struct {
	paymentRepo    ledger.PaymentRepository
	leaseRepo      leasing.LeaseRepository
	eventPublisher shared.EventPublisher
	lateFeePolicy  ledger.LateFeePolicy
	metrics        ObligationMetrics
	logger         *zap.Logger
}

// PaymentServiceConfig holds configuration for PaymentService
type PaymentServiceConfig struct {
	PaymentRepo    ledger.PaymentRepository
	LeaseRepo      leasing.LeaseRepository
	EventPublisher shared.EventPublisher
	// LateFeePolicy defaults to the flat policy when nil
	LateFeePolicy ledger.LateFeePolicy
	Metrics       ObligationMetrics
	Logger        *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(config PaymentServiceConfig) *PaymentService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := config.LateFeePolicy
	if policy == nil {
		policy = ledger.NewFlatLateFeePolicy()
	}
	return &PaymentService{
		paymentRepo:    config.PaymentRepo,
		leaseRepo:      config.LeaseRepo,
		eventPublisher: config.EventPublisher,
		lateFeePolicy:  policy,
		metrics:        config.Metrics,
		logger:         logger,
	}
}

// RecordPaymentInput holds the fields needed to record a payment
type RecordPaymentInput struct {
	TenantID      uuid.UUID
	// UnitID is required for non-rent payments; rent payments derive the
	// unit from the tenant's active lease
	UnitID        uuid.UUID
	Type          ledger.PaymentType
	Amount        valueobject.Money
	Method        ledger.PaymentMethod
	PeriodMonth   int
	PeriodYear    int
	TransactionID string
	Notes         string
}

// RecordPaymentResult reports the recorded payment and whether the
// transaction ID had been seen before.
type RecordPaymentResult struct {
	Payment         *ledger.Payment
	AlreadyRecorded bool
}

// RecordPayment enters a payment into the ledger. A repeated transaction ID
// returns the original payment with AlreadyRecorded set; it never creates a
// duplicate and never alters the original.
func (s *PaymentService) RecordPayment(ctx context.Context, actor *identity.Actor, input RecordPaymentInput) (*RecordPaymentResult, error) {
	if err := s.authorizePaymentWrite(actor, input.TenantID); err != nil {
		return nil, err
	}

	existing, err := s.paymentRepo.FindByTransactionID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info("Payment already recorded for transaction",
			zap.String("transaction_id", input.TransactionID),
			zap.String("payment_id", existing.ID.String()))
		return &RecordPaymentResult{Payment: existing, AlreadyRecorded: true}, nil
	}

	unitID := input.UnitID
	var leaseID *uuid.UUID
	if input.Type == ledger.PaymentTypeRent {
		lease, err := s.leaseRepo.FindActiveByTenant(ctx, input.TenantID)
		if err != nil {
			return nil, err
		}
		if lease == nil {
			return nil, shared.NewValidationError("NO_ACTIVE_LEASE", "Tenant has no active lease to pay rent on")
		}
		unitID = lease.UnitID
		leaseID = &lease.ID
	}

	payment, err := ledger.NewPayment(ledger.NewPaymentInput{
		TenantID:      input.TenantID,
		UnitID:        unitID,
		LeaseID:       leaseID,
		Type:          input.Type,
		Amount:        input.Amount,
		Method:        input.Method,
		PeriodMonth:   input.PeriodMonth,
		PeriodYear:    input.PeriodYear,
		TransactionID: input.TransactionID,
		Notes:         input.Notes,
	})
	if err != nil {
		return nil, err
	}

	// manually entered methods settle immediately; processor-backed
	// methods complete asynchronously via confirmation
	if input.Method == ledger.PaymentMethodCash || input.Method == ledger.PaymentMethodCheck {
		if err := payment.Complete(time.Now()); err != nil {
			return nil, err
		}
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		if shared.IsConflict(err) {
			// lost a race with a concurrent submission of the same
			// transaction; the winner's row is the record
			winner, findErr := s.paymentRepo.FindByTransactionID(ctx, input.TransactionID)
			if findErr == nil && winner != nil {
				return &RecordPaymentResult{Payment: winner, AlreadyRecorded: true}, nil
			}
		}
		return nil, err
	}

	s.publishEvents(ctx, payment)

	s.logger.Info("Payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("tenant_id", payment.TenantID.String()),
		zap.String("transaction_id", payment.TransactionID),
		zap.String("type", payment.Type.String()),
		zap.String("amount", payment.Amount.String()))
	return &RecordPaymentResult{Payment: payment}, nil
}

// ComputeObligationStatus classifies the rent position of one lease for the
// month containing asOf. The computation is derived on every call from the
// lease and the completed rent payments; nothing is stored. An unknown lease
// ID is a not-found error; a lease that no longer covers the period is
// inactive, which keeps the two cases distinguishable.
func (s *PaymentService) ComputeObligationStatus(ctx context.Context, actor *identity.Actor, leaseID uuid.UUID, asOf time.Time) (*ledger.RentObligation, error) {
	lease, err := s.leaseRepo.FindByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, shared.NewNotFoundError("LEASE_NOT_FOUND", "Lease does not exist")
	}

	if err := s.authorizeObligationRead(actor, lease.TenantID, lease); err != nil {
		return nil, err
	}

	paid := valueobject.ZeroUSD()
	if lease.IsActive() && lease.Covers(asOf) {
		paid, err = s.paymentRepo.SumCompletedRent(ctx, lease.TenantID, int(asOf.Month()), asOf.Year())
		if err != nil {
			return nil, err
		}
	}

	ob := ledger.ComputeRentObligation(lease, paid, asOf, s.lateFeePolicy)
	if s.metrics != nil && !ob.LateFee.IsZero() {
		s.metrics.RecordLateFeeAssessed(ctx)
	}
	return &ob, nil
}

// ComputeTenantObligation classifies the tenant's rent position for the
// month containing asOf, resolved through the tenant's active lease. A
// tenant with no active lease is inactive, not missing.
func (s *PaymentService) ComputeTenantObligation(ctx context.Context, actor *identity.Actor, tenantID uuid.UUID, asOf time.Time) (*ledger.RentObligation, error) {
	lease, err := s.leaseRepo.FindActiveByTenant(ctx, tenantID)
	if err != nil {
		if shared.IsConsistency(err) {
			s.logger.Error("Duplicate active lease detected while computing obligation",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
		}
		return nil, err
	}

	if err := s.authorizeObligationRead(actor, tenantID, lease); err != nil {
		return nil, err
	}

	paid := valueobject.ZeroUSD()
	if lease != nil {
		paid, err = s.paymentRepo.SumCompletedRent(ctx, tenantID, int(asOf.Month()), asOf.Year())
		if err != nil {
			return nil, err
		}
	}

	ob := ledger.ComputeRentObligation(lease, paid, asOf, s.lateFeePolicy)
	if ob.TenantID == uuid.Nil {
		ob.TenantID = tenantID
	}
	if s.metrics != nil && !ob.LateFee.IsZero() {
		s.metrics.RecordLateFeeAssessed(ctx)
	}
	return &ob, nil
}

// GetHistory returns a tenant's payments, newest first
func (s *PaymentService) GetHistory(ctx context.Context, actor *identity.Actor, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[ledger.Payment], error) {
	if actor == nil {
		return nil, shared.NewValidationError("INVALID_ACTOR", "Actor is required")
	}

	if actor.Role == identity.RoleTenant {
		if actor.ID != tenantID {
			return nil, shared.NewAccessDeniedError("PAYMENT_READ_DENIED", "Tenants see only their own payments")
		}
		return s.paymentRepo.FindByTenant(ctx, tenantID, filter)
	}

	scope, err := identity.ResolveScope(actor)
	if err != nil {
		return nil, err
	}
	return s.paymentRepo.FindForScope(ctx, scope, ledger.PaymentFilter{
		TenantID: &tenantID,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

// GetAccessiblePayments returns payments on units within the actor's scope
func (s *PaymentService) GetAccessiblePayments(ctx context.Context, actor *identity.Actor, filter ledger.PaymentFilter) (*shared.Paginated[ledger.Payment], error) {
	scope, err := identity.ResolveScope(actor)
	if err != nil {
		return nil, err
	}
	return s.paymentRepo.FindForScope(ctx, scope, filter)
}

// authorizePaymentWrite checks the actor may record a payment for the tenant
func (s *PaymentService) authorizePaymentWrite(actor *identity.Actor, tenantID uuid.UUID) error {
	if actor == nil {
		return shared.NewValidationError("INVALID_ACTOR", "Actor is required")
	}
	switch actor.Role {
	case identity.RoleTenant:
		if actor.ID != tenantID {
			return shared.NewAccessDeniedError("PAYMENT_WRITE_DENIED", "Tenants record only their own payments")
		}
		return nil
	case identity.RoleAdmin, identity.RoleManager:
		return nil
	default:
		return shared.NewAccessDeniedError("PAYMENT_WRITE_DENIED", "Role may not record payments")
	}
}

// authorizeObligationRead checks the actor may see the tenant's obligation
func (s *PaymentService) authorizeObligationRead(actor *identity.Actor, tenantID uuid.UUID, lease *leasing.Lease) error {
	if actor == nil {
		return shared.NewValidationError("INVALID_ACTOR", "Actor is required")
	}
	if actor.Role == identity.RoleTenant {
		if actor.ID != tenantID {
			return shared.NewAccessDeniedError("OBLIGATION_READ_DENIED", "Tenants see only their own obligation")
		}
		return nil
	}
	scope, err := identity.ResolveScope(actor)
	if err != nil {
		return err
	}
	if lease != nil && !scope.AllowsUnit(lease.UnitID) {
		return shared.NewAccessDeniedError("UNIT_OUT_OF_SCOPE", "Unit is outside the actor's scope")
	}
	return nil
}

func (s *PaymentService) publishEvents(ctx context.Context, payment *ledger.Payment) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range payment.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish payment event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	payment.ClearDomainEvents()
}
