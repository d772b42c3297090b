package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// PaymentFilter holds query options for payment listings
type PaymentFilter struct {
	TenantID *uuid.UUID
	UnitID   *uuid.UUID
	Type     *PaymentType
	Status   *PaymentStatus
	Page     int
	PageSize int
}

// PaymentRepository persists the payment ledger.
//
// Save must translate a transaction_id uniqueness violation into a conflict
// error so concurrent duplicate submissions cannot both land.
type PaymentRepository interface {
	Save(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// FindByTransactionID returns the payment for the idempotency key,
	// nil if none exists yet
	FindByTransactionID(ctx context.Context, transactionID string) (*Payment, error)
	// SumCompletedRent totals completed rent payments for the tenant in
	// the given calendar month
	SumCompletedRent(ctx context.Context, tenantID uuid.UUID, month, year int) (valueobject.Money, error)
	// FindByTenant returns the tenant's payments, newest first
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Payment], error)
	// FindForScope returns payments on units visible under the scope,
	// newest first
	FindForScope(ctx context.Context, scope identity.Scope, filter PaymentFilter) (*shared.Paginated[Payment], error)
}
