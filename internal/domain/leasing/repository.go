package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/identity"
)

// LeaseFilter holds query options for lease listings
type LeaseFilter struct {
	TenantID *uuid.UUID
	UnitID   *uuid.UUID
	Statuses []LeaseStatus
	Page     int
	PageSize int
}

// LeaseRepository persists leases.
//
// Create must be a single atomic insert: the storage layer carries partial
// unique indexes on (tenant_id) and (unit_id) scoped to status = 'active',
// and the implementation translates a uniqueness violation into a conflict
// error. A separate existence check before the insert is a race and is not
// an acceptable implementation.
type LeaseRepository interface {
	Create(ctx context.Context, lease *Lease) error
	FindByID(ctx context.Context, id uuid.UUID) (*Lease, error)
	// FindActiveByTenant returns the tenant's active lease, nil if none
	FindActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*Lease, error)
	// FindActiveByUnit returns the unit's active lease, nil if none
	FindActiveByUnit(ctx context.Context, unitID uuid.UUID) (*Lease, error)
	// FindActiveByUnits returns active leases for the given units
	FindActiveByUnits(ctx context.Context, unitIDs []uuid.UUID) ([]Lease, error)
	// FindForScope returns leases visible under the given scope
	FindForScope(ctx context.Context, scope identity.Scope, filter LeaseFilter) ([]Lease, error)
	// FindByTenant returns all leases (any status) for a tenant
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]Lease, error)
	// FindActiveElapsed returns active leases whose end date has passed
	FindActiveElapsed(ctx context.Context, now time.Time) ([]Lease, error)
	// HasActiveByUnit reports whether the unit has an active lease
	HasActiveByUnit(ctx context.Context, unitID uuid.UUID) (bool, error)
	// SaveWithLock updates a lease with an optimistic version check
	SaveWithLock(ctx context.Context, lease *Lease) error
}
