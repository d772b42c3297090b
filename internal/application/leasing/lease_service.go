package leasing

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/property"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// LeaseService coordinates lease lifecycle operations. Every operation takes
// the calling actor and resolves authorization and visibility from it on the
// spot; nothing about an actor's scope is cached between calls.
type LeaseService struct {
	leaseRepo      leasing.LeaseRepository
	unitRepo       property.UnitRepository
	actorRepo      identity.ActorRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// LeaseServiceConfig holds configuration for LeaseService
type LeaseServiceConfig struct {
	LeaseRepo      leasing.LeaseRepository
	UnitRepo       property.UnitRepository
	ActorRepo      identity.ActorRepository
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
}

// NewLeaseService creates a new LeaseService
func NewLeaseService(config LeaseServiceConfig) *LeaseService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaseService{
		leaseRepo:      config.LeaseRepo,
		unitRepo:       config.UnitRepo,
		actorRepo:      config.ActorRepo,
		eventPublisher: config.EventPublisher,
		logger:         logger,
	}
}

// CreateLeaseInput holds the fields needed to create a lease
type CreateLeaseInput struct {
	TenantID  uuid.UUID
	UnitID    uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	Terms     leasing.LeaseTerms
	Pending   bool
}

// CreateLease creates a lease for a tenant on a unit. Uniqueness of the
// active lease per tenant and per unit is enforced by the storage layer in
// the same insert, so two racing calls cannot both succeed; the loser gets
// a conflict error.
func (s *LeaseService) CreateLease(ctx context.Context, actor *identity.Actor, input CreateLeaseInput) (*leasing.Lease, error) {
	if err := s.authorizeUnitWrite(actor, input.UnitID); err != nil {
		return nil, err
	}

	tenant, err := s.actorRepo.FindByID(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, shared.NewNotFoundError("TENANT_NOT_FOUND", "Tenant does not exist")
	}
	if tenant.Role != identity.RoleTenant {
		return nil, shared.NewValidationError("NOT_A_TENANT", "Leases can only be created for tenant actors")
	}

	unit, err := s.unitRepo.FindByID(ctx, input.UnitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, shared.NewNotFoundError("UNIT_NOT_FOUND", "Unit does not exist")
	}

	var lease *leasing.Lease
	if input.Pending {
		lease, err = leasing.NewPendingLease(input.TenantID, input.UnitID, input.StartDate, input.EndDate, input.Terms)
	} else {
		lease, err = leasing.NewLease(input.TenantID, input.UnitID, input.StartDate, input.EndDate, input.Terms)
	}
	if err != nil {
		return nil, err
	}

	if err := s.leaseRepo.Create(ctx, lease); err != nil {
		if shared.IsConflict(err) {
			s.logger.Info("Lease creation rejected by active-lease uniqueness",
				zap.String("tenant_id", input.TenantID.String()),
				zap.String("unit_id", input.UnitID.String()))
		}
		return nil, err
	}

	if lease.IsActive() {
		unit.MarkOccupied()
		if err := s.unitRepo.Save(ctx, unit); err != nil {
			s.logger.Warn("Failed to mark unit occupied",
				zap.String("unit_id", unit.ID.String()),
				zap.Error(err))
		}
	}

	s.publishEvents(ctx, lease)

	s.logger.Info("Lease created",
		zap.String("lease_id", lease.ID.String()),
		zap.String("tenant_id", lease.TenantID.String()),
		zap.String("unit_id", lease.UnitID.String()),
		zap.String("status", lease.Status.String()))
	return lease, nil
}

// TerminateLease ends a lease early. Terminating an already-terminated lease
// is a successful no-op and reports changed=false.
func (s *LeaseService) TerminateLease(ctx context.Context, actor *identity.Actor, leaseID uuid.UUID, reason string) (bool, error) {
	lease, err := s.findLeaseForWrite(ctx, actor, leaseID)
	if err != nil {
		return false, err
	}

	changed, err := lease.Terminate(reason)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	if err := s.leaseRepo.SaveWithLock(ctx, lease); err != nil {
		return false, err
	}

	s.releaseUnit(ctx, lease.UnitID)
	s.publishEvents(ctx, lease)

	s.logger.Info("Lease terminated",
		zap.String("lease_id", lease.ID.String()),
		zap.String("reason", reason))
	return true, nil
}

// ActivateLease transitions a pending lease to active. The storage layer's
// uniqueness indexes still apply, so activation fails with a conflict when
// the tenant or unit already holds an active lease.
func (s *LeaseService) ActivateLease(ctx context.Context, actor *identity.Actor, leaseID uuid.UUID) (*leasing.Lease, error) {
	lease, err := s.findLeaseForWrite(ctx, actor, leaseID)
	if err != nil {
		return nil, err
	}

	if err := lease.Activate(); err != nil {
		return nil, err
	}
	if err := s.leaseRepo.SaveWithLock(ctx, lease); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, lease)
	return lease, nil
}

// RenewLease creates a new pending lease starting at the current lease's end
// date. The current lease is never modified; it expires on its own schedule.
func (s *LeaseService) RenewLease(ctx context.Context, actor *identity.Actor, leaseID uuid.UUID, newEndDate time.Time, newRent *valueobject.Money) (*leasing.Lease, error) {
	lease, err := s.findLeaseForWrite(ctx, actor, leaseID)
	if err != nil {
		return nil, err
	}

	renewed, err := lease.Renew(newEndDate, newRent)
	if err != nil {
		return nil, err
	}
	if err := s.leaseRepo.Create(ctx, renewed); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, renewed)

	s.logger.Info("Lease renewed",
		zap.String("lease_id", lease.ID.String()),
		zap.String("renewal_lease_id", renewed.ID.String()),
		zap.Time("new_end_date", newEndDate))
	return renewed, nil
}

// GetLease returns a single lease the actor may see
func (s *LeaseService) GetLease(ctx context.Context, actor *identity.Actor, leaseID uuid.UUID) (*leasing.Lease, error) {
	lease, err := s.leaseRepo.FindByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, shared.NewNotFoundError("LEASE_NOT_FOUND", "Lease does not exist")
	}

	if err := s.authorizeLeaseRead(actor, lease); err != nil {
		return nil, err
	}
	return lease, nil
}

// GetAccessibleLeases returns the leases visible to the actor. Staff see
// leases on units within their scope; tenants see exactly their own leases.
func (s *LeaseService) GetAccessibleLeases(ctx context.Context, actor *identity.Actor, filter leasing.LeaseFilter) ([]leasing.Lease, error) {
	if actor == nil {
		return nil, shared.NewValidationError("INVALID_ACTOR", "Actor is required")
	}

	if actor.Role == identity.RoleTenant {
		leases, err := s.leaseRepo.FindByTenant(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		// a tenant's listing is bounded by their own lease history, so the
		// narrower filters apply in memory instead of a second query
		return narrowLeases(leases, filter), nil
	}

	scope, err := identity.ResolveScope(actor)
	if err != nil {
		return nil, err
	}
	return s.leaseRepo.FindForScope(ctx, scope, filter)
}

// narrowLeases applies the status and unit filters to an already-loaded set
func narrowLeases(leases []leasing.Lease, filter leasing.LeaseFilter) []leasing.Lease {
	out := make([]leasing.Lease, 0, len(leases))
	for _, l := range leases {
		if filter.UnitID != nil && l.UnitID != *filter.UnitID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, l.Status) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// GetActiveLeaseForTenant returns the tenant's active lease, nil if none.
// A duplicate active lease found here means the storage invariant was
// bypassed; the error is surfaced as fatal and logged loudly.
func (s *LeaseService) GetActiveLeaseForTenant(ctx context.Context, tenantID uuid.UUID) (*leasing.Lease, error) {
	lease, err := s.leaseRepo.FindActiveByTenant(ctx, tenantID)
	if err != nil {
		if shared.IsConsistency(err) {
			s.logger.Error("Duplicate active lease detected for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
		}
		return nil, err
	}
	return lease, nil
}

// ExpireElapsedLeases transitions every active lease whose end date has
// passed to expired. Invoked by the reconciliation loop and before portfolio
// reads, never by user actions.
func (s *LeaseService) ExpireElapsedLeases(ctx context.Context, now time.Time) (int, error) {
	elapsed, err := s.leaseRepo.FindActiveElapsed(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range elapsed {
		lease := &elapsed[i]
		changed, err := lease.Expire(now)
		if err != nil || !changed {
			continue
		}
		if err := s.leaseRepo.SaveWithLock(ctx, lease); err != nil {
			// another worker may have expired it first
			s.logger.Warn("Failed to save expired lease",
				zap.String("lease_id", lease.ID.String()),
				zap.Error(err))
			continue
		}
		s.releaseUnit(ctx, lease.UnitID)
		s.publishEvents(ctx, lease)
		expired++
	}

	if expired > 0 {
		s.logger.Info("Expired elapsed leases", zap.Int("count", expired))
	}
	return expired, nil
}

// findLeaseForWrite loads a lease and checks the actor may modify it
func (s *LeaseService) findLeaseForWrite(ctx context.Context, actor *identity.Actor, leaseID uuid.UUID) (*leasing.Lease, error) {
	lease, err := s.leaseRepo.FindByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, shared.NewNotFoundError("LEASE_NOT_FOUND", "Lease does not exist")
	}
	if err := s.authorizeUnitWrite(actor, lease.UnitID); err != nil {
		return nil, err
	}
	return lease, nil
}

// authorizeUnitWrite checks the actor may perform lease writes on the unit
func (s *LeaseService) authorizeUnitWrite(actor *identity.Actor, unitID uuid.UUID) error {
	if actor == nil {
		return shared.NewValidationError("INVALID_ACTOR", "Actor is required")
	}
	if !actor.Role.CanManageLeases() {
		return shared.NewAccessDeniedError("LEASE_WRITE_DENIED", "Role may not manage leases")
	}
	scope, err := identity.ResolveScope(actor)
	if err != nil {
		return err
	}
	if !scope.AllowsUnit(unitID) {
		return shared.NewAccessDeniedError("UNIT_OUT_OF_SCOPE", "Unit is outside the actor's scope")
	}
	return nil
}

// authorizeLeaseRead checks the actor may see the lease
func (s *LeaseService) authorizeLeaseRead(actor *identity.Actor, lease *leasing.Lease) error {
	if actor == nil {
		return shared.NewValidationError("INVALID_ACTOR", "Actor is required")
	}
	if actor.Role == identity.RoleTenant {
		if lease.TenantID == actor.ID {
			return nil
		}
		for _, co := range lease.CoTenantIDs {
			if co == actor.ID {
				return nil
			}
		}
		return shared.NewAccessDeniedError("LEASE_READ_DENIED", "Tenants see only their own leases")
	}
	scope, err := identity.ResolveScope(actor)
	if err != nil {
		return err
	}
	if !scope.AllowsUnit(lease.UnitID) {
		return shared.NewAccessDeniedError("UNIT_OUT_OF_SCOPE", "Unit is outside the actor's scope")
	}
	return nil
}

// releaseUnit marks a unit available again after its lease ends
func (s *LeaseService) releaseUnit(ctx context.Context, unitID uuid.UUID) {
	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil || unit == nil {
		return
	}
	unit.MarkAvailable()
	if err := s.unitRepo.Save(ctx, unit); err != nil {
		s.logger.Warn("Failed to mark unit available",
			zap.String("unit_id", unitID.String()),
			zap.Error(err))
	}
}

func (s *LeaseService) publishEvents(ctx context.Context, lease *leasing.Lease) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range lease.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish lease event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	lease.ClearDomainEvents()
}
