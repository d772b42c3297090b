package portfolio

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/ledger"
	"github.com/propman/backend/internal/domain/property"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LeaseExpirer reconciles elapsed leases before portfolio reads
type LeaseExpirer interface {
	ExpireElapsedLeases(ctx context.Context, now time.Time) (int, error)
}

// unitPageSize bounds each unit query while the overview pages through the
// full visible set
const unitPageSize = 500

// OverviewService aggregates the portfolio picture a manager sees: units,
// active leases, tenants and the rent position of every active lease, all
// filtered through the caller's scope resolved on this request.
type OverviewService struct {
	unitRepo      property.UnitRepository
	leaseRepo     leasing.LeaseRepository
	paymentRepo   ledger.PaymentRepository
	actorRepo     identity.ActorRepository
	leaseExpirer  LeaseExpirer
	lateFeePolicy ledger.LateFeePolicy
	logger        *zap.Logger
}

// OverviewServiceConfig holds configuration for OverviewService
type OverviewServiceConfig struct {
	UnitRepo     property.UnitRepository
	LeaseRepo    leasing.LeaseRepository
	PaymentRepo  ledger.PaymentRepository
	ActorRepo    identity.ActorRepository
	LeaseExpirer LeaseExpirer
	// LateFeePolicy defaults to the flat policy when nil
	LateFeePolicy ledger.LateFeePolicy
	Logger        *zap.Logger
}

// NewOverviewService creates a new OverviewService
func NewOverviewService(config OverviewServiceConfig) *OverviewService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := config.LateFeePolicy
	if policy == nil {
		policy = ledger.NewFlatLateFeePolicy()
	}
	return &OverviewService{
		unitRepo:      config.UnitRepo,
		leaseRepo:     config.LeaseRepo,
		paymentRepo:   config.PaymentRepo,
		actorRepo:     config.ActorRepo,
		leaseExpirer:  config.LeaseExpirer,
		lateFeePolicy: policy,
		logger:        logger,
	}
}

// TenantSummary is a tenant row in the overview
type TenantSummary struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	UnitID   uuid.UUID `json:"unit_id"`
}

// PortfolioOverview is the aggregated portfolio picture
type PortfolioOverview struct {
	AsOf            time.Time               `json:"as_of"`
	TotalUnits      int                     `json:"total_units"`
	OccupiedUnits   int                     `json:"occupied_units"`
	AvailableUnits  int                     `json:"available_units"`
	ActiveLeases    int                     `json:"active_leases"`
	Units           []property.Unit         `json:"units"`
	Leases          []leasing.Lease         `json:"leases"`
	Tenants         []TenantSummary         `json:"tenants"`
	Obligations     []ledger.RentObligation `json:"obligations"`
	TenantsDue      int                     `json:"tenants_due"`
	TenantsPartial  int                     `json:"tenants_partial"`
	TenantsUrgent   int                     `json:"tenants_urgent"`
	OutstandingRent decimal.Decimal         `json:"outstanding_rent"`
}

// GetPortfolioOverview builds the overview visible to the actor as of now.
// Elapsed leases are reconciled first so a lease past its end date can never
// show up as active, then every row is filtered through the actor's scope.
func (s *OverviewService) GetPortfolioOverview(ctx context.Context, actor *identity.Actor, now time.Time) (*PortfolioOverview, error) {
	scope, err := identity.ResolveScope(actor)
	if err != nil {
		return nil, err
	}

	if s.leaseExpirer != nil {
		if _, err := s.leaseExpirer.ExpireElapsedLeases(ctx, now); err != nil {
			s.logger.Warn("Lease expiry reconciliation failed", zap.Error(err))
		}
	}

	// page through the whole visible set; the overview is a full aggregate,
	// not a listing, so no unit may be cut off at a page boundary
	var units []property.Unit
	for page := 1; ; page++ {
		batch, err := s.unitRepo.FindForScope(ctx, scope, shared.Filter{
			Page: page, PageSize: unitPageSize, OrderBy: "number", OrderDir: "asc",
		})
		if err != nil {
			return nil, err
		}
		units = append(units, batch...)
		if len(batch) < unitPageSize {
			break
		}
	}

	unitIDs := make([]uuid.UUID, len(units))
	for i, u := range units {
		unitIDs[i] = u.ID
	}

	leases, err := s.leaseRepo.FindActiveByUnits(ctx, unitIDs)
	if err != nil {
		return nil, err
	}
	// the repository query is already unit-bound, but every read path runs
	// through the scope predicate before rows leave the core
	leases = identity.FilterByUnit(scope, leases, func(l leasing.Lease) uuid.UUID { return l.UnitID })

	overview := &PortfolioOverview{
		AsOf:            now,
		TotalUnits:      len(units),
		ActiveLeases:    len(leases),
		Units:           units,
		Leases:          leases,
		Tenants:         make([]TenantSummary, 0, len(leases)),
		Obligations:     make([]ledger.RentObligation, 0, len(leases)),
		OutstandingRent: decimal.Zero,
	}
	for _, u := range units {
		switch u.Status {
		case property.UnitStatusOccupied:
			overview.OccupiedUnits++
		case property.UnitStatusAvailable:
			overview.AvailableUnits++
		}
	}

	for i := range leases {
		lease := &leases[i]

		if tenant, err := s.actorRepo.FindByID(ctx, lease.TenantID); err == nil && tenant != nil {
			overview.Tenants = append(overview.Tenants, TenantSummary{
				TenantID: tenant.ID,
				Name:     tenant.Name,
				Email:    tenant.Email,
				UnitID:   lease.UnitID,
			})
		}

		paid, err := s.paymentRepo.SumCompletedRent(ctx, lease.TenantID, int(now.Month()), now.Year())
		if err != nil {
			return nil, err
		}
		ob := ledger.ComputeRentObligation(lease, paid, now, s.lateFeePolicy)
		overview.Obligations = append(overview.Obligations, ob)

		switch ob.State {
		case ledger.ObligationDue:
			overview.TenantsDue++
		case ledger.ObligationPartial:
			overview.TenantsPartial++
		}
		if ob.Urgent {
			overview.TenantsUrgent++
		}
		overview.OutstandingRent = overview.OutstandingRent.Add(ob.Remaining)
	}

	return overview, nil
}
