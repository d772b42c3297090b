package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/ledger"
	"github.com/propman/backend/internal/domain/property"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mocks
// =============================================================================

type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*property.Unit), args.Error(1)
}

func (m *MockUnitRepository) FindForScope(ctx context.Context, scope identity.Scope, filter shared.Filter) ([]property.Unit, error) {
	args := m.Called(ctx, scope, filter)
	return args.Get(0).([]property.Unit), args.Error(1)
}

func (m *MockUnitRepository) Save(ctx context.Context, unit *property.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUnitRepository) Count(ctx context.Context, scope identity.Scope) (int64, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).(int64), args.Error(1)
}

type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) Create(ctx context.Context, lease *leasing.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*leasing.Lease, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindActiveByUnit(ctx context.Context, unitID uuid.UUID) (*leasing.Lease, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindActiveByUnits(ctx context.Context, unitIDs []uuid.UUID) ([]leasing.Lease, error) {
	args := m.Called(ctx, unitIDs)
	return args.Get(0).([]leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindForScope(ctx context.Context, scope identity.Scope, filter leasing.LeaseFilter) ([]leasing.Lease, error) {
	args := m.Called(ctx, scope, filter)
	return args.Get(0).([]leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]leasing.Lease, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindActiveElapsed(ctx context.Context, now time.Time) ([]leasing.Lease, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) HasActiveByUnit(ctx context.Context, unitID uuid.UUID) (bool, error) {
	args := m.Called(ctx, unitID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeaseRepository) SaveWithLock(ctx context.Context, lease *leasing.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*ledger.Payment, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumCompletedRent(ctx context.Context, tenantID uuid.UUID, month, year int) (valueobject.Money, error) {
	args := m.Called(ctx, tenantID, month, year)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

func (m *MockPaymentRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[ledger.Payment], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[ledger.Payment]), args.Error(1)
}

func (m *MockPaymentRepository) FindForScope(ctx context.Context, scope identity.Scope, filter ledger.PaymentFilter) (*shared.Paginated[ledger.Payment], error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[ledger.Payment]), args.Error(1)
}

type MockActorRepository struct {
	mock.Mock
}

func (m *MockActorRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Actor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Actor), args.Error(1)
}

func (m *MockActorRepository) FindByEmail(ctx context.Context, email string) (*identity.Actor, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Actor), args.Error(1)
}

func (m *MockActorRepository) FindByRole(ctx context.Context, role identity.Role) ([]identity.Actor, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]identity.Actor), args.Error(1)
}

func (m *MockActorRepository) Save(ctx context.Context, actor *identity.Actor) error {
	args := m.Called(ctx, actor)
	return args.Error(0)
}

type MockLeaseExpirer struct {
	mock.Mock
}

func (m *MockLeaseExpirer) ExpireElapsedLeases(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

func usd(f float64) valueobject.Money {
	return valueobject.NewMoneyUSDFromFloat(f)
}

func testUnit(t *testing.T, number string) *property.Unit {
	t.Helper()
	u, err := property.NewUnit(number, "North Tower", "1 Main St", usd(1000))
	require.NoError(t, err)
	return u
}

func testLease(t *testing.T, unitID uuid.UUID) *leasing.Lease {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l, err := leasing.NewLease(uuid.New(), unitID, start, start.AddDate(1, 0, 0), leasing.LeaseTerms{
		MonthlyRent:     usd(1000),
		SecurityDeposit: usd(1500),
		RentDueDay:      1,
		LateFee:         usd(50),
		GracePeriodDays: 5,
	})
	require.NoError(t, err)
	return l
}

func testTenant(t *testing.T, id uuid.UUID) *identity.Actor {
	t.Helper()
	a, err := identity.NewActor("Tina Tenant", "tina@example.com", identity.RoleTenant)
	require.NoError(t, err)
	a.ID = id
	return a
}

type fixture struct {
	svc         *OverviewService
	unitRepo    *MockUnitRepository
	leaseRepo   *MockLeaseRepository
	paymentRepo *MockPaymentRepository
	actorRepo   *MockActorRepository
	expirer     *MockLeaseExpirer
}

func newFixture() *fixture {
	f := &fixture{
		unitRepo:    new(MockUnitRepository),
		leaseRepo:   new(MockLeaseRepository),
		paymentRepo: new(MockPaymentRepository),
		actorRepo:   new(MockActorRepository),
		expirer:     new(MockLeaseExpirer),
	}
	f.svc = NewOverviewService(OverviewServiceConfig{
		UnitRepo:     f.unitRepo,
		LeaseRepo:    f.leaseRepo,
		PaymentRepo:  f.paymentRepo,
		ActorRepo:    f.actorRepo,
		LeaseExpirer: f.expirer,
	})
	return f
}

// =============================================================================
// GetPortfolioOverview
// =============================================================================

func TestOverviewService_GetPortfolioOverview(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	admin, err := identity.NewActor("Ada Admin", "ada@example.com", identity.RoleAdmin)
	require.NoError(t, err)

	t.Run("aggregates units, leases, tenants and obligations", func(t *testing.T) {
		f := newFixture()

		occupied := testUnit(t, "101")
		occupied.MarkOccupied()
		vacant := testUnit(t, "102")
		lease := testLease(t, occupied.ID)
		tenant := testTenant(t, lease.TenantID)

		f.expirer.On("ExpireElapsedLeases", ctx, now).Return(0, nil)
		f.unitRepo.On("FindForScope", ctx, mock.Anything, mock.Anything).
			Return([]property.Unit{*occupied, *vacant}, nil)
		f.leaseRepo.On("FindActiveByUnits", ctx, mock.Anything).
			Return([]leasing.Lease{*lease}, nil)
		f.actorRepo.On("FindByID", ctx, lease.TenantID).Return(tenant, nil)
		f.paymentRepo.On("SumCompletedRent", ctx, lease.TenantID, 1, 2026).Return(usd(0), nil)

		overview, err := f.svc.GetPortfolioOverview(ctx, admin, now)
		require.NoError(t, err)

		assert.Equal(t, 2, overview.TotalUnits)
		assert.Equal(t, 1, overview.OccupiedUnits)
		assert.Equal(t, 1, overview.AvailableUnits)
		assert.Equal(t, 1, overview.ActiveLeases)
		require.Len(t, overview.Tenants, 1)
		assert.Equal(t, "Tina Tenant", overview.Tenants[0].Name)

		// nothing paid on the 12th with due day 1: due, urgent, fee assessed
		require.Len(t, overview.Obligations, 1)
		ob := overview.Obligations[0]
		assert.Equal(t, ledger.ObligationDue, ob.State)
		assert.Equal(t, 11, ob.DaysOverdue)
		assert.True(t, ob.Urgent)
		assert.True(t, ob.LateFee.Equal(decimal.NewFromInt(50)))
		assert.Equal(t, 1, overview.TenantsDue)
		assert.Equal(t, 1, overview.TenantsUrgent)
		assert.True(t, overview.OutstandingRent.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("pages through portfolios larger than one unit page", func(t *testing.T) {
		f := newFixture()

		firstPage := make([]property.Unit, 0, 500)
		for i := 0; i < 500; i++ {
			firstPage = append(firstPage, *testUnit(t, uuid.NewString()))
		}
		secondPage := []property.Unit{*testUnit(t, "overflow")}

		f.expirer.On("ExpireElapsedLeases", ctx, now).Return(0, nil)
		f.unitRepo.On("FindForScope", ctx, mock.Anything,
			mock.MatchedBy(func(filter shared.Filter) bool { return filter.Page == 1 })).
			Return(firstPage, nil).Once()
		f.unitRepo.On("FindForScope", ctx, mock.Anything,
			mock.MatchedBy(func(filter shared.Filter) bool { return filter.Page == 2 })).
			Return(secondPage, nil).Once()
		f.leaseRepo.On("FindActiveByUnits", ctx, mock.Anything).
			Return([]leasing.Lease{}, nil)

		overview, err := f.svc.GetPortfolioOverview(ctx, admin, now)
		require.NoError(t, err)
		assert.Equal(t, 501, overview.TotalUnits)
		f.unitRepo.AssertNumberOfCalls(t, "FindForScope", 2)
	})

	t.Run("reconciles elapsed leases before reading", func(t *testing.T) {
		f := newFixture()

		f.expirer.On("ExpireElapsedLeases", ctx, now).Return(2, nil)
		f.unitRepo.On("FindForScope", ctx, mock.Anything, mock.Anything).
			Return([]property.Unit{}, nil)
		f.leaseRepo.On("FindActiveByUnits", ctx, mock.Anything).
			Return([]leasing.Lease{}, nil)

		_, err := f.svc.GetPortfolioOverview(ctx, admin, now)
		require.NoError(t, err)
		f.expirer.AssertCalled(t, "ExpireElapsedLeases", ctx, now)
	})

	t.Run("restricted manager sees only scoped rows", func(t *testing.T) {
		f := newFixture()

		inScope := testUnit(t, "201")
		mgr, err := identity.NewActor("Max Manager", "max@example.com", identity.RoleManager)
		require.NoError(t, err)
		require.NoError(t, mgr.AssignUnit(inScope.ID))

		leaseIn := testLease(t, inScope.ID)
		leaseOut := testLease(t, uuid.New()) // outside the assigned set

		f.expirer.On("ExpireElapsedLeases", ctx, now).Return(0, nil)
		f.unitRepo.On("FindForScope", ctx, mock.Anything, mock.Anything).
			Return([]property.Unit{*inScope}, nil)
		f.leaseRepo.On("FindActiveByUnits", ctx, mock.Anything).
			Return([]leasing.Lease{*leaseIn, *leaseOut}, nil)
		f.actorRepo.On("FindByID", ctx, leaseIn.TenantID).Return(testTenant(t, leaseIn.TenantID), nil)
		f.paymentRepo.On("SumCompletedRent", ctx, leaseIn.TenantID, 1, 2026).Return(usd(1000), nil)

		overview, err := f.svc.GetPortfolioOverview(ctx, mgr, now)
		require.NoError(t, err)

		// the out-of-scope lease never leaves the core
		assert.Equal(t, 1, overview.ActiveLeases)
		require.Len(t, overview.Obligations, 1)
		assert.Equal(t, ledger.ObligationPaid, overview.Obligations[0].State)
	})

	t.Run("tenant cannot request the overview", func(t *testing.T) {
		f := newFixture()
		tenant := testTenant(t, uuid.New())

		_, err := f.svc.GetPortfolioOverview(ctx, tenant, now)
		assert.True(t, shared.IsAccessDenied(err))
	})
}
