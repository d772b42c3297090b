package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLeaseRepository implements LeaseRepository using GORM
type GormLeaseRepository struct {
	db *gorm.DB
}

// NewGormLeaseRepository creates a new GormLeaseRepository
func NewGormLeaseRepository(db *gorm.DB) *GormLeaseRepository {
	return &GormLeaseRepository{db: db}
}

// Create inserts a lease in a single atomic statement. The partial unique
// indexes on (tenant_id) and (unit_id) scoped to status = 'active' reject a
// second active lease; losing that race surfaces as a conflict, never as a
// second row.
func (r *GormLeaseRepository) Create(ctx context.Context, lease *leasing.Lease) error {
	model := models.LeaseModelFromDomain(lease)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewConflictError("ACTIVE_LEASE_EXISTS",
				"Tenant or unit already has an active lease")
		}
		return err
	}
	return nil
}

// FindByID finds a lease by its ID, nil if none exists
func (r *GormLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Lease, error) {
	var model models.LeaseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByTenant returns the tenant's active lease, nil if none. Two
// active rows for one tenant mean the storage invariant has been violated;
// that is reported, never silently repaired.
func (r *GormLeaseRepository) FindActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*leasing.Lease, error) {
	var leaseModels []models.LeaseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, leasing.LeaseStatusActive).
		Limit(2).
		Find(&leaseModels).Error; err != nil {
		return nil, err
	}
	switch len(leaseModels) {
	case 0:
		return nil, nil
	case 1:
		return leaseModels[0].ToDomain(), nil
	default:
		return nil, shared.NewConsistencyError("DUPLICATE_ACTIVE_LEASE",
			"Tenant has more than one active lease")
	}
}

// FindActiveByUnit returns the unit's active lease, nil if none
func (r *GormLeaseRepository) FindActiveByUnit(ctx context.Context, unitID uuid.UUID) (*leasing.Lease, error) {
	var leaseModels []models.LeaseModel
	if err := r.db.WithContext(ctx).
		Where("unit_id = ? AND status = ?", unitID, leasing.LeaseStatusActive).
		Limit(2).
		Find(&leaseModels).Error; err != nil {
		return nil, err
	}
	switch len(leaseModels) {
	case 0:
		return nil, nil
	case 1:
		return leaseModels[0].ToDomain(), nil
	default:
		return nil, shared.NewConsistencyError("DUPLICATE_ACTIVE_LEASE",
			"Unit has more than one active lease")
	}
}

// FindActiveByUnits returns active leases for the given units
func (r *GormLeaseRepository) FindActiveByUnits(ctx context.Context, unitIDs []uuid.UUID) ([]leasing.Lease, error) {
	if len(unitIDs) == 0 {
		return []leasing.Lease{}, nil
	}
	var leaseModels []models.LeaseModel
	if err := r.db.WithContext(ctx).
		Where("unit_id IN ? AND status = ?", unitIDs, leasing.LeaseStatusActive).
		Find(&leaseModels).Error; err != nil {
		return nil, err
	}
	return toLeases(leaseModels), nil
}

// FindForScope returns leases visible under the given scope
func (r *GormLeaseRepository) FindForScope(ctx context.Context, scope identity.Scope, filter leasing.LeaseFilter) ([]leasing.Lease, error) {
	query := applyScope(r.db.WithContext(ctx).Model(&models.LeaseModel{}), scope, "unit_id")

	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.UnitID != nil {
		query = query.Where("unit_id = ?", *filter.UnitID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var leaseModels []models.LeaseModel
	if err := query.Order("start_date DESC").Find(&leaseModels).Error; err != nil {
		return nil, err
	}
	return toLeases(leaseModels), nil
}

// FindByTenant returns all leases (any status) for a tenant
func (r *GormLeaseRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]leasing.Lease, error) {
	var leaseModels []models.LeaseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("start_date DESC").
		Find(&leaseModels).Error; err != nil {
		return nil, err
	}
	return toLeases(leaseModels), nil
}

// FindActiveElapsed returns active leases whose end date has passed
func (r *GormLeaseRepository) FindActiveElapsed(ctx context.Context, now time.Time) ([]leasing.Lease, error) {
	var leaseModels []models.LeaseModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND end_date <= ?", leasing.LeaseStatusActive, now).
		Find(&leaseModels).Error; err != nil {
		return nil, err
	}
	return toLeases(leaseModels), nil
}

// HasActiveByUnit reports whether the unit has an active lease
func (r *GormLeaseRepository) HasActiveByUnit(ctx context.Context, unitID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LeaseModel{}).
		Where("unit_id = ? AND status = ?", unitID, leasing.LeaseStatusActive).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetActiveLeaseCount returns the number of active leases. Not part of the
// domain repository interface; it feeds the telemetry gauge collector.
func (r *GormLeaseRepository) GetActiveLeaseCount(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LeaseModel{}).
		Where("status = ?", leasing.LeaseStatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SaveWithLock updates a lease with an optimistic version check.
// Returns a conflict if another transaction modified the row first.
func (r *GormLeaseRepository) SaveWithLock(ctx context.Context, lease *leasing.Lease) error {
	model := models.LeaseModelFromDomain(lease)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", lease.ID, lease.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConflictError("OPTIMISTIC_LOCK_ERROR",
			"The lease has been modified by another transaction")
	}
	return nil
}

func toLeases(leaseModels []models.LeaseModel) []leasing.Lease {
	leases := make([]leasing.Lease, len(leaseModels))
	for i, model := range leaseModels {
		leases[i] = *model.ToDomain()
	}
	return leases
}

// Ensure GormLeaseRepository implements LeaseRepository
var _ leasing.LeaseRepository = (*GormLeaseRepository)(nil)
