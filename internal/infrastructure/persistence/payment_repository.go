package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/domain/ledger"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/propman/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save creates or updates a payment. A transaction_id uniqueness violation
// becomes a conflict so concurrent duplicate submissions cannot both land.
func (r *GormPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewConflictError("DUPLICATE_TRANSACTION",
				"A payment with this transaction ID already exists")
		}
		return err
	}
	return nil
}

// FindByID finds a payment by its ID, nil if none exists
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTransactionID returns the payment for the idempotency key, nil if none exists yet
func (r *GormPaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "transaction_id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SumCompletedRent totals completed rent payments for the tenant in the given
// calendar month
func (r *GormPaymentRepository) SumCompletedRent(ctx context.Context, tenantID uuid.UUID, month, year int) (valueobject.Money, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("tenant_id = ? AND type = ? AND status = ? AND period_month = ? AND period_year = ?",
			tenantID, ledger.PaymentTypeRent, ledger.PaymentStatusCompleted, month, year).
		Scan(&total).Error
	if err != nil {
		return valueobject.ZeroUSD(), err
	}
	return valueobject.NewMoneyUSD(total), nil
}

// FindByTenant returns the tenant's payments, newest first
func (r *GormPaymentRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[ledger.Payment], error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	var paymentModels []models.PaymentModel
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(toPayments(paymentModels), total, page, pageSize)
	return &result, nil
}

// FindForScope returns payments on units visible under the scope, newest first
func (r *GormPaymentRepository) FindForScope(ctx context.Context, scope identity.Scope, filter ledger.PaymentFilter) (*shared.Paginated[ledger.Payment], error) {
	query := applyScope(r.db.WithContext(ctx).Model(&models.PaymentModel{}), scope, "unit_id")

	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.UnitID != nil {
		query = query.Where("unit_id = ?", *filter.UnitID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	var paymentModels []models.PaymentModel
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(toPayments(paymentModels), total, page, pageSize)
	return &result, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}

func toPayments(paymentModels []models.PaymentModel) []ledger.Payment {
	payments := make([]ledger.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ ledger.PaymentRepository = (*GormPaymentRepository)(nil)
