package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/domain/ledger"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPaymentRepository creates a GormPaymentRepository with a mocked SQL connection
func newMockPaymentRepository(t *testing.T) (*GormPaymentRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPaymentRepository(gormDB), mock, mockDB
}

func testPayment(t *testing.T) *ledger.Payment {
	t.Helper()
	payment, err := ledger.NewPayment(ledger.NewPaymentInput{
		TenantID:      uuid.New(),
		UnitID:        uuid.New(),
		Type:          ledger.PaymentTypeRent,
		Amount:        valueobject.NewMoneyUSDFromFloat(1000),
		Method:        ledger.PaymentMethodCard,
		PeriodMonth:   3,
		PeriodYear:    2026,
		TransactionID: "txn-001",
	})
	require.NoError(t, err)
	return payment
}

func paymentRows(p *ledger.Payment) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version",
		"tenant_id", "unit_id", "type", "amount", "method", "status",
		"period_month", "period_year", "transaction_id",
	}).AddRow(
		p.ID, p.CreatedAt, p.UpdatedAt, p.Version,
		p.TenantID, p.UnitID, string(p.Type), p.Amount, string(p.Method), string(p.Status),
		p.PeriodMonth, p.PeriodYear, p.TransactionID,
	)
}

func TestGormPaymentRepository_Save(t *testing.T) {
	t.Run("updates an existing payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Save(context.Background(), testPayment(t))

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate transaction id is a conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO "payments"`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_payments_transaction_id"})

		err := repo.Save(context.Background(), testPayment(t))

		assert.True(t, shared.IsConflict(err))
	})
}

func TestGormPaymentRepository_FindByTransactionID(t *testing.T) {
	t.Run("finds the payment for the key", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		payment := testPayment(t)

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE transaction_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("txn-001", 1).
			WillReturnRows(paymentRows(payment))

		found, err := repo.FindByTransactionID(context.Background(), "txn-001")

		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "txn-001", found.TransactionID)
		assert.Equal(t, ledger.PaymentStatusPending, found.Status)
	})

	t.Run("returns nil for an unknown key", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE transaction_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("txn-missing", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		found, err := repo.FindByTransactionID(context.Background(), "txn-missing")

		assert.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestGormPaymentRepository_SumCompletedRent(t *testing.T) {
	t.Run("totals the period's completed rent", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "payments"`).
			WithArgs(tenantID, "rent", "completed", 3, 2026).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(decimal.NewFromInt(600)))

		total, err := repo.SumCompletedRent(context.Background(), tenantID, 3, 2026)

		require.NoError(t, err)
		assert.True(t, total.Amount().Equal(decimal.NewFromInt(600)))
	})

	t.Run("empty period sums to zero", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "payments"`).
			WithArgs(tenantID, "rent", "completed", 4, 2026).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(decimal.Zero))

		total, err := repo.SumCompletedRent(context.Background(), tenantID, 4, 2026)

		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})
}

func TestGormPaymentRepository_FindByTenant(t *testing.T) {
	repo, mock, mockDB := newMockPaymentRepository(t)
	defer mockDB.Close()

	payment := testPayment(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "payments" WHERE tenant_id = \$1`).
		WithArgs(payment.TenantID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE tenant_id = \$1 ORDER BY created_at DESC LIMIT .*`).
		WithArgs(payment.TenantID, 20).
		WillReturnRows(paymentRows(payment))

	page, err := repo.FindByTenant(context.Background(), payment.TenantID, shared.Filter{Page: 1, PageSize: 20})

	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, payment.TransactionID, page.Items[0].TransactionID)
}

func TestGormPaymentRepository_FindForScope(t *testing.T) {
	repo, mock, mockDB := newMockPaymentRepository(t)
	defer mockDB.Close()

	payment := testPayment(t)
	scope := identity.NewRestrictedScope([]uuid.UUID{payment.UnitID})

	mock.ExpectQuery(`SELECT count\(\*\) FROM "payments" WHERE unit_id IN \(\$1\)`).
		WithArgs(payment.UnitID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE unit_id IN \(\$1\) ORDER BY created_at DESC LIMIT .*`).
		WithArgs(payment.UnitID, 20).
		WillReturnRows(paymentRows(payment))

	page, err := repo.FindForScope(context.Background(), scope, ledger.PaymentFilter{Page: 1, PageSize: 20})

	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
}
