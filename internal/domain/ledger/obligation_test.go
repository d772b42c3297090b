package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lease of 1000/month, due on the 1st, 5-day grace, 50 flat late fee,
// covering all of 2026
func obligationLease(t *testing.T) *leasing.Lease {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l, err := leasing.NewLease(uuid.New(), uuid.New(), start, start.AddDate(1, 0, 0), leasing.LeaseTerms{
		MonthlyRent:     valueobject.NewMoneyUSDFromFloat(1000),
		SecurityDeposit: valueobject.NewMoneyUSDFromFloat(1500),
		RentDueDay:      1,
		LateFee:         valueobject.NewMoneyUSDFromFloat(50),
		GracePeriodDays: 5,
	})
	require.NoError(t, err)
	return l
}

func usd(f float64) valueobject.Money {
	return valueobject.NewMoneyUSDFromFloat(f)
}

func TestComputeRentObligation(t *testing.T) {
	flat := NewFlatLateFeePolicy()

	t.Run("partial payment past grace", func(t *testing.T) {
		l := obligationLease(t)
		asOf := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

		ob := ComputeRentObligation(l, usd(600), asOf, flat)

		assert.Equal(t, ObligationPartial, ob.State)
		assert.True(t, ob.Remaining.Equal(decimal.NewFromInt(400)))
		assert.Equal(t, 9, ob.DaysOverdue)
		assert.True(t, ob.LateFee.Equal(decimal.NewFromInt(50)))
		assert.True(t, ob.Urgent)
	})

	t.Run("exact payment is paid", func(t *testing.T) {
		l := obligationLease(t)
		asOf := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

		ob := ComputeRentObligation(l, usd(1000), asOf, flat)

		assert.Equal(t, ObligationPaid, ob.State)
		assert.True(t, ob.Remaining.IsZero())
		assert.Zero(t, ob.DaysOverdue)
		assert.True(t, ob.LateFee.IsZero())
		assert.False(t, ob.Urgent)
	})

	t.Run("overpayment is paid with zero remaining", func(t *testing.T) {
		l := obligationLease(t)
		asOf := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

		ob := ComputeRentObligation(l, usd(1200), asOf, flat)

		assert.Equal(t, ObligationPaid, ob.State)
		assert.True(t, ob.Remaining.IsZero())
	})

	t.Run("nothing paid past grace is due and urgent", func(t *testing.T) {
		l := obligationLease(t)
		asOf := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

		ob := ComputeRentObligation(l, usd(0), asOf, flat)

		assert.Equal(t, ObligationDue, ob.State)
		assert.Equal(t, 11, ob.DaysOverdue)
		assert.True(t, ob.LateFee.Equal(decimal.NewFromInt(50)))
		assert.True(t, ob.Urgent)
	})

	t.Run("within grace carries no late fee", func(t *testing.T) {
		l := obligationLease(t)
		asOf := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)

		ob := ComputeRentObligation(l, usd(0), asOf, flat)

		assert.Equal(t, ObligationDue, ob.State)
		assert.Equal(t, 3, ob.DaysOverdue)
		assert.True(t, ob.LateFee.IsZero())
		assert.False(t, ob.Urgent)
	})

	t.Run("before due day is not due", func(t *testing.T) {
		l := obligationLease(t)
		// due on the 15th this time
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		terms := l.Terms()
		terms.RentDueDay = 15
		l2, err := leasing.NewLease(uuid.New(), uuid.New(), start, start.AddDate(1, 0, 0), terms)
		require.NoError(t, err)

		ob := ComputeRentObligation(l2, usd(0), time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), flat)

		assert.Equal(t, ObligationNotDue, ob.State)
		assert.Zero(t, ob.DaysOverdue)
		assert.True(t, ob.LateFee.IsZero())
	})

	t.Run("no lease is inactive", func(t *testing.T) {
		ob := ComputeRentObligation(nil, usd(0), time.Now(), flat)
		assert.Equal(t, ObligationInactive, ob.State)
	})

	t.Run("terminated lease is inactive", func(t *testing.T) {
		l := obligationLease(t)
		_, err := l.Terminate("moved out")
		require.NoError(t, err)

		ob := ComputeRentObligation(l, usd(0), time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), flat)
		assert.Equal(t, ObligationInactive, ob.State)
	})

	t.Run("lease not covering the date is inactive", func(t *testing.T) {
		l := obligationLease(t)
		ob := ComputeRentObligation(l, usd(0), time.Date(2027, 3, 12, 0, 0, 0, 0, time.UTC), flat)
		assert.Equal(t, ObligationInactive, ob.State)
	})

	t.Run("due exactly on the due day", func(t *testing.T) {
		l := obligationLease(t)
		ob := ComputeRentObligation(l, usd(0), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), flat)

		assert.Equal(t, ObligationDue, ob.State)
		assert.Zero(t, ob.DaysOverdue)
		assert.True(t, ob.LateFee.IsZero())
		assert.False(t, ob.Urgent)
	})
}
