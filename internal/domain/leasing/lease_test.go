package leasing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTerms() LeaseTerms {
	return LeaseTerms{
		MonthlyRent:     valueobject.NewMoneyUSDFromFloat(1000),
		SecurityDeposit: valueobject.NewMoneyUSDFromFloat(1500),
		RentDueDay:      1,
		LateFee:         valueobject.NewMoneyUSDFromFloat(50),
		GracePeriodDays: 5,
	}
}

func newTestLease(t *testing.T) *Lease {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	l, err := NewLease(uuid.New(), uuid.New(), start, end, validTerms())
	require.NoError(t, err)
	return l
}

func TestNewLease(t *testing.T) {
	t.Run("defaults to active", func(t *testing.T) {
		l := newTestLease(t)
		assert.Equal(t, LeaseStatusActive, l.Status)
		assert.Len(t, l.GetDomainEvents(), 1)
	})

	t.Run("pending on request", func(t *testing.T) {
		start := time.Now()
		l, err := NewPendingLease(uuid.New(), uuid.New(), start, start.AddDate(1, 0, 0), validTerms())
		require.NoError(t, err)
		assert.Equal(t, LeaseStatusPending, l.Status)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		start := time.Now()
		_, err := NewLease(uuid.New(), uuid.New(), start, start.AddDate(0, 0, -1), validTerms())
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("rejects due day out of range", func(t *testing.T) {
		terms := validTerms()
		terms.RentDueDay = 29
		start := time.Now()
		_, err := NewLease(uuid.New(), uuid.New(), start, start.AddDate(1, 0, 0), terms)
		assert.True(t, shared.IsValidation(err))

		terms.RentDueDay = 0
		_, err = NewLease(uuid.New(), uuid.New(), start, start.AddDate(1, 0, 0), terms)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("rejects zero rent", func(t *testing.T) {
		terms := validTerms()
		terms.MonthlyRent = valueobject.ZeroUSD()
		start := time.Now()
		_, err := NewLease(uuid.New(), uuid.New(), start, start.AddDate(1, 0, 0), terms)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestLease_Covers(t *testing.T) {
	l := newTestLease(t)

	assert.True(t, l.Covers(l.StartDate))
	assert.True(t, l.Covers(l.EndDate.AddDate(0, 0, -1)))
	assert.False(t, l.Covers(l.EndDate)) // end is exclusive
	assert.False(t, l.Covers(l.StartDate.AddDate(0, 0, -1)))
}

func TestLease_Terminate(t *testing.T) {
	t.Run("terminates active lease and appends reason", func(t *testing.T) {
		l := newTestLease(t)
		changed, err := l.Terminate("tenant relocated")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, LeaseStatusTerminated, l.Status)
		assert.NotNil(t, l.TerminatedAt)
		assert.Contains(t, l.Notes, "tenant relocated")
	})

	t.Run("idempotent when already terminated", func(t *testing.T) {
		l := newTestLease(t)
		_, err := l.Terminate("first")
		require.NoError(t, err)
		v := l.Version

		changed, err := l.Terminate("second")
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, v, l.Version)
		assert.NotContains(t, l.Notes, "second")
	})

	t.Run("conflict when expired", func(t *testing.T) {
		l := newTestLease(t)
		_, err := l.Expire(l.EndDate)
		require.NoError(t, err)

		_, err = l.Terminate("too late")
		assert.True(t, shared.IsConflict(err))
	})

	t.Run("pending lease can be terminated", func(t *testing.T) {
		start := time.Now()
		l, _ := NewPendingLease(uuid.New(), uuid.New(), start, start.AddDate(1, 0, 0), validTerms())
		changed, err := l.Terminate("application withdrawn")
		require.NoError(t, err)
		assert.True(t, changed)
	})
}

func TestLease_Expire(t *testing.T) {
	t.Run("expires elapsed active lease", func(t *testing.T) {
		l := newTestLease(t)
		changed, err := l.Expire(l.EndDate.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, LeaseStatusExpired, l.Status)
	})

	t.Run("conflict before end date", func(t *testing.T) {
		l := newTestLease(t)
		_, err := l.Expire(l.EndDate.Add(-time.Hour))
		assert.True(t, shared.IsConflict(err))
		assert.Equal(t, LeaseStatusActive, l.Status)
	})

	t.Run("no-op on terminated lease", func(t *testing.T) {
		l := newTestLease(t)
		_, err := l.Terminate("early out")
		require.NoError(t, err)

		changed, err := l.Expire(l.EndDate.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, LeaseStatusTerminated, l.Status)
	})
}

func TestLease_Activate(t *testing.T) {
	start := time.Now()
	l, _ := NewPendingLease(uuid.New(), uuid.New(), start, start.AddDate(1, 0, 0), validTerms())

	require.NoError(t, l.Activate())
	assert.Equal(t, LeaseStatusActive, l.Status)

	err := l.Activate()
	assert.True(t, shared.IsConflict(err))
}

func TestLease_Renew(t *testing.T) {
	t.Run("creates pending lease starting at old end date", func(t *testing.T) {
		l := newTestLease(t)
		newEnd := l.EndDate.AddDate(1, 0, 0)

		renewed, err := l.Renew(newEnd, nil)
		require.NoError(t, err)

		assert.Equal(t, LeaseStatusPending, renewed.Status)
		assert.Equal(t, l.EndDate, renewed.StartDate)
		assert.Equal(t, newEnd, renewed.EndDate)
		assert.NotEqual(t, l.ID, renewed.ID)

		// terms inherited
		assert.True(t, l.MonthlyRent.Equal(renewed.MonthlyRent))
		assert.True(t, l.SecurityDeposit.Equal(renewed.SecurityDeposit))
		assert.True(t, l.LateFee.Equal(renewed.LateFee))
		assert.Equal(t, l.GracePeriodDays, renewed.GracePeriodDays)
	})

	t.Run("never mutates the original lease", func(t *testing.T) {
		l := newTestLease(t)
		origEnd, origStatus, origVersion := l.EndDate, l.Status, l.Version

		_, err := l.Renew(l.EndDate.AddDate(1, 0, 0), nil)
		require.NoError(t, err)

		assert.Equal(t, origEnd, l.EndDate)
		assert.Equal(t, origStatus, l.Status)
		assert.Equal(t, origVersion, l.Version)
	})

	t.Run("rent override applies", func(t *testing.T) {
		l := newTestLease(t)
		newRent := valueobject.NewMoneyUSDFromFloat(1100)

		renewed, err := l.Renew(l.EndDate.AddDate(1, 0, 0), &newRent)
		require.NoError(t, err)
		assert.True(t, renewed.MonthlyRent.Equal(newRent.Amount()))
	})

	t.Run("conflict on terminated lease", func(t *testing.T) {
		l := newTestLease(t)
		_, err := l.Terminate("gone")
		require.NoError(t, err)

		_, err = l.Renew(l.EndDate.AddDate(1, 0, 0), nil)
		assert.True(t, shared.IsConflict(err))
	})

	t.Run("rejects end date not after current end", func(t *testing.T) {
		l := newTestLease(t)
		_, err := l.Renew(l.EndDate, nil)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestLease_AddCoTenant(t *testing.T) {
	l := newTestLease(t)
	co := uuid.New()

	require.NoError(t, l.AddCoTenant(co))
	assert.Contains(t, l.CoTenantIDs, co)

	// idempotent, and primary tenant is never duplicated as co-tenant
	require.NoError(t, l.AddCoTenant(co))
	require.NoError(t, l.AddCoTenant(l.TenantID))
	assert.Len(t, l.CoTenantIDs, 1)
}

func TestLeaseStatus_IsTerminal(t *testing.T) {
	assert.False(t, LeaseStatusPending.IsTerminal())
	assert.False(t, LeaseStatusActive.IsTerminal())
	assert.True(t, LeaseStatusExpired.IsTerminal())
	assert.True(t, LeaseStatusTerminated.IsTerminal())
}
