package property

import (
	"testing"

	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnit(t *testing.T) {
	t.Run("creates available unit", func(t *testing.T) {
		u, err := NewUnit("4B", "North Tower", "12 Elm St", valueobject.NewMoneyUSDFromFloat(1000))
		require.NoError(t, err)
		assert.Equal(t, UnitStatusAvailable, u.Status)
		assert.Equal(t, "4B", u.Number)
		assert.Len(t, u.GetDomainEvents(), 1)
	})

	t.Run("rejects empty number", func(t *testing.T) {
		_, err := NewUnit("", "", "12 Elm St", valueobject.ZeroUSD())
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("rejects empty address", func(t *testing.T) {
		_, err := NewUnit("4B", "", "  ", valueobject.ZeroUSD())
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("rejects negative rent", func(t *testing.T) {
		_, err := NewUnit("4B", "", "12 Elm St", valueobject.NewMoneyUSDFromFloat(-1))
		assert.True(t, shared.IsValidation(err))
	})
}

func TestUnit_UpdateDetails(t *testing.T) {
	u, _ := NewUnit("4B", "", "12 Elm St", valueobject.NewMoneyUSDFromFloat(1000))

	require.NoError(t, u.UpdateDetails(2, 1, 850, "corner unit"))
	assert.Equal(t, 2, u.Bedrooms)
	assert.Equal(t, 850, u.SquareFeet)

	assert.Error(t, u.UpdateDetails(-1, 1, 850, ""))
}

func TestUnit_StatusTransitions(t *testing.T) {
	u, _ := NewUnit("4B", "", "12 Elm St", valueobject.NewMoneyUSDFromFloat(1000))
	v := u.Version

	u.MarkOccupied()
	assert.Equal(t, UnitStatusOccupied, u.Status)
	assert.Equal(t, v+1, u.Version)

	// idempotent
	u.MarkOccupied()
	assert.Equal(t, v+1, u.Version)

	u.MarkAvailable()
	assert.Equal(t, UnitStatusAvailable, u.Status)
}
