package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActor(t *testing.T) {
	t.Run("creates active actor", func(t *testing.T) {
		a, err := NewActor("Dana Wells", "dana@example.com", RoleManager)
		require.NoError(t, err)
		assert.True(t, a.IsActive)
		assert.Equal(t, RoleManager, a.Role)
		assert.Len(t, a.GetDomainEvents(), 1)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewActor("  ", "dana@example.com", RoleTenant)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewActor("Dana", "not-an-email", RoleTenant)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewActor("Dana", "dana@example.com", Role("owner"))
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("normalizes email", func(t *testing.T) {
		a, err := NewActor("Dana", " Dana@Example.COM ", RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, "dana@example.com", a.Email)
	})
}

func TestActor_Password(t *testing.T) {
	a, err := NewActor("Dana", "dana@example.com", RoleTenant)
	require.NoError(t, err)

	t.Run("rejects short password", func(t *testing.T) {
		assert.True(t, shared.IsValidation(a.SetPassword("short")))
	})

	t.Run("verifies stored password", func(t *testing.T) {
		require.NoError(t, a.SetPassword("correct horse battery"))
		assert.True(t, a.VerifyPassword("correct horse battery"))
		assert.False(t, a.VerifyPassword("wrong password"))
	})
}

func TestRole_IsValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleManager, RoleTenant, RoleTechnician} {
		assert.True(t, r.IsValid(), r)
	}
	assert.False(t, Role("supervisor").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestActor_AssignUnit(t *testing.T) {
	unitA := uuid.New()

	t.Run("only managers carry assignments", func(t *testing.T) {
		tenant, _ := NewActor("T", "t@example.com", RoleTenant)
		err := tenant.AssignUnit(unitA)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("assignment is idempotent", func(t *testing.T) {
		m, _ := NewActor("M", "m@example.com", RoleManager)
		require.NoError(t, m.AssignUnit(unitA))
		require.NoError(t, m.AssignUnit(unitA))
		assert.Len(t, m.AssignedUnitIDs, 1)
		assert.True(t, m.IsAssignedTo(unitA))
	})

	t.Run("rejects nil unit", func(t *testing.T) {
		m, _ := NewActor("M", "m2@example.com", RoleManager)
		assert.Error(t, m.AssignUnit(uuid.Nil))
	})
}

func TestActor_UnassignUnit(t *testing.T) {
	unitA, unitB := uuid.New(), uuid.New()
	m, _ := NewActor("M", "m@example.com", RoleManager)
	require.NoError(t, m.AssignUnit(unitA))
	require.NoError(t, m.AssignUnit(unitB))

	m.UnassignUnit(unitA)
	assert.False(t, m.IsAssignedTo(unitA))
	assert.True(t, m.IsAssignedTo(unitB))
}

func TestActor_ChangeRole_ClearsAssignments(t *testing.T) {
	m, _ := NewActor("M", "m@example.com", RoleManager)
	require.NoError(t, m.AssignUnit(uuid.New()))

	require.NoError(t, m.ChangeRole(RoleAdmin))
	assert.Empty(t, m.AssignedUnitIDs)
}

func TestResolveScope(t *testing.T) {
	unitA, unitB, unitC := uuid.New(), uuid.New(), uuid.New()

	t.Run("admin gets full scope", func(t *testing.T) {
		admin, _ := NewActor("A", "a@example.com", RoleAdmin)
		scope, err := ResolveScope(admin)
		require.NoError(t, err)
		assert.True(t, scope.IsFull())
		assert.True(t, scope.AllowsUnit(unitC))
	})

	t.Run("manager gets exactly the assigned set", func(t *testing.T) {
		m, _ := NewActor("M", "m@example.com", RoleManager)
		require.NoError(t, m.AssignUnit(unitA))
		require.NoError(t, m.AssignUnit(unitB))

		scope, err := ResolveScope(m)
		require.NoError(t, err)
		assert.False(t, scope.IsFull())
		assert.True(t, scope.AllowsUnit(unitA))
		assert.True(t, scope.AllowsUnit(unitB))
		assert.False(t, scope.AllowsUnit(unitC))
	})

	t.Run("manager with no assignments sees nothing", func(t *testing.T) {
		m, _ := NewActor("M", "m2@example.com", RoleManager)
		scope, err := ResolveScope(m)
		require.NoError(t, err)
		assert.False(t, scope.AllowsUnit(unitA))
	})

	t.Run("tenant cannot resolve a scope", func(t *testing.T) {
		tenant, _ := NewActor("T", "t@example.com", RoleTenant)
		_, err := ResolveScope(tenant)
		assert.True(t, shared.IsAccessDenied(err))
	})

	t.Run("nil actor", func(t *testing.T) {
		_, err := ResolveScope(nil)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestFilterByUnit(t *testing.T) {
	type row struct {
		unit uuid.UUID
		name string
	}
	unitA, unitB, unitC := uuid.New(), uuid.New(), uuid.New()
	rows := []row{{unitA, "a"}, {unitB, "b"}, {unitC, "c"}}

	t.Run("full scope passes everything", func(t *testing.T) {
		got := FilterByUnit(NewFullScope(), rows, func(r row) uuid.UUID { return r.unit })
		assert.Len(t, got, 3)
	})

	t.Run("restricted scope never leaks other units", func(t *testing.T) {
		scope := NewRestrictedScope([]uuid.UUID{unitA, unitB})
		got := FilterByUnit(scope, rows, func(r row) uuid.UUID { return r.unit })
		require.Len(t, got, 2)
		for _, r := range got {
			assert.NotEqual(t, unitC, r.unit)
		}
	})

	t.Run("empty restricted scope filters all", func(t *testing.T) {
		got := FilterByUnit(NewRestrictedScope(nil), rows, func(r row) uuid.UUID { return r.unit })
		assert.Empty(t, got)
	})
}
