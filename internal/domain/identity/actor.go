package identity

import (
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

// Role represents an actor's role. The enumeration is closed: every role the
// system relies on is listed here, including the restricted manager role.
type Role string

const (
	RoleAdmin      Role = "admin"      // full manager/supervisor, sees everything
	RoleManager    Role = "manager"    // restricted manager, scoped to assigned units
	RoleTenant     Role = "tenant"     // renter, scoped to own records by identity
	RoleTechnician Role = "technician" // maintenance staff, scoped by identity
)

// IsValid checks if the role is a valid Role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTenant, RoleTechnician:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// CanManageLeases returns true if the role may create/terminate/renew leases
func (r Role) CanManageLeases() bool {
	return r == RoleAdmin || r == RoleManager
}

// IsStaff returns true for back-office roles
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleTechnician
}

// Actor represents an identity making calls into the core: a manager, tenant
// or technician. A manager (restricted) additionally carries the explicit set
// of unit IDs that is the sole source of truth for their visibility scope.
type Actor struct {
	shared.BaseAggregateRoot
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	PasswordHash    string      `json:"-"`
	Role            Role        `json:"role"`
	AssignedUnitIDs []uuid.UUID `json:"assigned_unit_ids,omitempty"`
	IsActive        bool        `json:"is_active"`
	LastLoginAt     *time.Time  `json:"last_login_at,omitempty"`
}

// NewActor creates a new actor
func NewActor(name, email string, role Role) (*Actor, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, shared.NewValidationError("INVALID_EMAIL", "Email address is not valid")
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("INVALID_ROLE", "Role is not a recognized role")
	}

	a := &Actor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		Role:              role,
		IsActive:          true,
	}
	a.AddDomainEvent(NewActorCreatedEvent(a))
	return a, nil
}

// SetPassword hashes and stores a new password
func (a *Actor) SetPassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (a *Actor) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
	return err == nil
}

// AssignUnit adds a unit to the actor's assigned-unit set.
// Only restricted managers carry unit assignments.
func (a *Actor) AssignUnit(unitID uuid.UUID) error {
	if a.Role != RoleManager {
		return shared.NewValidationError("INVALID_ASSIGNMENT", "Only restricted managers carry unit assignments")
	}
	if unitID == uuid.Nil {
		return shared.NewValidationError("INVALID_UNIT", "Unit ID cannot be empty")
	}
	if slices.Contains(a.AssignedUnitIDs, unitID) {
		return nil
	}
	a.AssignedUnitIDs = append(a.AssignedUnitIDs, unitID)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// UnassignUnit removes a unit from the actor's assigned-unit set
func (a *Actor) UnassignUnit(unitID uuid.UUID) {
	before := len(a.AssignedUnitIDs)
	a.AssignedUnitIDs = slices.DeleteFunc(a.AssignedUnitIDs, func(id uuid.UUID) bool {
		return id == unitID
	})
	if len(a.AssignedUnitIDs) != before {
		a.UpdatedAt = time.Now()
		a.IncrementVersion()
	}
}

// ChangeRole changes the actor's role. Leaving the manager role clears the
// assigned-unit set so a stale scope can never survive a role change.
func (a *Actor) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewValidationError("INVALID_ROLE", "Role is not a recognized role")
	}
	if a.Role == role {
		return nil
	}
	a.Role = role
	if role != RoleManager {
		a.AssignedUnitIDs = nil
	}
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	a.AddDomainEvent(NewActorRoleChangedEvent(a))
	return nil
}

// Deactivate disables the actor
func (a *Actor) Deactivate() {
	if !a.IsActive {
		return
	}
	a.IsActive = false
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// RecordLogin stamps the last login time
func (a *Actor) RecordLogin(at time.Time) {
	a.LastLoginAt = &at
	a.UpdatedAt = at
}

// IsAssignedTo returns true if the unit is in the actor's assigned set
func (a *Actor) IsAssignedTo(unitID uuid.UUID) bool {
	return slices.Contains(a.AssignedUnitIDs, unitID)
}
