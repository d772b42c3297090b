package identity

import (
	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
)

// ScopeKind distinguishes full visibility from a restricted unit set
type ScopeKind string

const (
	ScopeFull       ScopeKind = "full"
	ScopeRestricted ScopeKind = "restricted"
)

// Scope is the computed visibility filter for an actor. Full passes
// everything; Restricted passes only rows attached to a unit in the set.
// A Scope is resolved fresh per request and must never be cached across
// requests, since the actor's assigned-unit set can change between calls.
type Scope struct {
	kind    ScopeKind
	unitIDs map[uuid.UUID]struct{}
}

// NewFullScope returns a scope that passes everything
func NewFullScope() Scope {
	return Scope{kind: ScopeFull}
}

// NewRestrictedScope returns a scope limited to the given unit IDs
func NewRestrictedScope(unitIDs []uuid.UUID) Scope {
	set := make(map[uuid.UUID]struct{}, len(unitIDs))
	for _, id := range unitIDs {
		set[id] = struct{}{}
	}
	return Scope{kind: ScopeRestricted, unitIDs: set}
}

// ResolveScope produces the visibility scope for an actor. Admins get full
// visibility; restricted managers get exactly their assigned-unit set, read
// directly from the actor record with no derived computation. Tenants and
// technicians never resolve a scope: they are limited to their own records
// by identity, not by unit filtering.
func ResolveScope(actor *Actor) (Scope, error) {
	if actor == nil {
		return Scope{}, shared.NewValidationError("INVALID_ACTOR", "Actor is required")
	}
	switch actor.Role {
	case RoleAdmin:
		return NewFullScope(), nil
	case RoleManager:
		return NewRestrictedScope(actor.AssignedUnitIDs), nil
	default:
		return Scope{}, shared.NewAccessDeniedError("SCOPE_NOT_APPLICABLE",
			"Role "+actor.Role.String()+" is scoped by identity, not by unit set")
	}
}

// Kind returns the scope kind
func (s Scope) Kind() ScopeKind {
	return s.kind
}

// IsFull returns true if the scope passes everything
func (s Scope) IsFull() bool {
	return s.kind == ScopeFull
}

// AllowsUnit returns true if a row attached to the unit passes the scope
func (s Scope) AllowsUnit(unitID uuid.UUID) bool {
	if s.kind == ScopeFull {
		return true
	}
	_, ok := s.unitIDs[unitID]
	return ok
}

// UnitIDs returns the restricted unit set. Empty for a full scope.
func (s Scope) UnitIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.unitIDs))
	for id := range s.unitIDs {
		ids = append(ids, id)
	}
	return ids
}

// FilterByUnit filters items down to those whose unit passes the scope.
// It is the single predicate every read path returning units, leases,
// tenants or requests must go through before rows leave the core.
func FilterByUnit[T any](s Scope, items []T, unitID func(T) uuid.UUID) []T {
	if s.IsFull() {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if s.AllowsUnit(unitID(item)) {
			out = append(out, item)
		}
	}
	return out
}
