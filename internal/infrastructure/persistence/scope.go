package persistence

import (
	"errors"

	"github.com/lib/pq"
	"github.com/propman/backend/internal/domain/identity"
	"gorm.io/gorm"
)

// applyScope narrows a query to the units visible under the scope. A full
// scope passes through untouched; a restricted scope becomes an IN clause on
// the given unit column. An empty restricted scope matches nothing.
func applyScope(query *gorm.DB, scope identity.Scope, unitColumn string) *gorm.DB {
	if scope.IsFull() {
		return query
	}
	unitIDs := scope.UnitIDs()
	if len(unitIDs) == 0 {
		return query.Where("1 = 0")
	}
	return query.Where(unitColumn+" IN ?", unitIDs)
}

// isUniqueViolation reports whether err is a uniqueness violation, either as
// GORM's translated error or as a raw Postgres 23505.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
