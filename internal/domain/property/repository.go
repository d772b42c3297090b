package property

import (
	"context"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/domain/shared"
)

// UnitRepository persists units
type UnitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Unit, error)
	// FindForScope returns units visible under the given scope
	FindForScope(ctx context.Context, scope identity.Scope, filter shared.Filter) ([]Unit, error)
	Save(ctx context.Context, unit *Unit) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, scope identity.Scope) (int64, error)
}
