package identity

import (
	"context"

	"github.com/google/uuid"
)

// ActorRepository persists actors
type ActorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Actor, error)
	FindByEmail(ctx context.Context, email string) (*Actor, error)
	FindByRole(ctx context.Context, role Role) ([]Actor, error)
	Save(ctx context.Context, actor *Actor) error
}
