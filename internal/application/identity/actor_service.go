package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ActorService manages actor records and unit assignments. All mutating
// operations require an admin caller; assignments are the sole source of
// truth for a restricted manager's visibility.
type ActorService struct {
	actorRepo identity.ActorRepository
	logger    *zap.Logger
}

// ActorServiceConfig holds configuration for ActorService
type ActorServiceConfig struct {
	ActorRepo identity.ActorRepository
	Logger    *zap.Logger
}

// NewActorService creates a new ActorService
func NewActorService(config ActorServiceConfig) *ActorService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActorService{
		actorRepo: config.ActorRepo,
		logger:    logger,
	}
}

// CreateActorInput holds the fields needed to create an actor
type CreateActorInput struct {
	Name     string
	Email    string
	Password string
	Role     identity.Role
}

// CreateActor registers a new actor
func (s *ActorService) CreateActor(ctx context.Context, caller *identity.Actor, input CreateActorInput) (*identity.Actor, error) {
	if err := s.authorizeAdmin(caller); err != nil {
		return nil, err
	}

	actor, err := identity.NewActor(input.Name, input.Email, input.Role)
	if err != nil {
		return nil, err
	}
	if err := actor.SetPassword(input.Password); err != nil {
		return nil, err
	}

	if err := s.actorRepo.Save(ctx, actor); err != nil {
		return nil, err
	}

	s.logger.Info("Actor created",
		zap.String("actor_id", actor.ID.String()),
		zap.String("role", actor.Role.String()),
	)
	actor.ClearDomainEvents()
	return actor, nil
}

// AssignUnit adds a unit to a restricted manager's visibility set
func (s *ActorService) AssignUnit(ctx context.Context, caller *identity.Actor, actorID, unitID uuid.UUID) (*identity.Actor, error) {
	if err := s.authorizeAdmin(caller); err != nil {
		return nil, err
	}

	actor, err := s.findActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := actor.AssignUnit(unitID); err != nil {
		return nil, err
	}
	if err := s.actorRepo.Save(ctx, actor); err != nil {
		return nil, err
	}
	return actor, nil
}

// UnassignUnit removes a unit from a restricted manager's visibility set
func (s *ActorService) UnassignUnit(ctx context.Context, caller *identity.Actor, actorID, unitID uuid.UUID) (*identity.Actor, error) {
	if err := s.authorizeAdmin(caller); err != nil {
		return nil, err
	}

	actor, err := s.findActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	actor.UnassignUnit(unitID)
	if err := s.actorRepo.Save(ctx, actor); err != nil {
		return nil, err
	}
	return actor, nil
}

// ChangeRole changes an actor's role
func (s *ActorService) ChangeRole(ctx context.Context, caller *identity.Actor, actorID uuid.UUID, role identity.Role) (*identity.Actor, error) {
	if err := s.authorizeAdmin(caller); err != nil {
		return nil, err
	}

	actor, err := s.findActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := actor.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := s.actorRepo.Save(ctx, actor); err != nil {
		return nil, err
	}
	actor.ClearDomainEvents()
	return actor, nil
}

// DeactivateActor disables an actor
func (s *ActorService) DeactivateActor(ctx context.Context, caller *identity.Actor, actorID uuid.UUID) error {
	if err := s.authorizeAdmin(caller); err != nil {
		return err
	}

	actor, err := s.findActor(ctx, actorID)
	if err != nil {
		return err
	}
	actor.Deactivate()
	return s.actorRepo.Save(ctx, actor)
}

// ListByRole returns all actors holding a role
func (s *ActorService) ListByRole(ctx context.Context, caller *identity.Actor, role identity.Role) ([]identity.Actor, error) {
	if err := s.authorizeAdmin(caller); err != nil {
		return nil, err
	}
	return s.actorRepo.FindByRole(ctx, role)
}

func (s *ActorService) findActor(ctx context.Context, actorID uuid.UUID) (*identity.Actor, error) {
	actor, err := s.actorRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, shared.NewNotFoundError("ACTOR_NOT_FOUND", "Actor not found")
	}
	return actor, nil
}

func (s *ActorService) authorizeAdmin(caller *identity.Actor) error {
	if caller == nil || caller.Role != identity.RoleAdmin {
		return shared.NewAccessDeniedError("ADMIN_ONLY", "Only admins can manage actors")
	}
	return nil
}
