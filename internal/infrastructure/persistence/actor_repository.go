package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormActorRepository implements ActorRepository using GORM
type GormActorRepository struct {
	db *gorm.DB
}

// NewGormActorRepository creates a new GormActorRepository
func NewGormActorRepository(db *gorm.DB) *GormActorRepository {
	return &GormActorRepository{db: db}
}

// FindByID finds an actor by its ID, nil if none exists
func (r *GormActorRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Actor, error) {
	var model models.ActorModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds an actor by email, nil if none exists
func (r *GormActorRepository) FindByEmail(ctx context.Context, email string) (*identity.Actor, error) {
	var model models.ActorModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRole finds all actors with the given role
func (r *GormActorRepository) FindByRole(ctx context.Context, role identity.Role) ([]identity.Actor, error) {
	var actorModels []models.ActorModel
	if err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Order("name ASC").
		Find(&actorModels).Error; err != nil {
		return nil, err
	}

	actors := make([]identity.Actor, len(actorModels))
	for i, model := range actorModels {
		actors[i] = *model.ToDomain()
	}
	return actors, nil
}

// Save creates or updates an actor. A duplicate email becomes a conflict.
func (r *GormActorRepository) Save(ctx context.Context, actor *identity.Actor) error {
	model := models.ActorModelFromDomain(actor)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewConflictError("EMAIL_TAKEN", "An actor with this email already exists")
		}
		return err
	}
	return nil
}

// Ensure GormActorRepository implements ActorRepository
var _ identity.ActorRepository = (*GormActorRepository)(nil)
