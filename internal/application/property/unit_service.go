package property

import (
	"context"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/property"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// UnitService manages the unit inventory
type UnitService struct {
	unitRepo       property.UnitRepository
	leaseRepo      leasing.LeaseRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// UnitServiceConfig holds configuration for UnitService
type UnitServiceConfig struct {
	UnitRepo       property.UnitRepository
	LeaseRepo      leasing.LeaseRepository
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
}

// NewUnitService creates a new UnitService
func NewUnitService(config UnitServiceConfig) *UnitService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitService{
		unitRepo:       config.UnitRepo,
		leaseRepo:      config.LeaseRepo,
		eventPublisher: config.EventPublisher,
		logger:         logger,
	}
}

// CreateUnitInput holds the fields needed to create a unit
type CreateUnitInput struct {
	Number      string
	Building    string
	Address     string
	MonthlyRent valueobject.Money
	Bedrooms    int
	Bathrooms   int
	SquareFeet  int
	Notes       string
}

// CreateUnit adds a unit to the inventory. Only admins manage inventory;
// restricted managers operate within an inventory someone else defines.
func (s *UnitService) CreateUnit(ctx context.Context, actor *identity.Actor, input CreateUnitInput) (*property.Unit, error) {
	if err := s.authorizeInventoryWrite(actor); err != nil {
		return nil, err
	}

	unit, err := property.NewUnit(input.Number, input.Building, input.Address, input.MonthlyRent)
	if err != nil {
		return nil, err
	}
	if input.Bedrooms > 0 || input.Bathrooms > 0 || input.SquareFeet > 0 || input.Notes != "" {
		if err := unit.UpdateDetails(input.Bedrooms, input.Bathrooms, input.SquareFeet, input.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, unit)
	s.logger.Info("Unit created",
		zap.String("unit_id", unit.ID.String()),
		zap.String("number", unit.Number))
	return unit, nil
}

// UpdateUnitInput holds the editable unit fields
type UpdateUnitInput struct {
	Bedrooms    int
	Bathrooms   int
	SquareFeet  int
	Notes       string
	MonthlyRent *valueobject.Money
}

// UpdateUnit edits a unit's details. Restricted managers may edit units in
// their scope; only admins change rent.
func (s *UnitService) UpdateUnit(ctx context.Context, actor *identity.Actor, unitID uuid.UUID, input UpdateUnitInput) (*property.Unit, error) {
	if actor == nil {
		return nil, shared.NewValidationError("INVALID_ACTOR", "Actor is required")
	}
	scope, err := identity.ResolveScope(actor)
	if err != nil {
		return nil, err
	}
	if !scope.AllowsUnit(unitID) {
		return nil, shared.NewAccessDeniedError("UNIT_OUT_OF_SCOPE", "Unit is outside the actor's scope")
	}

	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, shared.NewNotFoundError("UNIT_NOT_FOUND", "Unit does not exist")
	}

	if err := unit.UpdateDetails(input.Bedrooms, input.Bathrooms, input.SquareFeet, input.Notes); err != nil {
		return nil, err
	}
	if input.MonthlyRent != nil {
		if actor.Role != identity.RoleAdmin {
			return nil, shared.NewAccessDeniedError("RENT_CHANGE_DENIED", "Only admins change unit rent")
		}
		if err := unit.SetRent(*input.MonthlyRent); err != nil {
			return nil, err
		}
	}

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// DeleteUnit removes a unit from the inventory. A unit with an active lease
// cannot be deleted.
func (s *UnitService) DeleteUnit(ctx context.Context, actor *identity.Actor, unitID uuid.UUID) error {
	if err := s.authorizeInventoryWrite(actor); err != nil {
		return err
	}

	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		return err
	}
	if unit == nil {
		return shared.NewNotFoundError("UNIT_NOT_FOUND", "Unit does not exist")
	}

	leased, err := s.leaseRepo.HasActiveByUnit(ctx, unitID)
	if err != nil {
		return err
	}
	if leased {
		return shared.NewConflictError("UNIT_LEASED", "Unit has an active lease and cannot be deleted")
	}

	if err := s.unitRepo.Delete(ctx, unitID); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, property.NewUnitDeletedEvent(unit)); err != nil {
			s.logger.Warn("Failed to publish unit deleted event", zap.Error(err))
		}
	}
	s.logger.Info("Unit deleted", zap.String("unit_id", unitID.String()))
	return nil
}

// GetUnit returns a single unit the actor may see
func (s *UnitService) GetUnit(ctx context.Context, actor *identity.Actor, unitID uuid.UUID) (*property.Unit, error) {
	scope, err := identity.ResolveScope(actor)
	if err != nil {
		return nil, err
	}
	if !scope.AllowsUnit(unitID) {
		return nil, shared.NewAccessDeniedError("UNIT_OUT_OF_SCOPE", "Unit is outside the actor's scope")
	}

	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, shared.NewNotFoundError("UNIT_NOT_FOUND", "Unit does not exist")
	}
	return unit, nil
}

// GetAccessibleUnits returns the units visible under the actor's scope
func (s *UnitService) GetAccessibleUnits(ctx context.Context, actor *identity.Actor, filter shared.Filter) ([]property.Unit, error) {
	scope, err := identity.ResolveScope(actor)
	if err != nil {
		return nil, err
	}
	return s.unitRepo.FindForScope(ctx, scope, filter)
}

func (s *UnitService) authorizeInventoryWrite(actor *identity.Actor) error {
	if actor == nil {
		return shared.NewValidationError("INVALID_ACTOR", "Actor is required")
	}
	if actor.Role != identity.RoleAdmin {
		return shared.NewAccessDeniedError("INVENTORY_WRITE_DENIED", "Only admins manage the unit inventory")
	}
	return nil
}

func (s *UnitService) publishEvents(ctx context.Context, unit *property.Unit) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range unit.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish unit event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	unit.ClearDomainEvents()
}
