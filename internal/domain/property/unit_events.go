package property

import "github.com/propman/backend/internal/domain/shared"

// Event types for the Unit aggregate
const (
	EventTypeUnitCreated = "property.unit.created"
	EventTypeUnitDeleted = "property.unit.deleted"
)

// UnitCreatedEvent is published when a unit is created
type UnitCreatedEvent struct {
	shared.BaseDomainEvent
	Number  string `json:"number"`
	Address string `json:"address"`
}

// NewUnitCreatedEvent creates a new UnitCreatedEvent
func NewUnitCreatedEvent(u *Unit) *UnitCreatedEvent {
	return &UnitCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUnitCreated, "Unit", u.ID),
		Number:          u.Number,
		Address:         u.Address,
	}
}

// UnitDeletedEvent is published when a unit is deleted
type UnitDeletedEvent struct {
	shared.BaseDomainEvent
	Number string `json:"number"`
}

// NewUnitDeletedEvent creates a new UnitDeletedEvent
func NewUnitDeletedEvent(u *Unit) *UnitDeletedEvent {
	return &UnitDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUnitDeleted, "Unit", u.ID),
		Number:          u.Number,
	}
}
