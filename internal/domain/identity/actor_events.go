package identity

import "github.com/propman/backend/internal/domain/shared"

// Event types for the Actor aggregate
const (
	EventTypeActorCreated     = "identity.actor.created"
	EventTypeActorRoleChanged = "identity.actor.role_changed"
)

// ActorCreatedEvent is published when an actor is created
type ActorCreatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// NewActorCreatedEvent creates a new ActorCreatedEvent
func NewActorCreatedEvent(a *Actor) *ActorCreatedEvent {
	return &ActorCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeActorCreated, "Actor", a.ID),
		Email:           a.Email,
		Role:            a.Role,
	}
}

// ActorRoleChangedEvent is published when an actor's role changes
type ActorRoleChangedEvent struct {
	shared.BaseDomainEvent
	Role Role `json:"role"`
}

// NewActorRoleChangedEvent creates a new ActorRoleChangedEvent
func NewActorRoleChangedEvent(a *Actor) *ActorRoleChangedEvent {
	return &ActorRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeActorRoleChanged, "Actor", a.ID),
		Role:            a.Role,
	}
}
