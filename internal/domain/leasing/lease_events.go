package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
)

// Event types for the Lease aggregate
const (
	EventTypeLeaseCreated    = "leasing.lease.created"
	EventTypeLeaseActivated  = "leasing.lease.activated"
	EventTypeLeaseTerminated = "leasing.lease.terminated"
	EventTypeLeaseExpired    = "leasing.lease.expired"
	EventTypeLeaseRenewed    = "leasing.lease.renewed"
)

// LeaseCreatedEvent is published when a lease is created
type LeaseCreatedEvent struct {
	shared.BaseDomainEvent
	TenantID  uuid.UUID   `json:"tenant_id"`
	UnitID    uuid.UUID   `json:"unit_id"`
	StartDate time.Time   `json:"start_date"`
	EndDate   time.Time   `json:"end_date"`
	Status    LeaseStatus `json:"status"`
}

// NewLeaseCreatedEvent creates a new LeaseCreatedEvent
func NewLeaseCreatedEvent(l *Lease) *LeaseCreatedEvent {
	return &LeaseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseCreated, "Lease", l.ID),
		TenantID:        l.TenantID,
		UnitID:          l.UnitID,
		StartDate:       l.StartDate,
		EndDate:         l.EndDate,
		Status:          l.Status,
	}
}

// LeaseActivatedEvent is published when a pending lease becomes active
type LeaseActivatedEvent struct {
	shared.BaseDomainEvent
	TenantID uuid.UUID `json:"tenant_id"`
	UnitID   uuid.UUID `json:"unit_id"`
}

// NewLeaseActivatedEvent creates a new LeaseActivatedEvent
func NewLeaseActivatedEvent(l *Lease) *LeaseActivatedEvent {
	return &LeaseActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseActivated, "Lease", l.ID),
		TenantID:        l.TenantID,
		UnitID:          l.UnitID,
	}
}

// LeaseTerminatedEvent is published when a lease is terminated early
type LeaseTerminatedEvent struct {
	shared.BaseDomainEvent
	TenantID uuid.UUID `json:"tenant_id"`
	UnitID   uuid.UUID `json:"unit_id"`
	Reason   string    `json:"reason"`
}

// NewLeaseTerminatedEvent creates a new LeaseTerminatedEvent
func NewLeaseTerminatedEvent(l *Lease, reason string) *LeaseTerminatedEvent {
	return &LeaseTerminatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseTerminated, "Lease", l.ID),
		TenantID:        l.TenantID,
		UnitID:          l.UnitID,
		Reason:          reason,
	}
}

// LeaseExpiredEvent is published when a lease reaches its natural end
type LeaseExpiredEvent struct {
	shared.BaseDomainEvent
	TenantID uuid.UUID `json:"tenant_id"`
	UnitID   uuid.UUID `json:"unit_id"`
}

// NewLeaseExpiredEvent creates a new LeaseExpiredEvent
func NewLeaseExpiredEvent(l *Lease) *LeaseExpiredEvent {
	return &LeaseExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseExpired, "Lease", l.ID),
		TenantID:        l.TenantID,
		UnitID:          l.UnitID,
	}
}

// LeaseRenewedEvent is published on the renewal lease when it is created
type LeaseRenewedEvent struct {
	shared.BaseDomainEvent
	PreviousLeaseID uuid.UUID `json:"previous_lease_id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	UnitID          uuid.UUID `json:"unit_id"`
	EndDate         time.Time `json:"end_date"`
}

// NewLeaseRenewedEvent creates a new LeaseRenewedEvent
func NewLeaseRenewedEvent(old, renewed *Lease) *LeaseRenewedEvent {
	return &LeaseRenewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseRenewed, "Lease", renewed.ID),
		PreviousLeaseID: old.ID,
		TenantID:        renewed.TenantID,
		UnitID:          renewed.UnitID,
		EndDate:         renewed.EndDate,
	}
}
