package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/domain/shared"
)

// ActorModel is the persistence model for the Actor domain entity.
type ActorModel struct {
	AggregateModel
	Name            string         `gorm:"type:varchar(200);not null"`
	Email           string         `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash    string         `gorm:"type:varchar(100)"`
	Role            identity.Role  `gorm:"type:varchar(20);not null;index"`
	AssignedUnitIDs pq.StringArray `gorm:"type:uuid[]"`
	IsActive        bool           `gorm:"not null;default:true"`
	LastLoginAt     *time.Time
}

// TableName returns the table name for GORM
func (ActorModel) TableName() string {
	return "actors"
}

// ToDomain converts the persistence model to a domain Actor entity.
func (m *ActorModel) ToDomain() *identity.Actor {
	a := &identity.Actor{
		Name:            m.Name,
		Email:           m.Email,
		PasswordHash:    m.PasswordHash,
		Role:            m.Role,
		AssignedUnitIDs: arrayToUUIDs(m.AssignedUnitIDs),
		IsActive:        m.IsActive,
		LastLoginAt:     m.LastLoginAt,
	}
	a.BaseAggregateRoot = shared.BaseAggregateRoot{}
	m.PopulateAggregateRoot(&a.BaseAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain Actor entity.
func (m *ActorModel) FromDomain(a *identity.Actor) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Name = a.Name
	m.Email = a.Email
	m.PasswordHash = a.PasswordHash
	m.Role = a.Role
	m.AssignedUnitIDs = uuidsToArray(a.AssignedUnitIDs)
	m.IsActive = a.IsActive
	m.LastLoginAt = a.LastLoginAt
}

// ActorModelFromDomain creates a new persistence model from a domain Actor entity.
func ActorModelFromDomain(a *identity.Actor) *ActorModel {
	m := &ActorModel{}
	m.FromDomain(a)
	return m
}
