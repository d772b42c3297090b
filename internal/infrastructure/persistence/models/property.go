package models

import (
	"github.com/propman/backend/internal/domain/property"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UnitModel is the persistence model for the Unit domain entity.
type UnitModel struct {
	AggregateModel
	Number      string              `gorm:"type:varchar(50);not null"`
	Building    string              `gorm:"type:varchar(200)"`
	Address     string              `gorm:"type:text;not null"`
	Bedrooms    int                 `gorm:"not null;default:0"`
	Bathrooms   int                 `gorm:"not null;default:0"`
	SquareFeet  int                 `gorm:"not null;default:0"`
	MonthlyRent decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Status      property.UnitStatus `gorm:"type:varchar(20);not null;default:'available';index"`
	Notes       string              `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (UnitModel) TableName() string {
	return "units"
}

// ToDomain converts the persistence model to a domain Unit entity.
func (m *UnitModel) ToDomain() *property.Unit {
	u := &property.Unit{
		Number:      m.Number,
		Building:    m.Building,
		Address:     m.Address,
		Bedrooms:    m.Bedrooms,
		Bathrooms:   m.Bathrooms,
		SquareFeet:  m.SquareFeet,
		MonthlyRent: m.MonthlyRent,
		Status:      m.Status,
		Notes:       m.Notes,
	}
	u.BaseAggregateRoot = shared.BaseAggregateRoot{}
	m.PopulateAggregateRoot(&u.BaseAggregateRoot)
	return u
}

// FromDomain populates the persistence model from a domain Unit entity.
func (m *UnitModel) FromDomain(u *property.Unit) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Number = u.Number
	m.Building = u.Building
	m.Address = u.Address
	m.Bedrooms = u.Bedrooms
	m.Bathrooms = u.Bathrooms
	m.SquareFeet = u.SquareFeet
	m.MonthlyRent = u.MonthlyRent
	m.Status = u.Status
	m.Notes = u.Notes
}

// UnitModelFromDomain creates a new persistence model from a domain Unit entity.
func UnitModelFromDomain(u *property.Unit) *UnitModel {
	m := &UnitModel{}
	m.FromDomain(u)
	return m
}
