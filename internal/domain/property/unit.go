package property

import (
	"strings"
	"time"

	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// UnitStatus represents the occupancy status of a unit
type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "available"
	UnitStatusOccupied    UnitStatus = "occupied"
	UnitStatusMaintenance UnitStatus = "maintenance"
)

// IsValid checks if the status is a valid UnitStatus
func (s UnitStatus) IsValid() bool {
	switch s {
	case UnitStatusAvailable, UnitStatusOccupied, UnitStatusMaintenance:
		return true
	}
	return false
}

// String returns the string representation of UnitStatus
func (s UnitStatus) String() string {
	return string(s)
}

// Unit represents a rentable physical space. Structural attributes are
// immutable once leased except through an explicit edit; deletion is
// forbidden while an active lease references the unit (enforced by the
// property service against the lease registry).
type Unit struct {
	shared.BaseAggregateRoot
	Number      string          `json:"number"` // e.g. "4B"
	Building    string          `json:"building"`
	Address     string          `json:"address"`
	Bedrooms    int             `json:"bedrooms"`
	Bathrooms   int             `json:"bathrooms"`
	SquareFeet  int             `json:"square_feet"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"` // asking rent; lease terms override
	Status      UnitStatus      `json:"status"`
	Notes       string          `json:"notes"`
}

// NewUnit creates a new unit
func NewUnit(number, building, address string, rent valueobject.Money) (*Unit, error) {
	number = strings.TrimSpace(number)
	address = strings.TrimSpace(address)

	if number == "" {
		return nil, shared.NewValidationError("INVALID_UNIT_NUMBER", "Unit number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewValidationError("INVALID_UNIT_NUMBER", "Unit number cannot exceed 50 characters")
	}
	if address == "" {
		return nil, shared.NewValidationError("INVALID_ADDRESS", "Address cannot be empty")
	}
	if rent.IsNegative() {
		return nil, shared.NewValidationError("INVALID_RENT", "Asking rent cannot be negative")
	}

	u := &Unit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Building:          strings.TrimSpace(building),
		Address:           address,
		MonthlyRent:       rent.Amount(),
		Status:            UnitStatusAvailable,
	}
	u.AddDomainEvent(NewUnitCreatedEvent(u))
	return u, nil
}

// UpdateDetails edits the structural attributes of the unit
func (u *Unit) UpdateDetails(bedrooms, bathrooms, squareFeet int, notes string) error {
	if bedrooms < 0 || bathrooms < 0 || squareFeet < 0 {
		return shared.NewValidationError("INVALID_ATTRIBUTES", "Structural attributes cannot be negative")
	}
	u.Bedrooms = bedrooms
	u.Bathrooms = bathrooms
	u.SquareFeet = squareFeet
	u.Notes = notes
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// SetRent updates the asking rent
func (u *Unit) SetRent(rent valueobject.Money) error {
	if rent.IsNegative() {
		return shared.NewValidationError("INVALID_RENT", "Asking rent cannot be negative")
	}
	u.MonthlyRent = rent.Amount()
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// MarkOccupied flags the unit as occupied by an active lease
func (u *Unit) MarkOccupied() {
	if u.Status == UnitStatusOccupied {
		return
	}
	u.Status = UnitStatusOccupied
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// MarkAvailable flags the unit as available again
func (u *Unit) MarkAvailable() {
	if u.Status == UnitStatusAvailable {
		return
	}
	u.Status = UnitStatusAvailable
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// GetRentMoney returns the asking rent as Money
func (u *Unit) GetRentMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(u.MonthlyRent)
}
