package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	propertyapp "github.com/propman/backend/internal/application/property"
	"github.com/propman/backend/internal/domain/property"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/propman/backend/internal/interfaces/http/dto"
	"github.com/propman/backend/internal/interfaces/http/middleware"
)

// UnitHandler handles unit inventory endpoints
type UnitHandler struct {
	BaseHandler
	unitService *propertyapp.UnitService
}

// NewUnitHandler creates a new UnitHandler
func NewUnitHandler(unitService *propertyapp.UnitService) *UnitHandler {
	return &UnitHandler{unitService: unitService}
}

// UnitResponse is the unit representation exposed over the API
type UnitResponse struct {
	ID          uuid.UUID `json:"id"`
	Number      string    `json:"number"`
	Building    string    `json:"building"`
	Address     string    `json:"address"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	SquareFeet  int       `json:"square_feet"`
	MonthlyRent string    `json:"monthly_rent"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toUnitResponse(unit *property.Unit) UnitResponse {
	return UnitResponse{
		ID:          unit.ID,
		Number:      unit.Number,
		Building:    unit.Building,
		Address:     unit.Address,
		Bedrooms:    unit.Bedrooms,
		Bathrooms:   unit.Bathrooms,
		SquareFeet:  unit.SquareFeet,
		MonthlyRent: unit.MonthlyRent.String(),
		Status:      unit.Status.String(),
		Notes:       unit.Notes,
		CreatedAt:   unit.CreatedAt,
		UpdatedAt:   unit.UpdatedAt,
	}
}

// CreateUnitRequest represents a request to create a unit
type CreateUnitRequest struct {
	Number      string `json:"number" binding:"required,min=1,max=50"`
	Building    string `json:"building" binding:"max=200"`
	Address     string `json:"address" binding:"required,min=1,max=500"`
	MonthlyRent string `json:"monthly_rent" binding:"required,money"`
	Bedrooms    int    `json:"bedrooms" binding:"omitempty,min=0"`
	Bathrooms   int    `json:"bathrooms" binding:"omitempty,min=0"`
	SquareFeet  int    `json:"square_feet" binding:"omitempty,min=0"`
	Notes       string `json:"notes"`
}

// Create adds a unit to the inventory
func (h *UnitHandler) Create(c *gin.Context) {
	var req CreateUnitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	rent, err := valueobject.NewMoneyUSDFromString(req.MonthlyRent)
	if err != nil {
		h.BadRequest(c, "Invalid monthly_rent amount")
		return
	}

	unit, err := h.unitService.CreateUnit(c.Request.Context(), middleware.CurrentActor(c), propertyapp.CreateUnitInput{
		Number:      req.Number,
		Building:    req.Building,
		Address:     req.Address,
		MonthlyRent: rent,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		SquareFeet:  req.SquareFeet,
		Notes:       req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toUnitResponse(unit))
}

// UpdateUnitRequest represents a request to update a unit
type UpdateUnitRequest struct {
	Bedrooms    int     `json:"bedrooms" binding:"omitempty,min=0"`
	Bathrooms   int     `json:"bathrooms" binding:"omitempty,min=0"`
	SquareFeet  int     `json:"square_feet" binding:"omitempty,min=0"`
	Notes       string  `json:"notes"`
	MonthlyRent *string `json:"monthly_rent"`
}

// Update edits a unit's details
func (h *UnitHandler) Update(c *gin.Context) {
	unitID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateUnitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	input := propertyapp.UpdateUnitInput{
		Bedrooms:   req.Bedrooms,
		Bathrooms:  req.Bathrooms,
		SquareFeet: req.SquareFeet,
		Notes:      req.Notes,
	}
	if req.MonthlyRent != nil {
		rent, err := valueobject.NewMoneyUSDFromString(*req.MonthlyRent)
		if err != nil {
			h.BadRequest(c, "Invalid monthly_rent amount")
			return
		}
		input.MonthlyRent = &rent
	}

	unit, err := h.unitService.UpdateUnit(c.Request.Context(), middleware.CurrentActor(c), unitID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toUnitResponse(unit))
}

// Get returns a single unit
func (h *UnitHandler) Get(c *gin.Context) {
	unitID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	unit, err := h.unitService.GetUnit(c.Request.Context(), middleware.CurrentActor(c), unitID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toUnitResponse(unit))
}

// List returns the units visible to the actor
func (h *UnitHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Filters:  map[string]interface{}{},
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if building := c.Query("building"); building != "" {
		filter.Filters["building"] = building
	}

	units, err := h.unitService.GetAccessibleUnits(c.Request.Context(), middleware.CurrentActor(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]UnitResponse, 0, len(units))
	for i := range units {
		out = append(out, toUnitResponse(&units[i]))
	}
	h.Success(c, out)
}

// Delete removes a unit. Removal is blocked while an active lease
// references the unit.
func (h *UnitHandler) Delete(c *gin.Context) {
	unitID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.unitService.DeleteUnit(c.Request.Context(), middleware.CurrentActor(c), unitID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
