package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/propman/backend/internal/application/identity"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/interfaces/http/middleware"
)

// ActorHandler handles actor management endpoints
type ActorHandler struct {
	BaseHandler
	actorService *identityapp.ActorService
}

// NewActorHandler creates a new ActorHandler
func NewActorHandler(actorService *identityapp.ActorService) *ActorHandler {
	return &ActorHandler{actorService: actorService}
}

func toActorResponse(actor *identity.Actor) ActorResponse {
	return ActorResponse{
		ID:              actor.ID,
		Name:            actor.Name,
		Email:           actor.Email,
		Role:            actor.Role.String(),
		AssignedUnitIDs: actor.AssignedUnitIDs,
		IsActive:        actor.IsActive,
		LastLoginAt:     actor.LastLoginAt,
	}
}

// CreateActorRequest represents a request to create an actor
type CreateActorRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=admin manager tenant technician"`
}

// Create registers a new actor
func (h *ActorHandler) Create(c *gin.Context) {
	var req CreateActorRequest
	if !h.bindJSON(c, &req) {
		return
	}

	actor, err := h.actorService.CreateActor(c.Request.Context(), middleware.CurrentActor(c), identityapp.CreateActorInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     identity.Role(req.Role),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toActorResponse(actor))
}

// ListByRole returns actors holding the role given in the query string
func (h *ActorHandler) ListByRole(c *gin.Context) {
	role := identity.Role(c.Query("role"))
	if !role.IsValid() {
		h.BadRequest(c, "Unknown role")
		return
	}

	actors, err := h.actorService.ListByRole(c.Request.Context(), middleware.CurrentActor(c), role)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ActorResponse, 0, len(actors))
	for i := range actors {
		out = append(out, toActorResponse(&actors[i]))
	}
	h.Success(c, out)
}

// AssignUnitRequest represents a unit assignment request
type AssignUnitRequest struct {
	UnitID uuid.UUID `json:"unit_id" binding:"required"`
}

// AssignUnit adds a unit to a restricted manager's visibility set
func (h *ActorHandler) AssignUnit(c *gin.Context) {
	actorID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req AssignUnitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	actor, err := h.actorService.AssignUnit(c.Request.Context(), middleware.CurrentActor(c), actorID, req.UnitID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toActorResponse(actor))
}

// UnassignUnit removes a unit from a restricted manager's visibility set
func (h *ActorHandler) UnassignUnit(c *gin.Context) {
	actorID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	unitID, ok := h.parseUUIDParam(c, "unitID")
	if !ok {
		return
	}

	actor, err := h.actorService.UnassignUnit(c.Request.Context(), middleware.CurrentActor(c), actorID, unitID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toActorResponse(actor))
}

// ChangeRoleRequest represents a role change request
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin manager tenant technician"`
}

// ChangeRole changes an actor's role
func (h *ActorHandler) ChangeRole(c *gin.Context) {
	actorID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req ChangeRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	actor, err := h.actorService.ChangeRole(c.Request.Context(), middleware.CurrentActor(c), actorID, identity.Role(req.Role))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toActorResponse(actor))
}

// Deactivate disables an actor
func (h *ActorHandler) Deactivate(c *gin.Context) {
	actorID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.actorService.DeactivateActor(c.Request.Context(), middleware.CurrentActor(c), actorID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
