package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/propman/backend/internal/application/identity"
	"github.com/propman/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and the actor's profile
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Actor       ActorResponse `json:"actor"`
}

// ActorResponse is the actor profile exposed over the API
type ActorResponse struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Role            string      `json:"role"`
	AssignedUnitIDs []uuid.UUID `json:"assigned_unit_ids,omitempty"`
	IsActive        bool        `json:"is_active"`
	LastLoginAt     *time.Time  `json:"last_login_at,omitempty"`
}

// Login authenticates an actor and issues a token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identityapp.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LoginResponse{
		AccessToken: result.Token.AccessToken,
		TokenType:   result.Token.TokenType,
		ExpiresAt:   result.Token.ExpiresAt,
		Actor:       toActorResponse(result.Actor),
	})
}

// GetCurrentActor returns the authenticated actor's profile
func (h *AuthHandler) GetCurrentActor(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	if actor == nil {
		h.InternalError(c, "No actor on request")
		return
	}
	h.Success(c, toActorResponse(actor))
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword changes the authenticated actor's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor := middleware.CurrentActor(c)
	if actor == nil {
		h.InternalError(c, "No actor on request")
		return
	}

	var req ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), actor.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
