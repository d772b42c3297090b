package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/infrastructure/auth"
	"github.com/propman/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Auth context keys
const (
	ActorKey      = "actor"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// AuthConfig holds configuration for the actor authentication middleware
type AuthConfig struct {
	JWTService *auth.JWTService
	ActorRepo  identity.ActorRepository
	Logger     *zap.Logger
}

// ActorAuth authenticates requests and loads the calling actor. The token
// carries identity only: role and unit assignments are read from storage on
// every request, so a revoked assignment takes effect immediately.
func ActorAuth(cfg AuthConfig) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, "Token validation failed")
			return
		}

		actorID, err := claims.GetActorUUID()
		if err != nil {
			abortUnauthorized(c, "Token carries an invalid actor ID")
			return
		}

		actor, err := cfg.ActorRepo.FindByID(c.Request.Context(), actorID)
		if err != nil {
			logger.Error("Failed to load actor for request",
				zap.String("actor_id", actorID.String()),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.ErrCodeInternal, "Could not resolve the calling actor"))
			return
		}
		if actor == nil || !actor.IsActive {
			abortUnauthorized(c, "Account is not active")
			return
		}

		c.Set(ActorKey, actor)
		c.Next()
	}
}

// CurrentActor returns the authenticated actor for the request, or nil
func CurrentActor(c *gin.Context) *identity.Actor {
	value, exists := c.Get(ActorKey)
	if !exists {
		return nil
	}
	actor, ok := value.(*identity.Actor)
	if !ok {
		return nil
	}
	return actor
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}
