package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles authentication
type AuthService struct {
	actorRepo  identity.ActorRepository
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// AuthServiceConfig holds configuration for AuthService
type AuthServiceConfig struct {
	ActorRepo  identity.ActorRepository
	JWTService *auth.JWTService
	Logger     *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(config AuthServiceConfig) *AuthService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		actorRepo:  config.ActorRepo,
		jwtService: config.JWTService,
		logger:     logger,
	}
}

// LoginInput holds login credentials
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult holds the issued token and the authenticated actor
type LoginResult struct {
	Token *auth.IssuedToken
	Actor *identity.Actor
}

// Login authenticates an actor by email and password. Credential failures are
// indistinguishable from unknown emails on purpose.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	actor, err := s.actorRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if actor == nil || !actor.VerifyPassword(input.Password) {
		s.logger.Warn("Failed login attempt", zap.String("email", input.Email))
		return nil, shared.NewAccessDeniedError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !actor.IsActive {
		s.logger.Warn("Login attempt for deactivated actor", zap.String("actor_id", actor.ID.String()))
		return nil, shared.NewAccessDeniedError("ACTOR_DEACTIVATED", "Account has been deactivated")
	}

	token, err := s.jwtService.GenerateToken(actor)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, err
	}

	actor.RecordLogin(time.Now())
	if err := s.actorRepo.Save(ctx, actor); err != nil {
		// login still succeeds; the stamp is best effort
		s.logger.Error("Failed to record login time", zap.Error(err))
	}

	s.logger.Info("Actor logged in",
		zap.String("actor_id", actor.ID.String()),
		zap.String("role", actor.Role.String()),
	)

	return &LoginResult{Token: token, Actor: actor}, nil
}

// GetActor loads an actor by ID, translating absence to not-found
func (s *AuthService) GetActor(ctx context.Context, actorID uuid.UUID) (*identity.Actor, error) {
	actor, err := s.actorRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, shared.NewNotFoundError("ACTOR_NOT_FOUND", "Actor not found")
	}
	return actor, nil
}

// ChangePassword verifies the current password and stores a new one
func (s *AuthService) ChangePassword(ctx context.Context, actorID uuid.UUID, current, next string) error {
	actor, err := s.GetActor(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.VerifyPassword(current) {
		return shared.NewAccessDeniedError("INVALID_CREDENTIALS", "Current password is incorrect")
	}
	if err := actor.SetPassword(next); err != nil {
		return err
	}
	return s.actorRepo.Save(ctx, actor)
}
