package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/propman/backend/internal/application/identity"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/propman/backend/internal/infrastructure/auth"
	"github.com/propman/backend/internal/infrastructure/config"
	"github.com/propman/backend/internal/interfaces/http/dto"
	"github.com/propman/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockActorRepository is a mock implementation of identity.ActorRepository
type MockActorRepository struct {
	mock.Mock
}

func (m *MockActorRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Actor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Actor), args.Error(1)
}

func (m *MockActorRepository) FindByEmail(ctx context.Context, email string) (*identity.Actor, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Actor), args.Error(1)
}

func (m *MockActorRepository) FindByRole(ctx context.Context, role identity.Role) ([]identity.Actor, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]identity.Actor), args.Error(1)
}

func (m *MockActorRepository) Save(ctx context.Context, actor *identity.Actor) error {
	args := m.Called(ctx, actor)
	return args.Error(0)
}

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-32-characters-long",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "test-issuer",
	})
}

func newAuthTestRouter(repo *MockActorRepository) *gin.Engine {
	jwtService := testJWTService()
	authService := identityapp.NewAuthService(identityapp.AuthServiceConfig{
		ActorRepo:  repo,
		JWTService: jwtService,
	})
	authHandler := NewAuthHandler(authService)

	engine := gin.New()
	engine.POST("/api/v1/auth/login", authHandler.Login)

	protected := engine.Group("/api/v1")
	protected.Use(middleware.ActorAuth(middleware.AuthConfig{
		JWTService: jwtService,
		ActorRepo:  repo,
	}))
	protected.GET("/auth/me", authHandler.GetCurrentActor)

	return engine
}

func testActor(t *testing.T, role identity.Role, password string) *identity.Actor {
	t.Helper()
	actor, err := identity.NewActor("Dana Wells", "dana@example.com", role)
	require.NoError(t, err)
	require.NoError(t, actor.SetPassword(password))
	actor.ClearDomainEvents()
	return actor
}

func performJSON(engine *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("valid credentials return a token", func(t *testing.T) {
		repo := new(MockActorRepository)
		engine := newAuthTestRouter(repo)
		actor := testActor(t, identity.RoleAdmin, "correct horse battery")

		repo.On("FindByEmail", mock.Anything, "dana@example.com").Return(actor, nil)
		repo.On("Save", mock.Anything, actor).Return(nil)

		recorder := performJSON(engine, http.MethodPost, "/api/v1/auth/login", LoginRequest{
			Email:    "dana@example.com",
			Password: "correct horse battery",
		}, nil)

		require.Equal(t, http.StatusOK, recorder.Code)

		var response dto.Response
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.True(t, response.Success)

		data := response.Data.(map[string]interface{})
		assert.NotEmpty(t, data["access_token"])
		assert.Equal(t, "Bearer", data["token_type"])
	})

	t.Run("wrong password is 401", func(t *testing.T) {
		repo := new(MockActorRepository)
		engine := newAuthTestRouter(repo)
		actor := testActor(t, identity.RoleTenant, "correct horse battery")

		repo.On("FindByEmail", mock.Anything, "dana@example.com").Return(actor, nil)

		recorder := performJSON(engine, http.MethodPost, "/api/v1/auth/login", LoginRequest{
			Email:    "dana@example.com",
			Password: "wrong",
		}, nil)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		repo := new(MockActorRepository)
		engine := newAuthTestRouter(repo)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		engine.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestActorAuthMiddleware(t *testing.T) {
	t.Run("valid token loads the actor fresh", func(t *testing.T) {
		repo := new(MockActorRepository)
		engine := newAuthTestRouter(repo)
		actor := testActor(t, identity.RoleManager, "correct horse battery")

		token, err := testJWTService().GenerateToken(actor)
		require.NoError(t, err)

		repo.On("FindByID", mock.Anything, actor.ID).Return(actor, nil)

		recorder := performJSON(engine, http.MethodGet, "/api/v1/auth/me", nil, map[string]string{
			"Authorization": "Bearer " + token.AccessToken,
		})

		require.Equal(t, http.StatusOK, recorder.Code)

		var response dto.Response
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		data := response.Data.(map[string]interface{})
		assert.Equal(t, actor.ID.String(), data["id"])
		assert.Equal(t, "manager", data["role"])
	})

	t.Run("missing header is 401", func(t *testing.T) {
		repo := new(MockActorRepository)
		engine := newAuthTestRouter(repo)

		recorder := performJSON(engine, http.MethodGet, "/api/v1/auth/me", nil, nil)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("token for a deactivated actor is 401", func(t *testing.T) {
		repo := new(MockActorRepository)
		engine := newAuthTestRouter(repo)
		actor := testActor(t, identity.RoleManager, "correct horse battery")

		token, err := testJWTService().GenerateToken(actor)
		require.NoError(t, err)

		actor.Deactivate()
		repo.On("FindByID", mock.Anything, actor.ID).Return(actor, nil)

		recorder := performJSON(engine, http.MethodGet, "/api/v1/auth/me", nil, map[string]string{
			"Authorization": "Bearer " + token.AccessToken,
		})

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("garbage token is 401", func(t *testing.T) {
		repo := new(MockActorRepository)
		engine := newAuthTestRouter(repo)

		recorder := performJSON(engine, http.MethodGet, "/api/v1/auth/me", nil, map[string]string{
			"Authorization": "Bearer not-a-token",
		})

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}
