package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/propman/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupSpanRecorder swaps the global tracer provider for one that records
// finished spans in memory, restoring the previous provider on cleanup.
func setupSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("records a span enriched with request ID and actor", func(t *testing.T) {
		recorder := setupSpanRecorder(t)
		actor, err := identity.NewActor("Mia Manager", "mia@example.com", identity.RoleManager)
		require.NoError(t, err)

		engine := gin.New()
		engine.Use(RequestID())
		engine.Use(Tracing("propman-test"))
		engine.GET("/leases/:id", func(c *gin.Context) {
			c.Set(ActorKey, actor)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/leases/abc", nil)
		req.Header.Set(RequestIDHeader, "req-123")
		engine.ServeHTTP(w, req)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		span := spans[0]
		assert.Contains(t, span.Name(), "/leases/:id")

		requestID, ok := spanAttr(span, "request_id")
		require.True(t, ok)
		assert.Equal(t, "req-123", requestID.AsString())

		actorID, ok := spanAttr(span, "actor_id")
		require.True(t, ok)
		assert.Equal(t, actor.ID.String(), actorID.AsString())

		role, ok := spanAttr(span, "actor_role")
		require.True(t, ok)
		assert.Equal(t, "manager", role.AsString())
	})

	t.Run("marks server errors on the span", func(t *testing.T) {
		recorder := setupSpanRecorder(t)

		engine := gin.New()
		engine.Use(RequestID())
		engine.Use(Tracing("propman-test"))
		engine.GET("/boom", func(c *gin.Context) {
			c.Status(http.StatusInternalServerError)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("unauthenticated requests carry no actor attributes", func(t *testing.T) {
		recorder := setupSpanRecorder(t)

		engine := gin.New()
		engine.Use(RequestID())
		engine.Use(Tracing("propman-test"))
		engine.GET("/ping", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		_, ok := spanAttr(spans[0], "actor_id")
		assert.False(t, ok)
		_, ok = spanAttr(spans[0], "request_id")
		assert.True(t, ok, "minted request ID should still be attached")
	})
}
