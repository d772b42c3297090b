package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns OpenTelemetry tracing middleware. It wraps otelgin, then
// enriches the span with the request ID and the authenticated actor once the
// handler chain has run, and marks 4xx/5xx responses as span errors.
//
// The span name follows otelgin's format: "METHOD route_pattern"
// (e.g. "GET /api/v1/leases/:id").
func Tracing(serviceName string) gin.HandlerFunc {
	base := otelgin.Middleware(serviceName)

	return func(c *gin.Context) {
		base(c)

		// otelgin has ended the handler chain by the time base returns,
		// so the actor and response status are available here
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		if requestID := GetRequestID(c); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		if actor := CurrentActor(c); actor != nil {
			span.SetAttributes(
				attribute.String("actor_id", actor.ID.String()),
				attribute.String("actor_role", actor.Role.String()),
			)
		}

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		}
	}
}
