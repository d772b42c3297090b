package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestWithContext(t *testing.T) {
	logger := zap.NewExample()
	ctx := WithContext(context.Background(), logger)

	assert.Equal(t, logger, FromContext(ctx))
}

func TestFromContext_NotSet(t *testing.T) {
	logger := FromContext(context.Background())
	assert.NotNil(t, logger)
}

func TestWithRequestID(t *testing.T) {
	ctx, enriched := WithRequestID(context.Background(), zap.NewExample(), "req-42")

	assert.Equal(t, "req-42", GetRequestID(ctx))
	assert.Equal(t, enriched, FromContext(ctx))
}

func TestWithActorID(t *testing.T) {
	ctx, enriched := WithActorID(context.Background(), zap.NewExample(), "actor-7")

	assert.Equal(t, "actor-7", GetActorID(ctx))
	assert.NotNil(t, enriched)
}

func TestGetRequestID_NotSet(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestWithTraceContext_NoSpan(t *testing.T) {
	logger := zap.NewExample()
	// without an active span the logger passes through unchanged
	assert.Equal(t, logger, WithTraceContext(context.Background(), logger))
}
