package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QueryTracingConfig holds configuration for database query tracing.
type QueryTracingConfig struct {
	Enabled bool
	// SlowQueryThresh marks queries slower than this on their span.
	// Defaults to 200ms when zero.
	SlowQueryThresh time.Duration
}

// queryStartTimeKey carries the query start time between callbacks.
type queryContextKey string

const queryStartTimeKey queryContextKey = "query_start_time"

// QueryTracer instruments GORM queries with OpenTelemetry spans, marking
// errors and slow queries. Query variables are never recorded, only the
// statement shape.
type QueryTracer struct {
	config QueryTracingConfig
	logger *zap.Logger
}

// NewQueryTracer creates a query tracer with the given configuration.
func NewQueryTracer(cfg QueryTracingConfig, logger *zap.Logger) *QueryTracer {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	return &QueryTracer{config: cfg, logger: logger}
}

// Register installs the otelgorm plugin and the timing callbacks on the
// GORM instance. A disabled tracer registers nothing.
func (t *QueryTracer) Register(db *gorm.DB) error {
	if !t.config.Enabled {
		t.logger.Debug("Query tracing disabled, skipping otelgorm registration")
		return nil
	}

	plugin := otelgorm.NewPlugin(otelgorm.WithoutQueryVariables())
	if err := db.Use(plugin); err != nil {
		return err
	}

	if err := t.registerTimingCallbacks(db); err != nil {
		return err
	}

	t.logger.Info("Database query tracing enabled",
		zap.Duration("slow_query_threshold", t.config.SlowQueryThresh),
	)
	return nil
}

// registerTimingCallbacks installs before/after hooks on every GORM
// operation so the after hook can enrich the span otelgorm opened.
func (t *QueryTracer) registerTimingCallbacks(db *gorm.DB) error {
	if err := db.Callback().Create().Before("gorm:create").Register("query_timing:before_create", t.before); err != nil {
		return err
	}
	if err := db.Callback().Query().Before("gorm:query").Register("query_timing:before_query", t.before); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("query_timing:before_update", t.before); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("query_timing:before_delete", t.before); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("query_timing:before_row", t.before); err != nil {
		return err
	}
	if err := db.Callback().Raw().Before("gorm:raw").Register("query_timing:before_raw", t.before); err != nil {
		return err
	}

	if err := db.Callback().Create().After("gorm:create").Register("query_timing:after_create", t.after); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("query_timing:after_query", t.after); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("query_timing:after_update", t.after); err != nil {
		return err
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("query_timing:after_delete", t.after); err != nil {
		return err
	}
	if err := db.Callback().Row().After("gorm:row").Register("query_timing:after_row", t.after); err != nil {
		return err
	}
	if err := db.Callback().Raw().After("gorm:raw").Register("query_timing:after_raw", t.after); err != nil {
		return err
	}

	return nil
}

func (t *QueryTracer) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

// after enriches the span with rows affected, the table, and slow-query
// markers. ErrRecordNotFound is an expected outcome, not a span error.
func (t *QueryTracer) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if startTime, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		elapsed := time.Since(startTime)
		if elapsed > t.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", t.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}
