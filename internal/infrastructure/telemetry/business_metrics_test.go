package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/propman/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func newTestMetrics(t *testing.T) *telemetry.BusinessMetrics {
	t.Helper()
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	return bm
}

func TestNewBusinessMetrics(t *testing.T) {
	bm := newTestMetrics(t)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_RecordLeaseLifecycle(t *testing.T) {
	bm := newTestMetrics(t)
	ctx := context.Background()

	// Should not panic
	bm.RecordLeaseCreated(ctx)
	bm.RecordLeaseTerminated(ctx)
	bm.RecordLeaseRenewed(ctx)
	bm.RecordLeasesExpired(ctx, 3)
	bm.RecordLeasesExpired(ctx, 0)
}

func TestBusinessMetrics_RecordPayment(t *testing.T) {
	bm := newTestMetrics(t)
	ctx := context.Background()

	bm.RecordPayment(ctx, "rent", "card", decimal.NewFromFloat(1250.00))
	bm.RecordPayment(ctx, "deposit", "bank_transfer", decimal.NewFromInt(2000))
}

func TestBusinessMetrics_RecordConfirmation(t *testing.T) {
	bm := newTestMetrics(t)
	ctx := context.Background()

	bm.RecordConfirmation(ctx, "stripe", "succeeded")
	bm.RecordConfirmation(ctx, "stripe", "failed")
	bm.RecordConfirmationReplay(ctx, "stripe")
	bm.RecordLateFeeAssessed(ctx)
}

type stubPortfolioProvider struct {
	count int64
	calls int
}

func (p *stubPortfolioProvider) GetActiveLeaseCount(ctx context.Context) (int64, error) {
	p.calls++
	return p.count, nil
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	provider := &stubPortfolioProvider{count: 12}
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:             meter,
		Logger:            zap.NewNop(),
		PortfolioProvider: provider,
	})
	require.NoError(t, err)

	ctx := context.Background()
	bm.StartPeriodicCollection(ctx, time.Hour)
	defer bm.Stop()

	// collection runs once immediately on start
	assert.Eventually(t, func() bool {
		return provider.calls >= 1
	}, time.Second, 10*time.Millisecond)
}

func TestBusinessMetrics_StopTwice(t *testing.T) {
	bm := newTestMetrics(t)

	assert.NotPanics(t, func() {
		bm.Stop()
		bm.Stop()
	})
}
