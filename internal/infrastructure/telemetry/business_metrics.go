package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Attribute keys for business metrics
var (
	AttrRole          = attribute.Key("role")
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrPaymentType   = attribute.Key("payment_type")
	AttrPaymentStatus = attribute.Key("payment_status")
	AttrLeaseStatus   = attribute.Key("lease_status")
	AttrProcessor     = attribute.Key("processor")
)

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// PortfolioMetricsProvider supplies portfolio state for periodic gauge
// collection without pulling the domain packages into the telemetry layer.
type PortfolioMetricsProvider interface {
	// GetActiveLeaseCount returns the number of currently active leases
	GetActiveLeaseCount(ctx context.Context) (int64, error)
}

// BusinessMetrics tracks leasing and payment activity.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	leaseCreatedTotal       *Counter
	leaseTerminatedTotal    *Counter
	leaseExpiredTotal       *Counter
	leaseRenewedTotal       *Counter
	paymentRecordedTotal    *Counter
	paymentAmountTotal      *Counter
	confirmationTotal       *Counter
	confirmationReplayTotal *Counter
	lateFeeAssessedTotal    *Counter

	// Gauge metrics (point-in-time values)
	activeLeaseCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	portfolioProvider PortfolioMetricsProvider
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	CollectInterval   time.Duration // Default: 5 minutes
	PortfolioProvider PortfolioMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:             cfg.Meter,
		logger:            logger,
		stopChan:          make(chan struct{}),
		portfolioProvider: cfg.PortfolioProvider,
	}

	var err error

	bm.leaseCreatedTotal, err = NewCounter(cfg.Meter,
		"propman_lease_created_total", "Total number of leases created", "{leases}")
	if err != nil {
		return nil, err
	}

	bm.leaseTerminatedTotal, err = NewCounter(cfg.Meter,
		"propman_lease_terminated_total", "Total number of leases terminated early", "{leases}")
	if err != nil {
		return nil, err
	}

	bm.leaseExpiredTotal, err = NewCounter(cfg.Meter,
		"propman_lease_expired_total", "Total number of leases expired by the reconciler", "{leases}")
	if err != nil {
		return nil, err
	}

	bm.leaseRenewedTotal, err = NewCounter(cfg.Meter,
		"propman_lease_renewed_total", "Total number of lease renewals", "{leases}")
	if err != nil {
		return nil, err
	}

	bm.paymentRecordedTotal, err = NewCounter(cfg.Meter,
		"propman_payment_recorded_total", "Total number of payments recorded", "{payments}")
	if err != nil {
		return nil, err
	}

	bm.paymentAmountTotal, err = NewCounter(cfg.Meter,
		"propman_payment_amount_total", "Total payment amount in cents", "{cents}")
	if err != nil {
		return nil, err
	}

	bm.confirmationTotal, err = NewCounter(cfg.Meter,
		"propman_confirmation_total", "Total number of processor confirmations handled", "{confirmations}")
	if err != nil {
		return nil, err
	}

	bm.confirmationReplayTotal, err = NewCounter(cfg.Meter,
		"propman_confirmation_replay_total", "Total number of replayed processor confirmations", "{confirmations}")
	if err != nil {
		return nil, err
	}

	bm.lateFeeAssessedTotal, err = NewCounter(cfg.Meter,
		"propman_late_fee_assessed_total", "Total number of late fees reported on obligations", "{fees}")
	if err != nil {
		return nil, err
	}

	bm.activeLeaseCount, err = NewGauge(cfg.Meter,
		"propman_active_lease_count", "Current number of active leases", "{leases}")
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Lease Metrics
// =============================================================================

// RecordLeaseCreated records a lease creation event.
func (bm *BusinessMetrics) RecordLeaseCreated(ctx context.Context) {
	bm.leaseCreatedTotal.Inc(ctx)
}

// RecordLeaseTerminated records an early termination.
func (bm *BusinessMetrics) RecordLeaseTerminated(ctx context.Context) {
	bm.leaseTerminatedTotal.Inc(ctx)
}

// RecordLeasesExpired records leases transitioned to expired by reconciliation.
func (bm *BusinessMetrics) RecordLeasesExpired(ctx context.Context, count int64) {
	if count > 0 {
		bm.leaseExpiredTotal.Add(ctx, count)
	}
}

// RecordLeaseRenewed records a renewal.
func (bm *BusinessMetrics) RecordLeaseRenewed(ctx context.Context) {
	bm.leaseRenewedTotal.Inc(ctx)
}

// =============================================================================
// Payment Metrics
// =============================================================================

// RecordPayment records a recorded payment with its amount.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, paymentType, method string, amount decimal.Decimal) {
	attrs := []attribute.KeyValue{
		AttrPaymentType.String(paymentType),
		AttrPaymentMethod.String(method),
	}
	bm.paymentRecordedTotal.Inc(ctx, attrs...)

	amountCents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.paymentAmountTotal.Add(ctx, amountCents, attrs...)
}

// RecordConfirmation records a processor confirmation outcome.
func (bm *BusinessMetrics) RecordConfirmation(ctx context.Context, processor, status string) {
	bm.confirmationTotal.Inc(ctx,
		AttrProcessor.String(processor),
		AttrPaymentStatus.String(status),
	)
}

// RecordConfirmationReplay records a confirmation that was already processed.
func (bm *BusinessMetrics) RecordConfirmationReplay(ctx context.Context, processor string) {
	bm.confirmationReplayTotal.Inc(ctx, AttrProcessor.String(processor))
}

// RecordLateFeeAssessed records an obligation carrying a late fee.
func (bm *BusinessMetrics) RecordLateFeeAssessed(ctx context.Context) {
	bm.lateFeeAssessedTotal.Inc(ctx)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// This is non-blocking; use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectPortfolioMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collectPortfolioMetrics(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectPortfolioMetrics(ctx context.Context) {
	if bm.portfolioProvider == nil {
		return
	}

	count, err := bm.portfolioProvider.GetActiveLeaseCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to collect active lease count", zap.Error(err))
		return
	}
	bm.activeLeaseCount.Record(ctx, count)
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}
