package telemetry

import (
	"context"

	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/ledger"
	"github.com/propman/backend/internal/domain/shared"
)

// MetricsEventHandler translates domain events into business metrics. It is
// subscribed on the event bus so services stay free of telemetry concerns.
type MetricsEventHandler struct {
	metrics *BusinessMetrics
}

// NewMetricsEventHandler creates a new MetricsEventHandler
func NewMetricsEventHandler(metrics *BusinessMetrics) *MetricsEventHandler {
	return &MetricsEventHandler{metrics: metrics}
}

// EventTypes returns the event types this handler records
func (h *MetricsEventHandler) EventTypes() []string {
	return []string{
		leasing.EventTypeLeaseCreated,
		leasing.EventTypeLeaseTerminated,
		leasing.EventTypeLeaseExpired,
		leasing.EventTypeLeaseRenewed,
		ledger.EventTypePaymentRecorded,
	}
}

// Handle records the metric matching the event type
func (h *MetricsEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *leasing.LeaseCreatedEvent:
		h.metrics.RecordLeaseCreated(ctx)
	case *leasing.LeaseTerminatedEvent:
		h.metrics.RecordLeaseTerminated(ctx)
	case *leasing.LeaseExpiredEvent:
		h.metrics.RecordLeasesExpired(ctx, 1)
	case *leasing.LeaseRenewedEvent:
		h.metrics.RecordLeaseRenewed(ctx)
	case *ledger.PaymentRecordedEvent:
		h.metrics.RecordPayment(ctx, string(e.Type), string(e.Method), e.Amount)
	}
	return nil
}

var _ shared.EventHandler = (*MetricsEventHandler)(nil)
