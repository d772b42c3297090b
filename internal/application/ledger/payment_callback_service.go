package ledger

import (
	"context"
	"fmt"
	"net/http"

	"github.com/propman/backend/internal/domain/ledger"
	"github.com/propman/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ConfirmationMetrics records confirmation outcomes. Nil disables recording.
type ConfirmationMetrics interface {
	RecordConfirmation(ctx context.Context, processor, status string)
	RecordConfirmationReplay(ctx context.Context, processor string)
}

// PaymentCallbackService handles asynchronous confirmations from payment
// processors. Confirmations are idempotent on the transaction ID: a replay
// acknowledges without touching the ledger, and a completed payment is never
// regressed no matter what a later confirmation claims.
type PaymentCallbackService struct {
	processors       map[string]ledger.PaymentProcessor
	paymentRepo      ledger.PaymentRepository
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
	eventPublisher   shared.EventPublisher
	metrics          ConfirmationMetrics
	logger           *zap.Logger
}

// PaymentCallbackServiceConfig holds configuration for the callback service
type PaymentCallbackServiceConfig struct {
	Processors       []ledger.PaymentProcessor
	PaymentRepo      ledger.PaymentRepository
	IdempotencyStore shared.IdempotencyStore
	IdempotencyCfg   *shared.IdempotencyConfig
	EventPublisher   shared.EventPublisher
	Metrics          ConfirmationMetrics
	Logger           *zap.Logger
}

// NewPaymentCallbackService creates a new PaymentCallbackService
func NewPaymentCallbackService(config PaymentCallbackServiceConfig) *PaymentCallbackService {
	processors := make(map[string]ledger.PaymentProcessor)
	for _, p := range config.Processors {
		processors[p.Name()] = p
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := shared.DefaultIdempotencyConfig()
	if config.IdempotencyCfg != nil {
		cfg = *config.IdempotencyCfg
	}

	return &PaymentCallbackService{
		processors:       processors,
		paymentRepo:      config.PaymentRepo,
		idempotencyStore: config.IdempotencyStore,
		idempotencyCfg:   cfg,
		eventPublisher:   config.EventPublisher,
		metrics:          config.Metrics,
		logger:           logger,
	}
}

// RegisterProcessor registers a payment processor for confirmation handling
func (s *PaymentCallbackService) RegisterProcessor(p ledger.PaymentProcessor) {
	s.processors[p.Name()] = p
}

// ConfirmationResult reports the outcome of processing a confirmation
type ConfirmationResult struct {
	Payment          *ledger.Payment
	AlreadyProcessed bool
}

// ProcessConfirmation verifies and applies a processor confirmation request.
// Verification failures and unknown processors are validation errors so the
// processor does not retry them; infrastructure failures are retryable
// payment processing errors.
func (s *PaymentCallbackService) ProcessConfirmation(ctx context.Context, processorName string, r *http.Request, body []byte) (*ConfirmationResult, error) {
	processor, ok := s.processors[processorName]
	if !ok {
		return nil, shared.NewValidationError("UNKNOWN_PROCESSOR",
			fmt.Sprintf("No payment processor registered as %q", processorName))
	}

	confirmation, err := processor.VerifyConfirmation(r, body)
	if err != nil {
		s.logger.Warn("Confirmation verification failed",
			zap.String("processor", processorName),
			zap.Error(err))
		return nil, err
	}

	key := "payment-confirmation:" + confirmation.TransactionID
	if s.idempotencyStore != nil && s.idempotencyCfg.Enabled {
		fresh, err := s.idempotencyStore.MarkProcessed(ctx, key, s.idempotencyCfg.TTL)
		if err != nil {
			return nil, shared.NewPaymentProcessingError("IDEMPOTENCY_STORE_UNAVAILABLE",
				"Could not check confirmation idempotency: "+err.Error())
		}
		if !fresh {
			s.logger.Info("Confirmation already processed",
				zap.String("transaction_id", confirmation.TransactionID))
			if s.metrics != nil {
				s.metrics.RecordConfirmationReplay(ctx, processorName)
			}
			return &ConfirmationResult{AlreadyProcessed: true}, nil
		}
	}

	payment, err := s.applyConfirmation(ctx, confirmation)
	if err != nil {
		if s.idempotencyStore != nil {
			if unmarkErr := s.idempotencyStore.Unmark(ctx, key); unmarkErr != nil {
				s.logger.Warn("Failed to unmark confirmation for retry",
					zap.String("transaction_id", confirmation.TransactionID),
					zap.Error(unmarkErr))
			}
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordConfirmation(ctx, processorName, string(confirmation.Status))
	}
	return &ConfirmationResult{Payment: payment}, nil
}

// applyConfirmation moves the payment forward per the confirmation outcome
func (s *PaymentCallbackService) applyConfirmation(ctx context.Context, c *ledger.PaymentConfirmation) (*ledger.Payment, error) {
	payment, err := s.paymentRepo.FindByTransactionID(ctx, c.TransactionID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewNotFoundError("PAYMENT_NOT_FOUND",
			fmt.Sprintf("No payment recorded for transaction %s", c.TransactionID))
	}

	// a completed payment stays completed; duplicate success is a no-op
	if payment.IsCompleted() {
		s.logger.Info("Confirmation for already-completed payment ignored",
			zap.String("transaction_id", c.TransactionID),
			zap.String("status", string(c.Status)))
		return payment, nil
	}

	switch c.Status {
	case ledger.ConfirmationStatusSucceeded:
		if !c.Amount.Equal(payment.Amount) {
			s.logger.Warn("Confirmation amount mismatch",
				zap.String("transaction_id", c.TransactionID),
				zap.String("recorded", payment.Amount.String()),
				zap.String("confirmed", c.Amount.String()))
			return nil, shared.NewValidationError("AMOUNT_MISMATCH",
				"Confirmed amount does not match the recorded payment")
		}
		if err := payment.Complete(c.PaidAt); err != nil {
			return nil, err
		}
	case ledger.ConfirmationStatusFailed:
		if err := payment.Fail(c.Reason); err != nil {
			return nil, err
		}
	default:
		return nil, shared.NewValidationError("UNKNOWN_CONFIRMATION_STATUS",
			fmt.Sprintf("Unrecognized confirmation status %q", c.Status))
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, shared.NewPaymentProcessingError("CONFIRMATION_SAVE_FAILED",
			"Could not persist confirmed payment: "+err.Error())
	}

	s.publishEvents(ctx, payment)

	s.logger.Info("Payment confirmation applied",
		zap.String("payment_id", payment.ID.String()),
		zap.String("transaction_id", c.TransactionID),
		zap.String("status", payment.Status.String()))
	return payment, nil
}

func (s *PaymentCallbackService) publishEvents(ctx context.Context, payment *ledger.Payment) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range payment.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish payment event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	payment.ClearDomainEvents()
}
