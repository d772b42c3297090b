package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/propman/backend/internal/domain/ledger"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// SignatureHeader carries the hex-encoded HMAC-SHA256 of the raw body
	SignatureHeader = "X-Webhook-Signature"
)

// WebhookConfig holds configuration for a webhook payment processor
type WebhookConfig struct {
	// ProviderName identifies the processor, e.g. "stripe"
	ProviderName string
	// SigningSecret is the shared secret for HMAC verification
	SigningSecret string
}

// Validate checks the webhook configuration
func (c *WebhookConfig) Validate() error {
	if strings.TrimSpace(c.ProviderName) == "" {
		return shared.NewValidationError("INVALID_PROVIDER", "Provider name is required")
	}
	if c.SigningSecret == "" {
		return shared.NewValidationError("INVALID_SECRET", "Signing secret is required")
	}
	return nil
}

// confirmationPayload is the wire format processors post to the webhook
type confirmationPayload struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	PaidAt        time.Time       `json:"paid_at"`
	Reason        string          `json:"reason,omitempty"`
}

// WebhookProcessor implements PaymentProcessor for providers that post
// HMAC-SHA256 signed JSON confirmations.
type WebhookProcessor struct {
	config *WebhookConfig
}

// NewWebhookProcessor creates a new webhook payment processor
func NewWebhookProcessor(config *WebhookConfig) (*WebhookProcessor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &WebhookProcessor{config: config}, nil
}

// Name identifies the provider
func (p *WebhookProcessor) Name() string {
	return p.config.ProviderName
}

// VerifyConfirmation authenticates and parses a webhook request. The
// signature is checked over the raw body before anything is parsed; a bad
// signature or malformed payload yields a validation error.
func (p *WebhookProcessor) VerifyConfirmation(r *http.Request, body []byte) (*ledger.PaymentConfirmation, error) {
	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		return nil, shared.NewValidationError("MISSING_SIGNATURE", "Webhook signature header is missing")
	}
	if !p.verifySignature(body, signature) {
		return nil, shared.NewValidationError("INVALID_SIGNATURE", "Webhook signature does not match")
	}

	var payload confirmationPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, shared.NewValidationError("MALFORMED_PAYLOAD", "Webhook payload is not valid JSON")
	}
	if strings.TrimSpace(payload.TransactionID) == "" {
		return nil, shared.NewValidationError("MISSING_TRANSACTION_ID", "Webhook payload has no transaction ID")
	}

	var status ledger.ConfirmationStatus
	switch payload.Status {
	case "succeeded", "success", "paid":
		status = ledger.ConfirmationStatusSucceeded
	case "failed", "declined":
		status = ledger.ConfirmationStatusFailed
	default:
		return nil, shared.NewValidationError("UNKNOWN_STATUS", "Webhook payload has an unknown status")
	}

	paidAt := payload.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	return &ledger.PaymentConfirmation{
		TransactionID: strings.TrimSpace(payload.TransactionID),
		Amount:        payload.Amount,
		Status:        status,
		PaidAt:        paidAt,
		Reason:        payload.Reason,
		RawPayload:    body,
	}, nil
}

// AckResponse writes the provider's expected acknowledgement
func (p *WebhookProcessor) AckResponse(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"received":true}`))
}

// Sign computes the signature for a body. Exported for tests and for
// provider simulators.
func (p *WebhookProcessor) Sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(p.config.SigningSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (p *WebhookProcessor) verifySignature(body []byte, signature string) bool {
	expected := p.Sign(body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Ensure WebhookProcessor implements PaymentProcessor
var _ ledger.PaymentProcessor = (*WebhookProcessor)(nil)
