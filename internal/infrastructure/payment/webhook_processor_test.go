package payment

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/propman/backend/internal/domain/ledger"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T) *WebhookProcessor {
	t.Helper()
	processor, err := NewWebhookProcessor(&WebhookConfig{
		ProviderName:  "stripe",
		SigningSecret: "whsec_test_secret",
	})
	require.NoError(t, err)
	return processor
}

func TestNewWebhookProcessor_Validation(t *testing.T) {
	t.Run("requires provider name", func(t *testing.T) {
		_, err := NewWebhookProcessor(&WebhookConfig{SigningSecret: "s"})
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("requires signing secret", func(t *testing.T) {
		_, err := NewWebhookProcessor(&WebhookConfig{ProviderName: "stripe"})
		assert.True(t, shared.IsValidation(err))
	})
}

func TestWebhookProcessor_VerifyConfirmation(t *testing.T) {
	processor := newTestProcessor(t)

	validBody := `{"transaction_id":"txn-abc","amount":"1250.00","status":"succeeded","paid_at":"2026-03-05T10:00:00Z"}`

	t.Run("valid signature and payload", func(t *testing.T) {
		body := []byte(validBody)
		req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(validBody))
		req.Header.Set(SignatureHeader, processor.Sign(body))

		confirmation, err := processor.VerifyConfirmation(req, body)

		require.NoError(t, err)
		assert.Equal(t, "txn-abc", confirmation.TransactionID)
		assert.Equal(t, "1250", confirmation.Amount.String())
		assert.Equal(t, ledger.ConfirmationStatusSucceeded, confirmation.Status)
		assert.Equal(t, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), confirmation.PaidAt)
		assert.Equal(t, body, confirmation.RawPayload)
	})

	t.Run("missing signature header", func(t *testing.T) {
		body := []byte(validBody)
		req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(validBody))

		_, err := processor.VerifyConfirmation(req, body)

		assert.True(t, shared.IsValidation(err))
	})

	t.Run("tampered body is rejected", func(t *testing.T) {
		body := []byte(validBody)
		req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(validBody))
		req.Header.Set(SignatureHeader, processor.Sign([]byte(`{"transaction_id":"txn-other"}`)))

		_, err := processor.VerifyConfirmation(req, body)

		assert.True(t, shared.IsValidation(err))
	})

	t.Run("malformed JSON is rejected", func(t *testing.T) {
		body := []byte(`{not json`)
		req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(string(body)))
		req.Header.Set(SignatureHeader, processor.Sign(body))

		_, err := processor.VerifyConfirmation(req, body)

		assert.True(t, shared.IsValidation(err))
	})

	t.Run("missing transaction id is rejected", func(t *testing.T) {
		body := []byte(`{"amount":"10.00","status":"succeeded"}`)
		req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(string(body)))
		req.Header.Set(SignatureHeader, processor.Sign(body))

		_, err := processor.VerifyConfirmation(req, body)

		assert.True(t, shared.IsValidation(err))
	})

	t.Run("failed status with reason", func(t *testing.T) {
		body := []byte(`{"transaction_id":"txn-def","amount":"500.00","status":"failed","reason":"card_declined"}`)
		req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(string(body)))
		req.Header.Set(SignatureHeader, processor.Sign(body))

		confirmation, err := processor.VerifyConfirmation(req, body)

		require.NoError(t, err)
		assert.Equal(t, ledger.ConfirmationStatusFailed, confirmation.Status)
		assert.Equal(t, "card_declined", confirmation.Reason)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		body := []byte(`{"transaction_id":"txn-ghi","amount":"10.00","status":"maybe"}`)
		req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(string(body)))
		req.Header.Set(SignatureHeader, processor.Sign(body))

		_, err := processor.VerifyConfirmation(req, body)

		assert.True(t, shared.IsValidation(err))
	})

	t.Run("zero paid_at defaults to now", func(t *testing.T) {
		body := []byte(`{"transaction_id":"txn-jkl","amount":"10.00","status":"succeeded"}`)
		req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(string(body)))
		req.Header.Set(SignatureHeader, processor.Sign(body))

		confirmation, err := processor.VerifyConfirmation(req, body)

		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), confirmation.PaidAt, time.Minute)
	})
}

func TestWebhookProcessor_AckResponse(t *testing.T) {
	processor := newTestProcessor(t)
	recorder := httptest.NewRecorder()

	processor.AckResponse(recorder)

	assert.Equal(t, 200, recorder.Code)
	assert.JSONEq(t, `{"received":true}`, recorder.Body.String())
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
}
