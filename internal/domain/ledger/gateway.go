package ledger

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ConfirmationStatus is the outcome reported by the payment processor
type ConfirmationStatus string

const (
	ConfirmationStatusSucceeded ConfirmationStatus = "succeeded"
	ConfirmationStatusFailed    ConfirmationStatus = "failed"
)

// PaymentConfirmation is a verified asynchronous notification from the
// payment processor about a previously recorded payment.
type PaymentConfirmation struct {
	TransactionID string
	Amount        decimal.Decimal
	Status        ConfirmationStatus
	PaidAt        time.Time
	Reason        string // populated on failure
	RawPayload    []byte
}

// PaymentProcessor abstracts the external payment provider. Implementations
// verify webhook signatures and normalize provider payloads into
// PaymentConfirmation values.
type PaymentProcessor interface {
	// Name identifies the provider, e.g. for logging and routing
	Name() string
	// VerifyConfirmation authenticates and parses a webhook request.
	// A bad signature or malformed payload yields a validation error.
	VerifyConfirmation(r *http.Request, body []byte) (*PaymentConfirmation, error)
	// AckResponse writes the provider's expected acknowledgement
	AckResponse(w http.ResponseWriter)
}
