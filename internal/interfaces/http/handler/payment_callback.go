package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	ledgerapp "github.com/propman/backend/internal/application/ledger"
	"go.uber.org/zap"
)

// maxWebhookBodySize bounds confirmation payloads
const maxWebhookBodySize = 1 << 20 // 1 MiB

// PaymentCallbackHandler receives payment processor confirmations. The
// route is unauthenticated; the processor's signature over the body is the
// authentication.
type PaymentCallbackHandler struct {
	BaseHandler
	callbackService *ledgerapp.PaymentCallbackService
	logger          *zap.Logger
}

// NewPaymentCallbackHandler creates a new PaymentCallbackHandler
func NewPaymentCallbackHandler(callbackService *ledgerapp.PaymentCallbackService, logger *zap.Logger) *PaymentCallbackHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentCallbackHandler{
		callbackService: callbackService,
		logger:          logger,
	}
}

// ConfirmationResponse reports the outcome of a confirmation
type ConfirmationResponse struct {
	Received         bool             `json:"received"`
	AlreadyProcessed bool             `json:"already_processed,omitempty"`
	Payment          *PaymentResponse `json:"payment,omitempty"`
}

// HandleConfirmation verifies and applies a processor confirmation.
// Replayed confirmations acknowledge without touching the ledger; a
// completed payment never regresses.
func (h *PaymentCallbackHandler) HandleConfirmation(c *gin.Context) {
	processorName := c.Param("processor")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodySize))
	if err != nil {
		h.BadRequest(c, "Could not read request body")
		return
	}

	result, err := h.callbackService.ProcessConfirmation(c.Request.Context(), processorName, c.Request, body)
	if err != nil {
		h.logger.Warn("Payment confirmation rejected",
			zap.String("processor", processorName),
			zap.Error(err))
		h.HandleError(c, err)
		return
	}

	response := ConfirmationResponse{
		Received:         true,
		AlreadyProcessed: result.AlreadyProcessed,
	}
	if result.Payment != nil {
		payment := toPaymentResponse(result.Payment)
		response.Payment = &payment
	}
	c.JSON(http.StatusOK, response)
}
