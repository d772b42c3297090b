package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/propman/backend/internal/application/ledger"
	"github.com/propman/backend/internal/domain/ledger"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/propman/backend/internal/interfaces/http/dto"
	"github.com/propman/backend/internal/interfaces/http/middleware"
)

// PaymentHandler handles payment ledger endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *ledgerapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *ledgerapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentResponse is the payment representation exposed over the API
type PaymentResponse struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	UnitID        uuid.UUID  `json:"unit_id"`
	LeaseID       *uuid.UUID `json:"lease_id,omitempty"`
	Type          string     `json:"type"`
	Amount        string     `json:"amount"`
	Method        string     `json:"method"`
	Status        string     `json:"status"`
	PeriodMonth   int        `json:"period_month,omitempty"`
	PeriodYear    int        `json:"period_year,omitempty"`
	TransactionID string     `json:"transaction_id"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toPaymentResponse(payment *ledger.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            payment.ID,
		TenantID:      payment.TenantID,
		UnitID:        payment.UnitID,
		LeaseID:       payment.LeaseID,
		Type:          payment.Type.String(),
		Amount:        payment.Amount.String(),
		Method:        payment.Method.String(),
		Status:        payment.Status.String(),
		PeriodMonth:   payment.PeriodMonth,
		PeriodYear:    payment.PeriodYear,
		TransactionID: payment.TransactionID,
		PaidAt:        payment.PaidAt,
		FailureReason: payment.FailureReason,
		Notes:         payment.Notes,
		CreatedAt:     payment.CreatedAt,
	}
}

// RecordPaymentRequest represents a request to record a payment
type RecordPaymentRequest struct {
	TenantID      uuid.UUID `json:"tenant_id" binding:"required"`
	UnitID        uuid.UUID `json:"unit_id"`
	Type          string    `json:"type" binding:"required,oneof=rent service_fee deposit late_fee other"`
	Amount        string    `json:"amount" binding:"required,money"`
	Method        string    `json:"method" binding:"required,oneof=card bank_transfer cash check other"`
	PeriodMonth   int       `json:"period_month" binding:"omitempty,min=1,max=12"`
	PeriodYear    int       `json:"period_year" binding:"omitempty,min=2000"`
	TransactionID string    `json:"transaction_id" binding:"required,min=1,max=100"`
	Notes         string    `json:"notes"`
}

// RecordPaymentResponse reports the payment and whether the transaction ID
// had been seen before
type RecordPaymentResponse struct {
	Payment         PaymentResponse `json:"payment"`
	AlreadyRecorded bool            `json:"already_recorded"`
}

// Record enters a payment into the ledger. Repeating a transaction ID
// returns the original record instead of creating a duplicate.
func (h *PaymentHandler) Record(c *gin.Context) {
	var req RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	amount, err := valueobject.NewMoneyUSDFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), middleware.CurrentActor(c), ledgerapp.RecordPaymentInput{
		TenantID:      req.TenantID,
		UnitID:        req.UnitID,
		Type:          ledger.PaymentType(req.Type),
		Amount:        amount,
		Method:        ledger.PaymentMethod(req.Method),
		PeriodMonth:   req.PeriodMonth,
		PeriodYear:    req.PeriodYear,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := RecordPaymentResponse{
		Payment:         toPaymentResponse(result.Payment),
		AlreadyRecorded: result.AlreadyRecorded,
	}
	if result.AlreadyRecorded {
		h.Success(c, response)
		return
	}
	h.Created(c, response)
}

// List returns the payments visible to the actor
func (h *PaymentHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	filter := ledger.PaymentFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if raw := c.Query("tenant_id"); raw != "" {
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid tenant_id parameter")
			return
		}
		filter.TenantID = &tenantID
	}
	if raw := c.Query("unit_id"); raw != "" {
		unitID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid unit_id parameter")
			return
		}
		filter.UnitID = &unitID
	}
	if raw := c.Query("type"); raw != "" {
		paymentType := ledger.PaymentType(raw)
		if !paymentType.IsValid() {
			h.BadRequest(c, "Unknown payment type")
			return
		}
		filter.Type = &paymentType
	}
	if raw := c.Query("status"); raw != "" {
		status := ledger.PaymentStatus(raw)
		if !status.IsValid() {
			h.BadRequest(c, "Unknown payment status")
			return
		}
		filter.Status = &status
	}

	page, err := h.paymentService.GetAccessiblePayments(c.Request.Context(), middleware.CurrentActor(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toPaymentResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// History returns a tenant's payment history, newest first
func (h *PaymentHandler) History(c *gin.Context) {
	tenantID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	page, err := h.paymentService.GetHistory(c.Request.Context(), middleware.CurrentActor(c), tenantID, shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, toPaymentResponses(page.Items), page.Total, page.Page, page.PageSize)
}

// Obligation returns a tenant's rent position for the month containing as_of
func (h *PaymentHandler) Obligation(c *gin.Context) {
	tenantID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	asOf, ok := h.parseAsOf(c)
	if !ok {
		return
	}

	obligation, err := h.paymentService.ComputeTenantObligation(c.Request.Context(), middleware.CurrentActor(c), tenantID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, obligation)
}

// LeaseObligation returns a lease's rent position for the month containing
// as_of. Unknown lease IDs are 404.
func (h *PaymentHandler) LeaseObligation(c *gin.Context) {
	leaseID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	asOf, ok := h.parseAsOf(c)
	if !ok {
		return
	}

	obligation, err := h.paymentService.ComputeObligationStatus(c.Request.Context(), middleware.CurrentActor(c), leaseID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, obligation)
}

// parseAsOf reads the optional as_of query parameter, defaulting to now
func (h *PaymentHandler) parseAsOf(c *gin.Context) (time.Time, bool) {
	raw := c.Query("as_of")
	if raw == "" {
		return time.Now(), true
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		h.BadRequest(c, "Invalid as_of, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return parsed, true
}

func toPaymentResponses(payments []ledger.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, toPaymentResponse(&payments[i]))
	}
	return out
}
