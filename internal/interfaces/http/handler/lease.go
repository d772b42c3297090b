package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	leasingapp "github.com/propman/backend/internal/application/leasing"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/propman/backend/internal/interfaces/http/dto"
	"github.com/propman/backend/internal/interfaces/http/middleware"
)

const dateLayout = "2006-01-02"

// LeaseHandler handles lease lifecycle endpoints
type LeaseHandler struct {
	BaseHandler
	leaseService *leasingapp.LeaseService
}

// NewLeaseHandler creates a new LeaseHandler
func NewLeaseHandler(leaseService *leasingapp.LeaseService) *LeaseHandler {
	return &LeaseHandler{leaseService: leaseService}
}

// LeaseResponse is the lease representation exposed over the API
type LeaseResponse struct {
	ID              uuid.UUID   `json:"id"`
	TenantID        uuid.UUID   `json:"tenant_id"`
	CoTenantIDs     []uuid.UUID `json:"co_tenant_ids,omitempty"`
	UnitID          uuid.UUID   `json:"unit_id"`
	StartDate       string      `json:"start_date"`
	EndDate         string      `json:"end_date"`
	MonthlyRent     string      `json:"monthly_rent"`
	SecurityDeposit string      `json:"security_deposit"`
	RentDueDay      int         `json:"rent_due_day"`
	LateFee         string      `json:"late_fee"`
	GracePeriodDays int         `json:"grace_period_days"`
	Status          string      `json:"status"`
	Notes           string      `json:"notes"`
	TerminatedAt    *time.Time  `json:"terminated_at,omitempty"`
	ExpiredAt       *time.Time  `json:"expired_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func toLeaseResponse(lease *leasing.Lease) LeaseResponse {
	return LeaseResponse{
		ID:              lease.ID,
		TenantID:        lease.TenantID,
		CoTenantIDs:     lease.CoTenantIDs,
		UnitID:          lease.UnitID,
		StartDate:       lease.StartDate.Format(dateLayout),
		EndDate:         lease.EndDate.Format(dateLayout),
		MonthlyRent:     lease.MonthlyRent.String(),
		SecurityDeposit: lease.SecurityDeposit.String(),
		RentDueDay:      lease.RentDueDay,
		LateFee:         lease.LateFee.String(),
		GracePeriodDays: lease.GracePeriodDays,
		Status:          lease.Status.String(),
		Notes:           lease.Notes,
		TerminatedAt:    lease.TerminatedAt,
		ExpiredAt:       lease.ExpiredAt,
		CreatedAt:       lease.CreatedAt,
		UpdatedAt:       lease.UpdatedAt,
	}
}

// CreateLeaseRequest represents a request to create a lease
type CreateLeaseRequest struct {
	TenantID        uuid.UUID `json:"tenant_id" binding:"required"`
	UnitID          uuid.UUID `json:"unit_id" binding:"required"`
	StartDate       string    `json:"start_date" binding:"required"`
	EndDate         string    `json:"end_date" binding:"required"`
	MonthlyRent     string    `json:"monthly_rent" binding:"required,money"`
	SecurityDeposit string    `json:"security_deposit" binding:"required,money"`
	RentDueDay      int       `json:"rent_due_day" binding:"required,min=1,max=28"`
	LateFee         string    `json:"late_fee" binding:"required,money"`
	GracePeriodDays int       `json:"grace_period_days" binding:"min=0"`
	Pending         bool      `json:"pending"`
}

// Create creates a lease. Uniqueness of the active lease per tenant and per
// unit is enforced atomically by storage; a violation surfaces as a conflict.
func (h *LeaseHandler) Create(c *gin.Context) {
	var req CreateLeaseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		h.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		h.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
		return
	}

	terms, ok := h.parseTerms(c, req.MonthlyRent, req.SecurityDeposit, req.LateFee, req.RentDueDay, req.GracePeriodDays)
	if !ok {
		return
	}

	lease, err := h.leaseService.CreateLease(c.Request.Context(), middleware.CurrentActor(c), leasingapp.CreateLeaseInput{
		TenantID:  req.TenantID,
		UnitID:    req.UnitID,
		StartDate: startDate,
		EndDate:   endDate,
		Terms:     terms,
		Pending:   req.Pending,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toLeaseResponse(lease))
}

func (h *LeaseHandler) parseTerms(c *gin.Context, rent, deposit, lateFee string, dueDay, graceDays int) (leasing.LeaseTerms, bool) {
	rentMoney, err := valueobject.NewMoneyUSDFromString(rent)
	if err != nil {
		h.BadRequest(c, "Invalid monthly_rent amount")
		return leasing.LeaseTerms{}, false
	}
	depositMoney, err := valueobject.NewMoneyUSDFromString(deposit)
	if err != nil {
		h.BadRequest(c, "Invalid security_deposit amount")
		return leasing.LeaseTerms{}, false
	}
	lateFeeMoney, err := valueobject.NewMoneyUSDFromString(lateFee)
	if err != nil {
		h.BadRequest(c, "Invalid late_fee amount")
		return leasing.LeaseTerms{}, false
	}
	return leasing.LeaseTerms{
		MonthlyRent:     rentMoney,
		SecurityDeposit: depositMoney,
		RentDueDay:      dueDay,
		LateFee:         lateFeeMoney,
		GracePeriodDays: graceDays,
	}, true
}

// Get returns a single lease
func (h *LeaseHandler) Get(c *gin.Context) {
	leaseID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	lease, err := h.leaseService.GetLease(c.Request.Context(), middleware.CurrentActor(c), leaseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toLeaseResponse(lease))
}

// List returns the leases visible to the actor
func (h *LeaseHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	filter := leasing.LeaseFilter{
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
	if status := c.Query("status"); status != "" {
		leaseStatus := leasing.LeaseStatus(status)
		if !leaseStatus.IsValid() {
			h.BadRequest(c, "Unknown lease status")
			return
		}
		filter.Statuses = []leasing.LeaseStatus{leaseStatus}
	}

	leases, err := h.leaseService.GetAccessibleLeases(c.Request.Context(), middleware.CurrentActor(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]LeaseResponse, 0, len(leases))
	for i := range leases {
		out = append(out, toLeaseResponse(&leases[i]))
	}
	h.Success(c, out)
}

// TerminateLeaseRequest represents a termination request
type TerminateLeaseRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// TerminateLeaseResponse reports whether the termination changed anything
type TerminateLeaseResponse struct {
	Changed bool `json:"changed"`
}

// Terminate ends a lease early. Terminating an already-terminated lease is
// a successful no-op.
func (h *LeaseHandler) Terminate(c *gin.Context) {
	leaseID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req TerminateLeaseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	changed, err := h.leaseService.TerminateLease(c.Request.Context(), middleware.CurrentActor(c), leaseID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, TerminateLeaseResponse{Changed: changed})
}

// Activate transitions a pending lease to active
func (h *LeaseHandler) Activate(c *gin.Context) {
	leaseID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	lease, err := h.leaseService.ActivateLease(c.Request.Context(), middleware.CurrentActor(c), leaseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toLeaseResponse(lease))
}

// RenewLeaseRequest represents a renewal request
type RenewLeaseRequest struct {
	EndDate     string  `json:"end_date" binding:"required"`
	MonthlyRent *string `json:"monthly_rent" binding:"omitempty,money"`
}

// Renew creates a new pending lease starting where the current one ends
func (h *LeaseHandler) Renew(c *gin.Context) {
	leaseID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req RenewLeaseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		h.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
		return
	}

	var newRent *valueobject.Money
	if req.MonthlyRent != nil {
		rent, err := valueobject.NewMoneyUSDFromString(*req.MonthlyRent)
		if err != nil {
			h.BadRequest(c, "Invalid monthly_rent amount")
			return
		}
		newRent = &rent
	}

	renewed, err := h.leaseService.RenewLease(c.Request.Context(), middleware.CurrentActor(c), leaseID, endDate, newRent)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toLeaseResponse(renewed))
}
