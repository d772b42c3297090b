package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	portfolioapp "github.com/propman/backend/internal/application/portfolio"
	"github.com/propman/backend/internal/interfaces/http/middleware"
)

// PortfolioHandler handles aggregated portfolio endpoints
type PortfolioHandler struct {
	BaseHandler
	overviewService *portfolioapp.OverviewService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(overviewService *portfolioapp.OverviewService) *PortfolioHandler {
	return &PortfolioHandler{overviewService: overviewService}
}

// Overview returns the portfolio picture visible to the actor. Elapsed
// leases are reconciled before the snapshot is assembled.
func (h *PortfolioHandler) Overview(c *gin.Context) {
	overview, err := h.overviewService.GetPortfolioOverview(c.Request.Context(), middleware.CurrentActor(c), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}
