package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbdsaraiva/academia-api/internal/dto"
	"github.com/mbdsaraiva/academia-api/internal/middleware"
	appErrors "github.com/mbdsaraiva/academia-api/pkg/errors"
	"github.com/mbdsaraiva/academia-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Dashboard summary
// @Description Entity counts, payment percentages, amounts and the most popular courses.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	summary, cacheHit, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.MarkCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ReportMeta(c))
}
