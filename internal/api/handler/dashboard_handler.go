package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clienttracker/crm-system/internal/api/metrics"
	"github.com/clienttracker/crm-system/internal/core/domain"
	"github.com/clienttracker/crm-system/internal/core/ports"
)

// DashboardHandler exposes the stats endpoint.
type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats handles GET /api/dashboard/stats.
//
// @Summary      Dashboard summary statistics
// @Description  Counts are computed over the clients and tasks visible to the
// @Description  caller. BDE callers only see their own portfolio.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.DashboardStats
// @Router       /api/dashboard/stats [get]
func (h *DashboardHandler) Stats(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	scope := "all"
	if p.Role == domain.RoleBDE {
		scope = "owner"
	}

	start := time.Now()
	stats, err := h.service.ComputeStats(c.Request().Context(), p)
	if err != nil {
		return err
	}
	metrics.DashboardComputations.WithLabelValues(scope).Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, stats)
}
