package handlers

import (
	"net/http"
	"time"

	"co2monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler всегда отвечает 200: при сбое хранилища отдаются пустые значения.
type DashboardHandler struct {
	queries service.QueryService
	now     func() time.Time
}

func NewDashboardHandler(queries service.QueryService) *DashboardHandler {
	return &DashboardHandler{queries: queries, now: time.Now}
}

// GetDashboardData собирает данные для обзора парка устройств.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	ctx := c.Request.Context()

	devices, _ := h.queries.FleetSnapshot(ctx)
	stats, _ := h.queries.FleetStatistics(ctx)
	trend, _ := h.queries.HourlyTrend(ctx)

	c.JSON(http.StatusOK, gin.H{
		"devices":   devices,
		"stats":     stats,
		"trend":     trend,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, _ := h.queries.FleetStatistics(c.Request.Context())
	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) GetTrend(c *gin.Context) {
	trend, _ := h.queries.HourlyTrend(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"trend": trend})
}
