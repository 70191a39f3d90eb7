package handlers

import (
	"fmt"
	"log"
	"net/http"

	"co2monitor/internal/middleware"
	"co2monitor/internal/service"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	queries service.QueryService
	exports service.ExportService
}

func NewDeviceHandler(queries service.QueryService, exports service.ExportService) *DeviceHandler {
	return &DeviceHandler{queries: queries, exports: exports}
}

// ListDevices отдает последнюю запись каждого устройства.
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	devices, _ := h.queries.FleetSnapshot(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"devices": devices,
		"count":   len(devices),
	})
}

// GetHistory: неизвестное устройство дает пустой список, а не ошибку.
func (h *DeviceHandler) GetHistory(c *gin.Context) {
	deviceID := c.Param("id")
	history, _ := h.queries.DeviceHistory(c.Request.Context(), deviceID)

	c.JSON(http.StatusOK, gin.H{
		"device_id": deviceID,
		"count":     len(history),
		"readings":  history,
	})
}

func (h *DeviceHandler) GetGauge(c *gin.Context) {
	deviceID := c.Param("id")

	gauge, _ := h.queries.Gauge(c.Request.Context(), deviceID)
	if gauge == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Device not found",
			"device_id": deviceID,
		})
		return
	}

	c.JSON(http.StatusOK, gauge)
}

func (h *DeviceHandler) ExportHistory(c *gin.Context) {
	deviceID := c.Param("id")
	format := c.DefaultQuery("format", "csv")

	contentType, extension, err := h.exports.ContentType(format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unsupported format, use 'csv' or 'xlsx'",
		})
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", deviceID+"_history."+extension))
	c.Status(http.StatusOK)

	if err := h.exports.ExportHistory(c.Request.Context(), deviceID, format, c.Writer); err != nil {
		// Заголовки уже отправлены, остается только лог
		log.Printf("Export failed for %s [%s]: %v", deviceID, c.GetString(middleware.RequestIDKey), err)
	}
}
