package handlers

import (
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Ingest    *IngestHandler
	Devices   *DeviceHandler
	Dashboard *DashboardHandler
	System    *SystemHandler
}

// RegisterRoutes вешает маршруты на /api; ingestMiddleware применяется только к приему данных.
func RegisterRoutes(r *gin.Engine, h Handlers, ingestMiddleware ...gin.HandlerFunc) {
	api := r.Group("/api")

	ingest := make([]gin.HandlerFunc, 0, len(ingestMiddleware)+1)
	ingest = append(ingest, ingestMiddleware...)
	api.POST("/log", append(ingest, h.Ingest.ReceiveReading)...)

	api.GET("/dashboard", h.Dashboard.GetDashboardData)
	api.GET("/stats", h.Dashboard.GetStats)
	api.GET("/trend", h.Dashboard.GetTrend)

	api.GET("/devices", h.Devices.ListDevices)
	api.GET("/devices/:id/history", h.Devices.GetHistory)
	api.GET("/devices/:id/gauge", h.Devices.GetGauge)
	api.GET("/devices/:id/export", h.Devices.ExportHistory)

	if h.System != nil {
		api.GET("/health", h.System.HealthCheck)
		api.GET("/system/stats", h.System.GetSystemStats)
	}
}
