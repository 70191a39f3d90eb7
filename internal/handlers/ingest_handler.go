package handlers

import (
	"errors"
	"log"
	"net/http"

	"co2monitor/internal/middleware"
	"co2monitor/internal/service"
	"co2monitor/internal/utils"

	"github.com/gin-gonic/gin"
)

// MaxIngestBodyBytes ограничивает тело одной записи телеметрии.
const MaxIngestBodyBytes = 64 << 10

type IngestHandler struct {
	service service.IngestService
}

func NewIngestHandler(service service.IngestService) *IngestHandler {
	return &IngestHandler{service: service}
}

// ReceiveReading принимает одну запись телеметрии: POST /api/log
func (h *IngestHandler) ReceiveReading(c *gin.Context) {
	ctx := c.Request.Context()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxIngestBodyBytes)

	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Payload too large"})
			return
		}
		log.Printf("Failed to read request body [%s]: %v", c.GetString(middleware.RequestIDKey), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	sourceIP := utils.ResolveSourceIP(c.Request)

	if _, err := h.service.Ingest(ctx, body, sourceIP); err != nil {
		if errors.Is(err, service.ErrInvalidPayload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}

		log.Printf("API error [%s]: %v", c.GetString(middleware.RequestIDKey), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
