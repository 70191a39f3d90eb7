package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"co2monitor/internal/repository"
	redispkg "co2monitor/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

type SystemHandler struct {
	repo        repository.ReadingRepository
	counters    repository.CounterRepository
	redisClient *redis.Client
}

func NewSystemHandler(
	repo repository.ReadingRepository,
	counters repository.CounterRepository,
	redisClient *redis.Client,
) *SystemHandler {
	return &SystemHandler{
		repo:        repo,
		counters:    counters,
		redisClient: redisClient,
	}
}

func (h *SystemHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	database := "connected"
	status, state := http.StatusOK, "ok"
	if err := h.repo.Ping(ctx); err != nil {
		log.Printf("Health check: database ping failed: %v", err)
		database = "unavailable"
		status, state = http.StatusServiceUnavailable, "degraded"
	}

	redisState := "disabled"
	if h.redisClient != nil {
		redisState = "connected"
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			redisState = "unavailable"
		}
	}

	c.JSON(status, gin.H{
		"status":    state,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": gin.H{
			"database": database,
			"redis":    redisState,
		},
	})
}

func (h *SystemHandler) GetSystemStats(c *gin.Context) {
	ctx := c.Request.Context()

	readings, err := h.repo.Count(ctx)
	if err != nil {
		log.Printf("System stats: count failed: %v", err)
	}

	counters, err := h.counters.GetAll(ctx,
		repository.CounterAccepted, repository.CounterRejected, repository.CounterFailed)
	if err != nil {
		log.Printf("System stats: counters failed: %v", err)
	}

	response := gin.H{
		"database": gin.H{"readings": readings},
		"ingest": gin.H{
			"enabled":  h.counters.Enabled(),
			"accepted": counters[repository.CounterAccepted],
			"rejected": counters[repository.CounterRejected],
			"failed":   counters[repository.CounterFailed],
		},
	}

	if h.redisClient != nil {
		if redisStats, err := redispkg.GetStats(ctx, h.redisClient); err == nil {
			response["redis"] = redisStats
		} else {
			log.Printf("System stats: redis info failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, response)
}
