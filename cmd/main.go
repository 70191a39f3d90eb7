package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"co2monitor/internal/config"
	"co2monitor/internal/handlers"
	"co2monitor/internal/middleware"
	"co2monitor/internal/repository"
	"co2monitor/internal/service"
	"co2monitor/pkg/database"
	"co2monitor/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	// Загрузка .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("=== CO2 Monitor Backend Starting ===")

	cfg := config.Load()

	db, err := database.Connect(database.Config{
		Driver:   cfg.DB.Driver,
		Path:     cfg.DB.Path,
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
		Debug:    cfg.App.Debug,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	// Схема создается до того, как сервер начнет принимать запросы
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Redis опционален: без него счетчики приема просто не ведутся
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.Connect(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Printf("Redis unavailable, ingest counters disabled: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Репозитории
	readingRepo := repository.NewReadingRepository(db)
	counterRepo := repository.NewCounterRepository(redisClient)

	// Сервисы
	ingestService := service.NewIngestService(readingRepo, counterRepo, nil)
	queryService := service.NewQueryService(readingRepo, nil)
	exportService := service.NewExportService(queryService)

	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in DEBUG mode")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), middleware.RequestID(), middleware.Recovery())

	// CORS для дашборда
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var ingestMiddleware []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		ingestMiddleware = append(ingestMiddleware, middleware.IPRateLimitMiddleware(limiter))
		log.Printf("Rate limiting enabled for ingest: %d req/sec per IP, burst: %d",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	handlers.RegisterRoutes(r, handlers.Handlers{
		Ingest:    handlers.NewIngestHandler(ingestService),
		Devices:   handlers.NewDeviceHandler(queryService, exportService),
		Dashboard: handlers.NewDashboardHandler(queryService),
		System:    handlers.NewSystemHandler(readingRepo, counterRepo, redisClient),
	}, ingestMiddleware...)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://0.0.0.0:%s", cfg.App.Port)
		log.Printf("Ingest endpoint: POST http://localhost:%s/api/log", cfg.App.Port)
		log.Printf("Dashboard data: http://localhost:%s/api/dashboard", cfg.App.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		return
	}

	log.Println("Server exited properly")
}
