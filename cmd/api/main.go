package main

// @title Trip Planner API
// @version 1.0.0
// @description Service for planning multi-day cycling trips over curated road segments.
// @description
// @description Capabilities:
// @description - Solve the riding order across requested segments (each ridden start to end in its chosen direction)
// @description - Split the solved route into days under distance and climbing caps
// @description - Stitch continuous trip geometry and slice it per day
// @description - Persist and share finished plans, including GeoJSON export
// @description - Asynchronous planning over a job queue

// @contact.name API Support
// @contact.email support@trip-planner.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/trip-planner/docs/swagger"
	"github.com/trip-planner/internal/config"
	httpDelivery "github.com/trip-planner/internal/delivery/http"
	"github.com/trip-planner/internal/delivery/http/handler"
	"github.com/trip-planner/internal/infrastructure/mapbox"
	"github.com/trip-planner/internal/infrastructure/strava"
	"github.com/trip-planner/internal/pkg/logger"
	"github.com/trip-planner/internal/repository/cache"
	"github.com/trip-planner/internal/repository/postgres"
	redisRepo "github.com/trip-planner/internal/repository/redis"
	"github.com/trip-planner/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Trip Planner API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}

	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize repositories and providers
	cacheRepo := cache.NewCacheRepository(redisClient)
	tripRepo := postgres.NewTripRepository(db)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
	segmentRepo := strava.NewStravaClient(&cfg.Strava, log)
	matrixRepo := mapbox.NewMapboxClient(&cfg.Mapbox, log)

	log.Info("Repositories initialized")

	// 7. Initialize use cases
	tripUC := usecase.NewTripUseCase(
		segmentRepo,
		matrixRepo,
		cacheRepo,
		tripRepo,
		streamRepo,
		cfg,
		log,
	)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP handlers
	tripHandler := handler.NewTripHandler(tripUC, log)

	// 9. Initialize HTTP server
	server := httpDelivery.NewServer(cfg, log, tripHandler)

	log.Info("HTTP server initialized")

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
