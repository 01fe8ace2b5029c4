package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aqi-monitor-api/aqi"
	"aqi-monitor-api/config"
	"aqi-monitor-api/handlers"
	"aqi-monitor-api/inference"
	"aqi-monitor-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// devJWTSecret signs tokens when APP_ENV=dev and JWT_SECRET is unset.
const devJWTSecret = "dev-only-insecure-secret"

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := services.NewLogger(cfg.Log).With("service", "api")
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		logger.Warn("JWT_SECRET unset, using development secret")
		cfg.JWT.Secret = devJWTSecret
	}
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("failed to get sql db handle", "error", err)
		os.Exit(1)
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Redis is optional for the API: without it responses are uncached
	// and /ws/live is refused.
	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, running without cache", "error", err)
	}
	defer cache.Close()

	registry, err := inference.NewRegistry(cfg.Models)
	if err != nil {
		logger.Error("failed to load models", "error", err)
		os.Exit(1)
	}
	registry = services.InstrumentRegistry(registry)

	store := services.NewGormReadingStore(db)
	ingestor := aqi.NewIngestor(
		aqi.NewAQIPredictor(registry.AQI),
		store,
		aqi.WithNotifier(services.NewLivePublisher(cache)),
		aqi.WithLogger(logger),
	)
	forecaster := aqi.NewForecaster(store, aqi.NewForecastPredictor(registry.Forecast))

	router := handlers.NewRouter(handlers.Deps{
		DB:         db,
		Cache:      cache,
		Auth:       services.NewAuthService(cfg.JWT),
		Ingestor:   ingestor,
		Forecaster: forecaster,
		CORS:       cfg.CORS,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
