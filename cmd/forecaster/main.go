package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aqi-monitor-api/aqi"
	"aqi-monitor-api/config"
	"aqi-monitor-api/inference"
	"aqi-monitor-api/services"
	"aqi-monitor-api/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := services.NewLogger(cfg.Log).With("service", "forecaster")
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(ctx, cfg.Database.URL())
	if err != nil {
		logger.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	registry, err := inference.NewRegistry(cfg.Models)
	if err != nil {
		logger.Error("model registry init failed", "error", err)
		os.Exit(1)
	}
	registry = services.InstrumentRegistry(registry)

	// Redis is required: forecasts have nowhere else to go.
	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		logger.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	defer cache.Close()

	go func() {
		if err := services.ServeOps(ctx, cfg.Worker.MetricsAddr, store.Ping); err != nil {
			logger.Error("metrics server failed", "error", err)
			stop()
		}
	}()

	interval := time.Duration(cfg.Worker.ForecastIntervalSec) * time.Second
	w := &worker{
		sensors:    store,
		forecaster: aqi.NewForecaster(store, aqi.NewForecastPredictor(registry.Forecast)),
		sink:       cache,
		ttl:        interval,
		logger:     logger,
		now:        time.Now,
	}

	logger.Info("forecaster running", "interval", interval, "metrics", cfg.Worker.MetricsAddr)
	w.run(ctx, interval)
	logger.Info("forecaster shutting down")
}
