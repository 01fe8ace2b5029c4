package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"aqi-monitor-api/config"
	"aqi-monitor-api/models"
	"aqi-monitor-api/services"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := services.NewLogger(cfg.Log).With("service", "seed")
	slog.SetDefault(logger)

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	auth := services.NewAuthService(cfg.JWT)
	s := &seeder{
		db:     db,
		hash:   auth.HashPassword,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}

	admin := models.Admin{
		Username: getEnv("SEED_ADMIN_USERNAME", "admin1"),
		Email:    getEnv("SEED_ADMIN_EMAIL", "admin@example.com"),
	}
	password := getEnv("SEED_ADMIN_PASSWORD", "admin123")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.run(ctx, admin, password); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
	logger.Info("seed complete")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
