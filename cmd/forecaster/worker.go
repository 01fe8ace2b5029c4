package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"aqi-monitor-api/aqi"
	"aqi-monitor-api/services"
)

type sensorLister interface {
	ActiveSensorIDs(ctx context.Context) ([]uint, error)
}

// forecastSink is where finished forecasts go. *services.CacheService
// satisfies it.
type forecastSink interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ForecastMessage is published on services.ForecastChannel and cached under
// services.ForecastKey.
type ForecastMessage struct {
	aqi.ForecastResult
	GeneratedAt time.Time `json:"generated_at"`
}

type cycleStats struct {
	Sensors   int
	Published int
	Skipped   int
	Failed    int
}

type worker struct {
	sensors    sensorLister
	forecaster *aqi.Forecaster
	sink       forecastSink
	ttl        time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// runCycle forecasts every active sensor once. Sensors without enough
// history are skipped; one sensor failing does not stop the rest.
func (w *worker) runCycle(ctx context.Context) cycleStats {
	start := time.Now()
	defer func() {
		services.ForecastCycleDuration.Observe(time.Since(start).Seconds())
	}()

	var stats cycleStats
	ids, err := w.sensors.ActiveSensorIDs(ctx)
	if err != nil {
		w.logger.Error("list active sensors failed", "error", err)
		return stats
	}
	stats.Sensors = len(ids)

	generated := w.now().UTC().Truncate(time.Second)
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}

		result, err := w.forecaster.Forecast(ctx, id)
		if errors.Is(err, aqi.ErrInsufficientHistory) {
			services.ForecastsServed.WithLabelValues("worker", "insufficient").Inc()
			stats.Skipped++
			continue
		}
		if err != nil {
			services.ForecastsServed.WithLabelValues("worker", "error").Inc()
			w.logger.Warn("forecast failed", "sensor_id", id, "error", err)
			stats.Failed++
			continue
		}

		msg := ForecastMessage{ForecastResult: result.Rounded(), GeneratedAt: generated}
		if err := w.sink.Set(ctx, services.ForecastKey(id), msg, w.ttl); err != nil {
			w.logger.Warn("forecast cache failed", "sensor_id", id, "error", err)
		}
		if err := w.sink.Publish(ctx, services.ForecastChannel, msg); err != nil {
			w.logger.Warn("forecast publish failed", "sensor_id", id, "error", err)
			stats.Failed++
			continue
		}
		services.ForecastsServed.WithLabelValues("worker", "ok").Inc()
		stats.Published++
	}

	w.logger.Info("forecast cycle completed",
		"sensors", stats.Sensors,
		"published", stats.Published,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"duration", time.Since(start),
	)
	return stats
}

// run executes a cycle immediately and then on every tick until ctx ends.
func (w *worker) run(ctx context.Context, interval time.Duration) {
	w.runCycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runCycle(ctx)
		case <-ctx.Done():
			return
		}
	}
}
