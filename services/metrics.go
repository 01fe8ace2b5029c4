package services

import (
	"context"
	"time"

	"aqi-monitor-api/inference"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReadingsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aqi_readings_ingested_total",
		Help: "Total number of readings scored and stored.",
	}, []string{"source"})
	ReadingsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aqi_readings_failed_total",
		Help: "Total number of readings rejected or failed to score or store.",
	}, []string{"source", "reason"})
	ForecastsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aqi_forecasts_total",
		Help: "Total number of forecast requests by outcome.",
	}, []string{"source", "result"})
	InferenceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aqi_model_inference_seconds",
		Help:    "Latency of regression model calls.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	}, []string{"endpoint"})
	InferenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aqi_model_inference_failures_total",
		Help: "Total number of failed regression model calls.",
	}, []string{"endpoint"})
	ForecastCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aqi_forecaster_cycle_duration_seconds",
		Help:    "Duration of a full forecast cycle over all active sensors.",
		Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
	})
)

// InstrumentModel records latency and failures of m under endpoint.
func InstrumentModel(endpoint string, m inference.Model) inference.Model {
	return inference.ModelFunc(func(ctx context.Context, batch [][]float64) ([]float64, error) {
		start := time.Now()
		out, err := m.Predict(ctx, batch)
		InferenceDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		if err != nil {
			InferenceFailures.WithLabelValues(endpoint).Inc()
		}
		return out, err
	})
}

// InstrumentRegistry wraps both models of reg.
func InstrumentRegistry(reg *inference.Registry) *inference.Registry {
	return &inference.Registry{
		AQI:      InstrumentModel("aqi", reg.AQI),
		Forecast: InstrumentModel("forecast", reg.Forecast),
	}
}
