// Package inference provides the two regression models the AQI pipeline
// depends on, loaded once at process start.
package inference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aqi-monitor-api/config"
)

// Model evaluates a batch of feature vectors and returns one value per row.
type Model interface {
	Predict(ctx context.Context, batch [][]float64) ([]float64, error)
}

// Registry holds the ingestion and forecast models.
type Registry struct {
	AQI      Model
	Forecast Model
}

var ErrNotConfigured = errors.New("model endpoint not configured")

// NewRegistry builds both endpoints from config. A remote URL takes
// precedence over a local artifact path.
func NewRegistry(cfg config.ModelsConfig) (*Registry, error) {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond

	aqiModel, err := open("aqi", cfg.AQI, timeout)
	if err != nil {
		return nil, err
	}
	forecastModel, err := open("forecast", cfg.Forecast, timeout)
	if err != nil {
		return nil, err
	}
	return &Registry{AQI: aqiModel, Forecast: forecastModel}, nil
}

func open(name string, ep config.ModelEndpoint, timeout time.Duration) (Model, error) {
	switch {
	case ep.URL != "":
		return NewRemoteModel(name, ep.URL, timeout), nil
	case ep.Path != "":
		m, err := LoadLinearModel(ep.Path)
		if err != nil {
			return nil, fmt.Errorf("load %s model: %w", name, err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrNotConfigured)
	}
}

// ModelFunc adapts a plain function to Model.
type ModelFunc func(ctx context.Context, batch [][]float64) ([]float64, error)

func (f ModelFunc) Predict(ctx context.Context, batch [][]float64) ([]float64, error) {
	return f(ctx, batch)
}
