package aqi

import (
	"context"
	"fmt"

	"aqi-monitor-api/inference"
)

// AQIPredictor wraps the ingestion regression model.
type AQIPredictor struct {
	model inference.Model
}

func NewAQIPredictor(model inference.Model) *AQIPredictor {
	return &AQIPredictor{model: model}
}

// Predict returns the model's raw AQI estimate for r. The value is neither
// clamped nor rounded.
func (p *AQIPredictor) Predict(ctx context.Context, r PollutantReading) (float64, error) {
	return predictOne(ctx, "aqi", p.model, r.Features(), FeatureCount)
}

// predictOne runs a single-row batch through model and unwraps the scalar.
func predictOne(ctx context.Context, endpoint string, model inference.Model, row []float64, width int) (float64, error) {
	if model == nil {
		return 0, &ModelInferenceError{Endpoint: endpoint, Err: inference.ErrNotConfigured}
	}
	if len(row) != width {
		return 0, &ModelInferenceError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("feature vector has %d values, want %d", len(row), width),
		}
	}
	out, err := model.Predict(ctx, [][]float64{row})
	if err != nil {
		return 0, &ModelInferenceError{Endpoint: endpoint, Err: err}
	}
	if len(out) != 1 {
		return 0, &ModelInferenceError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("model returned %d values for one row", len(out)),
		}
	}
	return out[0], nil
}
