package aqi

import (
	"context"
	"math"

	"aqi-monitor-api/inference"
)

// ForecastPredictor wraps the one-step-ahead forecast model.
type ForecastPredictor struct {
	model inference.Model
}

func NewForecastPredictor(model inference.Model) *ForecastPredictor {
	return &ForecastPredictor{model: model}
}

// PredictNext returns the full-precision next value for a lag vector built
// by BuildLagFeatures.
func (p *ForecastPredictor) PredictNext(ctx context.Context, features []float64) (float64, error) {
	return predictOne(ctx, "forecast", p.model, features, LagFeatureCount)
}

// ForecastResult is the next expected AQI value for a sensor.
type ForecastResult struct {
	SensorID  uint     `json:"sensor_id"`
	NextValue float64  `json:"next_hour_AQI"`
	Category  Category `json:"category"`
}

// Rounded returns a copy with NextValue rounded to two decimals for display.
// Category is left as classified from the full-precision value.
func (f ForecastResult) Rounded() ForecastResult {
	f.NextValue = Round2(f.NextValue)
	return f
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// HistoryReader returns up to n predicted AQI values for a sensor, newest
// first.
type HistoryReader interface {
	LastNReadings(ctx context.Context, sensorID uint, n int) ([]float64, error)
}

// Forecaster reads a sensor's recent history and predicts its next value.
type Forecaster struct {
	history   HistoryReader
	predictor *ForecastPredictor
}

func NewForecaster(history HistoryReader, predictor *ForecastPredictor) *Forecaster {
	return &Forecaster{history: history, predictor: predictor}
}

// Forecast returns ErrInsufficientHistory when the sensor has fewer than
// LagWindowSize readings.
func (f *Forecaster) Forecast(ctx context.Context, sensorID uint) (ForecastResult, error) {
	values, err := f.history.LastNReadings(ctx, sensorID, LagWindowSize)
	if err != nil {
		return ForecastResult{}, &StorageError{Op: "read history", Err: err}
	}

	features, err := BuildLagFeatures(values)
	if err != nil {
		return ForecastResult{}, err
	}

	next, err := f.predictor.PredictNext(ctx, features)
	if err != nil {
		return ForecastResult{}, err
	}

	return ForecastResult{
		SensorID:  sensorID,
		NextValue: next,
		Category:  Classify(next),
	}, nil
}
