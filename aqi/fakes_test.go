package aqi

import (
	"context"
	"errors"
	"sync"

	"aqi-monitor-api/inference"
)

// stubModel returns value for every row and records what it was given.
func stubModel(value float64, seen *[][]float64) inference.Model {
	return inference.ModelFunc(func(_ context.Context, batch [][]float64) ([]float64, error) {
		if seen != nil {
			*seen = append(*seen, batch...)
		}
		out := make([]float64, len(batch))
		for i := range out {
			out[i] = value
		}
		return out, nil
	})
}

func failingModel(err error) inference.Model {
	return inference.ModelFunc(func(context.Context, [][]float64) ([]float64, error) {
		return nil, err
	})
}

type memoryStore struct {
	mu       sync.Mutex
	readings []ScoredReading
	err      error
}

func (s *memoryStore) InsertReading(_ context.Context, r ScoredReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.readings = append(s.readings, r)
	return nil
}

func (s *memoryStore) LastNReadings(_ context.Context, sensorID uint, n int) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []float64
	for i := len(s.readings) - 1; i >= 0 && len(out) < n; i-- {
		if s.readings[i].SensorID == sensorID {
			out = append(out, s.readings[i].PredictedAQI)
		}
	}
	return out, nil
}

var errUnavailable = errors.New("unavailable")

func modelSpy(next inference.Model, called *bool) inference.Model {
	return inference.ModelFunc(func(ctx context.Context, batch [][]float64) ([]float64, error) {
		*called = true
		return next.Predict(ctx, batch)
	})
}
