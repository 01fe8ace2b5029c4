package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"aqi-monitor-api/aqi"
	"aqi-monitor-api/inference"
	"aqi-monitor-api/services"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var received = time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC) // a Monday

func TestDecodeReading(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		raw := `{"sensor_id":3,"PM2_5":35.5,"PM10":60.2,"NO2":20.1,"CO":0.8,"SO2":5.5,"O3":30,"NH3":10,"hour":10,"day":15,"month":6,"weekday":6}`
		r, at, err := decodeReading("aqi/readings/3", []byte(raw), received)
		require.NoError(t, err)
		assert.Equal(t, uint(3), r.SensorID)
		assert.Equal(t, 35.5, r.PM25)
		assert.Equal(t, 10, r.Hour)
		assert.Equal(t, 6, r.Weekday)
		assert.Equal(t, received, at)
	})

	t.Run("calendar derived from ts", func(t *testing.T) {
		raw := `{"ts":"2025-06-15T14:30:00Z","sensor_id":3,"PM2_5":12}`
		r, at, err := decodeReading("aqi/readings/3", []byte(raw), received)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC), at)
		assert.Equal(t, 14, r.Hour)
		assert.Equal(t, 15, r.Day)
		assert.Equal(t, 6, r.Month)
		assert.Equal(t, 6, r.Weekday) // Sunday
	})

	t.Run("zoneless ts is utc", func(t *testing.T) {
		_, at, err := decodeReading("aqi/readings/3", []byte(`{"ts":"2025-06-15T14:30:00","sensor_id":3}`), received)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC), at)
	})

	t.Run("calendar derived from receive time", func(t *testing.T) {
		r, at, err := decodeReading("aqi/readings/3", []byte(`{"sensor_id":3}`), received)
		require.NoError(t, err)
		assert.Equal(t, received, at)
		assert.Equal(t, 9, r.Hour)
		assert.Equal(t, 0, r.Weekday)
	})

	t.Run("sensor id from topic", func(t *testing.T) {
		r, _, err := decodeReading("aqi/readings/42", []byte(`{"PM2_5":12}`), received)
		require.NoError(t, err)
		assert.Equal(t, uint(42), r.SensorID)
	})

	t.Run("rejections", func(t *testing.T) {
		cases := map[string]string{
			"invalid json":     `{not valid json}`,
			"bad ts":           `{"sensor_id":1,"ts":"yesterday"}`,
			"no sensor":        `{"PM2_5":12}`,
			"negative reading": `{"sensor_id":1,"PM10":-3}`,
			"bad calendar":     `{"sensor_id":1,"hour":25,"day":1,"month":1,"weekday":0}`,
		}
		for name, raw := range cases {
			_, _, err := decodeReading("aqi/readings/+", []byte(raw), received)
			assert.Error(t, err, name)
		}
	})
}

func TestSensorFromTopic(t *testing.T) {
	assert.Equal(t, uint(7), sensorFromTopic("aqi/readings/7"))
	assert.Equal(t, uint(0), sensorFromTopic("aqi/readings/SNS-1A2B"))
	assert.Equal(t, uint(12), sensorFromTopic("12"))
}

type captureStore struct {
	stored []aqi.ScoredReading
	err    error
}

func (s *captureStore) InsertReading(_ context.Context, r aqi.ScoredReading) error {
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, r)
	return nil
}

func (s *captureStore) LastNReadings(context.Context, uint, int) ([]float64, error) {
	return nil, errors.New("not used")
}

func TestHandleMessage(t *testing.T) {
	store := &captureStore{}
	model := inference.ModelFunc(func(_ context.Context, batch [][]float64) ([]float64, error) {
		return []float64{250}, nil
	})
	ingestor := aqi.NewIngestor(aqi.NewAQIPredictor(model), store)

	handleMessage(context.Background(), ingestor, "aqi/readings/5", []byte(`{"ts":"2025-06-15T14:30:00Z","PM2_5":80}`))
	handleMessage(context.Background(), ingestor, "aqi/readings/x", []byte(`{"PM2_5":80}`))

	require.Len(t, store.stored, 1)
	got := store.stored[0]
	assert.Equal(t, uint(5), got.SensorID)
	assert.Equal(t, aqi.Poor, got.Category)
	assert.Equal(t, time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC), got.RecordedAt)
}

func TestHandleMessageUnknownSensor(t *testing.T) {
	store := &captureStore{err: fmt.Errorf("sensor 404: %w", aqi.ErrUnknownSensor)}
	model := inference.ModelFunc(func(_ context.Context, batch [][]float64) ([]float64, error) {
		return []float64{90}, nil
	})
	ingestor := aqi.NewIngestor(aqi.NewAQIPredictor(model), store)

	unknown := services.ReadingsFailed.WithLabelValues("mqtt", "unknown_sensor")
	storeFailed := services.ReadingsFailed.WithLabelValues("mqtt", "storage")
	beforeUnknown, beforeStorage := testutil.ToFloat64(unknown), testutil.ToFloat64(storeFailed)

	handleMessage(context.Background(), ingestor, "aqi/readings/404", []byte(`{"PM2_5":80}`))

	assert.Empty(t, store.stored)
	assert.Equal(t, beforeUnknown+1, testutil.ToFloat64(unknown))
	assert.Equal(t, beforeStorage, testutil.ToFloat64(storeFailed))
}
