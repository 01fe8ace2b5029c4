package aqi

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	got []ScoredReading
	err error
}

func (n *recordingNotifier) ReadingScored(_ context.Context, r ScoredReading) error {
	n.got = append(n.got, r)
	return n.err
}

func fixedClock() time.Time {
	return time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
}

func TestIngestSampleReading(t *testing.T) {
	store := &memoryStore{}
	in := NewIngestor(NewAQIPredictor(stubModel(75.0, nil)), store, WithClock(fixedClock))

	got, err := in.Ingest(context.Background(), sampleReading())
	require.NoError(t, err)

	assert.Equal(t, 75.0, got.PredictedAQI)
	assert.Equal(t, Satisfactory, got.Category)
	assert.Equal(t, fixedClock(), got.RecordedAt)

	require.Len(t, store.readings, 1)
	assert.Equal(t, got, store.readings[0])
}

func TestIngestAtUsesCallerTimestamp(t *testing.T) {
	store := &memoryStore{}
	in := NewIngestor(NewAQIPredictor(stubModel(120.0, nil)), store, WithClock(fixedClock))
	at := time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC)

	got, err := in.IngestAt(context.Background(), sampleReading(), at)
	require.NoError(t, err)
	assert.Equal(t, at, got.RecordedAt)
	assert.Equal(t, Moderate, got.Category)
}

func TestIngestCategoryAlwaysMatchesValue(t *testing.T) {
	for _, v := range []float64{-5, 0, 50, 50.0001, 99.9, 100, 150, 200, 250, 300, 350, 400, 400.0001, 999} {
		store := &memoryStore{}
		in := NewIngestor(NewAQIPredictor(stubModel(v, nil)), store)

		got, err := in.Ingest(context.Background(), sampleReading())
		require.NoError(t, err)
		assert.Equal(t, Classify(got.PredictedAQI), got.Category, "value %v", v)
		assert.Equal(t, got.Category, store.readings[0].Category)
	}
}

func TestIngestModelFailureStoresNothing(t *testing.T) {
	store := &memoryStore{}
	in := NewIngestor(NewAQIPredictor(failingModel(errUnavailable)), store)

	got, err := in.Ingest(context.Background(), sampleReading())
	var mie *ModelInferenceError
	require.ErrorAs(t, err, &mie)
	assert.Equal(t, ScoredReading{}, got)
	assert.Empty(t, store.readings)
}

func TestIngestStorageFailure(t *testing.T) {
	store := &memoryStore{err: errUnavailable}
	notifier := &recordingNotifier{}
	in := NewIngestor(NewAQIPredictor(stubModel(75, nil)), store, WithNotifier(notifier))

	got, err := in.Ingest(context.Background(), sampleReading())
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "insert reading", se.Op)
	assert.Equal(t, ScoredReading{}, got)
	assert.Empty(t, notifier.got, "nothing is published for an unstored reading")
}

func TestIngestUnknownSensor(t *testing.T) {
	store := &memoryStore{err: fmt.Errorf("sensor 42: %w", ErrUnknownSensor)}
	in := NewIngestor(NewAQIPredictor(stubModel(75, nil)), store)

	_, err := in.Ingest(context.Background(), sampleReading())
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, ErrUnknownSensor)
}

func TestIngestNotifierFailureIsNotFatal(t *testing.T) {
	store := &memoryStore{}
	notifier := &recordingNotifier{err: errors.New("redis down")}
	in := NewIngestor(NewAQIPredictor(stubModel(320, nil)), store, WithNotifier(notifier))

	got, err := in.Ingest(context.Background(), sampleReading())
	require.NoError(t, err)
	assert.Equal(t, VeryPoor, got.Category)
	require.Len(t, notifier.got, 1)
	assert.Len(t, store.readings, 1)
}

func TestIngestThenForecast(t *testing.T) {
	store := &memoryStore{}
	values := []float64{10, 20, 30, 40, 50, 60}
	for _, v := range values {
		in := NewIngestor(NewAQIPredictor(stubModel(v, nil)), store)
		_, err := in.Ingest(context.Background(), sampleReading())
		require.NoError(t, err)
	}

	var seen [][]float64
	f := NewForecaster(store, NewForecastPredictor(stubModel(65, &seen)))
	got, err := f.Forecast(context.Background(), sampleReading().SensorID)
	require.NoError(t, err)
	assert.Equal(t, Satisfactory, got.Category)
	assert.Equal(t, [][]float64{{60, 50, 40, 10}}, seen)
}

func TestWithCalendar(t *testing.T) {
	// 2025-01-01 was a Wednesday.
	r := PollutantReading{}.WithCalendar(time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC))
	assert.Equal(t, 10, r.Hour)
	assert.Equal(t, 1, r.Day)
	assert.Equal(t, 1, r.Month)
	assert.Equal(t, 2, r.Weekday)
}
