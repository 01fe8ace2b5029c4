package aqi

import (
	"context"
	"log/slog"
	"time"
)

// ReadingStore is the persistence the ingestion and forecast paths rely on.
type ReadingStore interface {
	HistoryReader
	InsertReading(ctx context.Context, r ScoredReading) error
}

// Notifier is told about every reading once it has been stored.
type Notifier interface {
	ReadingScored(ctx context.Context, r ScoredReading) error
}

// Ingestor scores raw readings and appends them to the store.
type Ingestor struct {
	predictor *AQIPredictor
	store     ReadingStore
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

type IngestorOption func(*Ingestor)

// WithNotifier publishes stored readings. Notifier failures are logged and
// do not fail the ingestion.
func WithNotifier(n Notifier) IngestorOption {
	return func(i *Ingestor) { i.notifier = n }
}

func WithLogger(l *slog.Logger) IngestorOption {
	return func(i *Ingestor) { i.logger = l }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) IngestorOption {
	return func(i *Ingestor) { i.now = now }
}

func NewIngestor(predictor *AQIPredictor, store ReadingStore, opts ...IngestorOption) *Ingestor {
	i := &Ingestor{
		predictor: predictor,
		store:     store,
		logger:    slog.Default(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Ingest predicts, classifies and persists r. Nothing is returned unless the
// reading was stored.
func (i *Ingestor) Ingest(ctx context.Context, r PollutantReading) (ScoredReading, error) {
	return i.IngestAt(ctx, r, i.now())
}

// IngestAt is Ingest with the reading's timestamp supplied by the caller,
// for devices that report when they sampled.
func (i *Ingestor) IngestAt(ctx context.Context, r PollutantReading, at time.Time) (ScoredReading, error) {
	value, err := i.predictor.Predict(ctx, r)
	if err != nil {
		i.logger.Error("aqi prediction failed", "sensor_id", r.SensorID, "error", err)
		return ScoredReading{}, err
	}

	scored := Score(r, value, at)

	if err := i.store.InsertReading(ctx, scored); err != nil {
		i.logger.Error("reading insert failed", "sensor_id", r.SensorID, "error", err)
		return ScoredReading{}, &StorageError{Op: "insert reading", Err: err}
	}

	if i.notifier != nil {
		if err := i.notifier.ReadingScored(ctx, scored); err != nil {
			i.logger.Warn("reading notify failed", "sensor_id", r.SensorID, "error", err)
		}
	}

	i.logger.Debug("reading ingested",
		"sensor_id", r.SensorID, "aqi", scored.PredictedAQI, "category", scored.Category)
	return scored, nil
}
