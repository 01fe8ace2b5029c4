// Package storage is the pgx access path used by the background workers.
// The API goes through gorm; both share the schema created by cmd/seed.
package storage

import (
	"context"
	"errors"
	"fmt"

	"aqi-monitor-api/aqi"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// foreignKeyViolation is the SQLSTATE Postgres raises when sensor_id has no
// row in sensors.
const foreignKeyViolation = "23503"

// IsForeignKeyViolation reports whether err is a Postgres foreign key
// violation, however deeply wrapped.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

// insertError turns a foreign key violation on insert into
// aqi.ErrUnknownSensor.
func insertError(err error, sensorID uint) error {
	if IsForeignKeyViolation(err) {
		return fmt.Errorf("sensor %d: %w", sensorID, aqi.ErrUnknownSensor)
	}
	return err
}

const insertReadingSQL = `
	INSERT INTO sensor_readings
		(sensor_id, timestamp, pm25, pm10, no2, co, so2, o3, nh3, predicted_aqi, category)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const lastNReadingsSQL = `
	SELECT predicted_aqi::float8
	FROM sensor_readings
	WHERE sensor_id = $1
	ORDER BY timestamp DESC, id DESC
	LIMIT $2`

const activeSensorsSQL = `
	SELECT id FROM sensors WHERE is_active ORDER BY id`

// PgStore implements aqi.ReadingStore on a pgx pool.
type PgStore struct {
	pool *pgxpool.Pool
}

// Open connects and pings the database at url.
func Open(ctx context.Context, url string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("db pool init: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return &PgStore{pool: pool}, nil
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Close() {
	s.pool.Close()
}

func (s *PgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PgStore) InsertReading(ctx context.Context, r aqi.ScoredReading) error {
	if _, err := s.pool.Exec(ctx, insertReadingSQL, readingArgs(r)...); err != nil {
		return insertError(err, r.SensorID)
	}
	return nil
}

// LastNReadings returns up to n predicted AQI values for sensorID, newest
// first.
func (s *PgStore) LastNReadings(ctx context.Context, sensorID uint, n int) ([]float64, error) {
	rows, err := s.pool.Query(ctx, lastNReadingsSQL, int64(sensorID), n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make([]float64, 0, n)
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// ActiveSensorIDs lists the sensors the forecast worker should visit.
func (s *PgStore) ActiveSensorIDs(ctx context.Context) ([]uint, error) {
	rows, err := s.pool.Query(ctx, activeSensorsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uint
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, uint(id))
	}
	return ids, rows.Err()
}

// readingArgs orders r's fields to match insertReadingSQL.
func readingArgs(r aqi.ScoredReading) []any {
	return []any{
		int64(r.SensorID), r.RecordedAt,
		r.PM25, r.PM10, r.NO2, r.CO, r.SO2, r.O3, r.NH3,
		r.PredictedAQI, string(r.Category),
	}
}
