package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"aqi-monitor-api/aqi"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newReadingStore(t *testing.T, translate bool) (*GormReadingStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         translate,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)
	return NewGormReadingStore(db), mock
}

func storedReading(sensorID uint) aqi.ScoredReading {
	at := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	return aqi.Score(aqi.PollutantReading{SensorID: sensorID, PM25: 35}, 120, at)
}

func TestInsertReadingUnknownSensor(t *testing.T) {
	for _, translate := range []bool{true, false} {
		store, mock := newReadingStore(t, translate)
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "sensor_readings"`)).
			WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "fk_sensor_readings_sensor"})

		err := store.InsertReading(context.Background(), storedReading(99))
		assert.ErrorIs(t, err, aqi.ErrUnknownSensor, "translate=%v", translate)
		assert.Contains(t, err.Error(), "sensor 99")
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestInsertReadingPassesOtherErrors(t *testing.T) {
	store, mock := newReadingStore(t, true)
	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "sensor_readings"`)).WillReturnError(boom)

	err := store.InsertReading(context.Background(), storedReading(1))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, aqi.ErrUnknownSensor)
}

func TestInsertReadingStores(t *testing.T) {
	store, mock := newReadingStore(t, true)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "sensor_readings"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	require.NoError(t, store.InsertReading(context.Background(), storedReading(1)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLastNReadingsNewestFirst(t *testing.T) {
	store, mock := newReadingStore(t, true)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "predicted_aqi" FROM "sensor_readings" WHERE sensor_id = $1 ORDER BY timestamp DESC`)).
		WithArgs(7, 6).
		WillReturnRows(sqlmock.NewRows([]string{"predicted_aqi"}).AddRow(60.0).AddRow(50.0))

	got, err := store.LastNReadings(context.Background(), 7, 6)
	require.NoError(t, err)
	assert.Equal(t, []float64{60, 50}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
