package storage

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"aqi-monitor-api/aqi"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ aqi.ReadingStore = (*PgStore)(nil)

func TestReadingArgsMatchInsert(t *testing.T) {
	at := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	r := aqi.Score(aqi.PollutantReading{SensorID: 4, PM25: 35.5, NH3: 10}, 150, at)

	args := readingArgs(r)
	require.Len(t, args, strings.Count(insertReadingSQL, "$"))

	assert.Equal(t, int64(4), args[0])
	assert.Equal(t, at, args[1])
	assert.Equal(t, 35.5, args[2])
	assert.Equal(t, 10.0, args[8])
	assert.Equal(t, 150.0, args[9])
	assert.Equal(t, "Moderate", args[10])
}

func TestInsertErrorMapsForeignKeyViolation(t *testing.T) {
	fk := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23503", ConstraintName: "fk_sensor_readings_sensor"})
	err := insertError(fk, 99)
	assert.ErrorIs(t, err, aqi.ErrUnknownSensor)
	assert.Contains(t, err.Error(), "sensor 99")

	other := &pgconn.PgError{Code: "23505"}
	assert.Same(t, error(other), insertError(other, 99))

	down := errors.New("connection refused")
	assert.Equal(t, down, insertError(down, 99))
	assert.False(t, IsForeignKeyViolation(down))
}
