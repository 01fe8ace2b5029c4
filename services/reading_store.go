package services

import (
	"context"
	"errors"
	"fmt"

	"aqi-monitor-api/aqi"
	"aqi-monitor-api/models"
	"aqi-monitor-api/storage"

	"gorm.io/gorm"
)

// GormReadingStore persists scored readings through gorm.
type GormReadingStore struct {
	db *gorm.DB
}

func NewGormReadingStore(db *gorm.DB) *GormReadingStore {
	return &GormReadingStore{db: db}
}

func (s *GormReadingStore) InsertReading(ctx context.Context, r aqi.ScoredReading) error {
	row := models.NewSensorReading(r)
	err := s.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) || storage.IsForeignKeyViolation(err) {
		return fmt.Errorf("sensor %d: %w", r.SensorID, aqi.ErrUnknownSensor)
	}
	return err
}

// LastNReadings returns up to n predicted AQI values for sensorID, newest
// first.
func (s *GormReadingStore) LastNReadings(ctx context.Context, sensorID uint, n int) ([]float64, error) {
	var values []float64
	err := s.db.WithContext(ctx).
		Model(&models.SensorReading{}).
		Where("sensor_id = ?", sensorID).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(n).
		Pluck("predicted_aqi", &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}
