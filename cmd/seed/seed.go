package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"aqi-monitor-api/models"

	"gorm.io/gorm"
)

// DefaultRegions are created on first run.
var DefaultRegions = []string{
	"Mumbai", "Pune", "Nagpur", "Nashik", "Aurangabad",
	"Kolhapur", "Solapur", "Chandrapur", "Amravati", "Navi Mumbai",
}

type coord struct{ lat, lon float64 }

// regionCentres anchors base sensors; regions missing here get no sensors.
var regionCentres = map[string]coord{
	"Mumbai":      {19.0760, 72.8777},
	"Pune":        {18.5204, 73.8567},
	"Nagpur":      {21.1458, 79.0882},
	"Nashik":      {20.0110, 73.7903},
	"Aurangabad":  {19.8762, 75.3433},
	"Kolhapur":    {16.7050, 74.2433},
	"Solapur":     {17.6599, 75.9064},
	"Chandrapur":  {19.9535, 79.2961},
	"Amravati":    {20.9374, 77.7796},
	"Navi Mumbai": {19.0330, 73.0297},
}

const (
	sensorsPerRegion = 2
	jitterDegrees    = 0.15
	minRadiusKM      = 15
	maxRadiusKM      = 45
)

// planSensors lays out sensorsPerRegion sensors around each region centre.
func planSensors(regions []models.Region, rng *rand.Rand) []models.Sensor {
	var out []models.Sensor
	for _, region := range regions {
		centre, ok := regionCentres[region.Name]
		if !ok {
			continue
		}
		for i := 0; i < sensorsPerRegion; i++ {
			lat := centre.lat + (rng.Float64()*2-1)*jitterDegrees
			lon := centre.lon + (rng.Float64()*2-1)*jitterDegrees
			radius := float64(minRadiusKM + rng.Intn(maxRadiusKM-minRadiusKM+1))
			out = append(out, models.Sensor{
				SensorCode: models.NewSensorCode(),
				RegionID:   region.ID,
				Latitude:   &lat,
				Longitude:  &lon,
				Radius:     &radius,
				IsActive:   true,
			})
		}
	}
	return out
}

type seeder struct {
	db     *gorm.DB
	hash   func(string) (string, error)
	rng    *rand.Rand
	logger *slog.Logger
}

func (s *seeder) run(ctx context.Context, admin models.Admin, password string) error {
	db := s.db.WithContext(ctx)

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := s.ensureAdmin(db, admin, password); err != nil {
		return err
	}

	regions := make([]models.Region, 0, len(DefaultRegions))
	for _, name := range DefaultRegions {
		r := models.Region{Name: name}
		if err := db.Where(models.Region{Name: name}).FirstOrCreate(&r).Error; err != nil {
			return fmt.Errorf("region %s: %w", name, err)
		}
		regions = append(regions, r)
	}
	s.logger.Info("regions ready", "count", len(regions))

	var existing int64
	if err := db.Model(&models.Sensor{}).Count(&existing).Error; err != nil {
		return fmt.Errorf("count sensors: %w", err)
	}
	if existing > 0 {
		s.logger.Info("sensors already deployed, skipping", "count", existing)
		return nil
	}

	sensors := planSensors(regions, s.rng)
	if err := db.Create(&sensors).Error; err != nil {
		return fmt.Errorf("create sensors: %w", err)
	}
	s.logger.Info("sensors deployed", "count", len(sensors))
	return nil
}

func (s *seeder) ensureAdmin(db *gorm.DB, admin models.Admin, password string) error {
	var found models.Admin
	err := db.Where("username = ?", admin.Username).First(&found).Error
	if err == nil {
		s.logger.Info("admin exists", "username", admin.Username)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := s.hash(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin.PasswordHash = hash
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.logger.Info("admin created", "username", admin.Username)
	return nil
}
