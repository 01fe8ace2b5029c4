package models

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultRadiusKM is reported for sensors stored without a coverage radius.
const DefaultRadiusKM = 20.0

type Sensor struct {
	ID         uint     `gorm:"column:id;primaryKey" json:"sensor_id"`
	SensorCode string   `gorm:"column:sensor_code;size:50;uniqueIndex;not null" json:"sensor_code"`
	RegionID   uint     `gorm:"column:region_id;index" json:"region_id"`
	Region     *Region  `gorm:"foreignKey:RegionID" json:"-"`
	Latitude   *float64 `gorm:"column:latitude;type:decimal(10,8)" json:"latitude"`
	Longitude  *float64 `gorm:"column:longitude;type:decimal(11,8)" json:"longitude"`
	Radius     *float64 `gorm:"column:radius;type:decimal(5,2);default:20.0" json:"radius"`
	IsActive   bool     `gorm:"column:is_active;default:true" json:"is_active"`
}

func (Sensor) TableName() string { return "sensors" }

// RadiusOrDefault returns the stored radius or DefaultRadiusKM.
func (s Sensor) RadiusOrDefault() float64 {
	if s.Radius == nil {
		return DefaultRadiusKM
	}
	return *s.Radius
}

// NewSensorCode returns a fresh hardware code of the form SNS-1A2B3C4D.
func NewSensorCode() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "SNS-" + strings.ToUpper(hex[:8])
}
