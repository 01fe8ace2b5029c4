package models

import (
	"time"

	"aqi-monitor-api/aqi"
)

type SensorReading struct {
	ID           uint      `gorm:"column:id;primaryKey" json:"id"`
	SensorID     uint      `gorm:"column:sensor_id;not null;index:idx_readings_sensor_ts,priority:1" json:"sensor_id"`
	Sensor       *Sensor   `gorm:"foreignKey:SensorID" json:"-"`
	Timestamp    time.Time `gorm:"column:timestamp;index:idx_readings_sensor_ts,priority:2;default:CURRENT_TIMESTAMP" json:"timestamp"`
	PM25         float64   `gorm:"column:pm25;type:decimal(10,2)" json:"PM2_5"`
	PM10         float64   `gorm:"column:pm10;type:decimal(10,2)" json:"PM10"`
	NO2          float64   `gorm:"column:no2;type:decimal(10,2)" json:"NO2"`
	CO           float64   `gorm:"column:co;type:decimal(10,2)" json:"CO"`
	SO2          float64   `gorm:"column:so2;type:decimal(10,2)" json:"SO2"`
	O3           float64   `gorm:"column:o3;type:decimal(10,2)" json:"O3"`
	NH3          float64   `gorm:"column:nh3;type:decimal(10,2)" json:"NH3"`
	PredictedAQI float64   `gorm:"column:predicted_aqi;type:decimal(10,2)" json:"aqi"`
	Category     string    `gorm:"column:category;size:50" json:"category"`
}

func (SensorReading) TableName() string { return "sensor_readings" }

// NewSensorReading maps a scored reading onto its table row.
func NewSensorReading(r aqi.ScoredReading) SensorReading {
	return SensorReading{
		SensorID:     r.SensorID,
		Timestamp:    r.RecordedAt,
		PM25:         r.PM25,
		PM10:         r.PM10,
		NO2:          r.NO2,
		CO:           r.CO,
		SO2:          r.SO2,
		O3:           r.O3,
		NH3:          r.NH3,
		PredictedAQI: r.PredictedAQI,
		Category:     string(r.Category),
	}
}

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{&Region{}, &Sensor{}, &Admin{}, &SensorReading{}}
}
