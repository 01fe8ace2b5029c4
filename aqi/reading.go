package aqi

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// FeatureCount is the width of the ingestion model's input vector.
const FeatureCount = 11

// PollutantReading is one raw sample reported by a sensor together with the
// calendar context the AQI model was trained on.
type PollutantReading struct {
	SensorID uint    `json:"sensor_id"`
	PM25     float64 `json:"PM2_5"`
	PM10     float64 `json:"PM10"`
	NO2      float64 `json:"NO2"`
	CO       float64 `json:"CO"`
	SO2      float64 `json:"SO2"`
	O3       float64 `json:"O3"`
	NH3      float64 `json:"NH3"`
	Hour     int     `json:"hour"`
	Day      int     `json:"day"`
	Month    int     `json:"month"`
	Weekday  int     `json:"weekday"`
}

// Features returns the model input in training order:
// pm25, pm10, no2, co, so2, o3, nh3, hour, day, month, weekday.
func (r PollutantReading) Features() []float64 {
	return []float64{
		r.PM25, r.PM10, r.NO2, r.CO, r.SO2, r.O3, r.NH3,
		float64(r.Hour), float64(r.Day), float64(r.Month), float64(r.Weekday),
	}
}

// WithCalendar fills hour, day, month and weekday from t. Weekday counts
// from Monday = 0.
func (r PollutantReading) WithCalendar(t time.Time) PollutantReading {
	r.Hour = t.Hour()
	r.Day = t.Day()
	r.Month = int(t.Month())
	r.Weekday = (int(t.Weekday()) + 6) % 7
	return r
}

// Validate checks concentrations and calendar fields.
func (r PollutantReading) Validate() error {
	var errs []error
	pollutants := []struct {
		name  string
		value float64
	}{
		{"PM2_5", r.PM25}, {"PM10", r.PM10}, {"NO2", r.NO2}, {"CO", r.CO},
		{"SO2", r.SO2}, {"O3", r.O3}, {"NH3", r.NH3},
	}
	for _, p := range pollutants {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) || p.value < 0 {
			errs = append(errs, fmt.Errorf("%s must be a non-negative number", p.name))
		}
	}
	if r.Hour < 0 || r.Hour > 23 {
		errs = append(errs, errors.New("hour must be within [0,23]"))
	}
	if r.Day < 1 || r.Day > 31 {
		errs = append(errs, errors.New("day must be within [1,31]"))
	}
	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, errors.New("month must be within [1,12]"))
	}
	if r.Weekday < 0 || r.Weekday > 6 {
		errs = append(errs, errors.New("weekday must be within [0,6]"))
	}
	return errors.Join(errs...)
}

// ScoredReading is a PollutantReading with its predicted AQI and category.
type ScoredReading struct {
	PollutantReading
	PredictedAQI float64   `json:"predicted_AQI"`
	Category     Category  `json:"category"`
	RecordedAt   time.Time `json:"timestamp"`
}

// Score attaches value and the category Classify assigns to it. It is the
// only way the ingestion path builds a ScoredReading.
func Score(r PollutantReading, value float64, at time.Time) ScoredReading {
	return ScoredReading{
		PollutantReading: r,
		PredictedAQI:     value,
		Category:         Classify(value),
		RecordedAt:       at,
	}
}
