package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"aqi-monitor-api/aqi"

	"github.com/relvacode/iso8601"
)

// ReadingPayload is the JSON a sensor publishes. ts is ISO 8601 and taken
// as UTC when it has no zone. Calendar fields are optional; when absent they
// are derived from ts, or the receive time.
type ReadingPayload struct {
	TS       string  `json:"ts"`
	SensorID uint    `json:"sensor_id"`
	PM25     float64 `json:"PM2_5"`
	PM10     float64 `json:"PM10"`
	NO2      float64 `json:"NO2"`
	CO       float64 `json:"CO"`
	SO2      float64 `json:"SO2"`
	O3       float64 `json:"O3"`
	NH3      float64 `json:"NH3"`
	Hour     *int    `json:"hour"`
	Day      *int    `json:"day"`
	Month    *int    `json:"month"`
	Weekday  *int    `json:"weekday"`
}

func (p ReadingPayload) hasCalendar() bool {
	return p.Hour != nil && p.Day != nil && p.Month != nil && p.Weekday != nil
}

// decodeReading turns a raw MQTT message into a validated reading and the
// time it was sampled. A missing sensor_id is taken from the last topic
// segment.
func decodeReading(topic string, raw []byte, received time.Time) (aqi.PollutantReading, time.Time, error) {
	var p ReadingPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return aqi.PollutantReading{}, time.Time{}, fmt.Errorf("invalid payload: %w", err)
	}

	at := received.UTC()
	if p.TS != "" {
		parsed, err := iso8601.ParseString(p.TS)
		if err != nil {
			return aqi.PollutantReading{}, time.Time{}, fmt.Errorf("invalid ts %q: %w", p.TS, err)
		}
		at = parsed.UTC()
	}

	r := aqi.PollutantReading{
		SensorID: p.SensorID,
		PM25:     p.PM25,
		PM10:     p.PM10,
		NO2:      p.NO2,
		CO:       p.CO,
		SO2:      p.SO2,
		O3:       p.O3,
		NH3:      p.NH3,
	}
	if r.SensorID == 0 {
		r.SensorID = sensorFromTopic(topic)
	}
	if r.SensorID == 0 {
		return aqi.PollutantReading{}, time.Time{}, errors.New("missing sensor_id")
	}

	if p.hasCalendar() {
		r.Hour, r.Day, r.Month, r.Weekday = *p.Hour, *p.Day, *p.Month, *p.Weekday
	} else {
		r = r.WithCalendar(at)
	}

	if err := r.Validate(); err != nil {
		return aqi.PollutantReading{}, time.Time{}, err
	}
	return r, at, nil
}

// sensorFromTopic parses the id in aqi/readings/<id>. It returns 0 when the
// last segment is not a number.
func sensorFromTopic(topic string) uint {
	i := strings.LastIndexByte(topic, '/')
	id, err := strconv.ParseUint(topic[i+1:], 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
