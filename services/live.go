package services

import (
	"context"
	"errors"
	"time"

	"aqi-monitor-api/aqi"
)

// LiveReading is the message published on LiveChannel.
type LiveReading struct {
	SensorID     uint         `json:"sensor_id"`
	PredictedAQI float64      `json:"aqi"`
	Category     aqi.Category `json:"category"`
	Timestamp    time.Time    `json:"timestamp"`
	PM25         float64      `json:"PM2_5"`
	PM10         float64      `json:"PM10"`
}

// liveCache is the part of CacheService the publisher needs.
type liveCache interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// LivePublisher fans stored readings out on LiveChannel and drops the
// dashboard and forecast caches they make stale.
type LivePublisher struct {
	cache liveCache
}

func NewLivePublisher(cache *CacheService) *LivePublisher {
	return &LivePublisher{cache: cache}
}

func (p *LivePublisher) ReadingScored(ctx context.Context, r aqi.ScoredReading) error {
	msg := LiveReading{
		SensorID:     r.SensorID,
		PredictedAQI: r.PredictedAQI,
		Category:     r.Category,
		Timestamp:    r.RecordedAt,
		PM25:         r.PM25,
		PM10:         r.PM10,
	}
	// A failed publish must not leave stale views behind.
	pubErr := p.cache.Publish(ctx, LiveChannel, msg)
	delErr := p.cache.Delete(ctx, KeyLatest, KeyTopPolluted, ForecastKey(r.SensorID))
	return errors.Join(pubErr, delErr)
}
