package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"aqi-monitor-api/aqi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLiveCache struct {
	published  map[string][]byte
	deleted    []string
	publishErr error
	deleteErr  error
}

func (f *fakeLiveCache) Publish(_ context.Context, channel string, message interface{}) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	if f.published == nil {
		f.published = make(map[string][]byte)
	}
	f.published[channel] = data
	return nil
}

func (f *fakeLiveCache) Delete(_ context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys...)
	return f.deleteErr
}

func scoredFixture() aqi.ScoredReading {
	at := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	return aqi.Score(aqi.PollutantReading{SensorID: 4, PM25: 35, PM10: 60}, 150, at)
}

func TestLivePublisherPublishesAndInvalidates(t *testing.T) {
	cache := &fakeLiveCache{}
	p := &LivePublisher{cache: cache}

	require.NoError(t, p.ReadingScored(context.Background(), scoredFixture()))

	var msg LiveReading
	require.NoError(t, json.Unmarshal(cache.published[LiveChannel], &msg))
	assert.Equal(t, uint(4), msg.SensorID)
	assert.Equal(t, 150.0, msg.PredictedAQI)
	assert.Equal(t, aqi.Moderate, msg.Category)
	assert.ElementsMatch(t, []string{KeyLatest, KeyTopPolluted, ForecastKey(4)}, cache.deleted)
}

func TestLivePublisherInvalidatesWhenPublishFails(t *testing.T) {
	pubErr := errors.New("publish refused")
	cache := &fakeLiveCache{publishErr: pubErr}
	p := &LivePublisher{cache: cache}

	err := p.ReadingScored(context.Background(), scoredFixture())
	assert.ErrorIs(t, err, pubErr)
	assert.ElementsMatch(t, []string{KeyLatest, KeyTopPolluted, ForecastKey(4)}, cache.deleted)
}

func TestLivePublisherJoinsBothFailures(t *testing.T) {
	pubErr, delErr := errors.New("publish refused"), errors.New("del refused")
	p := &LivePublisher{cache: &fakeLiveCache{publishErr: pubErr, deleteErr: delErr}}

	err := p.ReadingScored(context.Background(), scoredFixture())
	assert.ErrorIs(t, err, pubErr)
	assert.ErrorIs(t, err, delErr)
}

func TestLivePublisherWithoutCache(t *testing.T) {
	p := NewLivePublisher(NewCacheServiceFromClient(nil))
	assert.NoError(t, p.ReadingScored(context.Background(), scoredFixture()))
}
