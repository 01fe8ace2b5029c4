package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"aqi-monitor-api/aqi"
	"aqi-monitor-api/services"

	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	forecaster *aqi.Forecaster
	cache      *services.CacheService
}

// forecastTTL bounds how long an API-computed forecast is reused. New
// readings drop the entry earlier.
const forecastTTL = time.Minute

func NewForecastHandler(forecaster *aqi.Forecaster, cache *services.CacheService) *ForecastHandler {
	return &ForecastHandler{forecaster: forecaster, cache: cache}
}

// GetForecast predicts a sensor's next reading. Too little history is a
// normal 200 response carrying an error field.
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	sensorID, err := strconv.ParseUint(c.Param("sensor_id"), 10, 32)
	if err != nil || sensorID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sensor_id"})
		return
	}

	key := services.ForecastKey(uint(sensorID))
	var cached aqi.ForecastResult
	if err := h.cache.Get(c.Request.Context(), key, &cached); err == nil && cached.SensorID != 0 {
		services.ForecastsServed.WithLabelValues("api", "cached").Inc()
		c.JSON(http.StatusOK, cached)
		return
	}

	result, err := h.forecaster.Forecast(c.Request.Context(), uint(sensorID))
	if errors.Is(err, aqi.ErrInsufficientHistory) {
		services.ForecastsServed.WithLabelValues("api", "insufficient").Inc()
		c.JSON(http.StatusOK, gin.H{"error": "Not enough data"})
		return
	}
	if err != nil {
		services.ForecastsServed.WithLabelValues("api", "error").Inc()
		respondError(c, err)
		return
	}
	services.ForecastsServed.WithLabelValues("api", "ok").Inc()

	rounded := result.Rounded()
	go h.cache.Set(context.Background(), key, rounded, forecastTTL)

	c.JSON(http.StatusOK, rounded)
}
