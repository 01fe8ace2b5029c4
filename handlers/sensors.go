package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"aqi-monitor-api/models"
	"aqi-monitor-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SensorsHandler struct {
	db    *gorm.DB
	cache *services.CacheService
}

func NewSensorsHandler(db *gorm.DB, cache *services.CacheService) *SensorsHandler {
	return &SensorsHandler{db: db, cache: cache}
}

type PublicSensor struct {
	SensorID   uint     `json:"sensor_id"`
	SensorCode string   `json:"sensor_code"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Radius     float64  `json:"radius"`
	Region     string   `json:"region"`
	IsActive   bool     `json:"is_active"`
}

type CreateSensorRequest struct {
	SensorCode string   `json:"sensor_code" binding:"omitempty,max=50"`
	RegionID   uint     `json:"region_id" binding:"required"`
	Latitude   *float64 `json:"latitude" binding:"omitempty,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" binding:"omitempty,gte=-180,lte=180"`
	Radius     *float64 `json:"radius" binding:"omitempty,gt=0"`
}

type UpdateStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// GetPublicSensors lists sensors for the map view.
func (h *SensorsHandler) GetPublicSensors(c *gin.Context) {
	var cached []PublicSensor
	if err := h.cache.Get(c.Request.Context(), services.KeyPublicSensors, &cached); err == nil && cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	var sensors []models.Sensor
	if err := h.db.WithContext(c.Request.Context()).Preload("Region").Order("id").Find(&sensors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	out := make([]PublicSensor, 0, len(sensors))
	for _, s := range sensors {
		ps := PublicSensor{
			SensorID:   s.ID,
			SensorCode: s.SensorCode,
			Latitude:   s.Latitude,
			Longitude:  s.Longitude,
			Radius:     s.RadiusOrDefault(),
			IsActive:   s.IsActive,
		}
		if s.Region != nil {
			ps.Region = s.Region.Name
		}
		out = append(out, ps)
	}

	go h.cache.Set(context.Background(), services.KeyPublicSensors, out, 60*time.Second)

	c.JSON(http.StatusOK, out)
}

// ListSensors is the admin view of every sensor.
func (h *SensorsHandler) ListSensors(c *gin.Context) {
	var sensors []models.Sensor
	if err := h.db.WithContext(c.Request.Context()).Order("id").Find(&sensors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	c.JSON(http.StatusOK, sensors)
}

// CreateSensor registers a sensor in an existing region.
func (h *SensorsHandler) CreateSensor(c *gin.Context) {
	var req CreateSensorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var region models.Region
	if err := h.db.WithContext(ctx).First(&region, req.RegionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "region not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	sensor := models.Sensor{
		SensorCode: req.SensorCode,
		RegionID:   region.ID,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Radius:     req.Radius,
		IsActive:   true,
	}
	if sensor.SensorCode == "" {
		sensor.SensorCode = models.NewSensorCode()
	}
	if sensor.Radius == nil {
		r := models.DefaultRadiusKM
		sensor.Radius = &r
	}

	if err := h.db.WithContext(ctx).Create(&sensor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "sensor code already registered"})
			return
		}
		slog.Error("create sensor failed", "region_id", region.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	h.invalidate(ctx)

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Sensor deployed successfully",
		"sensor_id":   sensor.ID,
		"sensor_code": sensor.SensorCode,
	})
}

// UpdateStatus toggles is_active, given either as a query parameter or in
// the JSON body.
func (h *SensorsHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "sensor_id")
	if !ok {
		return
	}

	var active bool
	if q := c.Query("is_active"); q != "" {
		v, err := strconv.ParseBool(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid is_active"})
			return
		}
		active = v
	} else {
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		active = *req.IsActive
	}

	res := h.db.WithContext(c.Request.Context()).
		Model(&models.Sensor{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "sensor not found"})
		return
	}
	h.invalidate(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}

// DeleteSensor removes a sensor and its readings in one transaction.
func (h *SensorsHandler) DeleteSensor(c *gin.Context) {
	id, ok := parseID(c, "sensor_id")
	if !ok {
		return
	}

	var deleted int64
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sensor_id = ?", id).Delete(&models.SensorReading{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Sensor{}, id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	if deleted == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "sensor not found"})
		return
	}
	h.invalidate(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"message": "Sensor deleted"})
}

// invalidate drops every cached view a sensor change makes stale. It runs
// before the response so the caller's next read is fresh.
func (h *SensorsHandler) invalidate(ctx context.Context) {
	if err := h.cache.Delete(ctx, services.KeyPublicSensors, services.KeyLatest, services.KeyTopPolluted); err != nil {
		slog.Warn("cache invalidation failed", "error", err)
	}
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return uint(id), true
}
