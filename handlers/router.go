package handlers

import (
	"net/http"

	"aqi-monitor-api/aqi"
	"aqi-monitor-api/config"
	"aqi-monitor-api/middleware"
	"aqi-monitor-api/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs. Cache may be unavailable; the
// API then serves uncached and the live stream is refused.
type Deps struct {
	DB         *gorm.DB
	Cache      *services.CacheService
	Auth       *services.AuthService
	Ingestor   *aqi.Ingestor
	Forecaster *aqi.Forecaster
	CORS       config.CORSConfig
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.SetupCORS(d.CORS))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "AQI API Running"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "UP",
			"message": "AQI Monitor API is running",
			"cache":   d.Cache.Available(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	readings := NewReadingsHandler(d.Ingestor)
	forecast := NewForecastHandler(d.Forecaster, d.Cache)
	dashboard := NewDashboardHandler(d.DB, d.Cache)
	sensors := NewSensorsHandler(d.DB, d.Cache)
	auth := NewAuthHandler(d.DB, d.Auth)

	router.POST("/predict", readings.Predict)
	router.GET("/forecast/:sensor_id", forecast.GetForecast)
	router.GET("/latest", dashboard.GetLatest)
	router.GET("/top-polluted", dashboard.GetTopPolluted)
	router.GET("/history/:region_id", dashboard.GetHistory)
	router.GET("/public/sensors", sensors.GetPublicSensors)
	router.GET("/ws/live", LiveWebSocket(d.Cache))

	admin := router.Group("/admin")
	admin.POST("/register", auth.Register)
	admin.POST("/login", auth.Login)

	protected := admin.Group("", middleware.RequireAdmin(d.Auth))
	protected.GET("/sensors", sensors.ListSensors)
	protected.POST("/sensor", sensors.CreateSensor)
	protected.PUT("/sensor/:sensor_id/status", sensors.UpdateStatus)
	protected.DELETE("/sensor/:sensor_id", sensors.DeleteSensor)

	return router
}
