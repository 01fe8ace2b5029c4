package handlers

import (
	"errors"
	"net/http"

	"aqi-monitor-api/aqi"
	"aqi-monitor-api/services"

	"github.com/gin-gonic/gin"
)

type ReadingsHandler struct {
	ingestor *aqi.Ingestor
}

func NewReadingsHandler(ingestor *aqi.Ingestor) *ReadingsHandler {
	return &ReadingsHandler{ingestor: ingestor}
}

// PredictRequest is the /predict body. Every field must be present; a
// missing pollutant is rejected rather than read as zero.
type PredictRequest struct {
	SensorID *uint    `json:"sensor_id" binding:"required,gt=0"`
	PM25     *float64 `json:"PM2_5" binding:"required"`
	PM10     *float64 `json:"PM10" binding:"required"`
	NO2      *float64 `json:"NO2" binding:"required"`
	CO       *float64 `json:"CO" binding:"required"`
	SO2      *float64 `json:"SO2" binding:"required"`
	O3       *float64 `json:"O3" binding:"required"`
	NH3      *float64 `json:"NH3" binding:"required"`
	Hour     *int     `json:"hour" binding:"required"`
	Day      *int     `json:"day" binding:"required"`
	Month    *int     `json:"month" binding:"required"`
	Weekday  *int     `json:"weekday" binding:"required"`
}

// Reading converts a bound request. Call it only after binding succeeded.
func (r PredictRequest) Reading() aqi.PollutantReading {
	return aqi.PollutantReading{
		SensorID: *r.SensorID,
		PM25:     *r.PM25,
		PM10:     *r.PM10,
		NO2:      *r.NO2,
		CO:       *r.CO,
		SO2:      *r.SO2,
		O3:       *r.O3,
		NH3:      *r.NH3,
		Hour:     *r.Hour,
		Day:      *r.Day,
		Month:    *r.Month,
		Weekday:  *r.Weekday,
	}
}

type PredictResponse struct {
	PredictedAQI float64      `json:"predicted_AQI"`
	Category     aqi.Category `json:"category"`
}

// Predict scores and stores one reading.
func (h *ReadingsHandler) Predict(c *gin.Context) {
	var body PredictRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		services.ReadingsFailed.WithLabelValues("api", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req := body.Reading()
	if err := req.Validate(); err != nil {
		services.ReadingsFailed.WithLabelValues("api", "invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scored, err := h.ingestor.Ingest(c.Request.Context(), req)
	if err != nil {
		services.ReadingsFailed.WithLabelValues("api", failureReason(err)).Inc()
		respondError(c, err)
		return
	}
	services.ReadingsIngested.WithLabelValues("api").Inc()

	c.JSON(http.StatusOK, PredictResponse{
		PredictedAQI: scored.PredictedAQI,
		Category:     scored.Category,
	})
}

func failureReason(err error) string {
	var mie *aqi.ModelInferenceError
	switch {
	case errors.Is(err, aqi.ErrUnknownSensor):
		return "unknown_sensor"
	case errors.As(err, &mie):
		return "model"
	default:
		return "storage"
	}
}
