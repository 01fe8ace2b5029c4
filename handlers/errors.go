package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"aqi-monitor-api/aqi"

	"github.com/gin-gonic/gin"
)

// respondError maps pipeline errors onto HTTP responses. A reading for a
// sensor that does not exist is the caller's mistake and gets 404.
func respondError(c *gin.Context, err error) {
	var mie *aqi.ModelInferenceError
	var se *aqi.StorageError
	switch {
	case errors.Is(err, aqi.ErrUnknownSensor):
		c.JSON(http.StatusNotFound, gin.H{"error": "sensor not found"})
	case errors.As(err, &mie):
		slog.Error("model inference failed", "endpoint", mie.Endpoint, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "model inference failed"})
	case errors.As(err, &se):
		slog.Error("storage failed", "op", se.Op, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
