package services

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"aqi-monitor-api/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "info", JSON: true})

	logger.Debug("hidden")
	logger.Info("reading ingested", "sensor_id", 4)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "reading ingested", entry["msg"])
	assert.Equal(t, float64(4), entry["sensor_id"])
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "warn"})

	logger.Info("hidden")
	logger.Warn("model slow", "endpoint", "aqi")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "model slow")
	assert.Contains(t, out, "aqi")
}
