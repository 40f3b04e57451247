package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithService(t *testing.T) {
	entry := NewLoggerWithService("ganaderia-dashboard")
	require.NotNil(t, entry)
	assert.Equal(t, "ganaderia-dashboard", entry.Data["service"])
	_, ok := entry.Logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
}

func TestTelemetryLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)
	telemetry := NewTelemetry(logger)

	telemetry.Record(context.Background(), "dashboard.poll.tick", map[string]any{"job": "metrics"})
	assert.Zero(t, buf.Len(), "ticks log at debug")

	telemetry.Record(context.Background(), "dashboard.poll.error", map[string]any{"job": "metrics", "error": "timeout"})
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, "dashboard.poll.error", line["event"])
	assert.Equal(t, "metrics", line["job"])

	buf.Reset()
	telemetry.Record(context.Background(), "dashboard.widget.assign", map[string]any{"widget_id": "kpis"})
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
}

func TestNilTelemetryIsSafe(t *testing.T) {
	var telemetry *Telemetry
	telemetry.Record(context.Background(), "dashboard.poll.tick", nil)
}
