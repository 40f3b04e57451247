package logging

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
	"github.com/ganaderiabi/go-admin-dashboard/pkg/config"
)

// Logger represents a logger instance
type Logger = *logrus.Logger

// Fields represents structured logging fields
type Fields = logrus.Fields

// NewLogger creates a JSON logger with the level taken from LOG_LEVEL.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(config.GetLogLevel())
	return logger
}

// NewLoggerWithService returns an entry that tags every line with service.
func NewLoggerWithService(serviceName string) *logrus.Entry {
	return NewLogger().WithField("service", serviceName)
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Telemetry writes dashboard events as structured log lines. Error-ish
// events log at warn, poll ticks at debug, the rest at info.
type Telemetry struct {
	Log logrus.FieldLogger
}

// NewTelemetry wraps a logger.
func NewTelemetry(log logrus.FieldLogger) *Telemetry {
	return &Telemetry{Log: log}
}

// Record implements dashboard.Telemetry.
func (t *Telemetry) Record(_ context.Context, event string, payload map[string]any) {
	if t == nil || t.Log == nil {
		return
	}
	entry := t.Log.WithFields(logrus.Fields(payload)).WithField("event", event)
	switch {
	case dashboard.IsFailureEvent(event, payload):
		entry.Warn("dashboard event")
	case dashboard.IsNoisyEvent(event):
		entry.Debug("dashboard event")
	default:
		entry.Info("dashboard event")
	}
}
