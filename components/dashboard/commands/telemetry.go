package commands

import (
	"context"

	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
)

// Telemetry is the dashboard event sink commands report to.
type Telemetry = dashboard.Telemetry

type discardTelemetry struct{}

func (discardTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return discardTelemetry{}
	}
	return t
}
