// Package dashboard is the public entry point: it wires the admin client into
// the dashboard core with the logging and metrics sinks used in production.
package dashboard

import (
	"context"

	"github.com/sirupsen/logrus"

	core "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
	"github.com/ganaderiabi/go-admin-dashboard/pkg/adminclient"
	"github.com/ganaderiabi/go-admin-dashboard/pkg/logging"
	"github.com/ganaderiabi/go-admin-dashboard/pkg/monitoring"
)

// Runtime re-exports the wired core runtime.
type Runtime = core.Runtime

// Options configures New. Zero values select the core defaults.
type Options struct {
	core.BootstrapOptions
	Logger  logrus.FieldLogger
	Metrics *monitoring.Metrics
}

// New bootstraps the dashboard against one admin client. Telemetry fans out
// to the logger and Prometheus when they are set; preview cache activity is
// counted when Metrics is set and no hooks were given.
func New(ctx context.Context, client adminclient.Client, opts Options) (*Runtime, error) {
	boot := opts.BootstrapOptions
	boot.Sources = core.Sources{
		Metrics:    client,
		Counters:   client,
		Reports:    client,
		Actions:    client,
		Municipios: client,
	}
	var sinks core.TelemetryFanout
	if boot.Telemetry != nil {
		sinks = append(sinks, boot.Telemetry)
	}
	if opts.Logger != nil {
		sinks = append(sinks, logging.NewTelemetry(opts.Logger))
	}
	if opts.Metrics != nil {
		sinks = append(sinks, opts.Metrics)
		if noHooks(boot.CacheHooks) {
			boot.CacheHooks = opts.Metrics.CacheHooks()
		}
	}
	if len(sinks) > 0 {
		boot.Telemetry = sinks
	}
	return core.Bootstrap(ctx, boot)
}

func noHooks(h core.CacheHooks) bool {
	return h.OnHit == nil && h.OnMiss == nil && h.OnStore == nil && h.OnEvict == nil
}
