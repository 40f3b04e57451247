package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	core "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
	"github.com/ganaderiabi/go-admin-dashboard/components/dashboard/gorouter"
	"github.com/ganaderiabi/go-admin-dashboard/components/dashboard/httpapi"
	"github.com/ganaderiabi/go-admin-dashboard/pkg/dashboard"
	"github.com/ganaderiabi/go-admin-dashboard/pkg/logging"
	"github.com/ganaderiabi/go-admin-dashboard/pkg/monitoring"
)

type serveCmd struct {
	Listen          string        `env:"GANADERIA_LISTEN" default:":8080" help:"Address of the dashboard routes."`
	OpsListen       string        `name:"ops-listen" env:"GANADERIA_OPS_LISTEN" default:":9090" help:"Address of /metrics, /healthz and the SSE stream."`
	Manifest        string        `type:"existingfile" env:"GANADERIA_MANIFEST" help:"Layout manifest (YAML or JSON)."`
	MetricsInterval time.Duration `env:"GANADERIA_METRICS_INTERVAL" default:"30s" help:"Metrics poll interval."`
	CounterInterval time.Duration `env:"GANADERIA_COUNTER_INTERVAL" default:"60s" help:"Counter poll interval."`
	PreviewCacheMax int           `env:"GANADERIA_PREVIEW_CACHE_MAX" default:"0" help:"Preview cache size; 0 keeps every preview."`
	StaleAfter      time.Duration `name:"stale-after" default:"5m" help:"Report degraded health when metrics are older than this."`
}

const basePath = "/admin"

func (cmd *serveCmd) Run(g *globals, log logrus.FieldLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := g.client(log)
	if err != nil {
		return err
	}
	var manifest *core.LayoutManifest
	if cmd.Manifest != "" {
		if manifest, err = core.ReadManifest(cmd.Manifest); err != nil {
			return err
		}
	}

	metrics := monitoring.NewMetrics("ganaderia")
	rt, err := dashboard.New(ctx, client, dashboard.Options{
		BootstrapOptions: core.BootstrapOptions{
			Manifest:        manifest,
			Locale:          g.Locale,
			MetricsInterval: cmd.MetricsInterval,
			CounterInterval: cmd.CounterInterval,
			PreviewCacheMax: cmd.PreviewCacheMax,
		},
		Logger:  log,
		Metrics: metrics,
	})
	if err != nil {
		return fmt.Errorf("serve: bootstrap: %w", err)
	}
	metrics.WatchSubscribers("ganaderia", rt.Broadcast)

	handlers := httpapi.NewHandlers(rt, core.TelemetryFanout{logging.NewTelemetry(log), metrics})

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: rt.Controller,
		API:        handlers,
		Broadcast:  rt.Broadcast,
		BasePath:   basePath,
	}); err != nil {
		return fmt.Errorf("serve: register routes: %w", err)
	}

	health := monitoring.NewHealthChecker("ganaderia-dashboard", "dev")
	health.AddCheck("metrics", monitoring.MetricsFreshness(rt.Scheduler.Board(), cmd.StaleAfter, nil))
	ops := http.NewServeMux()
	ops.Handle("GET /metrics", metrics.Handler())
	ops.Handle("GET /healthz", health.Handler())
	ops.HandleFunc("GET "+basePath+"/dashboard/events", rt.Broadcast.ServeSSE)
	ops.HandleFunc("GET "+basePath+"/dashboard/ws", rt.Broadcast.ServeWebSocket)
	(&httpapi.HTTP{Exec: handlers}).Routes(ops, basePath+"/dashboard")
	opsServer := &http.Server{Addr: cmd.OpsListen, Handler: ops, ReadHeaderTimeout: 5 * time.Second}

	if err := rt.Scheduler.Start(ctx); err != nil {
		return err
	}
	defer rt.Scheduler.Stop()

	log.WithFields(logrus.Fields{
		"listen":     cmd.Listen,
		"ops_listen": cmd.OpsListen,
		"widgets":    len(rt.Widgets),
	}).Info("dashboard ready")

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Serve(cmd.Listen)
	})
	group.Go(func() error {
		if err := opsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return errors.Join(server.Shutdown(shutdownCtx), opsServer.Shutdown(shutdownCtx))
	})
	return group.Wait()
}
