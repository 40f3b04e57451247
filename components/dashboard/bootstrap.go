package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Sources are the admin backends the dashboard reads from and writes to.
type Sources struct {
	Metrics    MetricsSource
	Counters   CounterSource
	Reports    ReportSource
	Actions    AdminActions
	Municipios MunicipioSource
}

// BootstrapOptions configures Bootstrap. Zero values select the defaults.
type BootstrapOptions struct {
	Sources
	Manifest            *LayoutManifest
	Renderer            Renderer
	Telemetry           Telemetry
	Locale              string
	MetricsInterval     time.Duration
	CounterInterval     time.Duration
	PreviewCacheMax     int
	CacheHooks          CacheHooks
	DashboardRoutes     []string
	WelcomeRoute        string
	NotificationDisplay time.Duration
}

// Runtime is the wired dashboard.
type Runtime struct {
	Registry      *Registry
	Service       *Service
	Broadcast     *BroadcastHook
	Notifications *NotificationCenter
	Scheduler     *Scheduler
	Previews      *PreviewService
	Dispatcher    *Dispatcher
	Controller    *Controller
	Fragments     *FragmentRenderer
	Views         *Views
	Widgets       []WidgetInstance
}

// Bootstrap wires registry, layout, caches, scheduler and dispatcher, and
// places the manifest widgets. The scheduler is returned stopped.
func Bootstrap(ctx context.Context, opts BootstrapOptions) (*Runtime, error) {
	renderer := opts.Renderer
	if renderer == nil {
		r, err := NewTemplateRenderer()
		if err != nil {
			return nil, fmt.Errorf("dashboard: template renderer: %w", err)
		}
		renderer = r
	}
	manifest := opts.Manifest
	if manifest == nil {
		manifest = DefaultManifest()
	}
	telemetry := normalizeTelemetry(opts.Telemetry)
	formatter := NewFormatter(opts.Locale)

	rt := &Runtime{
		Registry:  NewRegistry(),
		Broadcast: NewBroadcastHook(),
		Fragments: NewFragmentRenderer(renderer),
	}
	rt.Notifications = NewNotificationCenter(NotificationOptions{
		Display:   opts.NotificationDisplay,
		Hook:      rt.Broadcast,
		Telemetry: telemetry,
	})

	metrics := NewMetricsBoard()
	counters := NewCounterBoard()
	activity := NewActivityWindow(DefaultActivityPoints, time.Now())
	rt.Previews = NewPreviewService(PreviewServiceOptions{
		Source:    opts.Reports,
		Cache:     NewPreviewCache(PreviewCacheOptions{MaxEntries: opts.PreviewCacheMax, Hooks: opts.CacheHooks}),
		Fragments: rt.Fragments,
		Telemetry: telemetry,
	})
	if err := RegisterRuntimeProviders(rt.Registry, RuntimeDeps{
		Metrics:   metrics,
		Activity:  activity,
		Counters:  counters,
		Previews:  rt.Previews,
		Formatter: formatter,
	}); err != nil {
		return nil, err
	}
	if unbound := rt.Registry.Unbound(); len(unbound) > 0 {
		return nil, fmt.Errorf("dashboard: widgets without provider: %s", strings.Join(unbound, ", "))
	}

	rt.Service = NewService(Options{
		Providers:   rt.Registry,
		RefreshHook: rt.Broadcast,
		Telemetry:   telemetry,
		Areas:       manifest.ServiceAreas(),
	})
	placed, err := manifest.Apply(ctx, rt.Service)
	if err != nil {
		return nil, err
	}
	rt.Widgets = placed

	rt.Scheduler = NewScheduler(SchedulerOptions{
		Metrics:         opts.Metrics,
		Counters:        opts.Counters,
		MetricsBoard:    metrics,
		CounterBoard:    counters,
		Activity:        activity,
		Hook:            rt.Broadcast,
		Fragments:       rt.Fragments,
		Formatter:       formatter,
		Telemetry:       telemetry,
		MetricsInterval: opts.MetricsInterval,
		CounterInterval: opts.CounterInterval,
		DashboardRoutes: opts.DashboardRoutes,
	})
	for _, inst := range placed {
		if inst.DefinitionID != WidgetCounter {
			continue
		}
		rt.Scheduler.RegisterCounter(inst.ID, stringOr(inst.Configuration["endpoint"], ""), stringOr(inst.Configuration["label"], ""))
	}

	rt.Dispatcher = NewDispatcher(DispatcherOptions{
		Actions:    opts.Actions,
		Municipios: opts.Municipios,
		Previews:   rt.Previews,
		Scheduler:  rt.Scheduler,
		Notifier:   rt.Notifications,
		Telemetry:  telemetry,
	})
	rt.Views = &Views{Scheduler: rt.Scheduler, Notifications: rt.Notifications, WelcomeRoute: opts.WelcomeRoute}
	rt.Broadcast.SetViewLifecycle(rt.Views)
	rt.Controller = NewController(ControllerOptions{Service: rt.Service, Renderer: renderer})
	return rt, nil
}
