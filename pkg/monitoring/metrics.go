package monitoring

import (
	"context"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
)

// Metrics exposes dashboard activity as Prometheus series on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	events       *prometheus.CounterVec
	pollTicks    *prometheus.CounterVec
	pollFailures *prometheus.CounterVec
	cache        *prometheus.CounterVec
}

// NewMetrics registers the dashboard collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	namespace = strings.ReplaceAll(namespace, "-", "_")
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_events_total",
		Help:      "Dashboard telemetry events by name.",
	}, []string{"event"})
	m.pollTicks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_ticks_total",
		Help:      "Successful scheduler ticks per job.",
	}, []string{"job"})
	m.pollFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_failures_total",
		Help:      "Failed or stale scheduler ticks per job and reason.",
	}, []string{"job", "reason"})
	m.cache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "preview_cache_total",
		Help:      "Preview cache operations by result.",
	}, []string{"result"})

	m.registry.MustRegister(
		m.events,
		m.pollTicks,
		m.pollFailures,
		m.cache,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Record implements dashboard.Telemetry.
func (m *Metrics) Record(_ context.Context, event string, payload map[string]any) {
	m.events.WithLabelValues(event).Inc()
	job, _ := payload["job"].(string)
	switch event {
	case dashboard.EventPollTick:
		m.pollTicks.WithLabelValues(job).Inc()
	case dashboard.EventPollError:
		m.pollFailures.WithLabelValues(job, "error").Inc()
	case dashboard.EventPollStale:
		m.pollFailures.WithLabelValues(job, "stale").Inc()
	}
}

// CacheHooks counts preview cache hits, misses, stores and evictions.
func (m *Metrics) CacheHooks() dashboard.CacheHooks {
	return dashboard.CacheHooks{
		OnHit:   func(string) { m.cache.WithLabelValues("hit").Inc() },
		OnMiss:  func(string) { m.cache.WithLabelValues("miss").Inc() },
		OnStore: func(string) { m.cache.WithLabelValues("store").Inc() },
		OnEvict: func(string) { m.cache.WithLabelValues("evict").Inc() },
	}
}

// WatchSubscribers exports the open stream count and the events dropped
// for slow subscribers.
func (m *Metrics) WatchSubscribers(namespace string, hook *dashboard.BroadcastHook) {
	ns := strings.ReplaceAll(namespace, "-", "_")
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "broadcast_subscribers",
			Help:      "Open WebSocket/SSE subscribers.",
		}, func() float64 { return float64(hook.Subscribers()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "broadcast_dropped_events_total",
			Help:      "Widget events dropped because a subscriber buffer was full.",
		}, func() float64 { return float64(hook.Dropped()) }),
	)
}
