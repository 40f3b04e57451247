package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultMetricsInterval = 30 * time.Second
	DefaultCounterInterval = 60 * time.Second
	// DashboardRouteMarker identifies admin routes that show the metrics dashboard.
	DashboardRouteMarker = "dashboarddata"
)

// ErrStaleResult marks a poll result superseded by a newer request.
var ErrStaleResult = errors.New("dashboard: poll result superseded")

// SchedulerOptions configures the refresh scheduler.
type SchedulerOptions struct {
	Metrics         MetricsSource
	Counters        CounterSource
	MetricsBoard    *MetricsBoard
	CounterBoard    *CounterBoard
	Activity        *ActivityWindow
	Hook            RefreshHook
	Fragments       *FragmentRenderer
	Formatter       Formatter
	Telemetry       Telemetry
	MetricsInterval time.Duration
	CounterInterval time.Duration
	DashboardRoutes []string
	Now             func() time.Time
}

// Scheduler runs the metrics and counters poll jobs while views that need
// them are mounted.
type Scheduler struct {
	opts SchedulerOptions

	mu             sync.Mutex
	parent         context.Context
	stopAll        context.CancelFunc
	wg             sync.WaitGroup
	views          int
	dashboardViews int

	metrics      *pollJob
	counters     *pollJob
	metricsStop  context.CancelFunc
	countersStop context.CancelFunc
}

// NewScheduler builds a stopped scheduler.
func NewScheduler(opts SchedulerOptions) *Scheduler {
	if opts.MetricsInterval <= 0 {
		opts.MetricsInterval = DefaultMetricsInterval
	}
	if opts.CounterInterval <= 0 {
		opts.CounterInterval = DefaultCounterInterval
	}
	if opts.MetricsBoard == nil {
		opts.MetricsBoard = NewMetricsBoard()
	}
	if opts.CounterBoard == nil {
		opts.CounterBoard = NewCounterBoard()
	}
	if opts.Hook == nil {
		opts.Hook = noopRefreshHook{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Formatter.printer == nil {
		opts.Formatter = defaultFormatter
	}
	if len(opts.DashboardRoutes) == 0 {
		opts.DashboardRoutes = []string{DashboardRouteMarker}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	s := &Scheduler{opts: opts}
	s.metrics = &pollJob{name: "metrics", interval: opts.MetricsInterval, fetch: s.fetchMetrics, apply: s.applyMetrics, telemetry: opts.Telemetry}
	s.counters = &pollJob{name: "counters", interval: opts.CounterInterval, fetch: s.fetchCounters, apply: s.applyCounters, telemetry: opts.Telemetry}
	return s
}

// Board returns the metrics board the scheduler writes to.
func (s *Scheduler) Board() *MetricsBoard { return s.opts.MetricsBoard }

// Counters returns the counter board.
func (s *Scheduler) Counters() *CounterBoard { return s.opts.CounterBoard }

// IsDashboardRoute reports whether route shows the metrics dashboard.
func (s *Scheduler) IsDashboardRoute(route string) bool {
	for _, marker := range s.opts.DashboardRoutes {
		if marker != "" && strings.Contains(route, marker) {
			return true
		}
	}
	return false
}

// RegisterCounter binds a counter element to its endpoint.
func (s *Scheduler) RegisterCounter(id, endpoint, label string) {
	s.opts.CounterBoard.Register(id, endpoint, label)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconcileLocked()
}

// Start enables the jobs; they run while matching views are mounted.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.parent != nil {
		return fmt.Errorf("dashboard: scheduler already started")
	}
	s.parent, s.stopAll = context.WithCancel(ctx)
	s.reconcileLocked()
	return nil
}

// Stop cancels every job and in-flight fetch and waits for the loops to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopAll != nil {
		s.stopAll()
	}
	s.parent, s.stopAll = nil, nil
	s.metricsStop, s.countersStop = nil, nil
	s.mu.Unlock()
	s.wg.Wait()
}

// Running reports which jobs are active.
func (s *Scheduler) Running() (metrics, counters bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metricsStop != nil, s.countersStop != nil
}

// Mount records a mounted view; the returned func unmounts it once.
func (s *Scheduler) Mount(route string) func() {
	dashboard := s.IsDashboardRoute(route)
	s.mu.Lock()
	s.views++
	if dashboard {
		s.dashboardViews++
	}
	s.reconcileLocked()
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.views--
			if dashboard {
				s.dashboardViews--
			}
			s.reconcileLocked()
		})
	}
}

// RefreshNow runs a metrics tick immediately, sequenced with the timer ticks.
func (s *Scheduler) RefreshNow(ctx context.Context) error {
	if s.opts.Metrics == nil {
		return fmt.Errorf("dashboard: metrics source not configured")
	}
	return s.metrics.tick(ctx)
}

// RefreshCounters runs a counters tick immediately.
func (s *Scheduler) RefreshCounters(ctx context.Context) error {
	if s.opts.Counters == nil {
		return fmt.Errorf("dashboard: counter source not configured")
	}
	return s.counters.tick(ctx)
}

func (s *Scheduler) reconcileLocked() {
	if s.parent == nil {
		return
	}
	wantMetrics := s.dashboardViews > 0 && s.opts.Metrics != nil
	wantCounters := s.views > 0 && s.opts.Counters != nil && s.opts.CounterBoard.Len() > 0
	s.metricsStop = s.toggle(s.metrics, s.metricsStop, wantMetrics)
	s.countersStop = s.toggle(s.counters, s.countersStop, wantCounters)
}

func (s *Scheduler) toggle(job *pollJob, stop context.CancelFunc, want bool) context.CancelFunc {
	switch {
	case want && stop == nil:
		ctx, cancel := context.WithCancel(s.parent)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			job.run(ctx)
		}()
		s.opts.Telemetry.Record(ctx, EventPollStart, map[string]any{"job": job.name})
		return cancel
	case !want && stop != nil:
		stop()
		s.opts.Telemetry.Record(s.parent, EventPollStop, map[string]any{"job": job.name})
		return nil
	}
	return stop
}

func (s *Scheduler) fetchMetrics(ctx context.Context) (any, error) {
	var (
		summary MetricsSummary
		data    DashboardData
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.opts.Metrics.FetchSummary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		data, err = s.opts.Metrics.FetchDashboardData(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return CombineMetrics(summary, data, s.opts.Now()), nil
}

func (s *Scheduler) applyMetrics(ctx context.Context, result any) {
	m := result.(DashboardMetrics)
	board := s.opts.MetricsBoard
	prev, hadPrev := board.Latest()
	board.Replace(m)
	if s.opts.Activity != nil && hadPrev {
		delta := m.BrandsProcessedToday - prev.BrandsProcessedToday
		if delta < 0 {
			delta = 0
		}
		s.opts.Activity.Push(m.FetchedAt, delta)
	}

	alerts := GenerateAlerts(m, m.FetchedAt)
	recs := GenerateRecommendations(m)
	patches := board.Patches(s.opts.Formatter)
	payload := map[string]any{
		"metrics":         m,
		"kpis":            patches,
		"alerts":          alerts,
		"recommendations": recs,
	}
	if s.opts.Fragments != nil {
		if html, err := s.opts.Fragments.KPICards(patches); err == nil {
			payload["kpis_html"] = html
		}
		if html, err := s.opts.Fragments.Alerts(alerts); err == nil {
			payload["alerts_html"] = html
		}
		if html, err := s.opts.Fragments.Recommendations(recs); err == nil {
			payload["recommendations_html"] = html
		}
	}
	_ = s.opts.Hook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode:  AreaKPIs,
		Reason:    "metrics",
		Payload:   payload,
		Timestamp: s.opts.Now(),
	})
}

func (s *Scheduler) fetchCounters(ctx context.Context) (any, error) {
	counters := s.opts.CounterBoard.List()
	counts := make(map[string]int, len(counters))
	var errs []error
	for _, c := range counters {
		count, err := s.opts.Counters.FetchCount(ctx, c.Endpoint)
		if err != nil {
			s.opts.Telemetry.Record(ctx, EventCounterError, map[string]any{
				"counter":  c.ID,
				"endpoint": c.Endpoint,
				"error":    err.Error(),
			})
			errs = append(errs, fmt.Errorf("counter %s: %w", c.ID, err))
			continue
		}
		counts[c.ID] = count
	}
	if len(counts) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return counts, nil
}

func (s *Scheduler) applyCounters(ctx context.Context, result any) {
	counts := result.(map[string]int)
	now := s.opts.Now()
	for id, count := range counts {
		s.opts.CounterBoard.Update(id, count, now)
	}
	_ = s.opts.Hook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode:  AreaCounters,
		Reason:    "counters",
		Payload:   map[string]any{"counters": counts},
		Timestamp: now,
	})
}

// pollJob is one fixed-interval fetch-and-apply loop. Each tick cancels the
// previous in-flight request and results older than the newest issued
// request are dropped.
type pollJob struct {
	name      string
	interval  time.Duration
	fetch     func(ctx context.Context) (any, error)
	apply     func(ctx context.Context, result any)
	telemetry Telemetry

	mu       sync.Mutex
	issued   uint64
	applied  uint64
	inflight context.CancelFunc
}

func (j *pollJob) run(ctx context.Context) {
	j.report(ctx, j.tick(ctx))
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.report(ctx, j.tick(ctx))
		}
	}
}

func (j *pollJob) tick(ctx context.Context) error {
	j.mu.Lock()
	if j.inflight != nil {
		j.inflight()
	}
	j.issued++
	seq := j.issued
	reqCtx, cancel := context.WithCancel(ctx)
	j.inflight = cancel
	j.mu.Unlock()
	defer cancel()

	result, err := j.fetch(reqCtx)

	j.mu.Lock()
	defer j.mu.Unlock()
	if seq == j.issued {
		j.inflight = nil
	}
	if seq < j.issued || seq <= j.applied {
		return ErrStaleResult
	}
	if err != nil {
		return err
	}
	j.applied = seq
	j.apply(ctx, result)
	return nil
}

func (j *pollJob) report(ctx context.Context, err error) {
	switch {
	case err == nil:
		j.telemetry.Record(ctx, EventPollTick, map[string]any{"job": j.name})
	case errors.Is(err, ErrStaleResult):
		j.telemetry.Record(ctx, EventPollStale, map[string]any{"job": j.name})
	case ctx.Err() != nil:
	default:
		j.telemetry.Record(ctx, EventPollError, map[string]any{"job": j.name, "error": err.Error()})
	}
}
