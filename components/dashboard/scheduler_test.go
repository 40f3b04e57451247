package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMetricsSource struct {
	mu      sync.Mutex
	summary MetricsSummary
	data    DashboardData
	err     error
	calls   int
	block   chan struct{}
}

func (s *stubMetricsSource) FetchSummary(ctx context.Context) (MetricsSummary, error) {
	s.mu.Lock()
	s.calls++
	block := s.block
	summary, err := s.summary, s.err
	s.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return MetricsSummary{}, ctx.Err()
		}
	}
	return summary, err
}

func (s *stubMetricsSource) FetchDashboardData(context.Context) (DashboardData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, s.err
}

func (s *stubMetricsSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubCounterSource struct {
	counts map[string]int
	err    error
	calls  atomic.Int32
}

func (s *stubCounterSource) FetchCount(_ context.Context, endpoint string) (int, error) {
	s.calls.Add(1)
	if s.err != nil {
		return 0, s.err
	}
	return s.counts[endpoint], nil
}

func TestSchedulerRefreshNowPublishesMetrics(t *testing.T) {
	source := &stubMetricsSource{
		summary: MetricsSummary{ActiveBrandsTotal: 100, BrandsProcessedToday: 4},
		data:    DashboardData{AvgProcessingTime: 6, ApprovalPercent: 80, Alerts: []string{"Cola llena"}},
	}
	hook := &collectingHook{}
	activity := NewActivityWindow(5, time.Now())
	sched := NewScheduler(SchedulerOptions{
		Metrics:   source,
		Hook:      hook,
		Activity:  activity,
		Fragments: NewFragmentRenderer(&stubRenderer{}),
	})

	require.NoError(t, sched.RefreshNow(context.Background()))

	events := hook.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "metrics", events[0].Reason)
	assert.Equal(t, AreaKPIs, events[0].AreaCode)
	assert.Equal(t, "<kpi_cards>", events[0].Payload["kpis_html"])
	alerts := events[0].Payload["alerts"].([]Alert)
	assert.Len(t, alerts, 2)
	recs := events[0].Payload["recommendations"].([]Recommendation)
	assert.Len(t, recs, 2)

	_, values := activity.Snapshot()
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, values)

	source.mu.Lock()
	source.summary.BrandsProcessedToday = 9
	source.mu.Unlock()
	require.NoError(t, sched.RefreshNow(context.Background()))
	_, values = activity.Snapshot()
	assert.Equal(t, 5.0, values[len(values)-1])
}

func TestSchedulerRefreshNowSurfacesErrors(t *testing.T) {
	source := &stubMetricsSource{err: errors.New("503")}
	hook := &collectingHook{}
	sched := NewScheduler(SchedulerOptions{Metrics: source, Hook: hook})

	err := sched.RefreshNow(context.Background())
	require.Error(t, err)
	assert.Empty(t, hook.Events())
	_, ok := sched.Board().Latest()
	assert.False(t, ok)
}

func TestPollJobDropsSupersededResults(t *testing.T) {
	release := make(chan struct{})
	var applied []int
	var mu sync.Mutex
	calls := 0
	job := &pollJob{
		name:      "test",
		interval:  time.Hour,
		telemetry: discardTelemetry{},
		fetch: func(ctx context.Context) (any, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 1 {
				<-release
				return n, nil
			}
			return n, nil
		},
		apply: func(_ context.Context, result any) {
			mu.Lock()
			defer mu.Unlock()
			applied = append(applied, result.(int))
		},
	}

	firstDone := make(chan error, 1)
	go func() { firstDone <- job.tick(context.Background()) }()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, job.tick(context.Background()))
	close(release)
	assert.ErrorIs(t, <-firstDone, ErrStaleResult)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{2}, applied)
}

func TestPollJobCancelsPreviousRequest(t *testing.T) {
	cancelled := make(chan struct{})
	first := true
	var mu sync.Mutex
	job := &pollJob{
		name:      "test",
		interval:  time.Hour,
		telemetry: discardTelemetry{},
		fetch: func(ctx context.Context) (any, error) {
			mu.Lock()
			isFirst := first
			first = false
			mu.Unlock()
			if isFirst {
				<-ctx.Done()
				close(cancelled)
				return nil, ctx.Err()
			}
			return "ok", nil
		},
		apply: func(context.Context, any) {},
	}

	done := make(chan error, 1)
	go func() { done <- job.tick(context.Background()) }()
	require.Eventually(t, func() bool {
		job.mu.Lock()
		defer job.mu.Unlock()
		return job.inflight != nil
	}, time.Second, time.Millisecond)

	require.NoError(t, job.tick(context.Background()))
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("previous request was not cancelled")
	}
	assert.ErrorIs(t, <-done, ErrStaleResult)
}

func TestSchedulerRunsMetricsOnlyOnDashboardRoutes(t *testing.T) {
	source := &stubMetricsSource{}
	sched := NewScheduler(SchedulerOptions{Metrics: source, MetricsInterval: time.Hour})
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	unmountOther := sched.Mount("/admin/marcas/marcaganadobovinomodel/")
	metrics, _ := sched.Running()
	assert.False(t, metrics)

	unmount := sched.Mount("/admin/analytics/dashboarddata/")
	metrics, _ = sched.Running()
	assert.True(t, metrics)
	require.Eventually(t, func() bool { return source.Calls() >= 1 }, time.Second, time.Millisecond)

	unmount()
	unmount()
	metrics, _ = sched.Running()
	assert.False(t, metrics)
	unmountOther()
}

func TestSchedulerCountersNeedRegistration(t *testing.T) {
	counters := &stubCounterSource{counts: map[string]int{"/api/pendientes/": 7}}
	hook := &collectingHook{}
	sched := NewScheduler(SchedulerOptions{Counters: counters, Hook: hook, CounterInterval: time.Hour})
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	unmount := sched.Mount("/admin/")
	defer unmount()
	_, running := sched.Running()
	assert.False(t, running)

	sched.RegisterCounter("pendientes", "/api/pendientes/", "Pendientes")
	_, running = sched.Running()
	assert.True(t, running)

	require.Eventually(t, func() bool {
		c, ok := sched.Counters().Get("pendientes")
		return ok && c.Count == 7
	}, time.Second, time.Millisecond)
	assert.Contains(t, hook.reasons(), "counters")
}

func TestSchedulerCountersAllFailing(t *testing.T) {
	counters := &stubCounterSource{err: errors.New("timeout")}
	sched := NewScheduler(SchedulerOptions{Counters: counters})
	sched.RegisterCounter("a", "/a", "")
	sched.RegisterCounter("b", "/b", "")
	err := sched.RefreshCounters(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestSchedulerStopCancelsInflight(t *testing.T) {
	source := &stubMetricsSource{block: make(chan struct{})}
	sched := NewScheduler(SchedulerOptions{Metrics: source, MetricsInterval: time.Hour})
	require.NoError(t, sched.Start(context.Background()))
	sched.Mount("/admin/analytics/dashboarddata/")
	require.Eventually(t, func() bool { return source.Calls() == 1 }, time.Second, time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		sched.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not cancel the in-flight fetch")
	}
	metrics, counters := sched.Running()
	assert.False(t, metrics)
	assert.False(t, counters)
	_, ok := sched.Board().Latest()
	assert.False(t, ok)
}

func TestSchedulerStartTwice(t *testing.T) {
	sched := NewScheduler(SchedulerOptions{})
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()
	assert.Error(t, sched.Start(context.Background()))
}
