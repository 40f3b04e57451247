package monitoring

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus is the /healthz payload.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Timestamp int64                  `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents the result of an individual health check
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthCheck performs one check.
type HealthCheck func() CheckResult

// HealthChecker runs named checks and folds them into one status.
type HealthChecker struct {
	service string
	version string
	checks  map[string]HealthCheck
	now     func() time.Time
}

func NewHealthChecker(service, version string) *HealthChecker {
	return &HealthChecker{
		service: service,
		version: version,
		checks:  map[string]HealthCheck{},
		now:     time.Now,
	}
}

func (hc *HealthChecker) AddCheck(name string, check HealthCheck) {
	hc.checks[name] = check
}

// CheckHealth runs every check; any unhealthy check makes the whole service
// unhealthy, any degraded one degrades it.
func (hc *HealthChecker) CheckHealth() HealthStatus {
	status := HealthStatus{
		Status:    StatusHealthy,
		Service:   hc.service,
		Version:   hc.version,
		Timestamp: hc.now().Unix(),
		Checks:    make(map[string]CheckResult, len(hc.checks)),
	}
	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		result := hc.checks[name]()
		status.Checks[name] = result
		switch result.Status {
		case StatusUnhealthy:
			status.Status = StatusUnhealthy
		case StatusDegraded:
			if status.Status == StatusHealthy {
				status.Status = StatusDegraded
			}
		}
	}
	return status
}

// Handler answers 200 unless the service is unhealthy.
func (hc *HealthChecker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := hc.CheckHealth()
		code := http.StatusOK
		if status.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	})
}

// MetricsFreshness degrades when the latest metrics snapshot is older than
// maxAge, and reports a pending state before the first tick.
func MetricsFreshness(board *dashboard.MetricsBoard, maxAge time.Duration, now func() time.Time) HealthCheck {
	if now == nil {
		now = time.Now
	}
	return func() CheckResult {
		latest, ok := board.Latest()
		if !ok {
			return CheckResult{Status: StatusHealthy, Message: "no metrics yet"}
		}
		if age := now().Sub(latest.FetchedAt); age > maxAge {
			return CheckResult{Status: StatusDegraded, Message: "metrics stale for " + age.Round(time.Second).String()}
		}
		return CheckResult{Status: StatusHealthy}
	}
}
