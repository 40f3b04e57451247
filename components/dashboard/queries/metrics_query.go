package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
)

type metricsBoard interface {
	Latest() (dashboard.DashboardMetrics, bool)
	Patches(f dashboard.Formatter) []dashboard.KPIPatch
}

// MetricsInput selects the locale used to format KPI values.
type MetricsInput struct {
	Locale string
}

// MetricsResult is the latest snapshot plus its rendered KPI patches. Ready
// is false until the first poll tick lands.
type MetricsResult struct {
	Metrics dashboard.DashboardMetrics `json:"metrics"`
	Patches []dashboard.KPIPatch       `json:"patches"`
	Ready   bool                       `json:"ready"`
}

// MetricsQuery reads the scheduler's metrics board.
type MetricsQuery struct {
	board metricsBoard
}

// NewMetricsQuery builds the query.
func NewMetricsQuery(board metricsBoard) *MetricsQuery {
	return &MetricsQuery{board: board}
}

var _ gocommand.Querier[MetricsInput, MetricsResult] = (*MetricsQuery)(nil)

func (q *MetricsQuery) Query(_ context.Context, input MetricsInput) (MetricsResult, error) {
	if q.board == nil {
		return MetricsResult{}, nil
	}
	metrics, ready := q.board.Latest()
	return MetricsResult{
		Metrics: metrics,
		Patches: q.board.Patches(dashboard.NewFormatter(input.Locale)),
		Ready:   ready,
	}, nil
}
