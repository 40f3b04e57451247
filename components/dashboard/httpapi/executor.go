package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
	"github.com/ganaderiabi/go-admin-dashboard/components/dashboard/commands"
	"github.com/ganaderiabi/go-admin-dashboard/components/dashboard/queries"
)

// Executor is the transport-neutral surface the HTTP and go-router adapters call.
type Executor interface {
	Assign(ctx context.Context, req dashboard.AddWidgetRequest) error
	Remove(ctx context.Context, input commands.RemoveWidgetInput) error
	Refresh(ctx context.Context, input commands.RefreshWidgetInput) error
	BulkAction(ctx context.Context, req dashboard.BulkActionRequest) error
	Regenerate(ctx context.Context, input commands.RegenerateReportInput) error
	RefreshDashboard(ctx context.Context) error
	Recommendation(ctx context.Context, input commands.RecommendationInput) error
	DismissNotification(ctx context.Context, input commands.DismissNotificationInput) error
	Preview(ctx context.Context, input queries.ReportPreviewInput) (queries.ReportPreviewResult, error)
	Analysis(ctx context.Context, input queries.ReportPreviewInput) (dashboard.ReportAnalysis, error)
	Download(ctx context.Context, input queries.ReportPreviewInput) (dashboard.ReportDownload, error)
	Municipios(ctx context.Context, input queries.MunicipiosInput) ([]dashboard.SelectOption, error)
	Export(ctx context.Context, input queries.ExportInput) (string, error)
	ReportTable(ctx context.Context, input queries.ReportTableInput) (queries.ReportTableResult, error)
	Metrics(ctx context.Context, input queries.MetricsInput) (queries.MetricsResult, error)
	Layout(ctx context.Context, viewer dashboard.ViewerContext) (map[string]any, error)
}

// Handlers holds the commands and queries behind every endpoint. Nil
// members answer with ErrNotConfigured.
type Handlers struct {
	AssignCmd         gocommand.Commander[dashboard.AddWidgetRequest]
	RemoveCmd         gocommand.Commander[commands.RemoveWidgetInput]
	RefreshCmd        gocommand.Commander[commands.RefreshWidgetInput]
	BulkActionCmd     gocommand.Commander[dashboard.BulkActionRequest]
	RegenerateCmd     gocommand.Commander[commands.RegenerateReportInput]
	RefreshAllCmd     gocommand.Commander[commands.RefreshDashboardInput]
	RecommendationCmd gocommand.Commander[commands.RecommendationInput]
	DismissCmd        gocommand.Commander[commands.DismissNotificationInput]

	PreviewQuery     gocommand.Querier[queries.ReportPreviewInput, queries.ReportPreviewResult]
	AnalysisQuery    gocommand.Querier[queries.ReportPreviewInput, dashboard.ReportAnalysis]
	DownloadQuery    gocommand.Querier[queries.ReportPreviewInput, dashboard.ReportDownload]
	MunicipiosQuery  gocommand.Querier[queries.MunicipiosInput, []dashboard.SelectOption]
	ExportQuery      gocommand.Querier[queries.ExportInput, string]
	ReportTableQuery gocommand.Querier[queries.ReportTableInput, queries.ReportTableResult]
	MetricsQuery     gocommand.Querier[queries.MetricsInput, queries.MetricsResult]
	LayoutQuery      gocommand.Querier[dashboard.ViewerContext, map[string]any]
}

// ErrNotConfigured is returned for endpoints without a backing command or query.
var ErrNotConfigured = errors.New("httpapi: endpoint not configured")

var _ Executor = (*Handlers)(nil)

// NewHandlers wires every command and query against a bootstrapped runtime.
func NewHandlers(rt *dashboard.Runtime, telemetry dashboard.Telemetry) *Handlers {
	return &Handlers{
		AssignCmd:         commands.NewAssignWidgetCommand(rt.Service, telemetry),
		RemoveCmd:         commands.NewRemoveWidgetCommand(rt.Service, telemetry),
		RefreshCmd:        commands.NewRefreshWidgetCommand(rt.Service, telemetry),
		BulkActionCmd:     commands.NewBulkActionCommand(rt.Dispatcher, telemetry),
		RegenerateCmd:     commands.NewRegenerateReportCommand(rt.Dispatcher, telemetry),
		RefreshAllCmd:     commands.NewRefreshDashboardCommand(rt.Dispatcher, telemetry),
		RecommendationCmd: commands.NewRecommendationCommand(rt.Dispatcher, telemetry),
		DismissCmd:        commands.NewDismissNotificationCommand(rt.Notifications),
		PreviewQuery:      queries.NewReportPreviewQuery(rt.Previews),
		AnalysisQuery:     queries.NewReportAnalysisQuery(rt.Dispatcher),
		DownloadQuery:     queries.NewReportDownloadQuery(rt.Dispatcher),
		MunicipiosQuery:   queries.NewMunicipiosQuery(rt.Dispatcher),
		ExportQuery:       queries.NewExportQuery(rt.Dispatcher),
		ReportTableQuery:  queries.NewReportTableQuery(rt.Previews),
		MetricsQuery:      queries.NewMetricsQuery(rt.Scheduler.Board()),
		LayoutQuery:       queries.NewLayoutQuery(rt.Controller),
	}
}

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return ErrNotConfigured
	}
	return cmd.Execute(ctx, msg)
}

func query[T, R any](ctx context.Context, q gocommand.Querier[T, R], msg T) (R, error) {
	if q == nil {
		var zero R
		return zero, ErrNotConfigured
	}
	return q.Query(ctx, msg)
}

func (h *Handlers) Assign(ctx context.Context, req dashboard.AddWidgetRequest) error {
	return execute(ctx, h.AssignCmd, req)
}

func (h *Handlers) Remove(ctx context.Context, input commands.RemoveWidgetInput) error {
	return execute(ctx, h.RemoveCmd, input)
}

func (h *Handlers) Refresh(ctx context.Context, input commands.RefreshWidgetInput) error {
	return execute(ctx, h.RefreshCmd, input)
}

func (h *Handlers) BulkAction(ctx context.Context, req dashboard.BulkActionRequest) error {
	return execute(ctx, h.BulkActionCmd, req)
}

func (h *Handlers) Regenerate(ctx context.Context, input commands.RegenerateReportInput) error {
	return execute(ctx, h.RegenerateCmd, input)
}

func (h *Handlers) RefreshDashboard(ctx context.Context) error {
	return execute(ctx, h.RefreshAllCmd, commands.RefreshDashboardInput{})
}

func (h *Handlers) Recommendation(ctx context.Context, input commands.RecommendationInput) error {
	return execute(ctx, h.RecommendationCmd, input)
}

func (h *Handlers) DismissNotification(ctx context.Context, input commands.DismissNotificationInput) error {
	return execute(ctx, h.DismissCmd, input)
}

func (h *Handlers) Preview(ctx context.Context, input queries.ReportPreviewInput) (queries.ReportPreviewResult, error) {
	return query(ctx, h.PreviewQuery, input)
}

func (h *Handlers) Analysis(ctx context.Context, input queries.ReportPreviewInput) (dashboard.ReportAnalysis, error) {
	return query(ctx, h.AnalysisQuery, input)
}

func (h *Handlers) Download(ctx context.Context, input queries.ReportPreviewInput) (dashboard.ReportDownload, error) {
	return query(ctx, h.DownloadQuery, input)
}

func (h *Handlers) Municipios(ctx context.Context, input queries.MunicipiosInput) ([]dashboard.SelectOption, error) {
	return query(ctx, h.MunicipiosQuery, input)
}

func (h *Handlers) Export(ctx context.Context, input queries.ExportInput) (string, error) {
	return query(ctx, h.ExportQuery, input)
}

func (h *Handlers) ReportTable(ctx context.Context, input queries.ReportTableInput) (queries.ReportTableResult, error) {
	return query(ctx, h.ReportTableQuery, input)
}

func (h *Handlers) Metrics(ctx context.Context, input queries.MetricsInput) (queries.MetricsResult, error) {
	return query(ctx, h.MetricsQuery, input)
}

func (h *Handlers) Layout(ctx context.Context, viewer dashboard.ViewerContext) (map[string]any, error) {
	return query(ctx, h.LayoutQuery, viewer)
}
