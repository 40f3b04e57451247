package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
)

type previewService interface {
	Preview(ctx context.Context, id string) (string, error)
	ReportTable() *dashboard.Table
	UsagePatterns() []dashboard.FormatUsage
}

type reportDispatcher interface {
	Analyze(ctx context.Context, id string) (dashboard.ReportAnalysis, error)
	Download(ctx context.Context, id string) (dashboard.ReportDownload, error)
	Municipios(ctx context.Context, departamento string) ([]dashboard.SelectOption, error)
	ExportURL(currentURL, format string) (string, error)
}

// ReportPreviewInput identifies a report.
type ReportPreviewInput struct {
	ReportID string
}

// ReportPreviewResult is preview markup plus the load error, if any. Markup
// is always set: failures carry the inline error placeholder.
type ReportPreviewResult struct {
	ReportID string
	Markup   string
	Err      error
}

// ReportPreviewQuery returns cached preview markup.
type ReportPreviewQuery struct {
	previews previewService
}

// NewReportPreviewQuery builds the query.
func NewReportPreviewQuery(previews previewService) *ReportPreviewQuery {
	return &ReportPreviewQuery{previews: previews}
}

var _ gocommand.Querier[ReportPreviewInput, ReportPreviewResult] = (*ReportPreviewQuery)(nil)

// Query loads the preview. Only a missing id is returned as an error; load
// failures travel in the result next to the placeholder markup.
func (q *ReportPreviewQuery) Query(ctx context.Context, input ReportPreviewInput) (ReportPreviewResult, error) {
	markup, err := q.previews.Preview(ctx, input.ReportID)
	if errors.Is(err, dashboard.ErrReportIDRequired) {
		return ReportPreviewResult{}, err
	}
	return ReportPreviewResult{ReportID: input.ReportID, Markup: markup, Err: err}, nil
}

// ReportAnalysisQuery scores a report.
type ReportAnalysisQuery struct {
	dispatcher reportDispatcher
}

// NewReportAnalysisQuery builds the query.
func NewReportAnalysisQuery(dispatcher reportDispatcher) *ReportAnalysisQuery {
	return &ReportAnalysisQuery{dispatcher: dispatcher}
}

var _ gocommand.Querier[ReportPreviewInput, dashboard.ReportAnalysis] = (*ReportAnalysisQuery)(nil)

// Query runs the analysis.
func (q *ReportAnalysisQuery) Query(ctx context.Context, input ReportPreviewInput) (dashboard.ReportAnalysis, error) {
	return q.dispatcher.Analyze(ctx, input.ReportID)
}

// ReportDownloadQuery fetches a report file.
type ReportDownloadQuery struct {
	dispatcher reportDispatcher
}

// NewReportDownloadQuery builds the query.
func NewReportDownloadQuery(dispatcher reportDispatcher) *ReportDownloadQuery {
	return &ReportDownloadQuery{dispatcher: dispatcher}
}

var _ gocommand.Querier[ReportPreviewInput, dashboard.ReportDownload] = (*ReportDownloadQuery)(nil)

// Query downloads the file.
func (q *ReportDownloadQuery) Query(ctx context.Context, input ReportPreviewInput) (dashboard.ReportDownload, error) {
	return q.dispatcher.Download(ctx, input.ReportID)
}

// MunicipiosInput is the selected departamento.
type MunicipiosInput struct {
	Departamento string
}

// MunicipiosQuery loads the cascading select options.
type MunicipiosQuery struct {
	dispatcher reportDispatcher
}

// NewMunicipiosQuery builds the query.
func NewMunicipiosQuery(dispatcher reportDispatcher) *MunicipiosQuery {
	return &MunicipiosQuery{dispatcher: dispatcher}
}

var _ gocommand.Querier[MunicipiosInput, []dashboard.SelectOption] = (*MunicipiosQuery)(nil)

// Query lists options, placeholder first.
func (q *MunicipiosQuery) Query(ctx context.Context, input MunicipiosInput) ([]dashboard.SelectOption, error) {
	return q.dispatcher.Municipios(ctx, input.Departamento)
}

// ExportInput is the current changelist URL and the requested format.
type ExportInput struct {
	CurrentURL string
	Format     string
}

// ExportQuery builds the export URL.
type ExportQuery struct {
	dispatcher reportDispatcher
}

// NewExportQuery builds the query.
func NewExportQuery(dispatcher reportDispatcher) *ExportQuery {
	return &ExportQuery{dispatcher: dispatcher}
}

var _ gocommand.Querier[ExportInput, string] = (*ExportQuery)(nil)

// Query returns the URL to navigate to.
func (q *ExportQuery) Query(_ context.Context, input ExportInput) (string, error) {
	return q.dispatcher.ExportURL(input.CurrentURL, input.Format)
}

// ReportTableInput filters and sorts the cached report table.
type ReportTableInput struct {
	Search string
	SortBy string
}

// ReportTableResult is the table plus format usage ranking.
type ReportTableResult struct {
	Table *dashboard.Table
	Usage []dashboard.FormatUsage
}

// ReportTableQuery lists cached previews as a table.
type ReportTableQuery struct {
	previews previewService
}

// NewReportTableQuery builds the query.
func NewReportTableQuery(previews previewService) *ReportTableQuery {
	return &ReportTableQuery{previews: previews}
}

var _ gocommand.Querier[ReportTableInput, ReportTableResult] = (*ReportTableQuery)(nil)

// Query builds, sorts and filters the table.
func (q *ReportTableQuery) Query(_ context.Context, input ReportTableInput) (ReportTableResult, error) {
	table := q.previews.ReportTable()
	if input.SortBy != "" {
		table.SortBy(table.ColumnIndex(input.SortBy))
	}
	table.Search(input.Search)
	return ReportTableResult{Table: table, Usage: q.previews.UsagePatterns()}, nil
}
