package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPreviewService(source ReportSource) (*PreviewService, *stubRenderer) {
	renderer := &stubRenderer{}
	svc := NewPreviewService(PreviewServiceOptions{
		Source:    source,
		Fragments: NewFragmentRenderer(renderer),
		Now:       func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) },
	})
	return svc, renderer
}

func TestPreviewServiceCachesSuccessfulPreview(t *testing.T) {
	source := &stubReportSource{reports: map[string]ReportPreview{
		"5": {Type: "Inventario", Format: FormatPDF, SizeLabel: "2 MB"},
	}}
	svc, renderer := newTestPreviewService(source)

	first, err := svc.Preview(context.Background(), "5")
	require.NoError(t, err)
	second, err := svc.Preview(context.Background(), "5")
	require.NoError(t, err)

	assert.Equal(t, "<report_preview>", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, source.Calls())
	name, payload := renderer.last()
	assert.Equal(t, "report_preview", name)
	assert.NotNil(t, payload)
}

func TestPreviewServiceRendersPlaceholderOnFailure(t *testing.T) {
	source := &stubReportSource{err: errors.New("connection refused")}
	svc, _ := newTestPreviewService(source)

	markup, err := svc.Preview(context.Background(), "5")
	require.Error(t, err)
	assert.Equal(t, "<preview_error>", markup)
	assert.Equal(t, 0, svc.Cache().Len())

	_, _ = svc.Preview(context.Background(), "5")
	assert.Equal(t, 2, source.Calls())
}

func TestPreviewServicePayloadError(t *testing.T) {
	source := &stubReportSource{reports: map[string]ReportPreview{"8": {Error: "Reporte no encontrado"}}}
	svc, renderer := newTestPreviewService(source)

	_, err := svc.Preview(context.Background(), "8")
	var payloadErr *ReportPayloadError
	require.ErrorAs(t, err, &payloadErr)
	assert.Equal(t, "Reporte no encontrado", payloadErr.Message)
	_, payload := renderer.last()
	assert.Equal(t, "Error: Reporte no encontrado", payload["message"])
}

func TestPreviewServiceRequiresID(t *testing.T) {
	svc, _ := newTestPreviewService(&stubReportSource{})
	_, err := svc.Preview(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrReportIDRequired)
}

func TestPreviewServiceInvalidateReloads(t *testing.T) {
	source := &stubReportSource{reports: map[string]ReportPreview{"2": {Format: FormatCSV}}}
	svc, _ := newTestPreviewService(source)
	_, _ = svc.Preview(context.Background(), "2")
	svc.Invalidate("2")
	_, _ = svc.Preview(context.Background(), "2")
	assert.Equal(t, 2, source.Calls())
}

func TestPreviewServiceTableAndUsage(t *testing.T) {
	generated := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	source := &stubReportSource{reports: map[string]ReportPreview{
		"1": {Type: "Ventas", Format: FormatPDF, GeneratedAt: generated, SizeLabel: "1 MB"},
		"2": {Type: "Marcas", Format: FormatPDF},
		"3": {Type: "Logos", Format: FormatExcel},
	}}
	svc, _ := newTestPreviewService(source)
	for _, id := range []string{"1", "2", "3"} {
		_, err := svc.Preview(context.Background(), id)
		require.NoError(t, err)
	}

	usage := svc.UsagePatterns()
	require.Len(t, usage, 2)
	assert.Equal(t, FormatPDF, usage[0].Format)
	assert.Equal(t, 2, usage[0].Count)

	table := svc.ReportTable()
	assert.Equal(t, []string{"ID", "Tipo", "Formato", "Fecha", "Tamaño"}, table.Columns)
	table.SortBy(0)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"1", "Ventas", "PDF", "01/10/2026", "1 MB"}, table.Rows[0].Cells)
}

func TestAnalyzeReportScores(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	full := AnalyzeReport(ReportPreview{
		ID:          "4",
		Type:        "Inventario",
		Format:      FormatJSON,
		GeneratedAt: now.AddDate(0, 0, -1),
		SizeLabel:   "3 KB",
		DataPreview: "{}",
	}, now)
	assert.Equal(t, 100, full.Completeness)
	assert.Equal(t, 100, full.Accuracy)
	assert.Equal(t, 100, full.Consistency)
	assert.Equal(t, 100, full.Quality)

	sparse := AnalyzeReport(ReportPreview{ID: "5", Format: "XML"}, now)
	assert.Equal(t, 84, sparse.Completeness)
	assert.Equal(t, 85, sparse.Accuracy)
	assert.Equal(t, 90, sparse.Consistency)
	assert.Equal(t, 86, sparse.Quality)
}

func TestParseReportFormat(t *testing.T) {
	assert.Equal(t, FormatExcel, ParseReportFormat(" excel "))
	assert.True(t, FormatHTML.Known())
	assert.False(t, ReportFormat("XML").Known())
	assert.Equal(t, "📁", ReportFormat("XML").Icon())
}
