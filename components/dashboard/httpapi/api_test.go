package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
	"github.com/ganaderiabi/go-admin-dashboard/components/dashboard/commands"
	"github.com/ganaderiabi/go-admin-dashboard/components/dashboard/queries"
)

type stubCommander[T any] struct {
	last  T
	calls int
	ctx   context.Context
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.ctx = ctx
	s.calls++
	return s.err
}

type stubQuerier[T, R any] struct {
	last   T
	result R
	err    error
}

func (s *stubQuerier[T, R]) Query(_ context.Context, msg T) (R, error) {
	s.last = msg
	return s.result, s.err
}

func serve(h *Handlers, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	(&HTTP{Exec: h}).Routes(mux, "/admin/dashboard")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	buf, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(buf)
}

func TestHandleAssignWidget(t *testing.T) {
	assign := &stubCommander[dashboard.AddWidgetRequest]{}
	payload := dashboard.AddWidgetRequest{DefinitionID: "ganaderia.widget.kpis", AreaCode: "ganaderia.dashboard.main"}
	req := httptest.NewRequest(http.MethodPost, "/admin/dashboard/widgets", jsonBody(t, payload))
	rec := serve(&Handlers{AssignCmd: assign}, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if assign.calls != 1 || assign.last.AreaCode != "ganaderia.dashboard.main" {
		t.Fatalf("expected assign to execute with payload, got %+v", assign.last)
	}
}

func TestHandleAssignWidgetRejectsBadJSON(t *testing.T) {
	assign := &stubCommander[dashboard.AddWidgetRequest]{}
	req := httptest.NewRequest(http.MethodPost, "/admin/dashboard/widgets", bytes.NewReader([]byte("{")))
	rec := serve(&Handlers{AssignCmd: assign}, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if assign.calls != 0 {
		t.Fatalf("command must not run on invalid payload")
	}
}

func TestHandleRemoveWidget(t *testing.T) {
	remove := &stubCommander[commands.RemoveWidgetInput]{}
	req := httptest.NewRequest(http.MethodDelete, "/admin/dashboard/widgets/w1", nil)
	rec := serve(&Handlers{RemoveCmd: remove}, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if remove.last.WidgetID != "w1" {
		t.Fatalf("expected widget id propagation, got %q", remove.last.WidgetID)
	}
}

func TestHandleBulkActionNeedsConfirmation(t *testing.T) {
	bulk := &stubCommander[dashboard.BulkActionRequest]{
		err: &dashboard.ConfirmationError{Action: "delete_selected", Prompt: "¿Eliminar 2 elementos?"},
	}
	payload := dashboard.BulkActionRequest{ChangelistURL: "/admin/marcas/", Action: "delete_selected", SelectedIDs: []string{"1", "2"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/dashboard/actions/bulk", jsonBody(t, payload))
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: "abc"})
	req.Header.Set(dashboard.StreamHeader, "tab-7")
	rec := serve(&Handlers{BulkActionCmd: bulk}, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["action"] != "delete_selected" || body["confirm"] != "¿Eliminar 2 elementos?" {
		t.Fatalf("unexpected body %+v", body)
	}
	cookies := dashboard.SessionCookies(bulk.ctx)
	if len(cookies) != 1 || cookies[0].Value != "abc" {
		t.Fatalf("expected session cookie forwarded, got %+v", cookies)
	}
	if got := dashboard.StreamFrom(bulk.ctx); got != "tab-7" {
		t.Fatalf("expected stream tab-7, got %q", got)
	}
}

func TestHandleRegenerateRejected(t *testing.T) {
	regen := &stubCommander[commands.RegenerateReportInput]{
		err: fmt.Errorf("%w: %s", dashboard.ErrRegenerateRejected, "en cola"),
	}
	req := httptest.NewRequest(http.MethodPost, "/admin/dashboard/reports/7/regenerate?confirmed=true", nil)
	rec := serve(&Handlers{RegenerateCmd: regen}, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if regen.last.ReportID != "7" || !regen.last.Confirmed {
		t.Fatalf("unexpected input %+v", regen.last)
	}
}

func TestHandlePreviewKeepsPlaceholderOnFailure(t *testing.T) {
	preview := &stubQuerier[queries.ReportPreviewInput, queries.ReportPreviewResult]{
		result: queries.ReportPreviewResult{ReportID: "3", Markup: "<p>Error al cargar</p>", Err: errors.New("timeout")},
	}
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard/reports/3/preview", nil)
	rec := serve(&Handlers{PreviewQuery: preview}, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Preview-Error") != "timeout" {
		t.Fatalf("expected preview error header")
	}
	if rec.Body.String() != "<p>Error al cargar</p>" {
		t.Fatalf("unexpected markup %q", rec.Body.String())
	}
}

func TestHandleDownloadSetsAttachment(t *testing.T) {
	download := &stubQuerier[queries.ReportPreviewInput, dashboard.ReportDownload]{
		result: dashboard.ReportDownload{Filename: "reporte_9.xlsx", Body: []byte("xlsx")},
	}
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard/reports/9/download", nil)
	rec := serve(&Handlers{DownloadQuery: download}, req)
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="reporte_9.xlsx"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if rec.Header().Get("Content-Type") != "application/octet-stream" {
		t.Fatalf("expected octet-stream default")
	}
}

func TestHandleExportRedirects(t *testing.T) {
	export := &stubQuerier[queries.ExportInput, string]{result: "/admin/marcas/?export=csv"}
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard/actions/export?from=/admin/marcas/&format=csv", nil)
	rec := serve(&Handlers{ExportQuery: export}, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if rec.Header().Get("Location") != "/admin/marcas/?export=csv" {
		t.Fatalf("unexpected location %q", rec.Header().Get("Location"))
	}
	if export.last.CurrentURL != "/admin/marcas/" || export.last.Format != "csv" {
		t.Fatalf("unexpected input %+v", export.last)
	}
}

func TestHandleReportTableListsVisibleRows(t *testing.T) {
	table := dashboard.NewTable("ID", "Tipo")
	table.AddRow("1", "marcas")
	table.AddRow("2", "inventario")
	table.Search("marcas")
	reports := &stubQuerier[queries.ReportTableInput, queries.ReportTableResult]{
		result: queries.ReportTableResult{Table: table},
	}
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard/reports?q=marcas&sort=ID", nil)
	rec := serve(&Handlers{ReportTableQuery: reports}, req)
	var body struct {
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Rows) != 1 || body.Rows[0][1] != "marcas" {
		t.Fatalf("unexpected rows %+v", body.Rows)
	}
	if reports.last.Search != "marcas" || reports.last.SortBy != "ID" {
		t.Fatalf("unexpected input %+v", reports.last)
	}
}

func TestMissingCommandAnswersNotImplemented(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/admin/dashboard/actions/refresh", nil)
	rec := serve(&Handlers{}, req)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rec.Code)
	}
}

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{dashboard.ErrNoSelection, http.StatusBadRequest},
		{dashboard.ErrReportIDRequired, http.StatusBadRequest},
		{commands.ErrWidgetIDRequired, http.StatusBadRequest},
		{fmt.Errorf("dashboard: bulk action x: %w", dashboard.ErrForeignChangelist), http.StatusBadRequest},
		{commands.ErrUnknownNotification, http.StatusNotFound},
		{&dashboard.ConfirmationError{Action: "regenerate"}, http.StatusConflict},
		{errors.New("boom"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		if got, _ := ErrorStatus(tc.err); got != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
	_, body := ErrorStatus(dashboard.ErrNoSelection)
	if body["error"] != dashboard.NoSelectionMessage {
		t.Fatalf("expected no-selection message, got %+v", body)
	}
}

func TestHandleRecommendationModes(t *testing.T) {
	rec := &stubCommander[commands.RecommendationInput]{}
	h := &Handlers{RecommendationCmd: rec}

	resp := serve(h, httptest.NewRequest(http.MethodPost, "/admin/dashboard/recommendations/optimization/schedule", nil))
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}
	if rec.last.Type != "optimization" || !rec.last.Schedule {
		t.Fatalf("unexpected input %+v", rec.last)
	}

	resp = serve(h, httptest.NewRequest(http.MethodPost, "/admin/dashboard/recommendations/optimization/later", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown mode, got %d", resp.Code)
	}
	if rec.calls != 1 {
		t.Fatalf("unknown mode must not execute, calls=%d", rec.calls)
	}
}

func TestHandleMetricsPassesLocale(t *testing.T) {
	metrics := &stubQuerier[queries.MetricsInput, queries.MetricsResult]{
		result: queries.MetricsResult{Ready: true, Metrics: dashboard.DashboardMetrics{ApprovalPercent: 91}},
	}
	resp := serve(&Handlers{MetricsQuery: metrics}, httptest.NewRequest(http.MethodGet, "/admin/dashboard/metrics?locale=es", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if metrics.last.Locale != "es" {
		t.Fatalf("expected locale propagation, got %q", metrics.last.Locale)
	}
}

func TestHandleLayoutBuildsViewer(t *testing.T) {
	layout := &stubQuerier[dashboard.ViewerContext, map[string]any]{result: map[string]any{"areas": []any{}}}
	resp := serve(&Handlers{LayoutQuery: layout}, httptest.NewRequest(http.MethodGet, "/admin/dashboard/layout?view=/admin/reportes/&locale=es-co", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if layout.last.Route != "/admin/reportes/" || layout.last.Locale != "es-co" {
		t.Fatalf("unexpected viewer %+v", layout.last)
	}
}
