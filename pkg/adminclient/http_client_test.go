package adminclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewHTTPClient(Config{BaseURL: server.URL, CSRFToken: "service-token"})
	require.NoError(t, err)
	return client
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPClient(Config{})
	assert.Error(t, err)
}

func TestFetchSummaryAndDashboardData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathMetrics:
			_, _ = w.Write([]byte(`{"total_marcas_activas":15420,"marcas_procesadas_hoy":87,"logos_generados_hoy":34,"eficiencia_sistema":92.5}`))
		case PathDashboardData:
			_, _ = w.Write([]byte(`{"marcas_registradas_mes_actual":1240,"tiempo_promedio_procesamiento":6,"porcentaje_aprobacion":80,"ingresos_mes_actual":1000,"alertas":["x"]}`))
		default:
			http.NotFound(w, r)
		}
	})

	summary, err := client.FetchSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15420.0, summary.ActiveBrandsTotal)
	assert.Equal(t, 92.5, summary.SystemEfficiencyPercent)

	data, err := client.FetchDashboardData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6.0, data.AvgProcessingTime)
	assert.Equal(t, []string{"x"}, data.Alerts)
}

func TestFetchReportMapsAdminFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/analytics/reportedatamodel/api/report-data/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":7,"tipo":"Marcas","formato":"pdf","fecha_generacion":"2024-10-16T08:30:00Z","tamaño":"1.2 MB","datos_preview":"a,b"}`))
	})

	report, err := client.FetchReport(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "7", report.ID)
	assert.Equal(t, dashboard.FormatPDF, report.Format)
	assert.Equal(t, "16/10/2024", report.DateLabel())
	assert.Equal(t, "1.2 MB", report.SizeLabel)
	assert.Equal(t, "a,b", report.DataPreview)
}

func TestRemoteErrorsWrapSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := client.FetchCount(context.Background(), "/api/marcas/pendientes/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRemoteStatus))
	assert.Contains(t, err.Error(), "500")
}

func TestFetchCountResolvesRelativeEndpoint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/marcas/pendientes/", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]int{"count": 12})
	})
	count, err := client.FetchCount(context.Background(), "/api/marcas/pendientes/")
	require.NoError(t, err)
	assert.Equal(t, 12, count)
}

func TestSubmitBulkActionPostsChangelistForm(t *testing.T) {
	var posted int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Django redirects back to the changelist after the action.
			w.WriteHeader(http.StatusOK)
			return
		}
		posted++
		assert.Equal(t, "/admin/marcas/marcaganadobovino/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "aprobar_marcas", r.PostForm.Get("action"))
		assert.Equal(t, []string{"1", "2"}, r.PostForm["_selected_action"])
		assert.Equal(t, "viewer-token", r.PostForm.Get("csrfmiddlewaretoken"))
		cookie, err := r.Cookie("sessionid")
		require.NoError(t, err)
		assert.Equal(t, "abc", cookie.Value)
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
	})

	ctx := dashboard.WithSessionCookies(context.Background(), []*http.Cookie{
		{Name: "sessionid", Value: "abc"},
		{Name: "csrftoken", Value: "viewer-token"},
	})
	err := client.SubmitBulkAction(ctx, dashboard.BulkActionRequest{
		ChangelistURL: "/admin/marcas/marcaganadobovino/",
		Action:        "aprobar_marcas",
		SelectedIDs:   []string{"1", "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, posted)
}

func TestRegenerateSendsCSRFHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/analytics/reportedata/3/regenerar/", r.URL.Path)
		assert.Equal(t, "service-token", r.Header.Get("X-CSRFToken"))
		_, _ = w.Write([]byte(`{"success":false,"error":"en cola"}`))
	})
	result, err := client.RegenerateReport(context.Background(), "3")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "en cola", result.Error)
}

func TestDownloadReportReadsFilename(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/analytics/reportedatamodel/9/download/", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="marcas.pdf"`)
		_, _ = w.Write([]byte("%PDF"))
	})
	file, err := client.DownloadReport(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, "marcas.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, []byte("%PDF"), file.Body)
}

func TestMunicipiosQueryParameter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "05", r.URL.Query().Get("departamento"))
		_, _ = w.Write([]byte(`{"municipios":[{"codigo":"05001","nombre":"Medellín"}]}`))
	})
	municipios, err := client.Municipios(context.Background(), "05")
	require.NoError(t, err)
	require.Len(t, municipios, 1)
	assert.Equal(t, "Medellín", municipios[0].Name)
}

type cookieRecorder struct {
	mu      sync.Mutex
	headers []string
}

func (r *cookieRecorder) handler(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.headers = append(r.headers, req.Header.Get("Cookie"))
	r.mu.Unlock()
	if c, err := req.Cookie("sessionid"); err == nil && c.Value == "alice" {
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "alice-rotated", Path: "/"})
	}
	_, _ = w.Write([]byte(`{"count":1}`))
}

func (r *cookieRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.headers...)
}

func TestSessionCookiesStayWithTheirViewer(t *testing.T) {
	rec := &cookieRecorder{}
	server := httptest.NewServer(http.HandlerFunc(rec.handler))
	t.Cleanup(server.Close)
	client, err := NewHTTPClient(Config{BaseURL: server.URL, SessionID: "service", CSRFToken: "service-token"})
	require.NoError(t, err)

	alice := dashboard.WithSessionCookies(context.Background(), []*http.Cookie{{Name: "sessionid", Value: "alice"}})
	bob := dashboard.WithSessionCookies(context.Background(), []*http.Cookie{{Name: "sessionid", Value: "bob"}})

	for _, ctx := range []context.Context{alice, bob, context.Background()} {
		_, err := client.FetchCount(ctx, "/api/marcas/pendientes/")
		require.NoError(t, err)
	}
	assert.Equal(t, []string{
		"sessionid=alice",
		"sessionid=bob",
		"sessionid=service; csrftoken=service-token",
	}, rec.all())
}

func TestNewHTTPClientDropsCallerJar(t *testing.T) {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	shared := &http.Client{Jar: jar}

	client, err := NewHTTPClient(Config{BaseURL: "http://admin.test", HTTPClient: shared})
	require.NoError(t, err)
	assert.Nil(t, client.client.Jar)
	assert.NotNil(t, shared.Jar)

	_, err = NewHTTPClient(Config{BaseURL: "admin.test"})
	assert.Error(t, err)
}

func TestViewerRequestNeverBorrowsServiceCSRF(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("X-CSRFToken"))
		assert.Equal(t, "sessionid=viewer", r.Header.Get("Cookie"))
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	ctx := dashboard.WithSessionCookies(context.Background(), []*http.Cookie{{Name: "sessionid", Value: "viewer"}})
	_, err := client.RegenerateReport(ctx, "3")
	require.NoError(t, err)
}

func TestSubmitBulkActionStaysOnAdminHost(t *testing.T) {
	var foreignHits int
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignHits++
	}))
	t.Cleanup(foreign.Close)

	var adminPaths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		adminPaths = append(adminPaths, r.URL.Path)
	})
	ctx := dashboard.WithSessionCookies(context.Background(), []*http.Cookie{
		{Name: "sessionid", Value: "victim"},
		{Name: "csrftoken", Value: "victimcsrf"},
	})

	for _, raw := range []string{
		foreign.URL + "/steal",
		"//" + strings.TrimPrefix(foreign.URL, "http://") + "/admin/marcas/",
		"/admin/../steal",
		"/static/",
	} {
		err := client.SubmitBulkAction(ctx, dashboard.BulkActionRequest{ChangelistURL: raw, Action: "aprobar_marcas", SelectedIDs: []string{"1"}})
		assert.ErrorIs(t, err, dashboard.ErrForeignChangelist, raw)
	}
	assert.Zero(t, foreignHits)
	assert.Empty(t, adminPaths)

	err := client.SubmitBulkAction(ctx, dashboard.BulkActionRequest{ChangelistURL: "/admin/marcas/", Action: "aprobar_marcas", SelectedIDs: []string{"1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"/admin/marcas/"}, adminPaths)
}
