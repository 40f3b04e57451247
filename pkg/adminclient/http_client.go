package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
)

// Admin endpoint paths, relative to Config.BaseURL.
const (
	PathMetrics       = "/admin/analytics/dashboarddata/metricas-api/"
	PathDashboardData = "/admin/analytics/dashboarddatamodel/api/dashboard-data/"
	PathReportData    = "/admin/analytics/reportedatamodel/api/report-data/%s"
	PathRegenerate    = "/admin/analytics/reportedata/%s/regenerar/"
	PathDownload      = "/admin/analytics/reportedatamodel/%s/download/"
	PathMunicipios    = "/api/municipios/"
)

// ErrRemoteStatus wraps non-2xx answers from the admin backend.
var ErrRemoteStatus = errors.New("adminclient: remote error")

// Config configures the admin HTTP client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	// SessionID and CSRFToken seed a service session used when a request
	// carries no viewer cookies.
	SessionID string
	CSRFToken string
	Timeout   time.Duration
	Logger    logrus.FieldLogger
}

// HTTPClient talks to the Django admin JSON endpoints. It is shared by every
// viewer, so it keeps no cookie jar: each request carries either the viewer's
// cookies from the context or the service session, never both.
type HTTPClient struct {
	base    *url.URL
	client  *http.Client
	service []*http.Cookie
	csrf    string
	log     logrus.FieldLogger
}

// NewHTTPClient builds a client. A jar on cfg.HTTPClient is dropped so
// Set-Cookie answers for one viewer never reach another.
func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("adminclient: base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("adminclient: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("adminclient: base url %q needs scheme and host", cfg.BaseURL)
	}
	var httpClient http.Client
	if cfg.HTTPClient != nil {
		httpClient = *cfg.HTTPClient
	} else {
		httpClient.Timeout = cfg.Timeout
		if httpClient.Timeout <= 0 {
			httpClient.Timeout = 10 * time.Second
		}
	}
	httpClient.Jar = nil

	var service []*http.Cookie
	if cfg.SessionID != "" {
		service = append(service, &http.Cookie{Name: "sessionid", Value: cfg.SessionID})
	}
	if cfg.CSRFToken != "" {
		service = append(service, &http.Cookie{Name: "csrftoken", Value: cfg.CSRFToken})
	}
	logger := cfg.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &HTTPClient{base: base, client: &httpClient, service: service, csrf: cfg.CSRFToken, log: logger}, nil
}

// FetchSummary implements dashboard.MetricsSource.
func (c *HTTPClient) FetchSummary(ctx context.Context) (dashboard.MetricsSummary, error) {
	var out dashboard.MetricsSummary
	err := c.getJSON(ctx, PathMetrics, &out)
	return out, err
}

// FetchDashboardData implements dashboard.MetricsSource.
func (c *HTTPClient) FetchDashboardData(ctx context.Context) (dashboard.DashboardData, error) {
	var out dashboard.DashboardData
	err := c.getJSON(ctx, PathDashboardData, &out)
	return out, err
}

// FetchCount implements dashboard.CounterSource. Relative endpoints resolve
// against the base URL.
func (c *HTTPClient) FetchCount(ctx context.Context, endpoint string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// FetchReport implements dashboard.ReportSource.
func (c *HTTPClient) FetchReport(ctx context.Context, id string) (dashboard.ReportPreview, error) {
	var out reportResponse
	if err := c.getJSON(ctx, fmt.Sprintf(PathReportData, url.PathEscape(id)), &out); err != nil {
		return dashboard.ReportPreview{}, err
	}
	return out.toPreview(id), nil
}

// Municipios implements dashboard.MunicipioSource.
func (c *HTTPClient) Municipios(ctx context.Context, departamento string) ([]dashboard.Municipio, error) {
	var out struct {
		Municipios []dashboard.Municipio `json:"municipios"`
	}
	path := PathMunicipios + "?" + url.Values{"departamento": {departamento}}.Encode()
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Municipios, nil
}

// RegenerateReport implements dashboard.AdminActions.
func (c *HTTPClient) RegenerateReport(ctx context.Context, id string) (dashboard.RegenerateResult, error) {
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf(PathRegenerate, url.PathEscape(id)), bytes.NewReader([]byte("{}")))
	if err != nil {
		return dashboard.RegenerateResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRFToken", c.csrfToken(ctx))
	var out dashboard.RegenerateResult
	if err := c.do(req, &out); err != nil {
		return dashboard.RegenerateResult{}, err
	}
	return out, nil
}

// DownloadReport implements dashboard.AdminActions. The filename is taken
// from Content-Disposition when the admin sends one.
func (c *HTTPClient) DownloadReport(ctx context.Context, id string) (dashboard.ReportDownload, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf(PathDownload, url.PathEscape(id)), nil)
	if err != nil {
		return dashboard.ReportDownload{}, err
	}
	resp, err := c.send(req)
	if err != nil {
		return dashboard.ReportDownload{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return dashboard.ReportDownload{}, fmt.Errorf("adminclient: read download: %w", err)
	}
	file := dashboard.ReportDownload{ContentType: resp.Header.Get("Content-Type"), Body: body}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		file.Filename = params["filename"]
	}
	return file, nil
}

// SubmitBulkAction implements dashboard.AdminActions with the Django
// changelist form encoding.
func (c *HTTPClient) SubmitBulkAction(ctx context.Context, action dashboard.BulkActionRequest) error {
	form := url.Values{}
	form.Set("action", action.Action)
	for _, id := range action.SelectedIDs {
		form.Add("_selected_action", id)
	}
	token := c.csrfToken(ctx)
	if token != "" {
		form.Set("csrfmiddlewaretoken", token)
	}
	changelist, err := c.changelistURL(action.ChangelistURL)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, changelist, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("X-CSRFToken", token)
	}
	return c.do(req, nil)
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, target any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, target)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("adminclient: build request: %w", err)
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	for _, cookie := range c.credentials(ctx) {
		req.AddCookie(cookie)
	}
	return req, nil
}

// credentials returns the viewer's cookies when the context has any, the
// service session otherwise.
func (c *HTTPClient) credentials(ctx context.Context) []*http.Cookie {
	viewer := dashboard.SessionCookies(ctx)
	if len(viewer) == 0 {
		return c.service
	}
	out := make([]*http.Cookie, 0, len(viewer))
	for _, cookie := range viewer {
		if cookie != nil {
			out = append(out, cookie)
		}
	}
	return out
}

// changelistURL resolves a changelist path and refuses anything that would
// leave the admin host.
func (c *HTTPClient) changelistURL(raw string) (string, error) {
	rel, err := dashboard.AdminChangelistPath(raw)
	if err != nil {
		return "", err
	}
	target, err := c.resolve(rel)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != c.base.Scheme || u.Host != c.base.Host {
		return "", fmt.Errorf("%w: %q", dashboard.ErrForeignChangelist, raw)
	}
	return target, nil
}

func (c *HTTPClient) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("adminclient: parse path %q: %w", path, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

func (c *HTTPClient) send(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("adminclient: http request: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(io.LimitReader(resp.Body, 4096))
		c.log.WithFields(logrus.Fields{
			"method": req.Method,
			"url":    req.URL.Path,
			"status": resp.StatusCode,
		}).Warn("admin request failed")
		return nil, fmt.Errorf("%w %d: %s", ErrRemoteStatus, resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	return resp, nil
}

func (c *HTTPClient) do(req *http.Request, target any) error {
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("adminclient: decode response: %w", err)
	}
	return nil
}

// csrfToken follows credentials: a viewer request only ever sends the
// viewer's own csrftoken.
func (c *HTTPClient) csrfToken(ctx context.Context) string {
	if len(dashboard.SessionCookies(ctx)) > 0 {
		return dashboard.CSRFToken(ctx)
	}
	return c.csrf
}

type reportResponse struct {
	ID              json.Number `json:"id"`
	Tipo            string      `json:"tipo"`
	Formato         string      `json:"formato"`
	FechaGeneracion string      `json:"fecha_generacion"`
	Tamano          string      `json:"tamaño"`
	DatosPreview    string      `json:"datos_preview"`
	Error           string      `json:"error"`
}

func (r reportResponse) toPreview(id string) dashboard.ReportPreview {
	preview := dashboard.ReportPreview{
		ID:          r.ID.String(),
		Type:        r.Tipo,
		Format:      dashboard.ParseReportFormat(r.Formato),
		GeneratedAt: parseGeneratedAt(r.FechaGeneracion),
		SizeLabel:   r.Tamano,
		DataPreview: r.DatosPreview,
		Error:       r.Error,
	}
	if preview.ID == "" {
		preview.ID = id
	}
	return preview
}

func parseGeneratedAt(value string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
