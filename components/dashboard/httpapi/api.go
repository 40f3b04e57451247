package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
	"github.com/ganaderiabi/go-admin-dashboard/components/dashboard/commands"
	"github.com/ganaderiabi/go-admin-dashboard/components/dashboard/queries"
)

// HTTP exposes an Executor through net/http handlers.
type HTTP struct {
	Exec Executor
}

// Routes mounts every endpoint on mux under prefix (for example
// "/admin/dashboard").
func (h *HTTP) Routes(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("POST "+prefix+"/widgets", h.HandleAssignWidget)
	mux.HandleFunc("DELETE "+prefix+"/widgets/{id}", h.HandleRemoveWidget)
	mux.HandleFunc("POST "+prefix+"/widgets/refresh", h.HandleRefreshWidget)
	mux.HandleFunc("POST "+prefix+"/actions/bulk", h.HandleBulkAction)
	mux.HandleFunc("POST "+prefix+"/actions/refresh", h.HandleRefreshDashboard)
	mux.HandleFunc("POST "+prefix+"/recommendations/{type}/{mode}", h.HandleRecommendation)
	mux.HandleFunc("POST "+prefix+"/reports/{id}/regenerate", h.HandleRegenerate)
	mux.HandleFunc("GET "+prefix+"/reports/{id}/preview", h.HandlePreview)
	mux.HandleFunc("GET "+prefix+"/reports/{id}/analysis", h.HandleAnalysis)
	mux.HandleFunc("GET "+prefix+"/reports/{id}/download", h.HandleDownload)
	mux.HandleFunc("GET "+prefix+"/reports", h.HandleReportTable)
	mux.HandleFunc("GET "+prefix+"/municipios", h.HandleMunicipios)
	mux.HandleFunc("GET "+prefix+"/actions/export", h.HandleExport)
	mux.HandleFunc("GET "+prefix+"/metrics", h.HandleMetrics)
	mux.HandleFunc("GET "+prefix+"/layout", h.HandleLayout)
	mux.HandleFunc("DELETE "+prefix+"/notifications/{id}", h.HandleDismissNotification)
}

func (h *HTTP) HandleAssignWidget(w http.ResponseWriter, r *http.Request) {
	var payload dashboard.AddWidgetRequest
	if !decode(w, r, &payload) {
		return
	}
	if err := h.Exec.Assign(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *HTTP) HandleRemoveWidget(w http.ResponseWriter, r *http.Request) {
	input := commands.RemoveWidgetInput{WidgetID: r.PathValue("id")}
	if err := h.Exec.Remove(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTP) HandleRefreshWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshWidgetInput
	if !decode(w, r, &payload) {
		return
	}
	if err := h.Exec.Refresh(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *HTTP) HandleBulkAction(w http.ResponseWriter, r *http.Request) {
	var payload dashboard.BulkActionRequest
	if !decode(w, r, &payload) {
		return
	}
	if err := h.Exec.BulkAction(withCookies(r), payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *HTTP) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirmed"))
	input := commands.RegenerateReportInput{ReportID: r.PathValue("id"), Confirmed: confirmed}
	if err := h.Exec.Regenerate(withCookies(r), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *HTTP) HandleRefreshDashboard(w http.ResponseWriter, r *http.Request) {
	if err := h.Exec.RefreshDashboard(withCookies(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// HandleRecommendation serves /recommendations/{type}/{mode} where mode is
// "apply" or "schedule".
func (h *HTTP) HandleRecommendation(w http.ResponseWriter, r *http.Request) {
	payload, ok := RecommendationInput(r.PathValue("type"), r.PathValue("mode"))
	if !ok {
		http.Error(w, "unknown recommendation mode", http.StatusNotFound)
		return
	}
	if err := h.Exec.Recommendation(withCookies(r), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *HTTP) HandleDismissNotification(w http.ResponseWriter, r *http.Request) {
	input := commands.DismissNotificationInput{ID: r.PathValue("id")}
	if err := h.Exec.DismissNotification(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePreview writes preview markup. Load failures still answer 200 with
// the inline error placeholder plus an X-Preview-Error header.
func (h *HTTP) HandlePreview(w http.ResponseWriter, r *http.Request) {
	result, err := h.Exec.Preview(withCookies(r), queries.ReportPreviewInput{ReportID: r.PathValue("id")})
	if err != nil {
		writeError(w, err)
		return
	}
	if result.Err != nil {
		w.Header().Set("X-Preview-Error", result.Err.Error())
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result.Markup))
}

func (h *HTTP) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.Exec.Analysis(withCookies(r), queries.ReportPreviewInput{ReportID: r.PathValue("id")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (h *HTTP) HandleDownload(w http.ResponseWriter, r *http.Request) {
	file, err := h.Exec.Download(withCookies(r), queries.ReportPreviewInput{ReportID: r.PathValue("id")})
	if err != nil {
		writeError(w, err)
		return
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Body)
}

func (h *HTTP) HandleReportTable(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.Exec.ReportTable(r.Context(), queries.ReportTableInput{Search: q.Get("q"), SortBy: q.Get("sort")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TablePayload(result))
}

func (h *HTTP) HandleMunicipios(w http.ResponseWriter, r *http.Request) {
	options, err := h.Exec.Municipios(withCookies(r), queries.MunicipiosInput{Departamento: r.URL.Query().Get("departamento")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, options)
}

func (h *HTTP) HandleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target, err := h.Exec.Export(r.Context(), queries.ExportInput{CurrentURL: q.Get("from"), Format: q.Get("format")})
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *HTTP) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	result, err := h.Exec.Metrics(r.Context(), queries.MetricsInput{Locale: r.URL.Query().Get("locale")})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleLayout answers the area/widget payload for ?view= and ?locale=.
func (h *HTTP) HandleLayout(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	viewer := dashboard.ViewerContext{Route: params.Get("view"), Locale: params.Get("locale")}
	payload, err := h.Exec.Layout(r.Context(), viewer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// RecommendationInput maps the "apply" and "schedule" route modes to a command
// input; any other mode is rejected.
func RecommendationInput(recType, mode string) (commands.RecommendationInput, bool) {
	switch mode {
	case "apply":
		return commands.RecommendationInput{Type: recType}, true
	case "schedule":
		return commands.RecommendationInput{Type: recType, Schedule: true}, true
	}
	return commands.RecommendationInput{}, false
}

// TablePayload flattens a report table result to its visible rows.
func TablePayload(result queries.ReportTableResult) map[string]any {
	rows := [][]string{}
	var columns []string
	if result.Table != nil {
		columns = result.Table.Columns
		for _, row := range result.Table.VisibleRows() {
			rows = append(rows, row.Cells)
		}
	}
	return map[string]any{"columns": columns, "rows": rows, "usage": result.Usage}
}

// withCookies forwards the viewer's admin cookies and the page's stream id.
func withCookies(r *http.Request) context.Context {
	ctx := dashboard.WithSessionCookies(r.Context(), r.Cookies())
	return dashboard.WithStream(ctx, r.Header.Get(dashboard.StreamHeader))
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	status, body := ErrorStatus(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
