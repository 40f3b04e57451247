package dashboard

import (
	"embed"
	"fmt"
	"html"
	"io"
	"io/fs"

	template "github.com/goliatone/go-template"
)

// Renderer describes the template renderer contract (go-template).
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

//go:embed templates/*.html
var fragmentFS embed.FS

// fragmentNames are the templates FragmentRenderer and Views render by name.
var fragmentNames = []string{
	"alerts",
	"dashboard",
	"kpi_cards",
	"notification",
	"preview_error",
	"recommendations",
	"report_analysis",
	"report_preview",
	"report_table",
	"select_options",
}

// NewTemplateRenderer builds a go-template renderer over the embedded
// fragments, failing if any fragment file is missing.
func NewTemplateRenderer() (Renderer, error) {
	for _, name := range fragmentNames {
		if _, err := fs.Stat(fragmentFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("dashboard: fragment %s: %w", name, err)
		}
	}
	return template.NewRenderer(
		template.WithFS(fragmentFS),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
}

// PreviewLoadingText is shown while a preview is fetched.
const PreviewLoadingText = "Cargando vista previa..."

// FragmentRenderer turns widget payloads into HTML fragments the browser
// swaps into place by element id.
type FragmentRenderer struct {
	renderer Renderer
}

// NewFragmentRenderer wraps a template renderer.
func NewFragmentRenderer(renderer Renderer) *FragmentRenderer {
	return &FragmentRenderer{renderer: renderer}
}

func (f *FragmentRenderer) render(name string, data map[string]any) (string, error) {
	if f == nil || f.renderer == nil {
		return "", fmt.Errorf("dashboard: renderer not configured for %s", name)
	}
	out, err := f.renderer.Render(name, data)
	if err != nil {
		return "", fmt.Errorf("dashboard: render %s: %w", name, err)
	}
	return out, nil
}

// KPICards renders the KPI grid.
func (f *FragmentRenderer) KPICards(patches []KPIPatch) (string, error) {
	cards := make([]map[string]any, 0, len(patches))
	for _, p := range patches {
		card := map[string]any{"id": p.ElementID, "label": p.Label, "value": p.Value}
		if p.Trend != nil {
			card["trend_text"] = p.Trend.Text
			card["trend_class"] = p.Trend.Class
		}
		cards = append(cards, card)
	}
	return f.render("kpi_cards", map[string]any{"cards": cards})
}

// Alerts renders alert cards with their "Ver"/"Dismiss" buttons.
func (f *FragmentRenderer) Alerts(alerts []Alert) (string, error) {
	items := make([]map[string]any, 0, len(alerts))
	for _, a := range alerts {
		items = append(items, map[string]any{
			"severity": string(a.Severity),
			"icon":     a.Icon,
			"title":    a.Title,
			"message":  a.Message,
			"time":     a.TimeLabel(),
		})
	}
	return f.render("alerts", map[string]any{"alerts": items})
}

// Recommendations renders recommendation cards with priority badge and benefit tags.
func (f *FragmentRenderer) Recommendations(recs []Recommendation) (string, error) {
	items := make([]map[string]any, 0, len(recs))
	for _, r := range recs {
		items = append(items, map[string]any{
			"type":           r.Type,
			"icon":           r.Icon(),
			"priority":       string(r.Priority),
			"priority_label": r.PriorityLabel(),
			"priority_color": r.BadgeColor(),
			"title":          r.Title,
			"description":    r.Description,
			"impact":         r.Impact,
			"effort":         r.Effort,
			"benefits":       r.Benefits,
		})
	}
	return f.render("recommendations", map[string]any{"recommendations": items})
}

// ReportPreview renders the preview panel for a report.
func (f *FragmentRenderer) ReportPreview(r ReportPreview) (string, error) {
	return f.render("report_preview", map[string]any{
		"id":           r.ID,
		"icon":         r.Format.Icon(),
		"type":         r.Type,
		"format":       string(r.Format),
		"date":         r.DateLabel(),
		"size":         r.SizeLabel,
		"data_preview": r.DataPreview,
	})
}

// PreviewError renders the inline error placeholder. It never fails: if the
// template cannot render, a minimal escaped fragment is returned.
func (f *FragmentRenderer) PreviewError(message string) string {
	out, err := f.render("preview_error", map[string]any{"message": message})
	if err != nil {
		return `<div class="preview-error">` + html.EscapeString(message) + `</div>`
	}
	return out
}

// Analysis renders the report analysis modal body.
func (f *FragmentRenderer) Analysis(a ReportAnalysis) (string, error) {
	return f.render("report_analysis", map[string]any{
		"id":           a.ReportID,
		"type":         a.Type,
		"format":       string(a.Format),
		"size":         a.SizeLabel,
		"completeness": a.Completeness,
		"accuracy":     a.Accuracy,
		"consistency":  a.Consistency,
		"quality":      a.Quality,
	})
}

// Notification renders a toast.
func (f *FragmentRenderer) Notification(n Notification) (string, error) {
	return f.render("notification", map[string]any{
		"id":      n.ID,
		"level":   string(n.Level),
		"color":   n.Level.Color(),
		"message": n.Message,
		"state":   string(n.State),
	})
}

// SelectOptions renders <option> elements.
func (f *FragmentRenderer) SelectOptions(options []SelectOption) (string, error) {
	items := make([]map[string]any, 0, len(options))
	for _, o := range options {
		items = append(items, map[string]any{"value": o.Value, "label": o.Label})
	}
	return f.render("select_options", map[string]any{"options": items})
}

// ReportTable renders the visible rows of a table.
func (f *FragmentRenderer) ReportTable(t *Table) (string, error) {
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.VisibleRows() {
		rows = append(rows, row.Cells)
	}
	return f.render("report_table", map[string]any{"columns": t.Columns, "rows": rows})
}
