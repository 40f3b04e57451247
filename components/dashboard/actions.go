package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
)

const adminPathPrefix = "/admin/"

// DangerousActions need explicit confirmation before they run.
var DangerousActions = []string{"rechazar_marcas", "delete_selected"}

// IsDangerousAction reports whether action is confirmation-gated.
func IsDangerousAction(action string) bool {
	for _, a := range DangerousActions {
		if a == action {
			return true
		}
	}
	return false
}

// Prompts shown to the viewer.
const (
	NoSelectionMessage        = "Debe seleccionar al menos un elemento"
	DangerousActionPrompt     = "¿Está seguro de realizar esta acción?"
	RegeneratePrompt          = "¿Desea regenerar este reporte?"
	RegenerateSuccessMessage  = "Reporte marcado para regeneración"
	RegenerateErrorMessage    = "Error al regenerar reporte: "
	DownloadSuccessMessage    = "Reporte descargado exitosamente"
	DownloadErrorMessage      = "Error al descargar el reporte"
	RefreshStartedMessage     = "Actualizando dashboard..."
	RefreshDoneMessage        = "Dashboard actualizado"
	RefreshFailedMessage      = "Error al cargar datos del dashboard"
	BulkActionFailedMessage   = "Error al ejecutar la acción"
	MunicipiosFailedMessage   = "Error al cargar municipios"
	MunicipioPlaceholderLabel = "---------"
)

// BulkActionPrompt is the confirmation text for a bulk action on n rows.
func BulkActionPrompt(action string, n int) string {
	return fmt.Sprintf("¿Está seguro de ejecutar la acción \"%s\" en %d elementos?", action, n)
}

// BulkActionRequest is a changelist action over selected rows.
type BulkActionRequest struct {
	ChangelistURL string   `json:"changelist_url"`
	Action        string   `json:"action"`
	SelectedIDs   []string `json:"selected_ids"`
	Confirmed     bool     `json:"confirmed,omitempty"`
}

// RegenerateResult is the admin's answer to a regeneration request.
type RegenerateResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ReportDownload is a downloaded report file.
type ReportDownload struct {
	Filename    string
	ContentType string
	Body        []byte
}

// DownloadFilename is the default name of a downloaded report.
func DownloadFilename(id string) string {
	return "reporte_" + id + ".pdf"
}

// Municipio is a municipality option of a departamento.
type Municipio struct {
	Code string `json:"codigo"`
	Name string `json:"nombre"`
}

// SelectOption is one <option> of a cascading select.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// MunicipioOptions prepends the empty placeholder option.
func MunicipioOptions(municipios []Municipio) []SelectOption {
	options := make([]SelectOption, 0, len(municipios)+1)
	options = append(options, SelectOption{Value: "", Label: MunicipioPlaceholderLabel})
	for _, m := range municipios {
		options = append(options, SelectOption{Value: m.Code, Label: m.Name})
	}
	return options
}

// AdminActions performs state-changing calls against the admin.
type AdminActions interface {
	SubmitBulkAction(ctx context.Context, req BulkActionRequest) error
	RegenerateReport(ctx context.Context, id string) (RegenerateResult, error)
	DownloadReport(ctx context.Context, id string) (ReportDownload, error)
}

// MunicipioSource lists municipios of a departamento.
type MunicipioSource interface {
	Municipios(ctx context.Context, departamento string) ([]Municipio, error)
}

// DispatcherOptions wires the action dispatcher.
type DispatcherOptions struct {
	Actions    AdminActions
	Municipios MunicipioSource
	Previews   *PreviewService
	Scheduler  *Scheduler
	Notifier   Notifier
	Telemetry  Telemetry
}

// Dispatcher maps viewer actions to admin calls and notifications.
type Dispatcher struct {
	opts DispatcherOptions
}

// NewDispatcher builds a dispatcher; a nil notifier drops notifications.
func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	if opts.Notifier == nil {
		opts.Notifier = discardNotifier{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Dispatcher{opts: opts}
}

// BulkAction validates and submits a changelist action. Zero selected rows
// warn and return ErrNoSelection; dangerous actions without confirmation
// return a *ConfirmationError. Neither touches the network.
func (d *Dispatcher) BulkAction(ctx context.Context, req BulkActionRequest) error {
	req.Action = strings.TrimSpace(req.Action)
	if req.Action == "" {
		return fmt.Errorf("dashboard: bulk action name is required")
	}
	if len(req.SelectedIDs) == 0 {
		d.opts.Notifier.Notify(ctx, LevelWarning, NoSelectionMessage)
		return ErrNoSelection
	}
	changelist, err := AdminChangelistPath(req.ChangelistURL)
	if err != nil {
		return err
	}
	req.ChangelistURL = changelist
	if IsDangerousAction(req.Action) && !req.Confirmed {
		return &ConfirmationError{Action: req.Action, Prompt: BulkActionPrompt(req.Action, len(req.SelectedIDs))}
	}
	if d.opts.Actions == nil {
		return fmt.Errorf("dashboard: admin actions not configured")
	}
	if err := d.opts.Actions.SubmitBulkAction(ctx, req); err != nil {
		d.opts.Notifier.Notify(ctx, LevelError, BulkActionFailedMessage)
		return fmt.Errorf("dashboard: bulk action %s: %w", req.Action, err)
	}
	d.opts.Telemetry.Record(ctx, EventBulkAction, map[string]any{
		"action":   req.Action,
		"selected": len(req.SelectedIDs),
	})
	return nil
}

// AdminChangelistPath accepts host-relative paths below /admin/ and returns
// them cleaned, query included. Anything with a scheme or host, or resolving
// outside /admin/, wraps ErrForeignChangelist.
func AdminChangelistPath(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil || u.Opaque != "" {
		return "", fmt.Errorf("%w: %q", ErrForeignChangelist, raw)
	}
	cleaned := path.Clean(u.Path)
	if !strings.HasPrefix(cleaned, adminPathPrefix) {
		return "", fmt.Errorf("%w: %q", ErrForeignChangelist, raw)
	}
	if strings.HasSuffix(u.Path, "/") {
		cleaned += "/"
	}
	u.Path, u.RawPath = cleaned, ""
	return u.String(), nil
}

// ExportURL returns currentURL with export=<format> set.
func (d *Dispatcher) ExportURL(currentURL, format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return "", fmt.Errorf("dashboard: export format is required")
	}
	u, err := url.Parse(currentURL)
	if err != nil {
		return "", fmt.Errorf("dashboard: parse export url: %w", err)
	}
	q := u.Query()
	q.Set("export", format)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Regenerate asks the admin to rebuild a report and drops its cached preview.
func (d *Dispatcher) Regenerate(ctx context.Context, id string, confirmed bool) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrReportIDRequired
	}
	if !confirmed {
		return &ConfirmationError{Action: "regenerate", Prompt: RegeneratePrompt}
	}
	if d.opts.Actions == nil {
		return fmt.Errorf("dashboard: admin actions not configured")
	}
	result, err := d.opts.Actions.RegenerateReport(ctx, id)
	if err != nil {
		d.opts.Notifier.Notify(ctx, LevelError, RegenerateErrorMessage+err.Error())
		return fmt.Errorf("dashboard: regenerate report %s: %w", id, err)
	}
	if !result.Success {
		d.opts.Notifier.Notify(ctx, LevelError, RegenerateErrorMessage+result.Error)
		return fmt.Errorf("%w: %s", ErrRegenerateRejected, result.Error)
	}
	if d.opts.Previews != nil {
		d.opts.Previews.Invalidate(id)
	}
	d.opts.Notifier.Notify(ctx, LevelSuccess, RegenerateSuccessMessage)
	d.opts.Telemetry.Record(ctx, EventRegenerate, map[string]any{"report_id": id})
	return nil
}

// Download fetches a report file; failures surface as an error notification.
func (d *Dispatcher) Download(ctx context.Context, id string) (ReportDownload, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ReportDownload{}, ErrReportIDRequired
	}
	if d.opts.Actions == nil {
		return ReportDownload{}, fmt.Errorf("dashboard: admin actions not configured")
	}
	file, err := d.opts.Actions.DownloadReport(ctx, id)
	if err != nil {
		d.opts.Notifier.Notify(ctx, LevelError, DownloadErrorMessage)
		return ReportDownload{}, fmt.Errorf("dashboard: download report %s: %w", id, err)
	}
	if file.Filename == "" {
		file.Filename = DownloadFilename(id)
	}
	d.opts.Notifier.Notify(ctx, LevelSuccess, DownloadSuccessMessage)
	return file, nil
}

// Analyze scores a report.
func (d *Dispatcher) Analyze(ctx context.Context, id string) (ReportAnalysis, error) {
	if d.opts.Previews == nil {
		return ReportAnalysis{}, fmt.Errorf("dashboard: preview service not configured")
	}
	analysis, err := d.opts.Previews.Analyze(ctx, id)
	if err != nil {
		d.opts.Notifier.Notify(ctx, LevelError, "Error al analizar el reporte")
		return ReportAnalysis{}, err
	}
	return analysis, nil
}

// Municipios loads the options of the municipio select for a departamento.
func (d *Dispatcher) Municipios(ctx context.Context, departamento string) ([]SelectOption, error) {
	departamento = strings.TrimSpace(departamento)
	if departamento == "" {
		return MunicipioOptions(nil), nil
	}
	if d.opts.Municipios == nil {
		return nil, fmt.Errorf("dashboard: municipio source not configured")
	}
	list, err := d.opts.Municipios.Municipios(ctx, departamento)
	if err != nil {
		d.opts.Notifier.Notify(ctx, LevelError, MunicipiosFailedMessage)
		return nil, fmt.Errorf("dashboard: municipios %s: %w", departamento, err)
	}
	return MunicipioOptions(list), nil
}

// Refresh forces a metrics tick and reports the outcome as notifications.
func (d *Dispatcher) Refresh(ctx context.Context) error {
	if d.opts.Scheduler == nil {
		return fmt.Errorf("dashboard: scheduler not configured")
	}
	d.opts.Notifier.Notify(ctx, LevelInfo, RefreshStartedMessage)
	if err := d.opts.Scheduler.RefreshNow(ctx); err != nil {
		d.opts.Notifier.Notify(ctx, LevelError, RefreshFailedMessage)
		return err
	}
	d.opts.Notifier.Notify(ctx, LevelSuccess, RefreshDoneMessage)
	return nil
}

// ApplyRecommendation only acknowledges the request.
func (d *Dispatcher) ApplyRecommendation(ctx context.Context, recType string) Notification {
	d.opts.Telemetry.Record(ctx, EventRecommendationApply, map[string]any{"type": recType})
	return d.opts.Notifier.Notify(ctx, LevelSuccess, fmt.Sprintf("Recomendación %s aplicada", recType))
}

// ScheduleRecommendation only acknowledges the request.
func (d *Dispatcher) ScheduleRecommendation(ctx context.Context, recType string) Notification {
	d.opts.Telemetry.Record(ctx, EventRecommendationSchedule, map[string]any{"type": recType})
	return d.opts.Notifier.Notify(ctx, LevelInfo, fmt.Sprintf("Recomendación %s programada", recType))
}

type discardNotifier struct{}

func (discardNotifier) Notify(_ context.Context, level NotificationLevel, message string) Notification {
	return Notification{Level: level, Message: message, State: StateRemoved}
}
