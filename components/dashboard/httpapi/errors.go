package httpapi

import (
	"errors"
	"net/http"

	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
	"github.com/ganaderiabi/go-admin-dashboard/components/dashboard/commands"
)

// ErrorStatus maps dashboard errors to an HTTP status and JSON body.
// Confirmation prompts answer 409 with the prompt text so the browser can
// ask and resend with confirmed=true.
func ErrorStatus(err error) (int, map[string]any) {
	var confirm *dashboard.ConfirmationError
	switch {
	case errors.As(err, &confirm):
		return http.StatusConflict, map[string]any{
			"error":   "confirmation_required",
			"action":  confirm.Action,
			"confirm": confirm.Prompt,
		}
	case errors.Is(err, dashboard.ErrNoSelection):
		return http.StatusBadRequest, map[string]any{"error": dashboard.NoSelectionMessage}
	case errors.Is(err, dashboard.ErrReportIDRequired), errors.Is(err, commands.ErrWidgetIDRequired),
		errors.Is(err, dashboard.ErrForeignChangelist):
		return http.StatusBadRequest, map[string]any{"error": err.Error()}
	case errors.Is(err, dashboard.ErrRegenerateRejected):
		return http.StatusUnprocessableEntity, map[string]any{"success": false, "error": err.Error()}
	case errors.Is(err, commands.ErrUnknownNotification):
		return http.StatusNotFound, map[string]any{"error": err.Error()}
	case errors.Is(err, ErrNotConfigured):
		return http.StatusNotImplemented, map[string]any{"error": err.Error()}
	}
	var cfgErr *dashboard.ConfigError
	if errors.As(err, &cfgErr) {
		return http.StatusBadRequest, map[string]any{"error": err.Error()}
	}
	return http.StatusBadGateway, map[string]any{"error": err.Error()}
}
