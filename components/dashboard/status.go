package dashboard

import "strings"

// DefaultStatusColor is used for statuses without a dedicated color.
const DefaultStatusColor = "#6c757d"

var statusColors = map[string]string{
	"APROBADO":   "#28a745",
	"PENDIENTE":  "#ffc107",
	"EN_PROCESO": "#17a2b8",
	"RECHAZADO":  "#dc3545",
	"ALTA":       "#28a745",
	"MEDIA":      "#ffc107",
	"BAJA":       "#dc3545",
}

// StatusColor maps an admin status label (APROBADO, PENDIENTE, ...) to its badge color.
func StatusColor(status string) string {
	key := strings.ToUpper(strings.TrimSpace(status))
	key = strings.ReplaceAll(key, " ", "_")
	if color, ok := statusColors[key]; ok {
		return color
	}
	return DefaultStatusColor
}
