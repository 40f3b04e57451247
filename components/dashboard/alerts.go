package dashboard

import "time"

// AlertSeverity classifies alert cards.
type AlertSeverity string

const (
	AlertCritical AlertSeverity = "critical"
	AlertWarning  AlertSeverity = "warning"
	AlertInfo     AlertSeverity = "info"
)

// ProcessingTimeTarget is the average processing time above which the
// dashboard flags low performance.
const ProcessingTimeTarget = 5.0

// Alert is regenerated on every render; there is no acknowledgment state.
type Alert struct {
	Severity  AlertSeverity `json:"severity"`
	Icon      string        `json:"icon"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

// TimeLabel renders the timestamp as HH:MM:SS.
func (a Alert) TimeLabel() string {
	return a.Timestamp.Format("15:04:05")
}

// GenerateAlerts builds one critical alert per server alert string plus a
// warning when processing time is above target.
func GenerateAlerts(m DashboardMetrics, now time.Time) []Alert {
	alerts := make([]Alert, 0, len(m.Alerts)+1)
	for _, message := range m.Alerts {
		if message == "" {
			continue
		}
		alerts = append(alerts, Alert{
			Severity:  AlertCritical,
			Icon:      "🚨",
			Title:     "Alerta Crítica",
			Message:   message,
			Timestamp: now,
		})
	}
	if m.AvgProcessingTime > ProcessingTimeTarget {
		alerts = append(alerts, Alert{
			Severity:  AlertWarning,
			Icon:      "⚠️",
			Title:     "Rendimiento Bajo",
			Message:   "El tiempo de procesamiento está por encima del promedio",
			Timestamp: now,
		})
	}
	return alerts
}
