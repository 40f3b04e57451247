package dashboard

// Priority ranks recommendation cards.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ApprovalTarget is the approval percentage below which criteria should be reviewed.
const ApprovalTarget = 85.0

// Recommendation is ephemeral and rebuilt from metrics on each render.
type Recommendation struct {
	Type        string   `json:"type"`
	Priority    Priority `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Impact      string   `json:"impact"`
	Effort      string   `json:"effort,omitempty"`
	Benefits    []string `json:"benefits,omitempty"`
}

// PriorityLabel returns the badge text.
func (r Recommendation) PriorityLabel() string {
	switch r.Priority {
	case PriorityHigh:
		return "Alta Prioridad"
	case PriorityMedium:
		return "Media Prioridad"
	default:
		return "Baja Prioridad"
	}
}

// BadgeColor returns the priority badge color.
func (r Recommendation) BadgeColor() string {
	switch r.Priority {
	case PriorityHigh:
		return StatusColor("ALTA")
	case PriorityMedium:
		return StatusColor("MEDIA")
	case PriorityLow:
		return StatusColor("BAJA")
	}
	return DefaultStatusColor
}

// Icon returns the card icon for the recommendation type.
func (r Recommendation) Icon() string {
	switch r.Type {
	case "optimization":
		return "⚡"
	case "automation":
		return "🤖"
	case "performance":
		return "📈"
	case "security":
		return "🔒"
	default:
		return "💡"
	}
}

// GenerateRecommendations applies the threshold rules to a snapshot.
func GenerateRecommendations(m DashboardMetrics) []Recommendation {
	var recs []Recommendation
	if m.AvgProcessingTime > ProcessingTimeTarget {
		recs = append(recs, Recommendation{
			Type:        "optimization",
			Priority:    PriorityHigh,
			Title:       "Optimizar Procesamiento",
			Description: "El tiempo de procesamiento está por encima del objetivo. Considerar optimización de algoritmos.",
			Impact:      "Alto impacto en eficiencia",
			Benefits:    []string{"Reducción de tiempo", "Mejor experiencia", "Mayor productividad"},
		})
	}
	if m.ApprovalPercent < ApprovalTarget {
		recs = append(recs, Recommendation{
			Type:        "quality",
			Priority:    PriorityMedium,
			Title:       "Mejorar Criterios de Aprobación",
			Description: "La tasa de aprobación está por debajo del objetivo. Revisar criterios de evaluación.",
			Impact:      "Medio impacto en calidad",
			Benefits:    []string{"Mayor calidad", "Menos rechazos", "Mejor satisfacción"},
		})
	}
	return recs
}

// ReportRecommendations are the static suggestions shown on report pages.
func ReportRecommendations() []Recommendation {
	return []Recommendation{
		{
			Type:        "optimization",
			Priority:    PriorityHigh,
			Title:       "Optimizar Formato de Salida",
			Description: "Cambiar a PDF para mejor compatibilidad",
			Impact:      "Alto",
			Effort:      "Bajo",
		},
		{
			Type:        "automation",
			Priority:    PriorityMedium,
			Title:       "Automatizar Generación",
			Description: "Programar generación automática semanal",
			Impact:      "Medio",
			Effort:      "Medio",
		},
		{
			Type:        "performance",
			Priority:    PriorityLow,
			Title:       "Comprimir Datos",
			Description: "Reducir tamaño del reporte en 40%",
			Impact:      "Bajo",
			Effort:      "Alto",
		},
	}
}
