package dashboard

// Dashboard areas.
const (
	AreaKPIs            = "ganaderia.dashboard.kpis"
	AreaAlerts          = "ganaderia.dashboard.alerts"
	AreaRecommendations = "ganaderia.dashboard.recommendations"
	AreaCharts          = "ganaderia.dashboard.charts"
	AreaReports         = "ganaderia.dashboard.reports"
	AreaCounters        = "ganaderia.dashboard.counters"
)

// Widget codes backed by runtime state rather than static datasets.
const (
	WidgetKPICards              = "ganaderia.widget.kpi_cards"
	WidgetAlerts                = "ganaderia.widget.alerts"
	WidgetRecommendations       = "ganaderia.widget.recommendations"
	WidgetCounter               = "ganaderia.widget.counter"
	WidgetRealtimeActivity      = "ganaderia.widget.realtime_activity"
	WidgetReportPreview         = "ganaderia.widget.report_preview"
	WidgetReportRecommendations = "ganaderia.widget.report_recommendations"
)

var defaultAreaDefinitions = []WidgetAreaDefinition{
	{Code: AreaKPIs, Name: "Indicadores Clave", Description: "KPI cards fed by the metrics poll"},
	{Code: AreaAlerts, Name: "Alertas", Description: "System alerts"},
	{Code: AreaRecommendations, Name: "Recomendaciones", Description: "Threshold-driven recommendations"},
	{Code: AreaCharts, Name: "Gráficos", Description: "Executive dashboard charts"},
	{Code: AreaReports, Name: "Reportes", Description: "Report preview and report charts"},
	{Code: AreaCounters, Name: "Contadores", Description: "Elements refreshed from their own endpoint"},
}

// DefaultAreaDefinitions returns the built-in dashboard areas.
func DefaultAreaDefinitions() []WidgetAreaDefinition {
	return append([]WidgetAreaDefinition(nil), defaultAreaDefinitions...)
}

var runtimeWidgetDefinitions = []WidgetDefinition{
	{
		Code:        WidgetKPICards,
		Name:        "Indicadores Clave",
		Description: "Marcas, logos, eficiencia, aprobación e ingresos",
		Category:    "stats",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"kpis": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetAlerts,
		Name:        "Alertas del Sistema",
		Description: "Alertas críticas y de rendimiento",
		Category:    "alerts",
		Schema:      emptyObjectSchema(),
	},
	{
		Code:        WidgetRecommendations,
		Name:        "Recomendaciones IA",
		Description: "Recomendaciones según umbrales de procesamiento y aprobación",
		Category:    "recommendations",
		Schema:      emptyObjectSchema(),
	},
	{
		Code:        WidgetCounter,
		Name:        "Contador",
		Description: "Valor refrescado desde su propio endpoint",
		Category:    "stats",
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"endpoint"},
			"properties": map[string]any{
				"endpoint": map[string]any{"type": "string", "minLength": 1},
				"label":    map[string]any{"type": "string"},
			},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetRealtimeActivity,
		Name:        "Actividad en Tiempo Real",
		Description: "Marcas procesadas por intervalo de sondeo",
		Category:    "charts",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{"type": "string"},
				"theme": map[string]any{"type": "string"},
			},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetReportPreview,
		Name:        "Vista Previa de Reporte",
		Description: "Vista previa cacheada de un reporte",
		Category:    "reports",
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"report_id"},
			"properties": map[string]any{
				"report_id": map[string]any{"type": "string", "minLength": 1},
			},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetReportRecommendations,
		Name:        "Recomendaciones de Reporte",
		Description: "Sugerencias de formato, automatización y rendimiento",
		Category:    "recommendations",
		Schema:      emptyObjectSchema(),
	},
}

// DefaultWidgetDefinitions returns runtime widgets plus every chart in the catalog.
func DefaultWidgetDefinitions() []WidgetDefinition {
	defs := append([]WidgetDefinition(nil), runtimeWidgetDefinitions...)
	for _, entry := range chartCatalog {
		defs = append(defs, WidgetDefinition{
			Code:        entry.Code,
			Name:        entry.Name,
			Description: string(entry.Kind) + " chart",
			Category:    "charts",
			Schema:      chartConfigSchema(),
		})
	}
	return defs
}

func emptyObjectSchema() map[string]any {
	return map[string]any{"type": "object", "additionalProperties": false}
}

func chartConfigSchema() map[string]any {
	number := map[string]any{"type": "number"}
	return map[string]any{
		"type":     "object",
		"required": []string{"series"},
		"properties": map[string]any{
			"type":             map[string]any{"type": "string", "enum": []string{"line", "bar", "pie", "doughnut", "radar"}},
			"title":            map[string]any{"type": "string"},
			"subtitle":         map[string]any{"type": "string"},
			"theme":            map[string]any{"type": "string"},
			"x_axis":           map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"y_axis_name":      map[string]any{"type": "string"},
			"secondary_y_axis": map[string]any{"type": "string"},
			"y_min":            number,
			"y_max":            number,
			"rolling_days":     map[string]any{"type": "integer", "minimum": 1, "maximum": 366},
			"indicators": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"name"},
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
						"max":  number,
					},
				},
			},
			"series": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []string{"name", "data"},
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
						"data": map[string]any{
							"type":     "array",
							"minItems": 1,
							"items":    map[string]any{"type": []string{"number", "null"}},
						},
						"y_axis_index": map[string]any{"type": "integer", "minimum": 0, "maximum": 1},
						"dashed":       map[string]any{"type": "boolean"},
					},
				},
			},
		},
		"additionalProperties": false,
	}
}
