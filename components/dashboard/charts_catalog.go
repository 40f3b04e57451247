package dashboard

// chartCatalogEntry ties a chart widget to its kind and example dataset.
type chartCatalogEntry struct {
	Code   string
	Name   string
	Kind   ChartKind
	Area   string
	Config map[string]any
}

func series(name string, data ...any) map[string]any {
	return map[string]any{"name": name, "data": data}
}

func indicators(max float64, names ...string) []any {
	out := make([]any, len(names))
	for i, name := range names {
		out[i] = map[string]any{"name": name, "max": max}
	}
	return out
}

func labels(values ...string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// usageSeries builds a deterministic 30-day example series.
func usageSeries(base, step, spread int) []any {
	out := make([]any, 30)
	for i := range out {
		out[i] = float64(base + (i*step)%spread)
	}
	return out
}

var chartCatalog = []chartCatalogEntry{
	{
		Code: "ganaderia.widget.approval_trend",
		Name: "Tendencia de Aprobación",
		Kind: ChartLine,
		Area: AreaCharts,
		Config: map[string]any{
			"title":  "Tendencia de Aprobación",
			"x_axis": labels("Ene", "Feb", "Mar", "Abr", "May", "Jun"),
			"series": []any{series("Porcentaje de Aprobación", 78.0, 82.0, 85.0, 88.0, 91.0, 89.0)},
			"y_min":  70.0,
			"y_max":  100.0,
		},
	},
	{
		Code: "ganaderia.widget.cattle_distribution",
		Name: "Distribución por Tipo de Ganado",
		Kind: ChartDoughnut,
		Area: AreaCharts,
		Config: map[string]any{
			"title":  "Distribución por Tipo de Ganado",
			"x_axis": labels("Carne", "Leche", "Doble Propósito", "Reproducción"),
			"series": []any{series("Tipo de Ganado", 35.0, 28.0, 25.0, 12.0)},
		},
	},
	{
		Code: "ganaderia.widget.ai_performance",
		Name: "Rendimiento de IA",
		Kind: ChartRadar,
		Area: AreaCharts,
		Config: map[string]any{
			"title":      "Rendimiento de IA",
			"indicators": indicators(100, "Velocidad", "Precisión", "Calidad", "Eficiencia", "Innovación"),
			"series": []any{
				series("Rendimiento Actual", 85.0, 92.0, 88.0, 90.0, 78.0),
				series("Objetivo", 90.0, 95.0, 90.0, 95.0, 85.0),
			},
		},
	},
	{
		Code: "ganaderia.widget.geographic_distribution",
		Name: "Distribución Geográfica",
		Kind: ChartBar,
		Area: AreaCharts,
		Config: map[string]any{
			"title":  "Distribución Geográfica",
			"x_axis": labels("Santa Cruz", "Beni", "La Paz", "Cochabamba", "Otros"),
			"series": []any{series("Marcas por Departamento (%)", 45.0, 28.0, 18.0, 6.0, 3.0)},
		},
	},
	{
		Code: "ganaderia.widget.growth_prediction",
		Name: "Predicción de Crecimiento",
		Kind: ChartLine,
		Area: AreaCharts,
		Config: map[string]any{
			"title":  "Predicción de Crecimiento",
			"x_axis": labels("Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep"),
			"series": []any{
				series("Datos Reales", 120.0, 135.0, 148.0, 162.0, 178.0, 195.0, nil, nil, nil),
				map[string]any{
					"name":   "Predicción IA",
					"data":   []any{nil, nil, nil, nil, nil, 195.0, 210.0, 225.0, 240.0},
					"dashed": true,
				},
			},
		},
	},
	{
		Code: "ganaderia.widget.historical_evolution",
		Name: "Evolución Histórica",
		Kind: ChartLine,
		Area: AreaCharts,
		Config: map[string]any{
			"title":            "Evolución Histórica",
			"x_axis":           labels("Q1 2023", "Q2 2023", "Q3 2023", "Q4 2023", "Q1 2024", "Q2 2024"),
			"y_axis_name":      "Marcas",
			"secondary_y_axis": "Ingresos (Miles Bs.)",
			"series": []any{
				series("Marcas Registradas", 450.0, 520.0, 580.0, 620.0, 680.0, 750.0),
				map[string]any{
					"name":         "Ingresos (Miles Bs.)",
					"data":         []any{180.0, 210.0, 235.0, 260.0, 290.0, 320.0},
					"y_axis_index": 1,
				},
			},
		},
	},
	{
		Code: "ganaderia.widget.report_data_structure",
		Name: "Estructura de Datos",
		Kind: ChartDoughnut,
		Area: AreaReports,
		Config: map[string]any{
			"title":  "Estructura de Datos",
			"x_axis": labels("Objetos", "Arrays", "Strings", "Números", "Booleanos"),
			"series": []any{series("Tipos de Dato", 35.0, 25.0, 20.0, 15.0, 5.0)},
		},
	},
	{
		Code: "ganaderia.widget.report_usage_trend",
		Name: "Tendencia de Uso",
		Kind: ChartLine,
		Area: AreaReports,
		Config: map[string]any{
			"title":        "Tendencia de Uso",
			"rolling_days": 30,
			"series": []any{
				map[string]any{"name": "Visualizaciones", "data": usageSeries(40, 7, 60)},
				map[string]any{"name": "Descargas", "data": usageSeries(10, 3, 20)},
			},
		},
	},
	{
		Code: "ganaderia.widget.report_quality",
		Name: "Métricas de Calidad",
		Kind: ChartRadar,
		Area: AreaReports,
		Config: map[string]any{
			"title":      "Métricas de Calidad",
			"indicators": indicators(100, "Completitud", "Precisión", "Consistencia", "Actualidad", "Relevancia"),
			"series":     []any{series("Calidad del Reporte", 92.0, 88.0, 95.0, 85.0, 90.0)},
		},
	},
	{
		Code: "ganaderia.widget.report_comparison",
		Name: "Comparación con Reportes Similares",
		Kind: ChartBar,
		Area: AreaReports,
		Config: map[string]any{
			"title":  "Comparación con Reportes Similares",
			"x_axis": labels("Tamaño", "Velocidad", "Popularidad", "Calidad", "Eficiencia"),
			"series": []any{
				series("Este Reporte", 85.0, 70.0, 90.0, 88.0, 82.0),
				series("Promedio Sector", 75.0, 80.0, 65.0, 85.0, 78.0),
			},
			"y_max": 100.0,
		},
	},
}

// ChartDefaults returns a copy of the example configuration of a chart widget.
func ChartDefaults(code string) (map[string]any, bool) {
	for _, entry := range chartCatalog {
		if entry.Code == code {
			return cloneConfig(entry.Config), true
		}
	}
	return nil, false
}

func cloneConfig(cfg map[string]any) map[string]any {
	if cfg == nil {
		return nil
	}
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	return out
}

// registerChartProviders binds an EChartsProvider to every catalog chart.
func registerChartProviders(reg *Registry) error {
	for _, entry := range chartCatalog {
		if err := reg.RegisterProvider(entry.Code, NewEChartsProvider(entry.Kind)); err != nil {
			return err
		}
	}
	return nil
}
