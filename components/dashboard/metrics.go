package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// MetricsSummary is the payload of the metricas-api endpoint.
type MetricsSummary struct {
	ActiveBrandsTotal       float64 `json:"total_marcas_activas"`
	BrandsProcessedToday    float64 `json:"marcas_procesadas_hoy"`
	LogosGeneratedToday     float64 `json:"logos_generados_hoy"`
	SystemEfficiencyPercent float64 `json:"eficiencia_sistema"`
}

// DashboardData is the payload of the dashboard-data endpoint.
type DashboardData struct {
	BrandsRegisteredMonth float64  `json:"marcas_registradas_mes_actual"`
	AvgProcessingTime     float64  `json:"tiempo_promedio_procesamiento"`
	ApprovalPercent       float64  `json:"porcentaje_aprobacion"`
	MonthlyRevenue        float64  `json:"ingresos_mes_actual"`
	Alerts                []string `json:"alertas"`
}

// MetricsSource reads the two admin metrics endpoints.
type MetricsSource interface {
	FetchSummary(ctx context.Context) (MetricsSummary, error)
	FetchDashboardData(ctx context.Context) (DashboardData, error)
}

// DashboardMetrics is the combined snapshot produced by one poll tick.
type DashboardMetrics struct {
	ActiveBrandsTotal       float64   `json:"active_brands_total"`
	BrandsProcessedToday    float64   `json:"brands_processed_today"`
	LogosGeneratedToday     float64   `json:"logos_generated_today"`
	SystemEfficiencyPercent float64   `json:"system_efficiency_percent"`
	BrandsRegisteredMonth   float64   `json:"brands_registered_month"`
	ApprovalPercent         float64   `json:"approval_percent"`
	AvgProcessingTime       float64   `json:"avg_processing_time"`
	MonthlyRevenue          float64   `json:"monthly_revenue"`
	Alerts                  []string  `json:"alerts"`
	FetchedAt               time.Time `json:"fetched_at"`
}

// CombineMetrics merges both endpoint payloads into one snapshot.
func CombineMetrics(summary MetricsSummary, data DashboardData, at time.Time) DashboardMetrics {
	return DashboardMetrics{
		ActiveBrandsTotal:       summary.ActiveBrandsTotal,
		BrandsProcessedToday:    summary.BrandsProcessedToday,
		LogosGeneratedToday:     summary.LogosGeneratedToday,
		SystemEfficiencyPercent: summary.SystemEfficiencyPercent,
		BrandsRegisteredMonth:   data.BrandsRegisteredMonth,
		ApprovalPercent:         data.ApprovalPercent,
		AvgProcessingTime:       data.AvgProcessingTime,
		MonthlyRevenue:          data.MonthlyRevenue,
		Alerts:                  append([]string(nil), data.Alerts...),
		FetchedAt:               at,
	}
}

// Trend is the KPI delta badge.
type Trend struct {
	Text  string `json:"text"`
	Class string `json:"class"`
}

// ComputeTrend compares a KPI against its previous snapshot value.
func ComputeTrend(current, previous float64, hasPrevious bool) Trend {
	if !hasPrevious || previous == 0 || current == previous {
		return Trend{Text: "0.0%", Class: "trend-neutral"}
	}
	change := (current - previous) / previous * 100
	text := fmt.Sprintf("%+.1f%%", change)
	if text == "+0.0%" || text == "-0.0%" {
		return Trend{Text: "0.0%", Class: "trend-neutral"}
	}
	if change > 0 {
		return Trend{Text: text, Class: "trend-up"}
	}
	return Trend{Text: text, Class: "trend-down"}
}

// KPIPatch updates one KPI card identified by its DOM id.
type KPIPatch struct {
	ElementID string `json:"element_id"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	Trend     *Trend `json:"trend,omitempty"`
}

type kpiField struct {
	id      string
	label   string
	read    func(DashboardMetrics) float64
	render  func(Formatter, float64) string
	trended bool
}

func rawInt(_ Formatter, v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

var kpiFields = []kpiField{
	{id: "total-marcas", label: "Marcas Activas", read: func(m DashboardMetrics) float64 { return m.ActiveBrandsTotal }, render: rawInt},
	{id: "marcas-hoy", label: "Procesadas Hoy", read: func(m DashboardMetrics) float64 { return m.BrandsProcessedToday }, render: rawInt},
	{id: "logos-hoy", label: "Logos Hoy", read: func(m DashboardMetrics) float64 { return m.LogosGeneratedToday }, render: rawInt},
	{id: "eficiencia", label: "Eficiencia", read: func(m DashboardMetrics) float64 { return m.SystemEfficiencyPercent }, render: Formatter.Percent},
	{id: "marcas-registradas", label: "Marcas Registradas (Mes)", read: func(m DashboardMetrics) float64 { return m.BrandsRegisteredMonth }, render: Formatter.Number, trended: true},
	{id: "tiempo-procesamiento", label: "Tiempo de Procesamiento", read: func(m DashboardMetrics) float64 { return m.AvgProcessingTime }, render: Formatter.Number, trended: true},
	{id: "porcentaje-aprobacion", label: "Porcentaje de Aprobación", read: func(m DashboardMetrics) float64 { return m.ApprovalPercent }, render: Formatter.Number, trended: true},
	{id: "ingresos-mes", label: "Ingresos del Mes", read: func(m DashboardMetrics) float64 { return m.MonthlyRevenue }, render: Formatter.Number, trended: true},
}

// KPIPatches renders every KPI card for the current snapshot.
func KPIPatches(f Formatter, current, previous DashboardMetrics, hasPrevious bool) []KPIPatch {
	patches := make([]KPIPatch, 0, len(kpiFields))
	for _, field := range kpiFields {
		value := field.read(current)
		patch := KPIPatch{
			ElementID: field.id,
			Label:     field.label,
			Value:     field.render(f, value),
		}
		if field.trended {
			trend := ComputeTrend(value, field.read(previous), hasPrevious)
			patch.Trend = &trend
		}
		patches = append(patches, patch)
	}
	return patches
}

// MetricsBoard keeps the latest snapshot and the one before it.
type MetricsBoard struct {
	mu       sync.RWMutex
	current  DashboardMetrics
	previous DashboardMetrics
	ticks    int
}

// NewMetricsBoard returns an empty board.
func NewMetricsBoard() *MetricsBoard {
	return &MetricsBoard{}
}

// Replace swaps in a new snapshot wholesale.
func (b *MetricsBoard) Replace(m DashboardMetrics) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.previous = b.current
	b.current = m
	b.ticks++
}

// Latest returns the current snapshot; ok is false before the first tick.
func (b *MetricsBoard) Latest() (DashboardMetrics, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current, b.ticks > 0
}

// Patches renders KPI patches for the latest snapshot.
func (b *MetricsBoard) Patches(f Formatter) []KPIPatch {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.ticks == 0 {
		return nil
	}
	return KPIPatches(f, b.current, b.previous, b.ticks > 1)
}
