package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAlerts(t *testing.T) {
	now := time.Date(2026, 10, 18, 14, 5, 9, 0, time.UTC)
	alerts := GenerateAlerts(DashboardMetrics{
		Alerts:            []string{"Servidor IA sin respuesta", ""},
		AvgProcessingTime: 6,
	}, now)

	require.Len(t, alerts, 2)
	assert.Equal(t, AlertCritical, alerts[0].Severity)
	assert.Equal(t, "Alerta Crítica", alerts[0].Title)
	assert.Equal(t, "Servidor IA sin respuesta", alerts[0].Message)
	assert.Equal(t, AlertWarning, alerts[1].Severity)
	assert.Equal(t, "Rendimiento Bajo", alerts[1].Title)
	assert.Equal(t, "14:05:09", alerts[1].TimeLabel())
}

func TestGenerateAlertsQuietWhenHealthy(t *testing.T) {
	assert.Empty(t, GenerateAlerts(DashboardMetrics{AvgProcessingTime: 4}, time.Now()))
	assert.Empty(t, GenerateAlerts(DashboardMetrics{AvgProcessingTime: ProcessingTimeTarget}, time.Now()))
}

func TestGenerateRecommendationsThresholds(t *testing.T) {
	recs := GenerateRecommendations(DashboardMetrics{AvgProcessingTime: 6, ApprovalPercent: 80})
	require.Len(t, recs, 2)
	assert.Equal(t, "Optimizar Procesamiento", recs[0].Title)
	assert.Equal(t, PriorityHigh, recs[0].Priority)
	assert.Equal(t, "Mejorar Criterios de Aprobación", recs[1].Title)
	assert.Equal(t, PriorityMedium, recs[1].Priority)

	assert.Empty(t, GenerateRecommendations(DashboardMetrics{AvgProcessingTime: 4, ApprovalPercent: 90}))
}

func TestReportRecommendationsAreStatic(t *testing.T) {
	first := ReportRecommendations()
	second := ReportRecommendations()
	require.Len(t, first, 3)
	assert.Equal(t, first, second)
}
