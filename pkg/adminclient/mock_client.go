package adminclient

import (
	"context"
	"fmt"
	"slices"
	"sync"

	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
)

// MockData seeds deterministic admin responses for tests or local demos.
type MockData struct {
	Summary    dashboard.MetricsSummary
	Dashboard  dashboard.DashboardData
	Counts     map[string]int
	Reports    map[string]dashboard.ReportPreview
	Municipios map[string][]dashboard.Municipio
	Regenerate dashboard.RegenerateResult
}

// MockClient implements Client using in-memory fixtures and records the
// mutating calls it receives.
type MockClient struct {
	mu          sync.RWMutex
	data        MockData
	bulkActions []dashboard.BulkActionRequest
}

// NewMockClient builds a mock admin client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// DemoData returns fixtures resembling a populated ganaderia admin.
func DemoData() MockData {
	return MockData{
		Summary: dashboard.MetricsSummary{
			ActiveBrandsTotal:       15420,
			BrandsProcessedToday:    87,
			LogosGeneratedToday:     34,
			SystemEfficiencyPercent: 92.5,
		},
		Dashboard: dashboard.DashboardData{
			BrandsRegisteredMonth: 1240,
			AvgProcessingTime:     3.8,
			ApprovalPercent:       88.4,
			MonthlyRevenue:        125000000,
			Alerts:                []string{"3 marcas pendientes de revisión por más de 7 días"},
		},
		Counts: map[string]int{"/api/marcas/pendientes/": 12},
		Reports: map[string]dashboard.ReportPreview{
			"1": {ID: "1", Type: "Marcas por departamento", Format: dashboard.FormatPDF, SizeLabel: "1.2 MB"},
			"2": {ID: "2", Type: "Ingresos mensuales", Format: dashboard.FormatExcel, SizeLabel: "340 KB"},
		},
		Municipios: map[string][]dashboard.Municipio{
			"05": {{Code: "05001", Name: "Medellín"}, {Code: "05045", Name: "Apartadó"}},
		},
		Regenerate: dashboard.RegenerateResult{Success: true},
	}
}

func (c *MockClient) FetchSummary(context.Context) (dashboard.MetricsSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Summary, nil
}

func (c *MockClient) FetchDashboardData(context.Context) (dashboard.DashboardData, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.data.Dashboard
	out.Alerts = slices.Clone(out.Alerts)
	return out, nil
}

func (c *MockClient) FetchCount(_ context.Context, endpoint string) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count, ok := c.data.Counts[endpoint]
	if !ok {
		return 0, fmt.Errorf("%w 404: %s", ErrRemoteStatus, endpoint)
	}
	return count, nil
}

func (c *MockClient) FetchReport(_ context.Context, id string) (dashboard.ReportPreview, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	report, ok := c.data.Reports[id]
	if !ok {
		return dashboard.ReportPreview{}, fmt.Errorf("%w 404: report %s", ErrRemoteStatus, id)
	}
	return report, nil
}

func (c *MockClient) Municipios(_ context.Context, departamento string) ([]dashboard.Municipio, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.data.Municipios[departamento]), nil
}

func (c *MockClient) RegenerateReport(context.Context, string) (dashboard.RegenerateResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data.Regenerate, nil
}

func (c *MockClient) DownloadReport(_ context.Context, id string) (dashboard.ReportDownload, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.data.Reports[id]; !ok {
		return dashboard.ReportDownload{}, fmt.Errorf("%w 404: report %s", ErrRemoteStatus, id)
	}
	return dashboard.ReportDownload{ContentType: "application/pdf", Body: []byte("%PDF-1.4")}, nil
}

func (c *MockClient) SubmitBulkAction(_ context.Context, req dashboard.BulkActionRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	req.SelectedIDs = slices.Clone(req.SelectedIDs)
	c.bulkActions = append(c.bulkActions, req)
	return nil
}

// BulkActions returns the bulk actions submitted so far.
func (c *MockClient) BulkActions() []dashboard.BulkActionRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.bulkActions)
}
