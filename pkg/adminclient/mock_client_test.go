package adminclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
)

func TestMockClientServesFixtures(t *testing.T) {
	mock := NewMockClient(DemoData())
	ctx := context.Background()

	count, err := mock.FetchCount(ctx, "/api/marcas/pendientes/")
	require.NoError(t, err)
	assert.Equal(t, 12, count)

	_, err = mock.FetchCount(ctx, "/api/unknown/")
	assert.ErrorIs(t, err, ErrRemoteStatus)

	report, err := mock.FetchReport(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, dashboard.FormatExcel, report.Format)

	require.NoError(t, mock.SubmitBulkAction(ctx, dashboard.BulkActionRequest{Action: "aprobar_marcas", SelectedIDs: []string{"4"}}))
	assert.Len(t, mock.BulkActions(), 1)
}

func TestMockClientDrivesDispatcher(t *testing.T) {
	mock := NewMockClient(DemoData())
	dispatcher := dashboard.NewDispatcher(dashboard.DispatcherOptions{Actions: mock, Municipios: mock})

	options, err := dispatcher.Municipios(context.Background(), "05")
	require.NoError(t, err)
	require.Len(t, options, 3)
	assert.Equal(t, "", options[0].Value)

	file, err := dispatcher.Download(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "reporte_1.pdf", file.Filename)
}
