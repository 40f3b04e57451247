package adminclient

import (
	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
)

// Client is the union of every admin backend call the dashboard makes.
type Client interface {
	dashboard.MetricsSource
	dashboard.CounterSource
	dashboard.ReportSource
	dashboard.AdminActions
	dashboard.MunicipioSource
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*MockClient)(nil)
)
