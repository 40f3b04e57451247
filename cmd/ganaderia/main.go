package main

import (
	"context"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/ganaderiabi/go-admin-dashboard/pkg/adminclient"
	"github.com/ganaderiabi/go-admin-dashboard/pkg/config"
	"github.com/ganaderiabi/go-admin-dashboard/pkg/logging"
)

// globals are shared by every subcommand; env tags let .env files drive them.
type globals struct {
	AdminURL  string        `name:"admin-url" env:"GANADERIA_ADMIN_URL" default:"http://localhost:8000" help:"Base URL of the Django admin."`
	SessionID string        `name:"session" env:"GANADERIA_ADMIN_SESSION" help:"Service sessionid cookie for the admin."`
	CSRFToken string        `name:"csrf" env:"GANADERIA_ADMIN_CSRF" help:"Service csrftoken cookie for the admin."`
	Timeout   time.Duration `env:"GANADERIA_ADMIN_TIMEOUT" default:"10s" help:"Admin request timeout."`
	Locale    string        `env:"GANADERIA_LOCALE" default:"es" help:"Locale used to format numbers."`
	Demo      bool          `help:"Serve fixtures instead of calling the admin."`
}

type cli struct {
	globals `embed:""`

	Serve      serveCmd      `cmd:"" help:"Run the dashboard companion server."`
	Preview    previewCmd    `cmd:"" help:"Print the preview markup of a report."`
	Analyze    analyzeCmd    `cmd:"" help:"Print the quality analysis of a report."`
	Municipios municipiosCmd `cmd:"" help:"List the municipios of a departamento."`
	Bulk       bulkCmd       `cmd:"" help:"Run a changelist bulk action."`
	Manifest   manifestCmd   `cmd:"" help:"Inspect and edit layout manifests."`
}

func main() {
	logger := logging.NewLoggerWithService("ganaderia-dashboard")
	config.LoadEnv(logger)

	var app cli
	ctx := kong.Parse(&app,
		kong.Name("ganaderia"),
		kong.Description("Admin dashboard companion for Ganaderia BI."),
		kong.UsageOnError(),
		kong.Bind(&app.globals),
		kong.BindTo(logger, (*logrus.FieldLogger)(nil)),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

// client builds the admin client, or the fixture client in demo mode.
func (g *globals) client(log logrus.FieldLogger) (adminclient.Client, error) {
	if g.Demo {
		return adminclient.NewMockClient(adminclient.DemoData()), nil
	}
	return adminclient.NewHTTPClient(adminclient.Config{
		BaseURL:   g.AdminURL,
		SessionID: g.SessionID,
		CSRFToken: g.CSRFToken,
		Timeout:   g.Timeout,
		Logger:    log,
	})
}
