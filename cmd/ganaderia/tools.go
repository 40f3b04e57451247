package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	core "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
	"github.com/ganaderiabi/go-admin-dashboard/pkg/dashboard"
)

// runtime bootstraps a stopped runtime for one-shot commands.
func (g *globals) runtime(ctx context.Context, log logrus.FieldLogger) (*dashboard.Runtime, error) {
	client, err := g.client(log)
	if err != nil {
		return nil, err
	}
	return dashboard.New(ctx, client, dashboard.Options{
		BootstrapOptions: core.BootstrapOptions{Locale: g.Locale},
		Logger:           log,
	})
}

type previewCmd struct {
	ID string `arg:"" help:"Report id."`
}

func (cmd *previewCmd) Run(ctx context.Context, g *globals, log logrus.FieldLogger) error {
	rt, err := g.runtime(ctx, log)
	if err != nil {
		return err
	}
	markup, err := rt.Previews.Preview(ctx, cmd.ID)
	fmt.Fprintln(os.Stdout, markup)
	return err
}

type analyzeCmd struct {
	ID string `arg:"" help:"Report id."`
}

func (cmd *analyzeCmd) Run(ctx context.Context, g *globals, log logrus.FieldLogger) error {
	rt, err := g.runtime(ctx, log)
	if err != nil {
		return err
	}
	analysis, err := rt.Dispatcher.Analyze(ctx, cmd.ID)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, analysis)
}

type municipiosCmd struct {
	Departamento string `arg:"" help:"Departamento code (e.g. 05)."`
}

func (cmd *municipiosCmd) Run(ctx context.Context, g *globals, log logrus.FieldLogger) error {
	rt, err := g.runtime(ctx, log)
	if err != nil {
		return err
	}
	options, err := rt.Dispatcher.Municipios(ctx, cmd.Departamento)
	if err != nil {
		return err
	}
	for _, option := range options {
		fmt.Fprintf(os.Stdout, "%s\t%s\n", option.Value, option.Label)
	}
	return nil
}

type bulkCmd struct {
	Changelist string   `required:"" help:"Changelist URL, e.g. /admin/marcas/marcaganadobovino/."`
	Action     string   `required:"" help:"Admin action name."`
	IDs        []string `name:"id" help:"Selected row ids (repeat the flag)."`
	Yes        bool     `short:"y" help:"Confirm dangerous actions."`
}

func (cmd *bulkCmd) Run(ctx context.Context, g *globals, log logrus.FieldLogger) error {
	rt, err := g.runtime(ctx, log)
	if err != nil {
		return err
	}
	err = rt.Dispatcher.BulkAction(ctx, core.BulkActionRequest{
		ChangelistURL: cmd.Changelist,
		Action:        cmd.Action,
		SelectedIDs:   cmd.IDs,
		Confirmed:     cmd.Yes,
	})
	var confirm *core.ConfirmationError
	switch {
	case errors.As(err, &confirm):
		return fmt.Errorf("%s (re-run with --yes)", confirm.Prompt)
	case errors.Is(err, core.ErrNoSelection):
		return errors.New(core.NoSelectionMessage)
	case err != nil:
		return err
	}
	fmt.Fprintf(os.Stdout, "%s: %d elementos\n", cmd.Action, len(cmd.IDs))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
