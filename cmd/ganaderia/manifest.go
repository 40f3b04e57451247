package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	core "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
)

type manifestCmd struct {
	Validate manifestValidateCmd `cmd:"" help:"Validate a layout manifest against the widget catalog."`
	Add      manifestAddCmd      `cmd:"" help:"Place a widget in a layout manifest."`
	Default  manifestDefaultCmd  `cmd:"" help:"Print the built-in layout manifest."`
}

type manifestValidateCmd struct {
	Path string `arg:"" type:"existingfile" help:"Manifest path."`
}

// Run validates the document and then applies it to a throwaway service so
// widget configuration is checked against each definition schema.
func (cmd *manifestValidateCmd) Run(ctx context.Context) error {
	doc, err := core.ReadManifest(cmd.Path)
	if err != nil {
		return err
	}
	rt, err := core.Bootstrap(ctx, core.BootstrapOptions{Manifest: doc, Renderer: discardRenderer{}})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ %s: %d widgets in %d areas\n", cmd.Path, len(rt.Widgets), len(doc.ServiceAreas()))
	return nil
}

type manifestAddCmd struct {
	Path       string   `arg:"" type:"path" help:"Manifest path; created when missing."`
	Definition string   `required:"" help:"Widget definition code (e.g. ganaderia.widget.counter)."`
	Area       string   `required:"" help:"Target area code."`
	ID         string   `help:"Instance id; derived from the definition when empty."`
	Set        []string `help:"Configuration entries as key=value (repeat the flag)."`
	Overwrite  bool     `help:"Replace an existing widget with the same id."`
}

func (cmd *manifestAddCmd) Run() error {
	doc, err := loadOrInitManifest(cmd.Path)
	if err != nil {
		return err
	}
	widget, err := cmd.widget()
	if err != nil {
		return err
	}
	if err := addWidget(doc, widget, cmd.Overwrite); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(cmd.Path, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s to %s\n", widget.ID, cmd.Path)
	return nil
}

func (cmd *manifestAddCmd) widget() (core.ManifestWidget, error) {
	if !strings.Contains(cmd.Definition, ".") {
		return core.ManifestWidget{}, fmt.Errorf("manifest: definition %s must contain at least one '.' segment", cmd.Definition)
	}
	config := map[string]any{}
	for _, entry := range cmd.Set {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return core.ManifestWidget{}, fmt.Errorf("manifest: --set %q must be key=value", entry)
		}
		config[strings.TrimSpace(key)] = value
	}
	id := cmd.ID
	if id == "" {
		parts := strings.Split(cmd.Definition, ".")
		id = strcase.ToKebab(parts[len(parts)-1])
	}
	widget := core.ManifestWidget{ID: id, Definition: cmd.Definition, Area: cmd.Area}
	if len(config) > 0 {
		widget.Configuration = config
	}
	return widget, nil
}

func addWidget(doc *core.LayoutManifest, widget core.ManifestWidget, overwrite bool) error {
	for i := range doc.Widgets {
		if doc.Widgets[i].ID != widget.ID {
			continue
		}
		if !overwrite {
			return fmt.Errorf("manifest: widget %s already placed (use --overwrite to replace)", widget.ID)
		}
		doc.Widgets[i] = widget
		return nil
	}
	doc.Widgets = append(doc.Widgets, widget)
	return nil
}

type manifestDefaultCmd struct{}

func (manifestDefaultCmd) Run() error {
	return encodeManifest(os.Stdout, core.DefaultManifest())
}

func loadOrInitManifest(path string) (*core.LayoutManifest, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			doc := core.DefaultManifest()
			doc.Widgets = nil
			doc.Source = path
			return doc, nil
		}
		return nil, fmt.Errorf("manifest: stat %s: %w", path, err)
	}
	return core.ReadManifest(path)
}

func writeManifest(path string, doc *core.LayoutManifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("manifest: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("manifest: create %s: %w", path, err)
	}
	defer file.Close()
	return encodeManifest(file, doc)
}

func encodeManifest(w io.Writer, doc *core.LayoutManifest) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("manifest: encode: %w", err)
	}
	return encoder.Close()
}

type discardRenderer struct{}

func (discardRenderer) Render(string, any, ...io.Writer) (string, error) { return "", nil }
