package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ManifestVersion is the supported layout manifest format.
const ManifestVersion = "1"

// LayoutManifest lists the areas and widget placements of a dashboard.
type LayoutManifest struct {
	Version string                 `json:"version" yaml:"version"`
	Name    string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Areas   []WidgetAreaDefinition `json:"areas,omitempty" yaml:"areas,omitempty"`
	Widgets []ManifestWidget       `json:"widgets" yaml:"widgets"`
	Source  string                 `json:"-" yaml:"-"`
}

// ManifestWidget places one widget. Chart widgets without configuration use
// their example dataset.
type ManifestWidget struct {
	ID            string         `json:"id,omitempty" yaml:"id,omitempty"`
	Definition    string         `json:"definition" yaml:"definition"`
	Area          string         `json:"area" yaml:"area"`
	Configuration map[string]any `json:"configuration,omitempty" yaml:"configuration,omitempty"`
}

// ReadManifest loads a manifest file from disk.
func ReadManifest(path string) (*LayoutManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader, rejecting unknown fields.
func DecodeManifest(r io.Reader) (*LayoutManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc LayoutManifest
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	if doc.Version == "" {
		doc.Version = ManifestVersion
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks version, required fields and id uniqueness.
func (doc *LayoutManifest) Validate() error {
	if doc.Version != ManifestVersion {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	areas := map[string]bool{}
	for _, area := range doc.areaList() {
		if area.Code == "" {
			return fmt.Errorf("dashboard: manifest area is missing code")
		}
		areas[area.Code] = true
	}
	seen := map[string]bool{}
	for idx, widget := range doc.Widgets {
		if widget.Definition == "" {
			return fmt.Errorf("dashboard: manifest widget at index %d is missing definition", idx)
		}
		if widget.Area == "" {
			return fmt.Errorf("dashboard: manifest widget %s is missing area", widget.Definition)
		}
		if !areas[widget.Area] {
			return fmt.Errorf("dashboard: manifest widget %s references unknown area %s", widget.Definition, widget.Area)
		}
		if widget.ID == "" {
			continue
		}
		if seen[widget.ID] {
			return fmt.Errorf("dashboard: manifest duplicates widget id %s", widget.ID)
		}
		seen[widget.ID] = true
	}
	return nil
}

func (doc *LayoutManifest) areaList() []WidgetAreaDefinition {
	if len(doc.Areas) > 0 {
		return doc.Areas
	}
	return defaultAreaDefinitions
}

// ServiceAreas returns the areas a Service built from this manifest should use.
func (doc *LayoutManifest) ServiceAreas() []WidgetAreaDefinition {
	return append([]WidgetAreaDefinition(nil), doc.areaList()...)
}

// Apply places every widget on svc and returns the placed instances.
func (doc *LayoutManifest) Apply(ctx context.Context, svc *Service) ([]WidgetInstance, error) {
	placed := make([]WidgetInstance, 0, len(doc.Widgets))
	for _, widget := range doc.Widgets {
		cfg := widget.Configuration
		if cfg == nil {
			cfg, _ = ChartDefaults(widget.Definition)
		}
		inst, err := svc.AddWidget(ctx, AddWidgetRequest{
			ID:            widget.ID,
			DefinitionID:  widget.Definition,
			AreaCode:      widget.Area,
			Configuration: cfg,
		})
		if err != nil {
			return placed, fmt.Errorf("dashboard: place %s from %s: %w", widget.Definition, doc.Source, err)
		}
		placed = append(placed, inst)
	}
	return placed, nil
}

// DefaultManifest is the executive dashboard layout used without a manifest file.
func DefaultManifest() *LayoutManifest {
	doc := &LayoutManifest{
		Version: ManifestVersion,
		Name:    "ganaderia-bi",
		Areas:   DefaultAreaDefinitions(),
		Source:  "builtin",
		Widgets: []ManifestWidget{
			{Definition: WidgetKPICards, Area: AreaKPIs},
			{Definition: WidgetAlerts, Area: AreaAlerts},
			{Definition: WidgetRecommendations, Area: AreaRecommendations},
			{Definition: WidgetRealtimeActivity, Area: AreaCharts},
			{Definition: WidgetReportRecommendations, Area: AreaReports},
		},
	}
	for _, entry := range chartCatalog {
		doc.Widgets = append(doc.Widgets, ManifestWidget{Definition: entry.Code, Area: entry.Area})
	}
	return doc
}
