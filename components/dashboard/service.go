package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ettle/strcase"
	"github.com/google/uuid"
)

// Options configures the dashboard Service.
type Options struct {
	Providers       ProviderRegistry
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Areas           []WidgetAreaDefinition
}

// Service holds the dashboard layout and resolves widget data for viewers.
type Service struct {
	opts Options

	mu      sync.RWMutex
	widgets map[string][]WidgetInstance
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Providers == nil {
		opts.Providers = NewRegistry()
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	if len(opts.Areas) == 0 {
		opts.Areas = DefaultAreaDefinitions()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts, widgets: map[string][]WidgetInstance{}}
}

// Providers exposes the registry.
func (s *Service) Providers() ProviderRegistry { return s.opts.Providers }

// Areas lists the configured areas in display order.
func (s *Service) Areas() []WidgetAreaDefinition {
	return append([]WidgetAreaDefinition(nil), s.opts.Areas...)
}

// AddWidgetRequest places a widget in an area.
type AddWidgetRequest struct {
	ID            string         `json:"id,omitempty"`
	DefinitionID  string         `json:"definition_id"`
	AreaCode      string         `json:"area_code"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Position      *int           `json:"position,omitempty"`
}

// AddWidget validates the configuration and places a widget instance. An
// empty ID derives one from the definition code (kebab case).
func (s *Service) AddWidget(ctx context.Context, req AddWidgetRequest) (WidgetInstance, error) {
	if req.AreaCode == "" {
		return WidgetInstance{}, errInvalidArea
	}
	if req.DefinitionID == "" {
		return WidgetInstance{}, errInvalidDefinition
	}
	if !s.knownArea(req.AreaCode) {
		return WidgetInstance{}, fmt.Errorf("dashboard: unknown area %s", req.AreaCode)
	}
	if _, ok := s.opts.Providers.Definition(req.DefinitionID); !ok {
		return WidgetInstance{}, fmt.Errorf("dashboard: widget definition %s not found", req.DefinitionID)
	}
	if err := s.validateConfiguration(req.DefinitionID, req.Configuration); err != nil {
		return WidgetInstance{}, err
	}

	s.mu.Lock()
	id := req.ID
	if id == "" {
		id = s.deriveIDLocked(req.DefinitionID)
	} else if _, _, exists := s.findLocked(id); exists {
		s.mu.Unlock()
		return WidgetInstance{}, fmt.Errorf("dashboard: widget id %s already placed", id)
	}
	instance := WidgetInstance{
		ID:            id,
		DefinitionID:  req.DefinitionID,
		AreaCode:      req.AreaCode,
		Configuration: req.Configuration,
		Metadata:      map[string]any{"created_at": time.Now().UTC()},
	}
	area := s.widgets[req.AreaCode]
	pos := len(area)
	if req.Position != nil && *req.Position >= 0 && *req.Position < pos {
		pos = *req.Position
	}
	area = append(area, WidgetInstance{})
	copy(area[pos+1:], area[pos:])
	area[pos] = instance
	s.widgets[req.AreaCode] = area
	s.mu.Unlock()

	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode:  req.AreaCode,
		WidgetID:  instance.ID,
		Reason:    "add",
		Timestamp: time.Now(),
	}); err != nil {
		return instance, err
	}
	s.recordTelemetry(ctx, EventWidgetAdd, map[string]any{
		"area_code":     req.AreaCode,
		"definition_id": req.DefinitionID,
		"widget_id":     instance.ID,
	})
	return instance, nil
}

// RemoveWidget deletes a placed widget.
func (s *Service) RemoveWidget(ctx context.Context, widgetID string) error {
	if widgetID == "" {
		return errors.New("dashboard: widget id is required")
	}
	s.mu.Lock()
	area, idx, ok := s.findLocked(widgetID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("dashboard: widget %s not found", widgetID)
	}
	list := s.widgets[area]
	s.widgets[area] = append(list[:idx:idx], list[idx+1:]...)
	s.mu.Unlock()

	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode:  area,
		WidgetID:  widgetID,
		Reason:    "delete",
		Timestamp: time.Now(),
	}); err != nil {
		return err
	}
	s.recordTelemetry(ctx, EventWidgetRemove, map[string]any{"widget_id": widgetID})
	return nil
}

// Widgets lists every placed widget, area by area.
func (s *Service) Widgets() []WidgetInstance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []WidgetInstance
	for _, area := range s.opts.Areas {
		out = append(out, s.widgets[area.Code]...)
	}
	return out
}

// ConfigureLayout resolves every area with provider data attached.
func (s *Service) ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error) {
	layout := Layout{Areas: make(map[string][]WidgetInstance, len(s.opts.Areas))}
	for _, area := range s.opts.Areas {
		s.mu.RLock()
		widgets := append([]WidgetInstance(nil), s.widgets[area.Code]...)
		s.mu.RUnlock()
		layout.Areas[area.Code] = s.attachProviderData(ctx, viewer, widgets)
	}
	s.recordTelemetry(ctx, EventLayoutResolve, map[string]any{
		"viewer": viewer.UserID,
		"route":  viewer.Route,
	})
	return layout, nil
}

// ResolveWidget returns one widget with fresh provider data.
func (s *Service) ResolveWidget(ctx context.Context, viewer ViewerContext, widgetID string) (WidgetInstance, error) {
	s.mu.RLock()
	area, idx, ok := s.findLocked(widgetID)
	var inst WidgetInstance
	if ok {
		inst = s.widgets[area][idx]
	}
	s.mu.RUnlock()
	if !ok {
		return WidgetInstance{}, fmt.Errorf("dashboard: widget %s not found", widgetID)
	}
	resolved := s.attachProviderData(ctx, viewer, []WidgetInstance{inst})
	return resolved[0], nil
}

// NotifyWidgetUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyWidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, EventWidgetEvent, map[string]any{
		"area_code": event.AreaCode,
		"widget_id": event.WidgetID,
		"reason":    event.Reason,
	})
	return nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func (s *Service) validateConfiguration(definitionID string, config map[string]any) error {
	def, ok := s.opts.Providers.Definition(definitionID)
	if !ok {
		return nil
	}
	return s.opts.ConfigValidator.Validate(def, config)
}

func (s *Service) knownArea(code string) bool {
	for _, area := range s.opts.Areas {
		if area.Code == code {
			return true
		}
	}
	return false
}

func (s *Service) findLocked(id string) (string, int, bool) {
	for area, list := range s.widgets {
		for i, w := range list {
			if w.ID == id {
				return area, i, true
			}
		}
	}
	return "", 0, false
}

func (s *Service) deriveIDLocked(definitionID string) string {
	base := definitionID
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		base = base[idx+1:]
	}
	base = strcase.ToKebab(base)
	if _, _, taken := s.findLocked(base); !taken {
		return base
	}
	return base + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

func (s *Service) attachProviderData(ctx context.Context, viewer ViewerContext, widgets []WidgetInstance) []WidgetInstance {
	if len(widgets) == 0 {
		return widgets
	}
	enriched := make([]WidgetInstance, len(widgets))
	copy(enriched, widgets)
	for i, inst := range enriched {
		provider, ok := s.opts.Providers.Provider(inst.DefinitionID)
		if !ok || provider == nil {
			continue
		}
		data, err := provider.Fetch(ctx, WidgetContext{Instance: inst, Viewer: viewer})
		meta := make(map[string]any, len(inst.Metadata)+1)
		for k, v := range inst.Metadata {
			meta[k] = v
		}
		if err != nil {
			s.recordTelemetry(ctx, EventWidgetProviderError, map[string]any{
				"definition_id": inst.DefinitionID,
				"widget_id":     inst.ID,
				"error":         err.Error(),
			})
			meta["error"] = err.Error()
			enriched[i].Metadata = meta
			continue
		}
		meta["data"] = data
		enriched[i].Metadata = meta
	}
	return enriched
}
