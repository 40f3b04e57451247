package dashboard

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Provider loads the payload a widget template renders.
type Provider interface {
	Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error)
}

type ProviderFunc func(ctx context.Context, meta WidgetContext) (WidgetData, error)

func (f ProviderFunc) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	return f(ctx, meta)
}

// WidgetContext is what a provider sees: the placed instance and who is
// looking at it.
type WidgetContext struct {
	Instance WidgetInstance
	Viewer   ViewerContext
}

// WidgetData is the template payload of a single widget.
type WidgetData map[string]any

// ProviderRegistry is the lookup Service and RegisterRuntimeProviders work
// against. *Registry is the only implementation.
type ProviderRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterProvider(code string, provider Provider) error
	Definition(code string) (WidgetDefinition, bool)
	Provider(code string) (Provider, bool)
	Definitions() []WidgetDefinition
	Unbound() []string
}

var _ ProviderRegistry = (*Registry)(nil)

// Registry holds widget definitions and the providers that feed them.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]WidgetDefinition
	providers   map[string]Provider
}

// NewRegistry builds a registry seeded with defs, or with the built-in
// catalog and its chart providers when none are given. Providers needing
// runtime state (metrics board, preview service) are attached by
// RegisterRuntimeProviders.
func NewRegistry(defs ...WidgetDefinition) *Registry {
	reg := &Registry{
		definitions: map[string]WidgetDefinition{},
		providers:   map[string]Provider{},
	}
	builtin := len(defs) == 0
	if builtin {
		defs = DefaultWidgetDefinitions()
	}
	for _, def := range defs {
		_ = reg.RegisterDefinition(def)
	}
	if builtin {
		_ = registerChartProviders(reg)
	}
	return reg
}

// RegisterDefinition stores widget metadata, replacing any earlier
// definition with the same code.
func (r *Registry) RegisterDefinition(def WidgetDefinition) error {
	if strings.TrimSpace(def.Code) == "" {
		return fmt.Errorf("dashboard: widget definition code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Code] = def
	return nil
}

// RegisterProvider binds a provider to an existing definition.
func (r *Registry) RegisterProvider(code string, provider Provider) error {
	if provider == nil {
		return fmt.Errorf("dashboard: provider for %q cannot be nil", code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[code]; !ok {
		return fmt.Errorf("dashboard: widget definition %q not found", code)
	}
	r.providers[code] = provider
	return nil
}

func (r *Registry) Definition(code string) (WidgetDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[code]
	return def, ok
}

func (r *Registry) Provider(code string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[code]
	return provider, ok
}

// Definitions returns all registered definitions ordered by code.
func (r *Registry) Definitions() []WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]WidgetDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	slices.SortFunc(defs, func(a, b WidgetDefinition) int { return strings.Compare(a.Code, b.Code) })
	return defs
}

// Unbound lists, in order, the definition codes that have no provider yet.
func (r *Registry) Unbound() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var codes []string
	for code := range r.definitions {
		if _, ok := r.providers[code]; !ok {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes)
	return codes
}
