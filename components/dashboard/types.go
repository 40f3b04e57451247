package dashboard

import (
	"context"
	"time"
)

// RefreshHook notifies transports (SSE/WebSocket) about widget changes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// WidgetAreaDefinition models a dashboard area (kpis, alerts, charts, reports).
type WidgetAreaDefinition struct {
	Code        string `json:"code" yaml:"code"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// WidgetDefinition describes a widget and the JSON schema of its configuration.
type WidgetDefinition struct {
	Code        string         `json:"code" yaml:"code"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
	Category    string         `json:"category,omitempty" yaml:"category,omitempty"`
}

// WidgetInstance is a placed widget. ID doubles as the DOM id prefix the
// browser uses to patch the fragment.
type WidgetInstance struct {
	ID            string         `json:"id"`
	DefinitionID  string         `json:"definition_id"`
	AreaCode      string         `json:"area_code"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// ViewerContext captures the active user, locale and the admin route being viewed.
type ViewerContext struct {
	UserID string
	Roles  []string
	Locale string
	Route  string
}

// Layout describes the resolved widget instances per dashboard area.
type Layout struct {
	Areas map[string][]WidgetInstance `json:"areas"`
}

// WidgetEvent describes changes that transports push to mounted views.
type WidgetEvent struct {
	AreaCode  string         `json:"area_code,omitempty"`
	WidgetID  string         `json:"widget_id,omitempty"`
	Reason    string         `json:"reason"`
	Payload   map[string]any `json:"payload,omitempty"`
	// Stream limits delivery to one mounted stream; empty reaches all.
	Stream    string         `json:"stream,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
