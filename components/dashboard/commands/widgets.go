package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
)

type widgetService interface {
	AddWidget(ctx context.Context, req dashboard.AddWidgetRequest) (dashboard.WidgetInstance, error)
	RemoveWidget(ctx context.Context, widgetID string) error
	NotifyWidgetUpdated(ctx context.Context, event dashboard.WidgetEvent) error
}

// ErrWidgetIDRequired rejects a removal without a widget id.
var ErrWidgetIDRequired = errors.New("widget id is required")

var errNoService = errors.New("command requires widget service")

// AssignWidgetCommand places a widget in a dashboard area.
type AssignWidgetCommand struct {
	service   widgetService
	telemetry Telemetry
}

func NewAssignWidgetCommand(service widgetService, telemetry Telemetry) *AssignWidgetCommand {
	return &AssignWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[dashboard.AddWidgetRequest] = (*AssignWidgetCommand)(nil)

func (c *AssignWidgetCommand) Execute(ctx context.Context, msg dashboard.AddWidgetRequest) error {
	if c.service == nil {
		return errNoService
	}
	inst, err := c.service.AddWidget(ctx, msg)
	c.telemetry.Record(ctx, dashboard.EventWidgetAssign, map[string]any{
		"definition_id": msg.DefinitionID,
		"area_code":     msg.AreaCode,
		"widget_id":     inst.ID,
		"ok":            err == nil,
	})
	return err
}

// RemoveWidgetInput identifies a placed widget.
type RemoveWidgetInput struct {
	WidgetID string `json:"widget_id"`
}

// RemoveWidgetCommand takes a widget off the dashboard.
type RemoveWidgetCommand struct {
	service   widgetService
	telemetry Telemetry
}

func NewRemoveWidgetCommand(service widgetService, telemetry Telemetry) *RemoveWidgetCommand {
	return &RemoveWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RemoveWidgetInput] = (*RemoveWidgetCommand)(nil)

func (c *RemoveWidgetCommand) Execute(ctx context.Context, msg RemoveWidgetInput) error {
	if c.service == nil {
		return errNoService
	}
	id := strings.TrimSpace(msg.WidgetID)
	if id == "" {
		return ErrWidgetIDRequired
	}
	err := c.service.RemoveWidget(ctx, id)
	c.telemetry.Record(ctx, dashboard.EventWidgetRemove, map[string]any{"widget_id": id, "ok": err == nil})
	return err
}

// RefreshWidgetInput carries the event pushed to mounted views.
type RefreshWidgetInput struct {
	Event dashboard.WidgetEvent `json:"event"`
}

// RefreshWidgetCommand pushes a widget event to subscribers outside the
// poll cycle, e.g. after an admin edit.
type RefreshWidgetCommand struct {
	service   widgetService
	telemetry Telemetry
	now       func() time.Time
}

func NewRefreshWidgetCommand(service widgetService, telemetry Telemetry) *RefreshWidgetCommand {
	return &RefreshWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry), now: time.Now}
}

var _ gocommand.Commander[RefreshWidgetInput] = (*RefreshWidgetCommand)(nil)

// Execute stamps the event (reason "refresh", current time) when the caller
// left those blank.
func (c *RefreshWidgetCommand) Execute(ctx context.Context, msg RefreshWidgetInput) error {
	if c.service == nil {
		return errNoService
	}
	event := msg.Event
	if event.Reason == "" {
		event.Reason = "refresh"
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = c.now()
	}
	err := c.service.NotifyWidgetUpdated(ctx, event)
	c.telemetry.Record(ctx, dashboard.EventWidgetRefresh, map[string]any{
		"area_code": event.AreaCode,
		"widget_id": event.WidgetID,
		"ok":        err == nil,
	})
	return err
}
