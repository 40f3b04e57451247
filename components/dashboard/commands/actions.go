package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/ganaderiabi/go-admin-dashboard/components/dashboard"
)

type actionDispatcher interface {
	BulkAction(ctx context.Context, req dashboard.BulkActionRequest) error
	Regenerate(ctx context.Context, id string, confirmed bool) error
	Refresh(ctx context.Context) error
	ApplyRecommendation(ctx context.Context, recType string) dashboard.Notification
	ScheduleRecommendation(ctx context.Context, recType string) dashboard.Notification
}

var errNoDispatcher = errors.New("command requires dispatcher")

// BulkActionCommand runs a changelist action over the selected rows.
type BulkActionCommand struct {
	dispatcher actionDispatcher
	telemetry  Telemetry
}

// NewBulkActionCommand creates the command.
func NewBulkActionCommand(dispatcher actionDispatcher, telemetry Telemetry) *BulkActionCommand {
	return &BulkActionCommand{dispatcher: dispatcher, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[dashboard.BulkActionRequest] = (*BulkActionCommand)(nil)

// Execute forwards to the dispatcher; confirmation and empty-selection errors
// are returned untouched so transports can map them.
func (c *BulkActionCommand) Execute(ctx context.Context, msg dashboard.BulkActionRequest) error {
	if c.dispatcher == nil {
		return errNoDispatcher
	}
	err := c.dispatcher.BulkAction(ctx, msg)
	c.telemetry.Record(ctx, dashboard.EventCommandBulkAction, map[string]any{
		"action":    msg.Action,
		"selected":  len(msg.SelectedIDs),
		"confirmed": msg.Confirmed,
		"ok":        err == nil,
	})
	return err
}

// RegenerateReportInput requests a report rebuild.
type RegenerateReportInput struct {
	ReportID  string `json:"report_id"`
	Confirmed bool   `json:"confirmed,omitempty"`
}

// RegenerateReportCommand asks the admin to rebuild a report.
type RegenerateReportCommand struct {
	dispatcher actionDispatcher
	telemetry  Telemetry
}

// NewRegenerateReportCommand creates the command.
func NewRegenerateReportCommand(dispatcher actionDispatcher, telemetry Telemetry) *RegenerateReportCommand {
	return &RegenerateReportCommand{dispatcher: dispatcher, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RegenerateReportInput] = (*RegenerateReportCommand)(nil)

// Execute forwards to the dispatcher.
func (c *RegenerateReportCommand) Execute(ctx context.Context, msg RegenerateReportInput) error {
	if c.dispatcher == nil {
		return errNoDispatcher
	}
	err := c.dispatcher.Regenerate(ctx, msg.ReportID, msg.Confirmed)
	c.telemetry.Record(ctx, dashboard.EventCommandRegenerate, map[string]any{
		"report_id": msg.ReportID,
		"ok":        err == nil,
	})
	return err
}

// RefreshDashboardInput is the manual refresh button.
type RefreshDashboardInput struct{}

// RefreshDashboardCommand forces a metrics poll.
type RefreshDashboardCommand struct {
	dispatcher actionDispatcher
	telemetry  Telemetry
}

// NewRefreshDashboardCommand creates the command.
func NewRefreshDashboardCommand(dispatcher actionDispatcher, telemetry Telemetry) *RefreshDashboardCommand {
	return &RefreshDashboardCommand{dispatcher: dispatcher, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshDashboardInput] = (*RefreshDashboardCommand)(nil)

// Execute forwards to the dispatcher.
func (c *RefreshDashboardCommand) Execute(ctx context.Context, _ RefreshDashboardInput) error {
	if c.dispatcher == nil {
		return errNoDispatcher
	}
	err := c.dispatcher.Refresh(ctx)
	c.telemetry.Record(ctx, dashboard.EventCommandRefresh, map[string]any{"ok": err == nil})
	return err
}

// RecommendationInput applies or schedules a recommendation by type.
type RecommendationInput struct {
	Type     string `json:"type"`
	Schedule bool   `json:"schedule,omitempty"`
}

// RecommendationCommand acknowledges recommendation buttons.
type RecommendationCommand struct {
	dispatcher actionDispatcher
	telemetry  Telemetry
}

// NewRecommendationCommand creates the command.
func NewRecommendationCommand(dispatcher actionDispatcher, telemetry Telemetry) *RecommendationCommand {
	return &RecommendationCommand{dispatcher: dispatcher, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RecommendationInput] = (*RecommendationCommand)(nil)

// Execute shows the acknowledgement notification.
func (c *RecommendationCommand) Execute(ctx context.Context, msg RecommendationInput) error {
	if c.dispatcher == nil {
		return errNoDispatcher
	}
	if msg.Type == "" {
		return errors.New("recommendation type is required")
	}
	if msg.Schedule {
		c.dispatcher.ScheduleRecommendation(ctx, msg.Type)
	} else {
		c.dispatcher.ApplyRecommendation(ctx, msg.Type)
	}
	c.telemetry.Record(ctx, dashboard.EventCommandRecommendation, map[string]any{
		"type":     msg.Type,
		"schedule": msg.Schedule,
	})
	return nil
}

// DismissNotificationInput identifies a toast.
type DismissNotificationInput struct {
	ID string `json:"id"`
}

type notificationDismisser interface {
	Dismiss(ctx context.Context, id string) bool
}

// DismissNotificationCommand hides a toast before its display time elapses.
type DismissNotificationCommand struct {
	center notificationDismisser
}

// NewDismissNotificationCommand creates the command.
func NewDismissNotificationCommand(center notificationDismisser) *DismissNotificationCommand {
	return &DismissNotificationCommand{center: center}
}

var _ gocommand.Commander[DismissNotificationInput] = (*DismissNotificationCommand)(nil)

// ErrUnknownNotification is returned for ids that are not active.
var ErrUnknownNotification = errors.New("notification not active")

// Execute dismisses the notification.
func (c *DismissNotificationCommand) Execute(ctx context.Context, msg DismissNotificationInput) error {
	if c.center == nil {
		return errors.New("dismiss command requires notification center")
	}
	if !c.center.Dismiss(ctx, msg.ID) {
		return ErrUnknownNotification
	}
	return nil
}
