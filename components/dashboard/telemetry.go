package dashboard

import (
	"context"
	"strings"
)

// Events recorded through Telemetry. Sinks may match on the prefix
// (EventNotificationPrefix) or on the ".error" suffix.
const (
	EventWidgetAdd           = "dashboard.widget.add"
	EventWidgetRemove        = "dashboard.widget.remove"
	EventWidgetAssign        = "dashboard.widget.assign"
	EventWidgetRefresh       = "dashboard.widget.refresh"
	EventWidgetEvent         = "dashboard.widget.event"
	EventWidgetProviderError = "dashboard.widget.provider_error"
	EventLayoutResolve       = "dashboard.layout.resolve"

	EventPollStart    = "dashboard.poll.start"
	EventPollStop     = "dashboard.poll.stop"
	EventPollTick     = "dashboard.poll.tick"
	EventPollStale    = "dashboard.poll.stale"
	EventPollError    = "dashboard.poll.error"
	EventCounterError = "dashboard.counter.error"

	EventPreviewLoad  = "dashboard.preview.load"
	EventPreviewError = "dashboard.preview.error"

	EventBulkAction             = "dashboard.action.bulk"
	EventRegenerate             = "dashboard.action.regenerate"
	EventRecommendationApply    = "dashboard.recommendation.apply"
	EventRecommendationSchedule = "dashboard.recommendation.schedule"

	EventCommandBulkAction     = "dashboard.command.bulk_action"
	EventCommandRegenerate     = "dashboard.command.regenerate"
	EventCommandRefresh        = "dashboard.command.refresh"
	EventCommandRecommendation = "dashboard.command.recommendation"
	EventNotificationPrefix    = "dashboard.notification."
)

// Telemetry receives dashboard events. Implementations must not block.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// IsFailureEvent reports whether event, with its payload, describes a
// failed operation: an ".error" event or any payload carrying ok=false.
func IsFailureEvent(event string, payload map[string]any) bool {
	if strings.HasSuffix(event, ".error") || strings.HasSuffix(event, "_error") {
		return true
	}
	ok, present := payload["ok"].(bool)
	return present && !ok
}

// IsNoisyEvent marks high-frequency events (poll ticks, toast lifecycle).
func IsNoisyEvent(event string) bool {
	return event == EventPollTick || strings.HasPrefix(event, EventNotificationPrefix)
}

type discardTelemetry struct{}

func (discardTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return discardTelemetry{}
	}
	return t
}

// TelemetryFanout forwards every event to each non-nil sink.
type TelemetryFanout []Telemetry

func (f TelemetryFanout) Record(ctx context.Context, event string, payload map[string]any) {
	for _, sink := range f {
		if sink != nil {
			sink.Record(ctx, event, payload)
		}
	}
}
