package dashboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NotificationLevel is the toast color class.
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
	LevelWarning NotificationLevel = "warning"
	LevelInfo    NotificationLevel = "info"
)

// Color returns the toast background color.
func (l NotificationLevel) Color() string {
	switch l {
	case LevelSuccess:
		return "#28a745"
	case LevelError:
		return "#dc3545"
	case LevelWarning:
		return "#ffc107"
	default:
		return "#17a2b8"
	}
}

// NotificationState is a step of the toast lifecycle.
type NotificationState string

const (
	StateCreated     NotificationState = "created"
	StateVisible     NotificationState = "visible"
	StateAnimatedOut NotificationState = "animated-out"
	StateRemoved     NotificationState = "removed"
)

func (s NotificationState) rank() int {
	switch s {
	case StateVisible:
		return 1
	case StateAnimatedOut:
		return 2
	case StateRemoved:
		return 3
	}
	return 0
}

const (
	DefaultNotificationDisplay = 3 * time.Second
	DefaultNotificationExit    = 300 * time.Millisecond
	WelcomeNotificationDisplay = 5 * time.Second
	WelcomeMessage             = "🐄 ¡Bienvenido al Sistema de Inteligencia de Negocios Ganadero!"
)

// Notification is a transient toast.
type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	State     NotificationState `json:"state"`
	CreatedAt time.Time         `json:"created_at"`
	stream    string
}

// Notifier shows toasts to the stream named by WithStream on ctx, or to every
// mounted view when ctx names none.
type Notifier interface {
	Notify(ctx context.Context, level NotificationLevel, message string) Notification
}

// NotificationOptions configures lifecycle timings.
type NotificationOptions struct {
	Display   time.Duration
	Exit      time.Duration
	Hook      RefreshHook
	Telemetry Telemetry
}

// NotificationCenter walks each notification through
// created, visible, animated-out and removed, publishing every transition.
// States only move forward.
type NotificationCenter struct {
	opts   NotificationOptions
	mu     sync.Mutex
	active map[string]*Notification
	timers map[string]*time.Timer
}

// NewNotificationCenter builds a center with default timings.
func NewNotificationCenter(opts NotificationOptions) *NotificationCenter {
	if opts.Display <= 0 {
		opts.Display = DefaultNotificationDisplay
	}
	if opts.Exit <= 0 {
		opts.Exit = DefaultNotificationExit
	}
	if opts.Hook == nil {
		opts.Hook = noopRefreshHook{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &NotificationCenter{
		opts:   opts,
		active: map[string]*Notification{},
		timers: map[string]*time.Timer{},
	}
}

// Notify shows a toast for the default display duration.
func (c *NotificationCenter) Notify(ctx context.Context, level NotificationLevel, message string) Notification {
	return c.NotifyFor(ctx, level, message, c.opts.Display)
}

// NotifyFor shows a toast for a custom display duration.
func (c *NotificationCenter) NotifyFor(ctx context.Context, level NotificationLevel, message string, display time.Duration) Notification {
	if display <= 0 {
		display = c.opts.Display
	}
	n := &Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		State:     StateCreated,
		CreatedAt: time.Now(),
		stream:    StreamFrom(ctx),
	}
	c.mu.Lock()
	c.active[n.ID] = n
	c.mu.Unlock()
	c.opts.Telemetry.Record(ctx, EventNotificationPrefix+string(level), map[string]any{"message": message})

	bg := context.WithoutCancel(ctx)
	c.publish(bg, *n)
	created := *n
	c.transition(bg, n.ID, StateVisible)

	c.schedule(n.ID, display, func() { c.exit(bg, n.ID) })
	return created
}

// Dismiss skips the remaining display time. It reports false when the
// notification is gone or already leaving.
func (c *NotificationCenter) Dismiss(ctx context.Context, id string) bool {
	c.mu.Lock()
	n, ok := c.active[id]
	if !ok || n.State.rank() >= StateAnimatedOut.rank() {
		c.mu.Unlock()
		return false
	}
	if t := c.timers[id]; t != nil {
		t.Stop()
	}
	c.mu.Unlock()
	return c.exit(context.WithoutCancel(ctx), id)
}

func (c *NotificationCenter) exit(ctx context.Context, id string) bool {
	if !c.transition(ctx, id, StateAnimatedOut) {
		return false
	}
	c.schedule(id, c.opts.Exit, func() {
		c.transition(ctx, id, StateRemoved)
	})
	return true
}

// Active lists notifications not yet removed, oldest first.
func (c *NotificationCenter) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, 0, len(c.active))
	for _, n := range c.active {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (c *NotificationCenter) schedule(id string, after time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.active[id]; !ok {
		return
	}
	c.timers[id] = time.AfterFunc(after, fn)
}

func (c *NotificationCenter) transition(ctx context.Context, id string, state NotificationState) bool {
	c.mu.Lock()
	n, ok := c.active[id]
	if !ok || state.rank() <= n.State.rank() {
		c.mu.Unlock()
		return false
	}
	n.State = state
	snapshot := *n
	if state == StateRemoved {
		delete(c.active, id)
		delete(c.timers, id)
	}
	c.mu.Unlock()
	c.publish(ctx, snapshot)
	return true
}

func (c *NotificationCenter) publish(ctx context.Context, n Notification) {
	_ = c.opts.Hook.WidgetUpdated(ctx, WidgetEvent{
		WidgetID: "notification-" + n.ID,
		Reason:   "notification",
		Payload: map[string]any{
			"id":      n.ID,
			"level":   string(n.Level),
			"color":   n.Level.Color(),
			"message": n.Message,
			"state":   string(n.State),
		},
		Stream:    n.stream,
		Timestamp: time.Now(),
	})
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return nil
}
