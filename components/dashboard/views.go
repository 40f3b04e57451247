package dashboard

import (
	"context"
	"strings"
)

// DefaultWelcomeRoute is the admin index where the welcome banner shows.
const DefaultWelcomeRoute = "/admin/"

// Views couples view mounts to the scheduler and the welcome banner.
type Views struct {
	Scheduler     *Scheduler
	Notifications *NotificationCenter
	WelcomeRoute  string
}

// Mount implements ViewLifecycle. The welcome banner goes to the stream
// named on ctx.
func (v *Views) Mount(ctx context.Context, route string) func() {
	welcome := v.WelcomeRoute
	if welcome == "" {
		welcome = DefaultWelcomeRoute
	}
	if v.Notifications != nil && strings.TrimSpace(route) == welcome {
		v.Notifications.NotifyFor(ctx, LevelSuccess, WelcomeMessage, WelcomeNotificationDisplay)
	}
	if v.Scheduler == nil {
		return func() {}
	}
	return v.Scheduler.Mount(route)
}
