package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notificationStates(hook *collectingHook, id string) []string {
	var states []string
	for _, e := range hook.Events() {
		if e.Reason == "notification" && e.Payload["id"] == id {
			states = append(states, e.Payload["state"].(string))
		}
	}
	return states
}

func TestNotificationLifecycleOrder(t *testing.T) {
	hook := &collectingHook{}
	center := NewNotificationCenter(NotificationOptions{
		Display: 10 * time.Millisecond,
		Exit:    5 * time.Millisecond,
		Hook:    hook,
	})

	n := center.Notify(context.Background(), LevelSuccess, "Reporte descargado exitosamente")
	assert.Equal(t, StateCreated, n.State)
	require.Len(t, center.Active(), 1)

	require.Eventually(t, func() bool { return len(center.Active()) == 0 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"created", "visible", "animated-out", "removed"}, notificationStates(hook, n.ID))

	first := hook.Events()[0]
	assert.Equal(t, "#28a745", first.Payload["color"])
	assert.Equal(t, "notification-"+n.ID, first.WidgetID)
}

func TestNotificationDismiss(t *testing.T) {
	hook := &collectingHook{}
	center := NewNotificationCenter(NotificationOptions{
		Display: time.Hour,
		Exit:    time.Millisecond,
		Hook:    hook,
	})
	n := center.Notify(context.Background(), LevelWarning, NoSelectionMessage)

	assert.True(t, center.Dismiss(context.Background(), n.ID))
	require.Eventually(t, func() bool { return len(center.Active()) == 0 }, time.Second, time.Millisecond)
	assert.False(t, center.Dismiss(context.Background(), n.ID))
	assert.Equal(t, []string{"created", "visible", "animated-out", "removed"}, notificationStates(hook, n.ID))
}

func TestNotificationSurvivesCancelledContext(t *testing.T) {
	hook := &collectingHook{}
	center := NewNotificationCenter(NotificationOptions{Display: time.Millisecond, Exit: time.Millisecond, Hook: hook})
	ctx, cancel := context.WithCancel(context.Background())
	n := center.Notify(ctx, LevelError, RefreshFailedMessage)
	cancel()
	require.Eventually(t, func() bool {
		states := notificationStates(hook, n.ID)
		return len(states) == 4
	}, time.Second, time.Millisecond)
}

func TestNotificationLevelColors(t *testing.T) {
	assert.Equal(t, "#dc3545", LevelError.Color())
	assert.Equal(t, "#ffc107", LevelWarning.Color())
	assert.Equal(t, "#17a2b8", LevelInfo.Color())
}

func TestViewsWelcomeOnAdminIndex(t *testing.T) {
	hook := &collectingHook{}
	center := NewNotificationCenter(NotificationOptions{Display: time.Hour, Hook: hook})
	views := &Views{Notifications: center}

	unmount := views.Mount(context.Background(), "/admin/marcas/")
	unmount()
	assert.Empty(t, center.Active())

	views.Mount(context.Background(), "/admin/")
	active := center.Active()
	require.Len(t, active, 1)
	assert.Equal(t, WelcomeMessage, active[0].Message)
	assert.Equal(t, LevelSuccess, active[0].Level)
}

func TestNotificationDismissAfterDisplayElapsed(t *testing.T) {
	hook := &collectingHook{}
	center := NewNotificationCenter(NotificationOptions{Display: time.Millisecond, Exit: time.Hour, Hook: hook})
	n := center.Notify(context.Background(), LevelInfo, RefreshStartedMessage)

	require.Eventually(t, func() bool {
		active := center.Active()
		return len(active) == 1 && active[0].State == StateAnimatedOut
	}, time.Second, time.Millisecond)
	assert.False(t, center.Dismiss(context.Background(), n.ID))
	assert.Equal(t, []string{"created", "visible", "animated-out"}, notificationStates(hook, n.ID))
}

func TestNotificationKeepsItsStream(t *testing.T) {
	hook := &collectingHook{}
	center := NewNotificationCenter(NotificationOptions{Display: time.Hour, Exit: time.Millisecond, Hook: hook})
	n := center.Notify(WithStream(context.Background(), "tab-1"), LevelWarning, NoSelectionMessage)

	require.True(t, center.Dismiss(context.Background(), n.ID))
	require.Eventually(t, func() bool { return len(center.Active()) == 0 }, time.Second, time.Millisecond)
	for _, e := range hook.Events() {
		assert.Equal(t, "tab-1", e.Stream)
	}
	assert.Len(t, hook.Events(), 4)
}
