package dashboard

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingViews struct {
	mounted   []string
	unmounted int
}

func (v *countingViews) Mount(_ context.Context, route string) func() {
	v.mounted = append(v.mounted, route)
	return func() { v.unmounted++ }
}

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := WidgetEvent{AreaCode: AreaKPIs, Reason: "metrics"}
	require.NoError(t, hook.WidgetUpdated(context.Background(), event))

	select {
	case got := <-ch:
		assert.Equal(t, AreaKPIs, got.AreaCode)
	default:
		t.Fatal("expected event to be delivered")
	}
}

func TestBroadcastHookDropsForSlowSubscribers(t *testing.T) {
	hook := NewBroadcastHook()
	_, cancel := hook.Subscribe()
	for i := 0; i < 64; i++ {
		require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "metrics"}))
	}
	assert.Equal(t, 1, hook.Subscribers())
	assert.Equal(t, uint64(64-subscriberBuffer), hook.Dropped())
	cancel()
	cancel()
	assert.Equal(t, 0, hook.Subscribers())
}

func TestBroadcastHookMountView(t *testing.T) {
	hook := NewBroadcastHook()
	views := &countingViews{}
	hook.SetViewLifecycle(views)

	streamID, _, done := hook.MountView("/admin/analytics/dashboarddata/")
	assert.NotEmpty(t, streamID)
	assert.Equal(t, []string{"/admin/analytics/dashboarddata/"}, views.mounted)
	done()
	assert.Equal(t, 1, views.unmounted)
	assert.Equal(t, 0, hook.Subscribers())
}

func TestBroadcastHookServeSSE(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeSSE))
	defer server.Close()

	resp, err := http.Get(server.URL + "?view=/admin/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: stream\n", line)
	_, err = reader.ReadString('\n')
	require.NoError(t, err)
	_, err = reader.ReadString('\n')
	require.NoError(t, err)

	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{AreaCode: AreaCounters, Reason: "counters"}))
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: counters\n", line)
	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(data, "data: {"))
	assert.Contains(t, data, AreaCounters)
}

func TestBroadcastHookServeWebSocket(t *testing.T) {
	hook := NewBroadcastHook()
	views := &countingViews{}
	hook.SetViewLifecycle(views)
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?view=/admin/analytics/dashboarddata/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	var hello WidgetEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, StreamEventReason, hello.Reason)
	assert.NotEmpty(t, hello.Stream)

	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{AreaCode: AreaKPIs, Reason: "metrics"}))
	var got WidgetEvent
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "metrics", got.Reason)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hook.Subscribers() == 0 }, time.Second, time.Millisecond)
}

func drain(events <-chan WidgetEvent) []WidgetEvent {
	var out []WidgetEvent
	for {
		select {
		case e := <-events:
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestBroadcastHookAddressesStreams(t *testing.T) {
	hook := NewBroadcastHook()
	first, firstEvents, doneFirst := hook.MountView("/admin/")
	defer doneFirst()
	_, secondEvents, doneSecond := hook.MountView("/admin/analytics/marca/")
	defer doneSecond()
	anonymous, cancel := hook.Subscribe()
	defer cancel()

	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "notification", Stream: first}))
	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "metrics"}))

	assert.Len(t, drain(firstEvents), 2)
	second := drain(secondEvents)
	require.Len(t, second, 1)
	assert.Equal(t, "metrics", second[0].Reason)
	assert.Len(t, drain(anonymous), 1)
}

func TestNotificationsReachOnlyTheirView(t *testing.T) {
	hook := NewBroadcastHook()
	center := NewNotificationCenter(NotificationOptions{Display: time.Hour, Hook: hook})
	hook.SetViewLifecycle(&Views{Notifications: center})
	dispatcher := NewDispatcher(DispatcherOptions{Notifier: center})

	index, indexEvents, doneIndex := hook.MountView("/admin/")
	defer doneIndex()
	_, otherEvents, doneOther := hook.MountView("/admin/analytics/marca/")
	defer doneOther()

	ctx := WithStream(context.Background(), index)
	require.ErrorIs(t, dispatcher.BulkAction(ctx, BulkActionRequest{ChangelistURL: "/admin/marcas/", Action: "aprobar_marcas"}), ErrNoSelection)

	var messages []string
	for _, e := range drain(indexEvents) {
		assert.Equal(t, index, e.Stream)
		if e.Payload["state"] == string(StateCreated) {
			messages = append(messages, e.Payload["message"].(string))
		}
	}
	assert.Equal(t, []string{WelcomeMessage, NoSelectionMessage}, messages)
	assert.Empty(t, drain(otherEvents))
}
