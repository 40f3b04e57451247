package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// subscriberBuffer is how many events a slow browser may lag behind before
// further events are dropped for it.
const subscriberBuffer = 16

// wsPingInterval keeps idle WebSocket connections open through proxies.
const wsPingInterval = 30 * time.Second

// StreamEventReason is the reason of the first event on every mounted
// stream; its Stream field is the id the page sends back in StreamHeader.
const StreamEventReason = "stream"

// ViewLifecycle is told which admin route a browser is showing so polling
// can follow the open views. ctx carries the mounting stream id.
type ViewLifecycle interface {
	Mount(ctx context.Context, route string) (unmount func())
}

type subscriber struct {
	stream string
	events chan WidgetEvent
}

// BroadcastHook fans widget events out to open SSE and WebSocket streams.
// Events with a Stream id reach that stream only. Publishing never blocks
// on a subscriber.
type BroadcastHook struct {
	mu      sync.RWMutex
	streams map[uint64]subscriber
	seq     uint64
	views   ViewLifecycle
	dropped atomic.Uint64
}

func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{streams: map[uint64]subscriber{}}
}

// SetViewLifecycle makes MountView mount and unmount routes on views.
func (h *BroadcastHook) SetViewLifecycle(views ViewLifecycle) {
	h.mu.Lock()
	h.views = views
	h.mu.Unlock()
}

// WidgetUpdated implements RefreshHook.
func (h *BroadcastHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.streams {
		if event.Stream != "" && event.Stream != sub.stream {
			continue
		}
		select {
		case sub.events <- event:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe opens an anonymous stream that only sees broadcast events. The
// cancel func is idempotent and closes the channel.
func (h *BroadcastHook) Subscribe() (<-chan WidgetEvent, func()) {
	return h.subscribe("")
}

func (h *BroadcastHook) subscribe(streamID string) (<-chan WidgetEvent, func()) {
	stream := make(chan WidgetEvent, subscriberBuffer)
	h.mu.Lock()
	h.seq++
	id := h.seq
	h.streams[id] = subscriber{stream: streamID, events: stream}
	h.mu.Unlock()

	var once sync.Once
	return stream, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.streams, id)
			h.mu.Unlock()
			close(stream)
		})
	}
}

func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams)
}

// Dropped counts events discarded because a subscriber was full.
func (h *BroadcastHook) Dropped() uint64 {
	return h.dropped.Load()
}

// MountView subscribes on behalf of a browser showing route under a fresh
// stream id. The returned func unmounts the route and closes the stream.
func (h *BroadcastHook) MountView(route string) (string, <-chan WidgetEvent, func()) {
	streamID := uuid.NewString()
	events, cancel := h.subscribe(streamID)
	h.mu.RLock()
	views := h.views
	h.mu.RUnlock()
	if views == nil {
		return streamID, events, cancel
	}
	unmount := views.Mount(WithStream(context.Background(), streamID), route)
	return streamID, events, func() {
		unmount()
		cancel()
	}
}

// StreamEvent announces streamID to the page that owns it.
func StreamEvent(streamID string) WidgetEvent {
	return WidgetEvent{
		Reason:    StreamEventReason,
		Stream:    streamID,
		Payload:   map[string]any{"stream": streamID, "header": StreamHeader},
		Timestamp: time.Now(),
	}
}

// pump announces the stream id, then forwards events for route to send
// until ctx ends, stop closes or send fails.
func (h *BroadcastHook) pump(ctx context.Context, route string, stop <-chan struct{}, send func(WidgetEvent) error) {
	streamID, events, done := h.MountView(route)
	defer done()
	if send(StreamEvent(streamID)) != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case event, open := <-events:
			if !open || send(event) != nil {
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWebSocket streams events as JSON messages. The "view" query
// parameter is the admin route the page shows.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// The browser never sends anything meaningful; reading only detects close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	var writeMu sync.Mutex
	write := func(fn func() error) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return fn()
	}
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-gone:
				return
			case <-ticker.C:
				_ = write(func() error {
					return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
				})
			}
		}
	}()

	h.pump(r.Context(), r.URL.Query().Get("view"), gone, func(event WidgetEvent) error {
		return write(func() error { return conn.WriteJSON(event) })
	})
}

// ServeSSE streams events as "event: <reason>" frames with a JSON data line.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}
	flush()

	h.pump(r.Context(), r.URL.Query().Get("view"), nil, func(event WidgetEvent) error {
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Reason, data); err != nil {
			return err
		}
		flush()
		return nil
	})
}
