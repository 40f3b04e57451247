package dashboard

import (
	"context"
	"io"
	"sync"
)

type stubRenderer struct {
	mu        sync.Mutex
	templates []string
	payloads  []map[string]any
	err       error
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates = append(r.templates, name)
	if payload, ok := data.(map[string]any); ok {
		r.payloads = append(r.payloads, payload)
	}
	markup := "<" + name + ">"
	if len(out) > 0 && out[0] != nil {
		_, _ = out[0].Write([]byte(markup))
	}
	return markup, r.err
}

func (r *stubRenderer) last() (string, map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.templates) == 0 {
		return "", nil
	}
	var payload map[string]any
	if len(r.payloads) > 0 {
		payload = r.payloads[len(r.payloads)-1]
	}
	return r.templates[len(r.templates)-1], payload
}

type collectingHook struct {
	mu     sync.Mutex
	events []WidgetEvent
}

func (h *collectingHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *collectingHook) Events() []WidgetEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]WidgetEvent(nil), h.events...)
}

func (h *collectingHook) reasons() []string {
	var out []string
	for _, e := range h.Events() {
		out = append(out, e.Reason)
	}
	return out
}

type testTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (t *testTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func (t *testTelemetry) has(event string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.events {
		if e == event {
			return true
		}
	}
	return false
}

type recordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

func (n *recordingNotifier) Notify(_ context.Context, level NotificationLevel, message string) Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	note := Notification{Level: level, Message: message}
	n.items = append(n.items, note)
	return note
}

func (n *recordingNotifier) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.items...)
}

type stubReportSource struct {
	mu      sync.Mutex
	calls   int
	reports map[string]ReportPreview
	err     error
}

func (s *stubReportSource) FetchReport(_ context.Context, id string) (ReportPreview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return ReportPreview{}, s.err
	}
	return s.reports[id], nil
}

func (s *stubReportSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
