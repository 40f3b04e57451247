package dashboard

import (
	"context"
	"sync"
	"time"
)

// DefaultActivityPoints is the rolling window length of the realtime chart.
const DefaultActivityPoints = 30

// ActivityWindow is a fixed-length series of per-tick activity values
// labelled HH:MM. Pushing drops the oldest point.
type ActivityWindow struct {
	mu     sync.RWMutex
	labels []string
	values []float64
}

// NewActivityWindow seeds size zero-valued points, one minute apart, ending at now.
func NewActivityWindow(size int, now time.Time) *ActivityWindow {
	if size <= 0 {
		size = DefaultActivityPoints
	}
	w := &ActivityWindow{
		labels: make([]string, size),
		values: make([]float64, size),
	}
	for i := 0; i < size; i++ {
		w.labels[i] = now.Add(time.Duration(i-size+1) * time.Minute).Format("15:04")
	}
	return w
}

// Push appends a point and drops the oldest.
func (w *ActivityWindow) Push(at time.Time, value float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.labels = append(w.labels[1:], at.Format("15:04"))
	w.values = append(w.values[1:], value)
}

// Snapshot copies the current labels and values.
func (w *ActivityWindow) Snapshot() ([]string, []float64) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.labels...), append([]float64(nil), w.values...)
}

// Len returns the window size.
func (w *ActivityWindow) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.values)
}

// ActivityChartProvider renders the realtime activity window as a line chart.
type ActivityChartProvider struct {
	window   *ActivityWindow
	renderer *EChartsProvider
}

// NewActivityChartProvider builds a provider over window.
func NewActivityChartProvider(window *ActivityWindow, renderer *EChartsProvider) *ActivityChartProvider {
	if renderer == nil {
		renderer = NewEChartsProvider(ChartLine, WithChartCache(nil))
	}
	return &ActivityChartProvider{window: window, renderer: renderer}
}

// Fetch renders the current window.
func (p *ActivityChartProvider) Fetch(_ context.Context, meta WidgetContext) (WidgetData, error) {
	labels, values := p.window.Snapshot()
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = PointOf(v)
	}
	cfg := meta.Instance.Configuration
	spec := ChartSpec{
		Kind:   ChartLine,
		Title:  stringOr(cfg["title"], "Actividad en Tiempo Real"),
		Labels: labels,
		Series: []ChartSeries{{Name: "Marcas procesadas", Points: points}},
		Theme:  stringOr(cfg["theme"], ""),
	}
	data, err := p.renderer.RenderSpec(meta, spec)
	if err != nil {
		return nil, err
	}
	data["labels"] = labels
	data["values"] = values
	return data, nil
}
