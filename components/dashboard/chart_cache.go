package dashboard

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// RenderCache memoizes rendered chart HTML.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache keeps rendered chart markup for a fixed TTL. A TTL of zero or
// less turns it into a pass-through.
type ChartCache struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	charts map[uint64]renderedChart
}

type renderedChart struct {
	markup     string
	renderedAt time.Time
}

func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{ttl: ttl, now: time.Now, charts: map[uint64]renderedChart{}}
}

func (c *ChartCache) fresh(chart renderedChart, at time.Time) bool {
	return at.Sub(chart.renderedAt) < c.ttl
}

// GetOrRender serves key from the cache while fresh, otherwise calls
// render and keeps the result. Render errors are never cached.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	id := xxhash.Sum64String(key)
	at := c.now()

	c.mu.Lock()
	chart, hit := c.charts[id]
	c.mu.Unlock()
	if hit && c.fresh(chart, at) {
		return chart.markup, nil
	}

	markup, err := render()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeLocked(at)
	c.charts[id] = renderedChart{markup: markup, renderedAt: at}
	return markup, nil
}

// Purge drops stale charts and returns how many were removed.
func (c *ChartCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purgeLocked(c.now())
}

func (c *ChartCache) purgeLocked(at time.Time) int {
	removed := 0
	for id, chart := range c.charts {
		if !c.fresh(chart, at) {
			delete(c.charts, id)
			removed++
		}
	}
	return removed
}

// Len counts stored charts, stale ones included until the next purge.
func (c *ChartCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.charts)
}

// specHash fingerprints a chart spec so config edits miss the cache.
func specHash(spec ChartSpec) string {
	raw, err := json.Marshal(spec)
	if err != nil {
		return "unhashable"
	}
	return strconv.FormatUint(xxhash.Sum64(raw), 16)
}
