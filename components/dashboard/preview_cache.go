package dashboard

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// PreviewCacheOptions bounds the preview cache. MaxEntries <= 0 keeps every
// entry for the life of the process.
type PreviewCacheOptions struct {
	MaxEntries int
	Hooks      CacheHooks
}

// CacheHooks observe cache traffic (metrics).
type CacheHooks struct {
	OnHit   func(id string)
	OnMiss  func(id string)
	OnStore func(id string)
	OnEvict func(id string)
}

// PreviewEntry is a rendered preview plus the report it was rendered from.
type PreviewEntry struct {
	ID       string
	Markup   string
	Report   ReportPreview
	StoredAt time.Time
}

// PreviewLoader renders a preview on a cache miss.
type PreviewLoader func(ctx context.Context, id string) (PreviewEntry, error)

// PreviewCache maps report ids to rendered preview markup. Populated entries
// are never overwritten; Forget drops one so the next read reloads it.
type PreviewCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
	opts    PreviewCacheOptions
	group   singleflight.Group
}

// NewPreviewCache builds an empty cache.
func NewPreviewCache(opts PreviewCacheOptions) *PreviewCache {
	return &PreviewCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		opts:    opts,
	}
}

// Get returns the cached markup for id.
func (c *PreviewCache) Get(id string) (string, bool) {
	entry, ok := c.lookup(id)
	if !ok {
		return "", false
	}
	return entry.Markup, true
}

// Entry returns the full cached entry for id.
func (c *PreviewCache) Entry(id string) (PreviewEntry, bool) {
	return c.lookup(id)
}

// Put stores markup for id unless an entry already exists.
func (c *PreviewCache) Put(id, markup string) bool {
	return c.store(PreviewEntry{ID: id, Markup: markup})
}

// GetOrLoad returns the cached entry or calls load once per id across
// concurrent callers. Failed loads are not cached.
func (c *PreviewCache) GetOrLoad(ctx context.Context, id string, load PreviewLoader) (PreviewEntry, error) {
	if entry, ok := c.lookup(id); ok {
		c.hook(c.opts.Hooks.OnHit, id)
		return entry, nil
	}
	c.hook(c.opts.Hooks.OnMiss, id)
	result, err, _ := c.group.Do(id, func() (any, error) {
		if entry, ok := c.lookup(id); ok {
			return entry, nil
		}
		entry, err := load(ctx, id)
		if err != nil {
			return PreviewEntry{}, err
		}
		entry.ID = id
		c.store(entry)
		if stored, ok := c.lookup(id); ok {
			return stored, nil
		}
		return entry, nil
	})
	if err != nil {
		return PreviewEntry{}, err
	}
	return result.(PreviewEntry), nil
}

// Forget removes id so the next read reloads it.
func (c *PreviewCache) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[id]; ok {
		c.order.Remove(el)
		delete(c.entries, id)
	}
}

// Len reports the number of cached previews.
func (c *PreviewCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Snapshot lists cached entries from most to least recently used.
func (c *PreviewCache) Snapshot() []PreviewEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]PreviewEntry, 0, len(c.entries))
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(PreviewEntry))
	}
	return out
}

func (c *PreviewCache) lookup(id string) (PreviewEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[id]
	if !ok {
		return PreviewEntry{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(PreviewEntry), true
}

func (c *PreviewCache) store(entry PreviewEntry) bool {
	if entry.StoredAt.IsZero() {
		entry.StoredAt = time.Now()
	}
	c.mu.Lock()
	if _, exists := c.entries[entry.ID]; exists {
		c.mu.Unlock()
		return false
	}
	c.entries[entry.ID] = c.order.PushFront(entry)
	evicted := c.evictLocked()
	c.mu.Unlock()

	c.hook(c.opts.Hooks.OnStore, entry.ID)
	for _, id := range evicted {
		c.hook(c.opts.Hooks.OnEvict, id)
	}
	return true
}

func (c *PreviewCache) evictLocked() []string {
	if c.opts.MaxEntries <= 0 {
		return nil
	}
	var evicted []string
	for len(c.entries) > c.opts.MaxEntries {
		victim := c.order.Back()
		if victim == nil {
			break
		}
		entry := c.order.Remove(victim).(PreviewEntry)
		delete(c.entries, entry.ID)
		evicted = append(evicted, entry.ID)
	}
	return evicted
}

func (c *PreviewCache) hook(fn func(string), id string) {
	if fn != nil {
		fn(id)
	}
}
