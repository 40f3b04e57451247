package dashboard

import (
	"context"
	"sort"
	"sync"
	"time"
)

// CounterSource fetches {count} from a counter's bound endpoint.
type CounterSource interface {
	FetchCount(ctx context.Context, endpoint string) (int, error)
}

// Counter is an element refreshed from its own endpoint.
type Counter struct {
	ID        string    `json:"id"`
	Endpoint  string    `json:"endpoint"`
	Label     string    `json:"label,omitempty"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CounterBoard tracks registered counters and their last values.
type CounterBoard struct {
	mu       sync.RWMutex
	counters map[string]Counter
}

// NewCounterBoard returns an empty board.
func NewCounterBoard() *CounterBoard {
	return &CounterBoard{counters: map[string]Counter{}}
}

// Register adds or rebinds a counter, keeping its last value.
func (b *CounterBoard) Register(id, endpoint, label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	counter := b.counters[id]
	counter.ID, counter.Endpoint, counter.Label = id, endpoint, label
	b.counters[id] = counter
}

// Update stores a fresh count.
func (b *CounterBoard) Update(id string, count int, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	counter, ok := b.counters[id]
	if !ok {
		return
	}
	counter.Count = count
	counter.UpdatedAt = at
	b.counters[id] = counter
}

// Get returns a counter by id.
func (b *CounterBoard) Get(id string) (Counter, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	counter, ok := b.counters[id]
	return counter, ok
}

// List returns counters ordered by id.
func (b *CounterBoard) List() []Counter {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Counter, 0, len(b.counters))
	for _, c := range b.counters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered counters.
func (b *CounterBoard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.counters)
}
