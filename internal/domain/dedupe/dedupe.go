// Package dedupe defines the interface for submission idempotency tracking.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen submission IDs for at-most-once enqueueing.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen set so the submission can be
	// retried. Intended for the enqueue-failed rollback path only.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper implements Deduper with a bounded seen-set. Eviction is
// FIFO over a ring of recently recorded IDs; with maxSize <= 0 the set is
// unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	head    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.maxSize > 0 {
		// Evict the slot we are about to reuse.
		if old := d.ring[d.head]; old != "" {
			if _, ok := d.seen[old]; ok {
				delete(d.seen, old)
				d.size.Add(-1)
			}
		}
		d.ring[d.head] = id
		d.head = (d.head + 1) % d.maxSize
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)
	// The stale ring slot is left in place; eviction tolerates IDs that are
	// no longer in the map.
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
