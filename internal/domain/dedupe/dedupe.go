// Package dedupe provides idempotency tracking for submitted game results.
// A result replayed by an upstream feed must not run a second measurement
// update against the filters.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen ids to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an id, allowing a retry after the record was marked
	// seen but failed to be processed (e.g. queue backpressure).
	Unrecord(ctx context.Context, id string)

	// Size returns the number of tracked ids.
	Size() int
}

// Default bound on tracked ids.
const defaultMaxSize = 100_000

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of ids kept; oldest are evicted first.
// A non-positive size means unbounded.
func WithMaxSize(n int) Option {
	return func(d *inMemoryDeduper) { d.maxSize = n }
}

// inMemoryDeduper tracks ids in a map plus a FIFO ring for bounded eviction:
// once full, recording a new id forgets the oldest one.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	head    int
	maxSize int
}

// NewInMemoryDeduper creates an in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.order = make([]string, 0, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		oldest := d.order[d.head]
		delete(d.seen, oldest)
		d.order[d.head] = id
		d.head = (d.head + 1) % d.maxSize
	} else if d.maxSize > 0 {
		d.order = append(d.order, id)
	}
	d.seen[id] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, id)
	// The ring slot, if any, is left behind; it is harmless and will age out.
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
