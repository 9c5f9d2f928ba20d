// Package queue provides the bounded in-memory queue that decouples result
// submission from result application.
package queue

import (
	"context"
	"sync"

	"github.com/hoopsight/hoopsight/internal/domain/model"
	"github.com/hoopsight/hoopsight/pkg/metrics"
)

// Default queue capacity.
const defaultCapacity = 10_000

// Result is the payload flowing through the queue: a completed game.
type Result = model.Game

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a result. Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, r Result) bool

	// Dequeue returns a channel delivering results in arrival order. The
	// channel closes when the queue closes.
	Dequeue(ctx context.Context) <-chan Result

	// Len returns the number of queued results.
	Len() int

	// Close shuts the queue; no further enqueues are accepted.
	Close() error
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	results chan Result
	mu      sync.RWMutex
	closed  bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*config)

type config struct {
	capacity int
}

// WithCapacity bounds the queue.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	cfg := config{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	metrics.UpdateQueueCapacity(cfg.capacity)
	return &InMemoryQueue{results: make(chan Result, cfg.capacity)}
}

// Enqueue adds a result without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Result) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return false
	}
	select {
	case q.results <- r:
		metrics.UpdateQueueSize(len(q.results))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError("context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError("full")
		return false
	}
}

// Dequeue returns the consumption channel.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Result {
	out := make(chan Result)
	go func() {
		defer close(out)
		for r := range q.results {
			select {
			case out <- r:
				metrics.UpdateQueueSize(len(q.results))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the number of queued results.
func (q *InMemoryQueue) Len() int { return len(q.results) }

// Close shuts the queue down.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.results)
	q.closed = true
	return nil
}
