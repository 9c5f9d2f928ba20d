// Package worker applies submitted game results to the league state.
//
// There is exactly one worker per league, not a pool: measurement updates
// are order-dependent (a later game's update runs against the state earlier
// games produced), so results must be applied strictly in arrival order.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/hoopsight/hoopsight/internal/adapters/mq/queue"
	"github.com/hoopsight/hoopsight/internal/domain/league"
	"github.com/hoopsight/hoopsight/pkg/logger"
	"github.com/hoopsight/hoopsight/pkg/metrics"
)

// Applier incorporates one completed game into league state.
// The league manager satisfies it.
type Applier interface {
	Apply(ctx context.Context, g queue.Result) error
}

// Source is how the worker receives results.
type Source interface {
	Dequeue(ctx context.Context) <-chan queue.Result
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(w *Worker) {
		if log != nil {
			w.log = log
		}
	}
}

// Worker is the single result-apply loop.
type Worker struct {
	source  Source
	applier Applier
	log     logger.Logger

	shutdown chan struct{}
	done     chan struct{}
}

// New creates a Worker.
func New(source Source, applier Applier, opts ...Option) *Worker {
	w := &Worker{
		source:   source,
		applier:  applier,
		log:      logger.Get().Named("result-worker"),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the apply loop.
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	results := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-results:
			if !ok {
				return
			}
			if err := w.applier.Apply(ctx, r); err != nil {
				metrics.RecordWorkerError()
				var dataErr *league.DataError
				if errors.As(err, &dataErr) {
					// Malformed record: dropped for good, not retried.
					w.log.Warn(ctx, "dropping malformed result",
						logger.String("gameID", dataErr.GameID),
						logger.String("reason", dataErr.Reason),
					)
					continue
				}
				w.log.Error(ctx, "failed to apply result", logger.Error(err))
			}
		}
	}
}

// Stop shuts the worker down and waits for the loop to exit.
func (w *Worker) Stop(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown: %w", ctx.Err())
	}
}
