// Package regress defines the contract for the auxiliary learned regressor
// and ships a baseline in-memory implementation.
//
// The real regressor is trained and serialized elsewhere; the core only
// invokes a trained model's predict function. It is treated as a black box
// that may be slow, absent or broken; the hybrid combiner owns the timeout
// and fallback policy, this package just defines the boundary.
package regress

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/hoopsight/hoopsight/internal/domain/feature"
)

// Sentinel kinds for regressor errors.
var (
	ErrUnavailable = errors.New("regressor unavailable")
	ErrBadInput    = errors.New("malformed feature vector")
)

// Output is the auxiliary model's forecast for one matchup.
type Output struct {
	Margin     float64
	Total      float64
	Confidence float64 // the model's own confidence in [0,100]
}

// Regressor maps a feature vector to a margin/total estimate.
type Regressor interface {
	// Predict honors ctx for cancellation and deadline.
	Predict(ctx context.Context, features []float64) (Output, error)
}

// Default baseline model constants.
const (
	defaultConfidence = 55.0
	defaultMinLatency = 2 * time.Millisecond
	defaultMaxLatency = 15 * time.Millisecond
	defaultSeed       = 42
)

// Option applies a configuration option to the Linear regressor.
type Option func(*Linear)

// WithLatencyRange sets the simulated inference latency, modeling an
// external model server the way a real deployment would see it.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(l *Linear) {
		if minLatency > 0 && maxLatency > minLatency {
			l.minLatency = minLatency
			l.maxLatency = maxLatency
		}
	}
}

// WithConfidence sets the model's reported confidence.
func WithConfidence(c float64) Option {
	return func(l *Linear) {
		if c > 0 && c <= 100 {
			l.confidence = c
		}
	}
}

// Linear is a baseline regressor: a fixed linear read of the feature vector.
// It stands in for a trained model in tests, backtests and deployments where
// no trained artifact has been injected yet.
type Linear struct {
	confidence float64
	minLatency time.Duration
	maxLatency time.Duration

	// rng drives the simulated latency; callers hit Predict concurrently,
	// and rand.Rand is not goroutine safe.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLinear creates the baseline regressor.
func NewLinear(opts ...Option) *Linear {
	l := &Linear{
		confidence: defaultConfidence,
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // deterministic for reproducible tests
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Predict implements Regressor.
func (l *Linear) Predict(ctx context.Context, features []float64) (Output, error) {
	if len(features) != feature.Dim {
		return Output{}, fmt.Errorf("%w: got %d features, want %d", ErrBadInput, len(features), feature.Dim)
	}

	l.mu.Lock()
	latency := l.minLatency + time.Duration(l.rng.Int63n(int64(l.maxLatency-l.minLatency)))
	l.mu.Unlock()
	select {
	case <-ctx.Done():
		return Output{}, fmt.Errorf("regressor call: %w", ctx.Err())
	case <-time.After(latency):
	}

	v := feature.Vector{Names: feature.Names, Values: features}

	// Margin leans on the rating gap with small form and rest corrections;
	// the external rating difference acts as a mild independent check.
	margin := 0.8*v.At("net_rating_diff") +
		2.0*v.At("momentum_diff") +
		-1.5*v.At("fatigue_diff") +
		3.0*v.At("health_diff") +
		0.15*(v.At("home_rest_days")-v.At("away_rest_days")) +
		0.2*v.At("ext_net_diff")
	if v.At("neutral") == 0 {
		margin += v.At("home_home_adv")
	}

	// Total from both sides' re-centered per-100 output scaled by pace.
	pace := v.At("pace_avg")
	homePer100 := v.At("home_off") - v.At("away_def") + 100
	awayPer100 := v.At("away_off") - v.At("home_def") + 100
	total := (homePer100 + awayPer100) / 100 * pace

	return Output{Margin: margin, Total: total, Confidence: l.confidence}, nil
}
