package predict

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/hoopsight/hoopsight/internal/domain/feature"
	"github.com/hoopsight/hoopsight/internal/domain/model"
	"github.com/hoopsight/hoopsight/internal/domain/regress"
	"github.com/hoopsight/hoopsight/pkg/logger"
	"github.com/hoopsight/hoopsight/pkg/metrics"
)

// Sentinel kinds for combiner errors.
var (
	ErrInvalidWeights = errors.New("blend weights must have a positive sum")
)

// Default blend policy.
const (
	defaultFilterWeight    = 0.6
	defaultAuxWeight       = 0.4
	defaultRegressorBudget = 250 * time.Millisecond

	// Confidence adjustment when the two predictors agree or disagree on
	// the winner. Tunable policy, not a law of nature.
	defaultAgreementBoost      = 0.05
	defaultDisagreementPenalty = 0.15
)

// Features builds the regressor's input for a matchup.
type Features interface {
	Build(ctx context.Context, home, away string, isNeutral bool, asOf time.Time) (feature.Vector, error)
}

// CombinerOption applies a configuration option to the Combiner.
type CombinerOption func(*Combiner)

// WithWeights sets the raw blend weights. They are normalized to sum to 1
// at construction: configuring (5, 5) behaves exactly like (0.5, 0.5). An
// un-normalized pair silently rescales every output, which is why raw
// weights are never used directly.
func WithWeights(filterWeight, auxWeight float64) CombinerOption {
	return func(c *Combiner) {
		c.rawFilterW = filterWeight
		c.rawAuxW = auxWeight
	}
}

// WithRegressor injects the auxiliary regressor. A nil regressor simply
// means every prediction is filter-only.
func WithRegressor(r regress.Regressor) CombinerOption {
	return func(c *Combiner) { c.regressor = r }
}

// WithRegressorBudget bounds the regressor call; exceeding it degrades to
// filter-only rather than blocking the prediction.
func WithRegressorBudget(d time.Duration) CombinerOption {
	return func(c *Combiner) {
		if d > 0 {
			c.budget = d
		}
	}
}

// WithAgreementPolicy tunes the confidence adjustment for directional
// agreement between the two predictors.
func WithAgreementPolicy(boost, penalty float64) CombinerOption {
	return func(c *Combiner) {
		if boost >= 0 {
			c.agreeBoost = boost
		}
		if penalty >= 0 {
			c.disagreePenalty = penalty
		}
	}
}

// WithCombinerLogger sets a custom logger.
func WithCombinerLogger(log logger.Logger) CombinerOption {
	return func(c *Combiner) {
		if log != nil {
			c.log = log
		}
	}
}

// Combiner blends the filter-only forecast with the auxiliary regressor's.
// Any regressor failure (absent, erroring, malformed input, over budget)
// degrades to filter-only output with the reason recorded on the
// prediction; it never propagates to the caller.
type Combiner struct {
	predictor *Predictor
	features  Features
	regressor regress.Regressor

	rawFilterW float64
	rawAuxW    float64
	filterW    float64
	auxW       float64

	budget          time.Duration
	agreeBoost      float64
	disagreePenalty float64
	log             logger.Logger
}

// NewCombiner creates a Combiner. Returns ErrInvalidWeights if the
// configured weights cannot be normalized.
func NewCombiner(predictor *Predictor, features Features, opts ...CombinerOption) (*Combiner, error) {
	c := &Combiner{
		predictor:       predictor,
		features:        features,
		rawFilterW:      defaultFilterWeight,
		rawAuxW:         defaultAuxWeight,
		budget:          defaultRegressorBudget,
		agreeBoost:      defaultAgreementBoost,
		disagreePenalty: defaultDisagreementPenalty,
		log:             logger.Get().Named("combiner"),
	}
	for _, opt := range opts {
		opt(c)
	}

	sum := c.rawFilterW + c.rawAuxW
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, ErrInvalidWeights
	}
	c.filterW = c.rawFilterW / sum
	c.auxW = c.rawAuxW / sum
	return c, nil
}

// Weights returns the normalized blend weights actually used.
func (c *Combiner) Weights() (filterW, auxW float64) {
	return c.filterW, c.auxW
}

// Predict forecasts one matchup, hybrid when the regressor cooperates.
func (c *Combiner) Predict(ctx context.Context, home, away string, isNeutral bool) (model.Prediction, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPredictionLatency(float64(time.Since(start).Milliseconds()))
	}()

	filterPred, err := c.predictor.Predict(home, away, isNeutral)
	if err != nil {
		return model.Prediction{}, err
	}

	aux, reason := c.auxiliary(ctx, home, away, isNeutral)
	if reason != "" {
		c.log.Warn(ctx, "degrading to filter-only prediction",
			logger.String("home", home),
			logger.String("away", away),
			logger.String("reason", reason),
		)
		metrics.RecordRegressorFallback(reason)
		metrics.RecordPrediction(string(model.SourceFilterOnly))
		filterPred.Degraded = reason
		return filterPred, nil
	}

	out := filterPred
	out.Margin = c.filterW*filterPred.Margin + c.auxW*aux.Margin
	out.Total = c.filterW*filterPred.Total + c.auxW*aux.Total
	out.Confidence = c.blendConfidence(filterPred, aux)
	out.Source = model.SourceHybrid

	metrics.RecordPrediction(string(model.SourceHybrid))
	return out, nil
}

// auxiliary runs the regressor under the configured budget. Returns a
// non-empty degradation reason instead of an error on any failure.
func (c *Combiner) auxiliary(ctx context.Context, home, away string, isNeutral bool) (regress.Output, string) {
	if c.regressor == nil {
		return regress.Output{}, "regressor_missing"
	}

	vec, err := c.features.Build(ctx, home, away, isNeutral, time.Now().UTC())
	if err != nil {
		return regress.Output{}, "feature_build_failed"
	}

	callCtx, cancel := context.WithTimeout(ctx, c.budget)
	defer cancel()

	start := time.Now()
	out, err := c.regressor.Predict(callCtx, vec.Values)
	metrics.RecordRegressorLatency(float64(time.Since(start).Milliseconds()))

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return regress.Output{}, "regressor_timeout"
	case err != nil:
		return regress.Output{}, "regressor_error"
	case !finite(out.Margin) || !finite(out.Total):
		return regress.Output{}, "regressor_degenerate_output"
	}
	return out, ""
}

// blendConfidence mixes the two predictors' confidences by the blend
// weights, then nudges the result up when both agree on the winner and down
// when they do not.
func (c *Combiner) blendConfidence(filterPred model.Prediction, aux regress.Output) float64 {
	auxConf := aux.Confidence
	if auxConf <= 0 || auxConf > 100 {
		auxConf = filterPred.Confidence
	}
	conf := c.filterW*filterPred.Confidence + c.auxW*auxConf

	agree := filterPred.Margin*aux.Margin > 0
	if agree {
		conf *= 1 + c.agreeBoost
	} else {
		conf *= 1 - c.disagreePenalty
	}
	return clamp(conf, 0, 100)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
