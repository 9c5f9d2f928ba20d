// Package predict produces matchup forecasts: the deterministic filter-only
// predictor and the hybrid combiner that blends in the auxiliary regressor.
package predict

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/hoopsight/hoopsight/internal/domain/model"
	"github.com/hoopsight/hoopsight/internal/domain/scoremodel"
	"github.com/hoopsight/hoopsight/internal/domain/team"
)

// States is the league-state surface the predictor reads.
type States interface {
	State(teamID string) (team.State, team.Uncertainty, error)
}

// Default confidence shaping.
const (
	// confidenceFloor keeps even a dead-even matchup from reporting zero.
	confidenceFloor = 5.0
	confidenceCeil  = 95.0
)

// PredictorOption applies a configuration option to the Predictor.
type PredictorOption func(*Predictor)

// WithConfidenceScale sets how strongly uncertainty discounts confidence.
func WithConfidenceScale(scale float64) PredictorOption {
	return func(p *Predictor) {
		if scale > 0 {
			p.confScale = scale
		}
	}
}

// Predictor computes filter-only forecasts through the shared observation
// model. It is deterministic: the same two states always produce the same
// prediction.
type Predictor struct {
	states    States
	confScale float64
}

// NewPredictor creates a Predictor.
func NewPredictor(states States, opts ...PredictorOption) *Predictor {
	p := &Predictor{states: states, confScale: 1.0}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Predict forecasts one matchup from the two filters' current states.
//
// Margin and total come from scoremodel.Expected, literally the same
// function the filters' measurement updates run through, so the prediction
// path cannot drift from the estimation path.
func (p *Predictor) Predict(home, away string, isNeutral bool) (model.Prediction, error) {
	hs, hu, err := p.states.State(home)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("home team: %w", err)
	}
	as, au, err := p.states.State(away)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("away team: %w", err)
	}

	adv := 0.0
	if !isNeutral {
		adv = hs.HomeAdv
	}
	margin, total := scoremodel.Expected(scoremodel.Inputs{
		HomeOff:       hs.Off,
		HomeDef:       hs.Def,
		AwayOff:       as.Off,
		AwayDef:       as.Def,
		HomeAdvantage: adv,
		Pace:          (hs.Tempo + as.Tempo) / 2,
	})

	return model.Prediction{
		ID:          uuid.NewString(),
		HomeTeam:    home,
		AwayTeam:    away,
		Neutral:     isNeutral,
		Margin:      margin,
		Total:       total,
		Confidence:  p.confidence(margin, hu, au),
		Source:      model.SourceFilterOnly,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// confidence maps predicted-margin magnitude against combined rating
// uncertainty into [0,100]: bigger margins raise it, wider covariances
// lower it.
func (p *Predictor) confidence(margin float64, hu, au team.Uncertainty) float64 {
	sigma := math.Sqrt(hu.OffVar + hu.DefVar + au.OffVar + au.DefVar)
	m := math.Abs(margin)
	conf := 100 * m / (m + p.confScale*sigma)
	return clamp(conf, confidenceFloor, confidenceCeil)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
