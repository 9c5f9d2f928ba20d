package team

import (
	"math"

	"github.com/hoopsight/hoopsight/internal/domain/kalman"
	"github.com/hoopsight/hoopsight/internal/domain/model"
	"github.com/hoopsight/hoopsight/internal/domain/scoremodel"
)

// Step carries the externally derived inputs for one time update.
type Step struct {
	// RestDays since the team's previous game. Same-day games are 0.
	RestDays float64
	// Health is the latest availability signal in [0,1]; NaN keeps the
	// current estimate.
	Health float64
	// FormPull is the recent-form signal in [-1,1] that momentum is pulled
	// toward while it decays.
	FormPull float64
}

// Filter tracks one team's latent state and its uncertainty.
// It has two phases: before the first observed game it simply reports the
// neutral prior; from the first Update on it is tracking.
//
// Not safe for concurrent use; the league manager serializes access.
type Filter struct {
	cfg   Config
	kf    *kalman.Filter
	games int
}

// NewFilter creates a filter initialized to the neutral prior.
func NewFilter(cfg Config) *Filter {
	cfg = cfg.Normalize()
	return &Filter{
		cfg: cfg,
		kf:  kalman.New(cfg.Prior().vector(), cfg.priorVar()),
	}
}

// Tracking reports whether at least one game has been observed.
func (f *Filter) Tracking() bool { return f.games > 0 }

// Games returns the number of observed games.
func (f *Filter) Games() int { return f.games }

// State returns the current estimate as a value snapshot.
func (f *Filter) State() State {
	return stateFrom(f.kf.State())
}

// Uncertainty returns the covariance diagonal terms of interest.
func (f *Filter) Uncertainty() Uncertainty {
	return uncertaintyFrom(f.kf.VarDiag())
}

// Clone returns an independent deep copy, used for copy-on-write rebuilds.
func (f *Filter) Clone() *Filter {
	return &Filter{cfg: f.cfg, kf: f.kf.Clone(), games: f.games}
}

// Predict advances the state one step ahead of the next game.
//
// Per-component process model: ratings and tempo random-walk, momentum
// decays toward zero while being pulled toward recent form, and fatigue
// decays with rest. Only those smooth dynamics run through the sigma
// propagation; clamping a sigma point sitting at a bound would drag the
// unscented mean off the bound, so the health signal and the bound clips
// are applied to the mean afterwards, the same way Update re-clips.
func (f *Filter) Predict(step Step) {
	decay := f.cfg.MomentumDecay
	restFactor := math.Exp(-math.Max(step.RestDays, 0) / f.cfg.FatigueRestTau)

	process := func(x []float64) []float64 {
		next := make([]float64, Dim)
		copy(next, x)
		next[Momentum] = decay*x[Momentum] + (1-decay)*step.FormPull
		next[Fatigue] = x[Fatigue] * restFactor
		return next
	}
	f.kf.Predict(process, f.cfg.processNoise())

	st := f.kf.State()
	health := st[Health]
	if !math.IsNaN(step.Health) {
		health = step.Health
	}
	f.kf.SetComponent(Health, clamp(health, 0, 1))
	f.kf.SetComponent(HomeAdv, clamp(st[HomeAdv], HomeAdvMin, HomeAdvMax))
	f.kf.SetComponent(Tempo, clamp(st[Tempo], TempoMin, TempoMax))
	f.kf.SetComponent(Fatigue, math.Max(0, st[Fatigue]))
}

// Update incorporates a finished game. opp must be the opponent's state as it
// was before either side updated for this game, so that the two per-team
// updates within one game do not double count each other.
//
// home says whether this filter's team was the nominal home side; neutral
// suppresses the home-advantage term for both sides.
func (f *Filter) Update(obs model.Observation, opp State, home, neutral bool) kalman.UpdateStats {
	measure := f.MeasurementFunc(opp, home, neutral)

	z := []float64{obs.Margin, obs.Total}
	if !home {
		z[0] = -obs.Margin
	}

	noise := []float64{
		f.cfg.MarginNoise * f.cfg.MarginNoise,
		f.cfg.TotalNoise * f.cfg.TotalNoise,
	}
	stats := f.kf.Update(z, measure, noise)

	// Post-update housekeeping: re-clip bounded components and charge the
	// game's fatigue load.
	st := f.kf.State()
	f.kf.SetComponent(HomeAdv, clamp(st[HomeAdv], HomeAdvMin, HomeAdvMax))
	f.kf.SetComponent(Health, clamp(st[Health], 0, 1))
	f.kf.SetComponent(Tempo, clamp(st[Tempo], TempoMin, TempoMax))
	f.kf.SetComponent(Fatigue, math.Max(0, st[Fatigue])+f.cfg.FatigueLoad)

	f.games++
	return stats
}

// MeasurementFunc builds the observation function used by Update: the
// expected (margin, total) seen from this team's side of the matchup, as a
// function of this team's state vector with the opponent held fixed. Margin
// is negated for the away side so the innovation has a consistent sign.
//
// The formula itself lives in scoremodel so the standalone predictor is
// guaranteed to agree with the filter.
func (f *Filter) MeasurementFunc(opp State, home, neutral bool) kalman.MeasurementFunc {
	return func(x []float64) []float64 {
		own := stateFrom(x)
		pace := (clamp(own.Tempo, TempoMin, TempoMax) + clamp(opp.Tempo, TempoMin, TempoMax)) / 2

		var in scoremodel.Inputs
		in.Pace = pace
		if home {
			in.HomeOff, in.HomeDef = own.Off, own.Def
			in.AwayOff, in.AwayDef = opp.Off, opp.Def
			if !neutral {
				in.HomeAdvantage = clamp(own.HomeAdv, HomeAdvMin, HomeAdvMax)
			}
		} else {
			in.HomeOff, in.HomeDef = opp.Off, opp.Def
			in.AwayOff, in.AwayDef = own.Off, own.Def
			if !neutral {
				in.HomeAdvantage = clamp(opp.HomeAdv, HomeAdvMin, HomeAdvMax)
			}
		}

		margin, total := scoremodel.Expected(in)
		if !home {
			margin = -margin
		}
		return []float64{margin, total}
	}
}

// Repairs returns how many covariance repairs this filter has performed.
func (f *Filter) Repairs() int { return f.kf.Repairs() }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
