// Package feature assembles the fixed-order numeric vector the auxiliary
// regressor consumes for one matchup.
//
// The vector combines both filter states, selected uncertainty terms,
// history-derived differentials and game context. The bookmaker's posted
// line for the game being predicted is deliberately not a feature: feeding
// the market's answer back into the model that is supposed to beat it is
// data leakage, not information.
package feature

import (
	"context"
	"fmt"
	"time"

	"github.com/hoopsight/hoopsight/internal/adapters/feeds"
	"github.com/hoopsight/hoopsight/internal/domain/model"
	"github.com/hoopsight/hoopsight/internal/domain/stats"
	"github.com/hoopsight/hoopsight/internal/domain/team"
)

// Names is the canonical feature order. Index positions are part of the
// regressor's input contract and must not be reordered.
var Names = []string{
	"home_off", "home_def", "home_home_adv", "home_health",
	"home_momentum", "home_fatigue", "home_tempo",
	"away_off", "away_def", "away_home_adv", "away_health",
	"away_momentum", "away_fatigue", "away_tempo",
	"home_off_var", "home_def_var", "away_off_var", "away_def_var",
	"net_rating_diff", "pace_avg",
	"momentum_diff", "fatigue_diff", "health_diff",
	"home_rest_days", "away_rest_days",
	"home_form_win_rate", "away_form_win_rate",
	"home_sos", "away_sos",
	"home_sched_fatigue", "away_sched_fatigue",
	"ext_net_diff", "ext_tempo_avg",
	"neutral",
}

// Dim is the feature vector length.
var Dim = len(Names)

// Vector is one matchup's feature vector. Values align with Names.
type Vector struct {
	Names  []string
	Values []float64
}

// At returns the value of a named feature, 0 for unknown names.
func (v Vector) At(name string) float64 {
	for i, n := range v.Names {
		if n == name {
			return v.Values[i]
		}
	}
	return 0
}

// States is the league-state surface the builder reads. The league manager
// satisfies it.
type States interface {
	State(teamID string) (team.State, team.Uncertainty, error)
	Ratings() map[string]float64
	History() []model.Game
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithRatingSource wires the optional independent external rating feed.
func WithRatingSource(src feeds.RatingSource) Option {
	return func(b *Builder) { b.external = src }
}

// WithMomentumConfig tunes the recent-form features.
func WithMomentumConfig(cfg stats.MomentumConfig) Option {
	return func(b *Builder) { b.momentum = cfg }
}

// WithLeagueTempo sets the neutral default for the external tempo feature.
func WithLeagueTempo(tempo float64) Option {
	return func(b *Builder) {
		if tempo > 0 {
			b.leagueTempo = tempo
		}
	}
}

// Builder produces feature vectors against a league-state source.
type Builder struct {
	states      States
	cache       *Cache
	external    feeds.RatingSource
	momentum    stats.MomentumConfig
	leagueTempo float64
}

// NewBuilder creates a Builder with its own cache.
func NewBuilder(states States, opts ...Option) *Builder {
	b := &Builder{
		states:      states,
		cache:       NewCache(),
		leagueTempo: 68.0,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Cache exposes the builder's cache so the league manager can wire its
// invalidation hook to it.
func (b *Builder) Cache() *Cache { return b.cache }

// Build assembles the feature vector for one matchup as of a date.
// Every optional input has a neutral default (a missing external rating
// contributes 0 difference, a missing external tempo falls back to the
// league average) so the regressor never sees NaN.
func (b *Builder) Build(ctx context.Context, home, away string, isNeutral bool, asOf time.Time) (Vector, error) {
	hs, hu, err := b.states.State(home)
	if err != nil {
		return Vector{}, fmt.Errorf("home state: %w", err)
	}
	as, au, err := b.states.State(away)
	if err != nil {
		return Vector{}, fmt.Errorf("away state: %w", err)
	}

	hd := b.derive(home, asOf)
	ad := b.derive(away, asOf)

	// Each side's tempo resolves through the full precedence chain: the
	// external rating when present, else the cached recent-scoring estimate
	// (which itself falls back to the league default).
	extNetDiff := 0.0
	homeTempo, awayTempo := hd.tempo, ad.tempo
	if b.external != nil {
		hr, hok := b.external.Rating(ctx, home)
		ar, aok := b.external.Rating(ctx, away)
		if hok && aok {
			extNetDiff = hr.Net() - ar.Net()
		}
		if hok && hr.Tempo > 0 {
			homeTempo = stats.TempoEstimate(home, nil, asOf, &hr.Tempo, b.leagueTempo)
		}
		if aok && ar.Tempo > 0 {
			awayTempo = stats.TempoEstimate(away, nil, asOf, &ar.Tempo, b.leagueTempo)
		}
	}
	extTempoAvg := (homeTempo + awayTempo) / 2

	neutralFlag := 0.0
	if isNeutral {
		neutralFlag = 1.0
	}

	values := []float64{
		hs.Off, hs.Def, hs.HomeAdv, hs.Health,
		hs.Momentum, hs.Fatigue, hs.Tempo,
		as.Off, as.Def, as.HomeAdv, as.Health,
		as.Momentum, as.Fatigue, as.Tempo,
		hu.OffVar, hu.DefVar, au.OffVar, au.DefVar,
		hs.Net() - as.Net(), (hs.Tempo + as.Tempo) / 2,
		hs.Momentum - as.Momentum, hs.Fatigue - as.Fatigue, hs.Health - as.Health,
		hd.restDays, ad.restDays,
		hd.momentum.WinRate, ad.momentum.WinRate,
		hd.sos, ad.sos,
		hd.fatigue, ad.fatigue,
		extNetDiff, extTempoAvg,
		neutralFlag,
	}
	return Vector{Names: Names, Values: values}, nil
}

// derive computes (or fetches cached) history-derived stats for one team.
func (b *Builder) derive(teamID string, asOf time.Time) derived {
	if d, ok := b.cache.get(teamID, asOf); ok {
		return d
	}
	hist := b.states.History()
	d := derived{
		day:      dayOf(asOf),
		momentum: stats.TeamMomentum(teamID, hist, asOf, b.momentum),
		restDays: stats.RestDays(teamID, hist, asOf),
		fatigue:  stats.Fatigue(teamID, hist, asOf),
		tempo:    stats.TempoEstimate(teamID, hist, asOf, nil, b.leagueTempo),
		sos:      stats.StrengthOfSchedule(teamID, hist, b.states.Ratings()),
	}
	b.cache.put(teamID, d)
	return d
}
