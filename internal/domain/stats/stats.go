// Package stats derives per-team statistics from raw game history: recency
// weighted form, fatigue, rest, tempo and strength of schedule. All functions
// are pure; they take the history and a reference date and never mutate
// anything.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/hoopsight/hoopsight/internal/domain/model"
)

// Domain defaults.
const (
	// DefaultRestDays is reported for a team with no prior game: a typical
	// twice-a-week college schedule.
	DefaultRestDays = 4.0

	defaultMomentumWindow = 10
	defaultMomentumDecay  = 0.85

	defaultFatigueRestTau   = 3.0
	defaultFatigueDensity   = 7 // trailing window in days
	defaultFatigueDenseNorm = 4.0

	// TempoMin and TempoMax clip any pace estimate to the plausible range.
	TempoMin = 60.0
	TempoMax = 80.0

	defaultLeagueTempo   = 68.0
	defaultTempoWindow   = 10
	defaultPointsPerPoss = 1.0
)

// MomentumConfig tunes recency-weighted form.
type MomentumConfig struct {
	Window int     // most-recent games considered
	Decay  float64 // per-game weight decay, newest game has weight 1
}

// Momentum is the recency-weighted form of one team.
type Momentum struct {
	WinRate   float64 // weighted win fraction in [0,1]
	AvgMargin float64 // weighted average point differential
	Signal    float64 // combined signal in [-1,1], 0 with no history
	Games     int     // games that contributed
}

// TeamMomentum weights each of the team's most recent completed games before
// asOf by decay^i, i = 0 for the newest. Both the win indicator and the
// point differential are accumulated with those per-game weights and divided
// by the weight sum, so a streak right before asOf dominates an identical
// streak further in the past.
func TeamMomentum(teamID string, history []model.Game, asOf time.Time, cfg MomentumConfig) Momentum {
	if cfg.Window <= 0 {
		cfg.Window = defaultMomentumWindow
	}
	if cfg.Decay <= 0 || cfg.Decay >= 1 {
		cfg.Decay = defaultMomentumDecay
	}

	games := completedBefore(teamID, history, asOf)
	if len(games) == 0 {
		return Momentum{}
	}
	if len(games) > cfg.Window {
		games = games[:cfg.Window]
	}

	var sumW, winAcc, diffAcc float64
	w := 1.0
	for _, g := range games {
		margin := g.Margin()
		if g.AwayTeam == teamID {
			margin = -margin
		}
		if margin > 0 {
			winAcc += w
		}
		diffAcc += w * margin
		sumW += w
		w *= cfg.Decay
	}

	m := Momentum{
		WinRate:   winAcc / sumW,
		AvgMargin: diffAcc / sumW,
		Games:     len(games),
	}
	m.Signal = clamp((2*m.WinRate-1)/2+m.AvgMargin/20, -1, 1)
	return m
}

// RestDays returns whole days between the team's most recent game strictly
// before asOf and asOf itself. Two games on the same calendar day yield 0,
// never a negative value. A team with no prior game gets DefaultRestDays.
func RestDays(teamID string, history []model.Game, asOf time.Time) float64 {
	// Unlike momentum this includes games dated asOf itself: in tournament
	// play the preceding game can share the calendar date and must count.
	var last time.Time
	var found bool
	for _, g := range history {
		if !g.Completed() || !g.Involves(teamID) || g.Date.After(asOf) {
			continue
		}
		if !found || g.Date.After(last) {
			last = g.Date
			found = true
		}
	}
	if !found {
		return DefaultRestDays
	}
	days := math.Floor(asOf.Sub(last).Hours() / 24)
	return math.Max(0, days)
}

// Fatigue estimates schedule load: the count of games in the trailing week
// scaled by how little rest the team has had. Always non-negative; a team
// with no history is fully rested.
func Fatigue(teamID string, history []model.Game, asOf time.Time) float64 {
	games := completedBefore(teamID, history, asOf)
	if len(games) == 0 {
		return 0
	}
	windowStart := asOf.AddDate(0, 0, -defaultFatigueDensity)
	var dense int
	for _, g := range games {
		if !g.Date.Before(windowStart) {
			dense++
		}
	}
	rest := RestDays(teamID, history, asOf)
	return float64(dense) / defaultFatigueDenseNorm * math.Exp(-rest/defaultFatigueRestTau)
}

// TempoEstimate resolves a team's pace in priority order: an externally
// supplied tempo rating when present and positive, then an estimate from the
// team's own recent scoring under an assumed points-per-possession constant,
// then the league default. Every branch clips to [TempoMin, TempoMax].
//
// Halving the combined game score is not an estimate of pace: it conflates
// scoring efficiency with possession count and is deliberately not used.
func TempoEstimate(teamID string, history []model.Game, asOf time.Time, external *float64, leagueDefault float64) float64 {
	if leagueDefault <= 0 {
		leagueDefault = defaultLeagueTempo
	}
	if external != nil && *external > 0 {
		return clamp(*external, TempoMin, TempoMax)
	}

	games := completedBefore(teamID, history, asOf)
	if len(games) > defaultTempoWindow {
		games = games[:defaultTempoWindow]
	}
	var pts float64
	var n int
	for _, g := range games {
		if p, ok := g.PointsFor(teamID); ok {
			pts += p
			n++
		}
	}
	if n > 0 {
		return clamp(pts/float64(n)/defaultPointsPerPoss, TempoMin, TempoMax)
	}
	return clamp(leagueDefault, TempoMin, TempoMax)
}

// StrengthOfSchedule is the mean current net rating of the opponents the team
// has faced, across all its completed games. Neutral 0 with no history or
// when no opponent has a rating yet.
func StrengthOfSchedule(teamID string, history []model.Game, ratings map[string]float64) float64 {
	var sum float64
	var n int
	for _, g := range history {
		if !g.Completed() || !g.Involves(teamID) {
			continue
		}
		if r, ok := ratings[g.Opponent(teamID)]; ok {
			sum += r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// HealthScore resolves the availability signal: clamped to [0,1] when
// present, fully available otherwise.
func HealthScore(external *float64) float64 {
	if external == nil {
		return 1.0
	}
	return clamp(*external, 0, 1)
}

// completedBefore returns the team's completed games strictly before asOf,
// most recent first.
func completedBefore(teamID string, history []model.Game, asOf time.Time) []model.Game {
	var out []model.Game
	for _, g := range history {
		if g.Completed() && g.Involves(teamID) && g.Date.Before(asOf) {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
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
