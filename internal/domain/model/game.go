// Package model contains domain models passed between layers.
package model

import "time"

// Game represents a single scheduled or completed matchup.
// Scores are pointers so "not yet played" is distinguishable from 0.
type Game struct {
	GameID    string     // unique id for idempotency
	HomeTeam  string     // nominal home team identifier
	AwayTeam  string     // away team identifier
	Date      time.Time  // tip-off date (calendar day granularity is enough)
	HomeScore *int       // nil until final
	AwayScore *int       // nil until final
	Neutral   *bool      // explicit neutral-site flag; nil means "unknown, use heuristic"
	EventName string     // optional event/tournament label, e.g. "Maui Invitational"
	Venue     string     // optional venue string as listed by the schedule source
}

// Completed reports whether both final scores are recorded.
func (g Game) Completed() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// Margin returns home score minus away score. Only meaningful for completed games.
func (g Game) Margin() float64 {
	if !g.Completed() {
		return 0
	}
	return float64(*g.HomeScore - *g.AwayScore)
}

// Total returns the combined final score. Only meaningful for completed games.
func (g Game) Total() float64 {
	if !g.Completed() {
		return 0
	}
	return float64(*g.HomeScore + *g.AwayScore)
}

// Involves reports whether teamID played in this game.
func (g Game) Involves(teamID string) bool {
	return g.HomeTeam == teamID || g.AwayTeam == teamID
}

// Opponent returns the other side of the matchup, or "" if teamID did not play.
func (g Game) Opponent(teamID string) string {
	switch teamID {
	case g.HomeTeam:
		return g.AwayTeam
	case g.AwayTeam:
		return g.HomeTeam
	}
	return ""
}

// PointsFor returns the points scored by teamID, and false if teamID did not
// play or the game is not final.
func (g Game) PointsFor(teamID string) (float64, bool) {
	if !g.Completed() || !g.Involves(teamID) {
		return 0, false
	}
	if teamID == g.HomeTeam {
		return float64(*g.HomeScore), true
	}
	return float64(*g.AwayScore), true
}

// Observation is the measurement derived from a completed game. It is
// ephemeral: built per game during replay, fed to exactly the two
// participating filters, never stored.
type Observation struct {
	Margin    float64 // home score minus away score
	Total     float64 // combined score
	TempoHint float64 // rough possessions estimate for the game, 0 if unknown
}

// ObservationFrom derives the measurement for a completed game.
// Returns false for games without final scores.
func ObservationFrom(g Game) (Observation, bool) {
	if !g.Completed() {
		return Observation{}, false
	}
	return Observation{Margin: g.Margin(), Total: g.Total()}, true
}
