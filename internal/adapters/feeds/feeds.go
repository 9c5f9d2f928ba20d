// Package feeds declares the contracts for the external collaborators the
// core consumes: the game history source, the optional independent rating
// source and the optional availability signal. In-memory implementations are
// provided for tests, the season simulator and small deployments; production
// adapters for real providers satisfy the same interfaces.
package feeds

import (
	"context"
	"time"

	"github.com/hoopsight/hoopsight/internal/domain/model"
)

// GameSource supplies the ordered game history and the upcoming slate.
type GameSource interface {
	// ListCompleted returns all completed games ordered by date ascending.
	ListCompleted(ctx context.Context) ([]model.Game, error)

	// ListUpcoming returns games without final scores inside [from, to].
	ListUpcoming(ctx context.Context, from, to time.Time) ([]model.Game, error)
}

// TeamRating is an independently produced efficiency rating for one team.
// Used only as a prediction input feature, never as training ground truth.
type TeamRating struct {
	Offense float64
	Defense float64
	Tempo   float64
}

// Net returns the rating's overall strength projection.
func (r TeamRating) Net() float64 { return r.Offense - r.Defense }

// RatingSource optionally supplies independent external ratings.
type RatingSource interface {
	// Rating returns the external rating for a team, false when absent.
	Rating(ctx context.Context, teamID string) (TeamRating, bool)
}

// HealthSource optionally supplies roster availability in [0,1].
type HealthSource interface {
	// Health returns the availability signal as of a date, false when absent.
	Health(ctx context.Context, teamID string, asOf time.Time) (float64, bool)
}

// VenueSource optionally maps a team to its usual home venue, feeding the
// neutral-site heuristic.
type VenueSource interface {
	// HomeVenue returns the team's usual venue, "" when unknown.
	HomeVenue(ctx context.Context, teamID string) string
}
