package feeds

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hoopsight/hoopsight/internal/domain/model"
)

// MemorySource is an in-memory GameSource. Safe for concurrent use.
type MemorySource struct {
	mu    sync.RWMutex
	games []model.Game
}

// NewMemorySource creates a source pre-loaded with games.
func NewMemorySource(games ...model.Game) *MemorySource {
	s := &MemorySource{}
	s.Add(games...)
	return s
}

// Add appends games to the source.
func (s *MemorySource) Add(games ...model.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = append(s.games, games...)
}

// ListCompleted returns completed games sorted by date ascending.
func (s *MemorySource) ListCompleted(ctx context.Context) ([]model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Game
	for _, g := range s.games {
		if g.Completed() {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ListUpcoming returns unplayed games inside [from, to], date ascending.
func (s *MemorySource) ListUpcoming(ctx context.Context, from, to time.Time) ([]model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Game
	for _, g := range s.games {
		if g.Completed() || g.Date.Before(from) || g.Date.After(to) {
			continue
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// StaticRatings is a fixed RatingSource backed by a map.
type StaticRatings map[string]TeamRating

// Rating implements RatingSource.
func (s StaticRatings) Rating(_ context.Context, teamID string) (TeamRating, bool) {
	r, ok := s[teamID]
	return r, ok
}

// StaticHealth is a fixed HealthSource backed by a map.
type StaticHealth map[string]float64

// Health implements HealthSource.
func (s StaticHealth) Health(_ context.Context, teamID string, _ time.Time) (float64, bool) {
	h, ok := s[teamID]
	return h, ok
}

// StaticVenues is a fixed VenueSource backed by a map.
type StaticVenues map[string]string

// HomeVenue implements VenueSource.
func (s StaticVenues) HomeVenue(_ context.Context, teamID string) string {
	return s[teamID]
}
