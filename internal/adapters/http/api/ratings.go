// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"sort"
)

// RatingsDependencies defines the interface for league rating reads.
type RatingsDependencies interface {
	Ratings(ctx context.Context) (map[string]float64, error)
}

// RatingsHandler handles league rating requests.
type RatingsHandler struct {
	deps RatingsDependencies
}

// NewRatingsHandler creates a new ratings handler.
func NewRatingsHandler(deps RatingsDependencies) *RatingsHandler {
	return &RatingsHandler{deps: deps}
}

type ratingEntry struct {
	TeamID string  `json:"team_id"`
	Net    float64 `json:"net"`
}

// HandleGetRatings handles GET /ratings requests. Teams are returned
// strongest first.
func (h *RatingsHandler) HandleGetRatings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	ratings, err := h.deps.Ratings(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
		return
	}
	out := make([]ratingEntry, 0, len(ratings))
	for id, net := range ratings {
		out = append(out, ratingEntry{TeamID: id, Net: net})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Net != out[j].Net {
			return out[i].Net > out[j].Net
		}
		return out[i].TeamID < out[j].TeamID
	})
	writeJSON(w, http.StatusOK, out)
}
