// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hoopsight/hoopsight/internal/domain/league"
	"github.com/hoopsight/hoopsight/internal/domain/team"
)

// TeamDependencies defines the interface for team state reads.
type TeamDependencies interface {
	TeamState(ctx context.Context, teamID string) (team.State, team.Uncertainty, error)
}

// TeamHandler handles per-team state requests.
type TeamHandler struct {
	deps TeamDependencies
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps TeamDependencies) *TeamHandler {
	return &TeamHandler{deps: deps}
}

type teamResponse struct {
	TeamID      string           `json:"team_id"`
	State       team.State       `json:"state"`
	Uncertainty team.Uncertainty `json:"uncertainty"`
	Net         float64          `json:"net"`
}

// HandleGetTeam handles GET /teams/{team_id} requests.
func (h *TeamHandler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	teamID := strings.TrimPrefix(r.URL.Path, "/teams/")
	if teamID == "" || strings.Contains(teamID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	state, unc, err := h.deps.TeamState(r.Context(), teamID)
	if err != nil {
		if errors.Is(err, league.ErrUnknownTeam) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, teamResponse{
		TeamID:      teamID,
		State:       state,
		Uncertainty: unc,
		Net:         state.Net(),
	})
}
