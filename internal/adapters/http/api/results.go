// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hoopsight/hoopsight/internal/domain/league"
	"github.com/hoopsight/hoopsight/internal/domain/model"
)

// ResultsDependencies defines the interface for result ingestion.
type ResultsDependencies interface {
	SubmitResult(ctx context.Context, g model.Game) (bool, error)
}

// ResultsHandler handles completed game submissions.
type ResultsHandler struct {
	deps ResultsDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultsDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// resultRequest mirrors the JSON schema for POST /results.
type resultRequest struct {
	GameID    string `json:"game_id"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	Date      string `json:"date"`
	HomeScore *int   `json:"home_score"`
	AwayScore *int   `json:"away_score"`
	Neutral   *bool  `json:"neutral,omitempty"`
	EventName string `json:"event_name,omitempty"`
	Venue     string `json:"venue,omitempty"`
}

func (req resultRequest) validate() error {
	switch {
	case strings.TrimSpace(req.GameID) == "":
		return errors.New("missing game_id")
	case strings.TrimSpace(req.HomeTeam) == "":
		return errors.New("missing home_team")
	case strings.TrimSpace(req.AwayTeam) == "":
		return errors.New("missing away_team")
	case strings.TrimSpace(req.Date) == "":
		return errors.New("missing date")
	case req.HomeScore == nil || req.AwayScore == nil:
		return errors.New("missing final score")
	case *req.HomeScore < 0 || *req.AwayScore < 0:
		return errors.New("negative score")
	}
	if _, err := time.Parse(time.RFC3339, req.Date); err != nil {
		return errors.New("invalid date; must be RFC3339")
	}
	return nil
}

func (req resultRequest) game() model.Game {
	date, _ := time.Parse(time.RFC3339, req.Date)
	return model.Game{
		GameID:    req.GameID,
		HomeTeam:  req.HomeTeam,
		AwayTeam:  req.AwayTeam,
		Date:      date,
		HomeScore: req.HomeScore,
		AwayScore: req.AwayScore,
		Neutral:   req.Neutral,
		EventName: req.EventName,
		Venue:     req.Venue,
	}
}

// HandlePostResult handles POST /results requests.
func (h *ResultsHandler) HandlePostResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	accepted, err := h.deps.SubmitResult(r.Context(), req.game())
	if err != nil {
		var dataErr *league.DataError
		if errors.As(err, &dataErr) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	if !accepted {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
