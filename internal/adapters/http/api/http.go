// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hoopsight/hoopsight/internal/domain/model"
	"github.com/hoopsight/hoopsight/internal/domain/team"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Predict forecasts one matchup.
	Predict(ctx context.Context, home, away string, isNeutral bool) (model.Prediction, error)

	// Ratings returns team id -> net rating for every tracked team.
	Ratings(ctx context.Context) (map[string]float64, error)

	// TeamState returns one team's state estimate and uncertainty.
	TeamState(ctx context.Context, teamID string) (team.State, team.Uncertainty, error)

	// SubmitResult accepts a completed game for async application.
	// Returns (false, nil) for duplicates.
	SubmitResult(ctx context.Context, g model.Game) (bool, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler
	ratingsHandler *RatingsHandler
	teamHandler    *TeamHandler
	resultsHandler *ResultsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		predictHandler: NewPredictHandler(deps),
		ratingsHandler: NewRatingsHandler(deps),
		teamHandler:    NewTeamHandler(deps),
		resultsHandler: NewResultsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandleGetPredict, "predict"))
	mux.HandleFunc("/ratings", MetricsMiddleware(s.ratingsHandler.HandleGetRatings, "ratings"))
	mux.HandleFunc("/teams/", MetricsMiddleware(s.teamHandler.HandleGetTeam, "team"))
	mux.HandleFunc("/results", MetricsMiddleware(s.resultsHandler.HandlePostResult, "results"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
