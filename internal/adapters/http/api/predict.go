// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/hoopsight/hoopsight/internal/domain/league"
	"github.com/hoopsight/hoopsight/internal/domain/model"
)

// PredictDependencies defines the interface for forecast operations.
type PredictDependencies interface {
	Predict(ctx context.Context, home, away string, isNeutral bool) (model.Prediction, error)
}

// PredictHandler handles matchup forecast requests.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandleGetPredict handles GET /predict?home=&away=&neutral= requests.
func (h *PredictHandler) HandleGetPredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	home := strings.TrimSpace(r.URL.Query().Get("home"))
	away := strings.TrimSpace(r.URL.Query().Get("away"))
	if home == "" || away == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: home and away are required", ErrBadRequest))
		return
	}
	if home == away {
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Errorf("%w: home and away must differ", ErrBadRequest))
		return
	}

	isNeutral := false
	if raw := r.URL.Query().Get("neutral"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request",
				fmt.Errorf("%w: invalid neutral flag %q", ErrBadRequest, raw))
			return
		}
		isNeutral = v
	}

	pred, err := h.deps.Predict(r.Context(), home, away, isNeutral)
	if err != nil {
		if errors.Is(err, league.ErrUnknownTeam) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}
