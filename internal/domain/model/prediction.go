package model

import "time"

// Source identifies which predictor(s) produced a Prediction.
type Source string

// Prediction sources.
const (
	SourceFilterOnly    Source = "filter_only"
	SourceAuxiliaryOnly Source = "auxiliary_only"
	SourceHybrid        Source = "hybrid"
)

// Prediction is the immutable output of a forecast request.
// Confidence lives in [0,100]. Degraded is set when the hybrid path fell
// back to filter-only output, so callers can always tell degradation apart
// from a genuine hybrid forecast.
type Prediction struct {
	ID          string    `json:"id"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	Neutral     bool      `json:"neutral"`
	Margin      float64   `json:"predicted_margin"`
	Total       float64   `json:"predicted_total"`
	Confidence  float64   `json:"confidence"`
	Source      Source    `json:"source"`
	Degraded    string    `json:"degraded_reason,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Rating is the scalar net-strength projection of a team's filter state.
type Rating struct {
	TeamID string  `json:"team_id"`
	Net    float64 `json:"net"` // offense minus defense, points per 100 possessions
}
