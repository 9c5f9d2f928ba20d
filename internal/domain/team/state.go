// Package team models one team's latent strength state and the sequential
// filter that tracks it game by game.
package team

// State vector component indices. The order is load-bearing: the kalman
// filter, the process model and the measurement model all address components
// by these indices.
const (
	Off      = iota // offensive rating, points per 100 possessions
	Def             // defensive rating, points denied per 100 off the baseline; higher is better
	HomeAdv         // home-court edge in points
	Health          // roster availability in [0,1]
	Momentum        // recent-form signal, decays toward 0
	Fatigue         // accumulated schedule load, decays toward 0
	Tempo           // possessions per game
	Dim             // state dimension
)

// State is a value snapshot of one team's 7-dimensional latent state.
type State struct {
	Off      float64 `json:"offense"`
	Def      float64 `json:"defense"`
	HomeAdv  float64 `json:"home_advantage"`
	Health   float64 `json:"health"`
	Momentum float64 `json:"momentum"`
	Fatigue  float64 `json:"fatigue"`
	Tempo    float64 `json:"tempo"`
}

// Net returns the overall rating: offense minus defense.
func (s State) Net() float64 { return s.Off - s.Def }

// vector flattens the state into filter order.
func (s State) vector() []float64 {
	v := make([]float64, Dim)
	v[Off] = s.Off
	v[Def] = s.Def
	v[HomeAdv] = s.HomeAdv
	v[Health] = s.Health
	v[Momentum] = s.Momentum
	v[Fatigue] = s.Fatigue
	v[Tempo] = s.Tempo
	return v
}

// stateFrom rebuilds a State value from a filter-order vector.
func stateFrom(v []float64) State {
	return State{
		Off:      v[Off],
		Def:      v[Def],
		HomeAdv:  v[HomeAdv],
		Health:   v[Health],
		Momentum: v[Momentum],
		Fatigue:  v[Fatigue],
		Tempo:    v[Tempo],
	}
}

// Uncertainty exposes the covariance diagonal terms downstream consumers
// care about (confidence scoring and the feature builder).
type Uncertainty struct {
	OffVar     float64 `json:"offense_var"`
	DefVar     float64 `json:"defense_var"`
	HomeAdvVar float64 `json:"home_advantage_var"`
	TempoVar   float64 `json:"tempo_var"`
}

// uncertaintyFrom picks the relevant terms off a covariance diagonal.
func uncertaintyFrom(diag []float64) Uncertainty {
	return Uncertainty{
		OffVar:     diag[Off],
		DefVar:     diag[Def],
		HomeAdvVar: diag[HomeAdv],
		TempoVar:   diag[Tempo],
	}
}
