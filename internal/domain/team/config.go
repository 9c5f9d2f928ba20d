package team

// Default filter tuning. Ratings are anchored on the scoremodel baseline;
// noise magnitudes are in the same units as the components they perturb.
const (
	defaultBaselineRating = 100.0
	defaultHomeAdvantage  = 3.0
	defaultLeagueTempo    = 68.0

	defaultRatingVar  = 25.0
	defaultHomeAdvVar = 1.0
	defaultHealthVar  = 0.01
	defaultFormVar    = 0.25
	defaultTempoVar   = 9.0

	defaultRatingNoise   = 0.5
	defaultHomeAdvNoise  = 0.01
	defaultHealthNoise   = 0.001
	defaultMomentumNoise = 0.02
	defaultFatigueNoise  = 0.02
	defaultTempoNoise    = 0.2

	defaultMarginNoise = 11.0
	defaultTotalNoise  = 14.0

	defaultMomentumDecay  = 0.96
	defaultFatigueRestTau = 3.0
	defaultFatigueLoad    = 0.35
)

// Bounds on clipped components.
const (
	HomeAdvMin = 0.0
	HomeAdvMax = 6.0
	TempoMin   = 60.0
	TempoMax   = 80.0
)

// Config tunes the per-team filter: prior, process noise and measurement
// noise. Zero values fall back to defaults via Normalize.
type Config struct {
	// Prior means for a team never seen before.
	BaselineRating float64
	HomeAdvantage  float64
	LeagueTempo    float64

	// Prior variances per component group.
	RatingVar  float64
	HomeAdvVar float64
	HealthVar  float64
	FormVar    float64
	TempoVar   float64

	// Process noise added on every time update.
	RatingNoise   float64
	HomeAdvNoise  float64
	HealthNoise   float64
	MomentumNoise float64
	FatigueNoise  float64
	TempoNoise    float64

	// Measurement noise standard deviations for margin and total.
	MarginNoise float64
	TotalNoise  float64

	// MomentumDecay is the per-game decay factor toward zero momentum.
	MomentumDecay float64
	// FatigueRestTau is the rest-day time constant of fatigue decay.
	FatigueRestTau float64
	// FatigueLoad is how much fatigue a single played game adds.
	FatigueLoad float64
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{}.Normalize()
}

// Normalize fills zero fields with defaults and returns the result.
func (c Config) Normalize() Config {
	def := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	def(&c.BaselineRating, defaultBaselineRating)
	def(&c.HomeAdvantage, defaultHomeAdvantage)
	def(&c.LeagueTempo, defaultLeagueTempo)
	def(&c.RatingVar, defaultRatingVar)
	def(&c.HomeAdvVar, defaultHomeAdvVar)
	def(&c.HealthVar, defaultHealthVar)
	def(&c.FormVar, defaultFormVar)
	def(&c.TempoVar, defaultTempoVar)
	def(&c.RatingNoise, defaultRatingNoise)
	def(&c.HomeAdvNoise, defaultHomeAdvNoise)
	def(&c.HealthNoise, defaultHealthNoise)
	def(&c.MomentumNoise, defaultMomentumNoise)
	def(&c.FatigueNoise, defaultFatigueNoise)
	def(&c.TempoNoise, defaultTempoNoise)
	def(&c.MarginNoise, defaultMarginNoise)
	def(&c.TotalNoise, defaultTotalNoise)
	def(&c.MomentumDecay, defaultMomentumDecay)
	def(&c.FatigueRestTau, defaultFatigueRestTau)
	def(&c.FatigueLoad, defaultFatigueLoad)
	return c
}

// Prior returns the neutral prior state for an unseen team.
func (c Config) Prior() State {
	return State{
		Off:     c.BaselineRating,
		Def:     c.BaselineRating,
		HomeAdv: c.HomeAdvantage,
		Health:  1.0,
		Tempo:   c.LeagueTempo,
	}
}

// priorVar returns the prior covariance diagonal in filter order.
func (c Config) priorVar() []float64 {
	v := make([]float64, Dim)
	v[Off] = c.RatingVar
	v[Def] = c.RatingVar
	v[HomeAdv] = c.HomeAdvVar
	v[Health] = c.HealthVar
	v[Momentum] = c.FormVar
	v[Fatigue] = c.FormVar
	v[Tempo] = c.TempoVar
	return v
}

// processNoise returns the per-step process noise diagonal in filter order.
func (c Config) processNoise() []float64 {
	v := make([]float64, Dim)
	v[Off] = c.RatingNoise
	v[Def] = c.RatingNoise
	v[HomeAdv] = c.HomeAdvNoise
	v[Health] = c.HealthNoise
	v[Momentum] = c.MomentumNoise
	v[Fatigue] = c.FatigueNoise
	v[Tempo] = c.TempoNoise
	return v
}
