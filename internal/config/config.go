// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, an optional YAML file and environment vars.
// - External errors are wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8090".
	Addr string `koanf:"addr"`

	// ResultQueueSize bounds the in-memory result queue.
	ResultQueueSize int `koanf:"result_queue_size"`

	// DedupeSize bounds the result idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// Filter prior and noise tuning. Zero values use built-in defaults.
	BaselineRating float64 `koanf:"baseline_rating"`
	HomeAdvantage  float64 `koanf:"home_advantage"`
	LeagueTempo    float64 `koanf:"league_tempo"`
	RatingNoise    float64 `koanf:"rating_noise"`
	HomeAdvNoise   float64 `koanf:"home_adv_noise"`
	HealthNoise    float64 `koanf:"health_noise"`
	MomentumNoise  float64 `koanf:"momentum_noise"`
	FatigueNoise   float64 `koanf:"fatigue_noise"`
	TempoNoise     float64 `koanf:"tempo_noise"`
	MarginNoise    float64 `koanf:"margin_noise"`
	TotalNoise     float64 `koanf:"total_noise"`

	// MomentumDecay is the per-game recency weight decay in (0,1).
	MomentumDecay float64 `koanf:"momentum_decay"`
	// MomentumWindow bounds how many recent games feed the form signal.
	MomentumWindow int `koanf:"momentum_window"`

	// Hybrid blend. Raw weights are normalized to sum to 1 before use.
	FilterWeight float64 `koanf:"filter_weight"`
	AuxWeight    float64 `koanf:"aux_weight"`

	// AgreementBoost and DisagreementPenalty tune the confidence nudge when
	// the two predictors agree or disagree on the winner.
	AgreementBoost      float64 `koanf:"agreement_boost"`
	DisagreementPenalty float64 `koanf:"disagreement_penalty"`

	// RegressorTimeoutMS bounds each auxiliary regressor call.
	RegressorTimeoutMS int `koanf:"regressor_timeout_ms"`

	// NeutralKeywords flag event names as neutral-site games.
	NeutralKeywords []string `koanf:"neutral_keywords"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8090",
		ResultQueueSize:     10_000,
		DedupeSize:          100_000,
		MomentumDecay:       0.85,
		MomentumWindow:      10,
		FilterWeight:        0.6,
		AuxWeight:           0.4,
		AgreementBoost:      0.05,
		DisagreementPenalty: 0.15,
		RegressorTimeoutMS:  250,
	}
}
