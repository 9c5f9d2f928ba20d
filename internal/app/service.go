// Package app provides the core service that wires the league manager,
// predictors and ingestion pipeline together and implements the
// dependencies required by the HTTP API.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hoopsight/hoopsight/internal/adapters/feeds"
	"github.com/hoopsight/hoopsight/internal/adapters/mq/queue"
	"github.com/hoopsight/hoopsight/internal/adapters/mq/worker"
	"github.com/hoopsight/hoopsight/internal/domain/dedupe"
	"github.com/hoopsight/hoopsight/internal/domain/feature"
	"github.com/hoopsight/hoopsight/internal/domain/league"
	"github.com/hoopsight/hoopsight/internal/domain/model"
	"github.com/hoopsight/hoopsight/internal/domain/predict"
	"github.com/hoopsight/hoopsight/internal/domain/regress"
	"github.com/hoopsight/hoopsight/internal/domain/stats"
	"github.com/hoopsight/hoopsight/internal/domain/team"
	"github.com/hoopsight/hoopsight/pkg/logger"
	"github.com/hoopsight/hoopsight/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithGameSource wires the game history collaborator replayed at startup.
func WithGameSource(src feeds.GameSource) Option {
	return func(s *Service) { s.games = src }
}

// WithRegressor injects the trained auxiliary regressor.
func WithRegressor(r regress.Regressor) Option {
	return func(s *Service) { s.regressor = r }
}

// WithRatingSource wires the optional independent rating feed.
func WithRatingSource(src feeds.RatingSource) Option {
	return func(s *Service) { s.ratings = src }
}

// WithHealthSource wires the optional availability signal.
func WithHealthSource(src feeds.HealthSource) Option {
	return func(s *Service) { s.health = src }
}

// WithVenueSource wires the optional venue lookup.
func WithVenueSource(src feeds.VenueSource) Option {
	return func(s *Service) { s.venues = src }
}

// WithTeamConfig overrides the filter tuning.
func WithTeamConfig(cfg team.Config) Option {
	return func(s *Service) { s.teamCfg = cfg }
}

// WithMomentumConfig tunes the recent-form derivation.
func WithMomentumConfig(cfg stats.MomentumConfig) Option {
	return func(s *Service) { s.momentumCfg = cfg }
}

// WithBlendWeights sets the raw hybrid weights (normalized before use).
func WithBlendWeights(filterW, auxW float64) Option {
	return func(s *Service) {
		s.filterWeight = filterW
		s.auxWeight = auxW
	}
}

// WithAgreementPolicy tunes the hybrid confidence adjustment.
func WithAgreementPolicy(boost, penalty float64) Option {
	return func(s *Service) {
		s.agreeBoost = boost
		s.disagreePenalty = penalty
	}
}

// WithRegressorTimeout bounds each auxiliary regressor call.
func WithRegressorTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.regressorTimeout = d
		}
	}
}

// WithResultQueueSize bounds the result queue.
func WithResultQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithDedupeSize bounds the idempotency cache.
func WithDedupeSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeSize = n
		}
	}
}

// WithNeutralKeywords overrides the neutral-site keyword list.
func WithNeutralKeywords(words []string) Option {
	return func(s *Service) { s.neutralKeywords = words }
}

// Service wires the forecast core together.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	games     feeds.GameSource
	ratings   feeds.RatingSource
	health    feeds.HealthSource
	venues    feeds.VenueSource
	regressor regress.Regressor

	// Components
	manager  *league.Manager
	builder  *feature.Builder
	combiner *predict.Combiner
	queue    *queue.InMemoryQueue
	worker   *worker.Worker
	deduper  dedupe.Deduper

	// Configuration
	teamCfg          team.Config
	momentumCfg      stats.MomentumConfig
	filterWeight     float64
	auxWeight        float64
	agreeBoost       float64
	disagreePenalty  float64
	regressorTimeout time.Duration
	queueSize        int
	dedupeSize       int
	neutralKeywords  []string

	lastReplay league.ReplayReport
	started    bool
	log        logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		teamCfg:          team.DefaultConfig(),
		momentumCfg:      stats.MomentumConfig{},
		filterWeight:     0.6,
		auxWeight:        0.4,
		agreeBoost:       0.05,
		disagreePenalty:  0.15,
		regressorTimeout: 250 * time.Millisecond,
		queueSize:        10_000,
		dedupeSize:       100_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the component graph and replays history to the present.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.log == nil {
		s.log = logger.Get().Named("app")
	}
	s.log.Info(ctx, "starting forecast service")

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	managerOpts := []league.Option{
		league.WithMomentumConfig(s.momentumCfg),
		league.WithLogger(s.log.Named("league")),
	}
	if s.health != nil {
		managerOpts = append(managerOpts, league.WithHealthSource(s.health))
	}
	if s.venues != nil {
		managerOpts = append(managerOpts, league.WithVenueSource(s.venues))
	}
	if len(s.neutralKeywords) > 0 {
		managerOpts = append(managerOpts, league.WithNeutralKeywords(s.neutralKeywords))
	}
	s.manager = league.NewManager(s.teamCfg, managerOpts...)

	builderOpts := []feature.Option{
		feature.WithMomentumConfig(s.momentumCfg),
		feature.WithLeagueTempo(s.teamCfg.Normalize().LeagueTempo),
	}
	if s.ratings != nil {
		builderOpts = append(builderOpts, feature.WithRatingSource(s.ratings))
	}
	s.builder = feature.NewBuilder(s.manager, builderOpts...)

	// The manager invalidates the builder's cache whenever a team's filter
	// mutates. Wiring it after construction avoids a dependency cycle.
	s.manager.SetCache(s.builder.Cache())

	predictor := predict.NewPredictor(s.manager)
	combiner, err := predict.NewCombiner(predictor, s.builder,
		predict.WithRegressor(s.regressor),
		predict.WithWeights(s.filterWeight, s.auxWeight),
		predict.WithRegressorBudget(s.regressorTimeout),
		predict.WithAgreementPolicy(s.agreeBoost, s.disagreePenalty),
		predict.WithCombinerLogger(s.log.Named("combiner")),
	)
	if err != nil {
		return fmt.Errorf("building combiner: %w", err)
	}
	s.combiner = combiner

	if s.games != nil {
		history, err := s.games.ListCompleted(ctx)
		if err != nil {
			return fmt.Errorf("listing completed games: %w", err)
		}
		report, err := s.manager.Rebuild(ctx, history)
		if err != nil {
			return fmt.Errorf("replaying history: %w", err)
		}
		s.lastReplay = report
	}

	s.worker = worker.New(s.queue, s.manager, worker.WithLogger(s.log.Named("result-worker")))
	s.worker.Start(ctx)

	s.started = true
	s.log.Info(ctx, "forecast service started",
		logger.Int("teams", s.manager.TeamCount()),
		logger.Int("replayed", s.lastReplay.Processed),
		logger.Int("rejected", s.lastReplay.Rejected),
	)
	return nil
}

// Stop gracefully shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.log.Info(ctx, "stopping forecast service")

	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.worker != nil {
		stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = s.worker.Stop(stopCtx)
	}

	s.started = false
	s.log.Info(ctx, "forecast service stopped")
}

// running reports whether Start has completed.
func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Predict forecasts one matchup. Degradation to filter-only output is
// visible on the returned prediction, never an error.
func (s *Service) Predict(ctx context.Context, home, away string, isNeutral bool) (model.Prediction, error) {
	if !s.running() {
		return model.Prediction{}, ErrNotStarted
	}
	return s.combiner.Predict(ctx, home, away, isNeutral)
}

// Ratings returns team id -> net rating for every tracked team.
func (s *Service) Ratings(_ context.Context) (map[string]float64, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	return s.manager.Ratings(), nil
}

// TeamState returns a team's current state estimate and uncertainty.
func (s *Service) TeamState(_ context.Context, teamID string) (team.State, team.Uncertainty, error) {
	if !s.running() {
		return team.State{}, team.Uncertainty{}, ErrNotStarted
	}
	return s.manager.State(teamID)
}

// SubmitResult accepts a completed game for asynchronous application.
// Returns (false, nil) for duplicates, (false, err) on validation failure
// or backpressure.
func (s *Service) SubmitResult(ctx context.Context, g model.Game) (bool, error) {
	if !s.running() {
		return false, ErrNotStarted
	}
	if g.GameID == "" {
		return false, &league.DataError{GameID: g.GameID, Reason: "missing game id"}
	}
	if !g.Completed() {
		return false, &league.DataError{GameID: g.GameID, Reason: "missing final score"}
	}

	if s.deduper.SeenAndRecord(ctx, g.GameID) {
		metrics.RecordResultDuplicate()
		return false, nil
	}
	if !s.queue.Enqueue(ctx, g) {
		// Let the submitter retry once the queue drains.
		s.deduper.Unrecord(ctx, g.GameID)
		return false, fmt.Errorf("result queue full")
	}
	return true, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]interface{}{
		"started": s.started,
	}
	if s.started {
		out["teams"] = s.manager.TeamCount()
		out["queueLength"] = s.queue.Len()
		out["replayProcessed"] = s.lastReplay.Processed
		out["replayRejected"] = s.lastReplay.Rejected
		out["dedupeSize"] = s.deduper.Size()
	}
	return out
}
