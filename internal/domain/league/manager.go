// Package league owns the collection of per-team filters: it replays game
// history chronologically to bring every filter to the present and answers
// cross-team rating queries.
package league

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/hoopsight/hoopsight/internal/adapters/feeds"
	"github.com/hoopsight/hoopsight/internal/adapters/repository"
	"github.com/hoopsight/hoopsight/internal/domain/model"
	"github.com/hoopsight/hoopsight/internal/domain/neutral"
	"github.com/hoopsight/hoopsight/internal/domain/stats"
	"github.com/hoopsight/hoopsight/internal/domain/team"
	"github.com/hoopsight/hoopsight/pkg/logger"
	"github.com/hoopsight/hoopsight/pkg/metrics"
)

// Cache is anything that needs to drop derived per-team values when a
// team's filter state changes. The feature builder's cache satisfies this.
type Cache interface {
	Invalidate(teamID string)
}

// Rejection records one game dropped during replay and why.
type Rejection struct {
	GameID string `json:"game_id"`
	Reason string `json:"reason"`
}

// ReplayReport summarizes one replay pass.
type ReplayReport struct {
	Processed  int         `json:"processed"`
	Rejected   int         `json:"rejected"`
	Rejections []Rejection `json:"rejections,omitempty"`
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithHealthSource wires the optional availability signal.
func WithHealthSource(src feeds.HealthSource) Option {
	return func(m *Manager) { m.health = src }
}

// WithVenueSource wires the optional venue lookup for neutral detection.
func WithVenueSource(src feeds.VenueSource) Option {
	return func(m *Manager) { m.venues = src }
}

// WithCache wires a cache to invalidate whenever a team's filter mutates.
func WithCache(c Cache) Option {
	return func(m *Manager) { m.cache = c }
}

// WithNeutralKeywords overrides the neutral-site keyword list.
func WithNeutralKeywords(words []string) Option {
	return func(m *Manager) {
		if len(words) > 0 {
			m.keywords = words
		}
	}
}

// WithMomentumConfig tunes the recent-form signal fed to the process model.
func WithMomentumConfig(cfg stats.MomentumConfig) Option {
	return func(m *Manager) { m.momentum = cfg }
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// Manager owns the active arena of per-team filters.
//
// Concurrency: all mutation happens behind mu. Rebuild works on a fresh
// arena and swaps it in only on success, so readers either see the old
// consistent league state or the new one, never a half-replayed mixture.
type Manager struct {
	mu      sync.RWMutex
	cfg     team.Config
	arena   *repository.Arena
	history []model.Game

	momentum stats.MomentumConfig
	keywords []string
	health   feeds.HealthSource
	venues   feeds.VenueSource
	cache    Cache
	log      logger.Logger
}

// NewManager creates an empty manager; call Rebuild to load history.
func NewManager(cfg team.Config, opts ...Option) *Manager {
	cfg = cfg.Normalize()
	m := &Manager{
		cfg:      cfg,
		arena:    repository.NewArena(cfg),
		keywords: neutral.DefaultKeywords,
		log:      logger.Get().Named("league"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetCache wires a derived-state cache after construction. The feature
// builder reads league state, so its cache cannot exist before the manager.
func (m *Manager) SetCache(c Cache) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = c
}

// Rebuild replays the given history from scratch into a fresh arena and
// atomically replaces the current league state with it. The previous state
// stays fully readable until the swap; cancellation abandons the half-built
// arena and leaves the old one untouched.
//
// Replay is strictly sequential: each update depends on the exact state the
// earlier games produced. Given the same ordered history the resulting
// states are identical, which is what makes backtests reproducible.
func (m *Manager) Rebuild(ctx context.Context, games []model.Game) (ReplayReport, error) {
	start := time.Now()

	ordered := make([]model.Game, len(games))
	copy(ordered, games)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	m.mu.RLock()
	hint := m.arena.Count()
	m.mu.RUnlock()

	fresh := repository.NewArena(m.cfg, repository.WithCapacityHint(hint))
	hist := make([]model.Game, 0, len(ordered))
	var report ReplayReport

	for _, g := range ordered {
		select {
		case <-ctx.Done():
			return report, fmt.Errorf("replay cancelled: %w", ctx.Err())
		default:
		}

		if reason := validate(g); reason != "" {
			report.Rejected++
			report.Rejections = append(report.Rejections, Rejection{GameID: g.GameID, Reason: reason})
			metrics.RecordGameRejected(reason)
			m.log.Warn(ctx, "rejecting game record",
				logger.String("gameID", g.GameID),
				logger.String("reason", reason),
			)
			continue
		}

		m.applyOne(ctx, fresh, hist, g)
		hist = append(hist, g)
		report.Processed++
		metrics.RecordGameReplayed()
	}

	m.mu.Lock()
	old := m.arena
	m.arena = fresh
	m.history = hist
	m.mu.Unlock()

	if m.cache != nil {
		for _, id := range old.Teams() {
			m.cache.Invalidate(id)
		}
		for _, id := range fresh.Teams() {
			m.cache.Invalidate(id)
		}
	}

	metrics.RecordSnapshotSwap()
	metrics.RecordReplayDuration(float64(time.Since(start).Milliseconds()))
	m.log.Info(ctx, "league state rebuilt",
		logger.Int("processed", report.Processed),
		logger.Int("rejected", report.Rejected),
		logger.Int("teams", fresh.Count()),
	)
	return report, nil
}

// Apply incorporates one just-completed game into the live league state.
//
// Copy-on-write: the filter math runs on a clone outside the lock, then the
// clone is swapped in. Readers keep the previous arena until both sides of
// the game have updated, so they never observe a half-applied game. Results
// arrive through a single worker, so two Applies never race each other.
func (m *Manager) Apply(ctx context.Context, g model.Game) error {
	if reason := validate(g); reason != "" {
		metrics.RecordGameRejected(reason)
		return &DataError{GameID: g.GameID, Reason: reason}
	}

	m.mu.RLock()
	next := m.arena.Clone()
	hist := m.history
	m.mu.RUnlock()

	m.applyOne(ctx, next, hist, g)

	m.mu.Lock()
	m.arena = next
	m.history = append(m.history, g)
	m.mu.Unlock()

	if m.cache != nil {
		m.cache.Invalidate(g.HomeTeam)
		m.cache.Invalidate(g.AwayTeam)
	}
	metrics.RecordGameReplayed()
	return nil
}

// applyOne runs one game through both filters: predict, then update, home
// side first, each update against the opponent's pre-update state so the
// two updates within the same game cannot double count each other.
// Caller holds the write lock (or owns the arena exclusively).
func (m *Manager) applyOne(ctx context.Context, arena *repository.Arena, hist []model.Game, g model.Game) {
	homeF := arena.Ensure(g.HomeTeam)
	awayF := arena.Ensure(g.AwayTeam)

	homePre := homeF.State()
	awayPre := awayF.State()

	obs, _ := model.ObservationFrom(g)
	isNeutral := neutral.IsNeutral(g, m.homeVenue(ctx, g.HomeTeam), m.keywords)

	homeF.Predict(m.step(ctx, g.HomeTeam, hist, g.Date))
	awayF.Predict(m.step(ctx, g.AwayTeam, hist, g.Date))

	homeStats := homeF.Update(obs, awayPre, true, isNeutral)
	awayStats := awayF.Update(obs, homePre, false, isNeutral)

	for _, s := range []bool{homeStats.Repaired, awayStats.Repaired} {
		if s {
			metrics.RecordCovarianceRepair()
		}
	}
	if homeStats.Rejected || awayStats.Rejected {
		m.log.Warn(ctx, "degenerate measurement update rolled back",
			logger.String("gameID", g.GameID),
		)
	}
}

// step derives the process-model inputs for one team's time update.
func (m *Manager) step(ctx context.Context, teamID string, hist []model.Game, asOf time.Time) team.Step {
	health := math.NaN()
	if m.health != nil {
		if h, ok := m.health.Health(ctx, teamID, asOf); ok {
			health = h
		}
	}
	return team.Step{
		RestDays: stats.RestDays(teamID, hist, asOf),
		Health:   health,
		FormPull: stats.TeamMomentum(teamID, hist, asOf, m.momentum).Signal,
	}
}

func (m *Manager) homeVenue(ctx context.Context, teamID string) string {
	if m.venues == nil {
		return ""
	}
	return m.venues.HomeVenue(ctx, teamID)
}

// State returns a team's current estimate and uncertainty. A team never seen
// before reports the neutral prior, which is exactly what its filter would
// hold after lazy initialization. Only a blank id is an error.
func (m *Manager) State(teamID string) (team.State, team.Uncertainty, error) {
	if teamID == "" {
		return team.State{}, team.Uncertainty{}, fmt.Errorf("blank team id: %w", ErrUnknownTeam)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.arena.Get(teamID); ok {
		return f.State(), f.Uncertainty(), nil
	}
	f := team.NewFilter(m.cfg)
	return f.State(), f.Uncertainty(), nil
}

// Games returns how many games a team's filter has observed, 0 if unseen.
func (m *Manager) Games(teamID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if f, ok := m.arena.Get(teamID); ok {
		return f.Games()
	}
	return 0
}

// Ratings returns team id -> net rating for every known team.
func (m *Manager) Ratings() map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.arena.Ratings()
}

// History returns a copy of the applied game history in replay order.
func (m *Manager) History() []model.Game {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Game, len(m.history))
	copy(out, m.history)
	return out
}

// TeamCount returns the number of tracked teams.
func (m *Manager) TeamCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.arena.Count()
}

// validate returns a rejection reason for malformed records, "" when fine.
func validate(g model.Game) string {
	switch {
	case g.HomeTeam == "" || g.AwayTeam == "":
		return "missing team id"
	case g.HomeTeam == g.AwayTeam:
		return "identical team ids"
	case !g.Completed():
		return "missing final score"
	case *g.HomeScore < 0 || *g.AwayScore < 0:
		return "negative score"
	}
	return ""
}
