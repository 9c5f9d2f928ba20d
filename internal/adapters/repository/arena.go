package repository

import (
	"github.com/hoopsight/hoopsight/internal/domain/team"
	"github.com/hoopsight/hoopsight/pkg/metrics"
)

// Arena implements Store with a plain map of per-team filters.
type Arena struct {
	cfg     team.Config
	filters map[string]*team.Filter
}

// Option applies a configuration option to the Arena.
type Option func(*Arena)

// WithCapacityHint pre-sizes the arena's team map.
func WithCapacityHint(n int) Option {
	return func(a *Arena) {
		if n > 0 {
			a.filters = make(map[string]*team.Filter, n)
		}
	}
}

// NewArena creates an empty arena whose filters are initialized from cfg.
func NewArena(cfg team.Config, opts ...Option) *Arena {
	a := &Arena{
		cfg:     cfg.Normalize(),
		filters: make(map[string]*team.Filter),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ensure returns the filter for teamID, creating it with the neutral prior
// on first sight.
func (a *Arena) Ensure(teamID string) *team.Filter {
	if f, ok := a.filters[teamID]; ok {
		return f
	}
	f := team.NewFilter(a.cfg)
	a.filters[teamID] = f
	metrics.UpdateTrackedTeams(len(a.filters))
	return f
}

// Get returns the filter for teamID if the team has been seen.
func (a *Arena) Get(teamID string) (*team.Filter, bool) {
	f, ok := a.filters[teamID]
	return f, ok
}

// Ratings projects every filter to its net rating.
func (a *Arena) Ratings() map[string]float64 {
	out := make(map[string]float64, len(a.filters))
	for id, f := range a.filters {
		out[id] = f.State().Net()
	}
	return out
}

// Teams returns the known team ids.
func (a *Arena) Teams() []string {
	out := make([]string, 0, len(a.filters))
	for id := range a.filters {
		out = append(out, id)
	}
	return out
}

// Count returns the number of tracked teams.
func (a *Arena) Count() int { return len(a.filters) }

// Clone returns a deep copy used as the working set of a rebuild, so that
// the previous arena stays valid until the new one is swapped in.
func (a *Arena) Clone() *Arena {
	c := &Arena{
		cfg:     a.cfg,
		filters: make(map[string]*team.Filter, len(a.filters)),
	}
	for id, f := range a.filters {
		c.filters[id] = f.Clone()
	}
	return c
}
