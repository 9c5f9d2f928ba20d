package feature

import (
	"sync"
	"time"

	"github.com/hoopsight/hoopsight/internal/domain/stats"
)

// derived bundles the history-derived statistics for one team on one
// calendar date. Recomputing these dominates feature-build cost, so they
// are cached until the team's filter state changes or the date rolls over.
// Freshness is day-granular: every input is dated by game day, and the
// manager invalidates the team on every same-day mutation anyway.
type derived struct {
	day      time.Time
	momentum stats.Momentum
	restDays float64
	fatigue  float64
	tempo    float64
	sos      float64
}

// dayOf truncates a reference time to its UTC calendar date.
func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Cache is an owned, explicitly invalidated store of derived statistics.
// The league manager calls Invalidate for a team whenever it mutates that
// team's filter, which keeps the invalidation contract auditable instead of
// hiding it in a process-global.
type Cache struct {
	mu sync.RWMutex
	m  map[string]derived
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{m: make(map[string]derived)}
}

// get returns the cached stats for a team as of asOf's calendar date,
// false on miss.
func (c *Cache) get(teamID string, asOf time.Time) (derived, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.m[teamID]
	if !ok || !d.day.Equal(dayOf(asOf)) {
		return derived{}, false
	}
	return d, true
}

// put stores derived stats for a team.
func (c *Cache) put(teamID string, d derived) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[teamID] = d
}

// Invalidate drops the cached entry for one team.
func (c *Cache) Invalidate(teamID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, teamID)
}

// Len returns the number of cached teams.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
