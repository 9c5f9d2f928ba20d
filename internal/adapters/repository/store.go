// Package repository holds the arena of per-team filters: one map of team id
// to filter that the league manager mutates during replay and replaces
// wholesale after a rebuild. Keeping every (state, covariance) pair in a
// single arena instead of a web of cross-referencing objects is what makes
// "swap the whole league atomically" a single pointer assignment.
package repository

import "github.com/hoopsight/hoopsight/internal/domain/team"

// Store is the read/write surface the league manager needs.
//
// Implementations are not required to be goroutine-safe. The manager owns
// the active arena, serializes access behind its own lock, and swaps in a
// freshly built arena after replay rather than mutating in place under
// readers.
type Store interface {
	// Ensure returns the filter for a team, lazily creating it with the
	// neutral prior the first time the team is seen.
	Ensure(teamID string) *team.Filter

	// Get returns the filter for a team if it exists.
	Get(teamID string) (*team.Filter, bool)

	// Ratings returns team id -> net rating for every known team.
	Ratings() map[string]float64

	// Teams returns the known team ids in unspecified order.
	Teams() []string

	// Count returns the number of tracked teams.
	Count() int
}
