// Package neutral decides whether a matchup should be treated as a
// neutral-site game, i.e. without a home-advantage term in the margin.
package neutral

import (
	"strings"

	"github.com/hoopsight/hoopsight/internal/domain/model"
)

// DefaultKeywords flag event names that usually mean nobody is at home.
// The list is configuration; this is the stock set.
var DefaultKeywords = []string{
	"classic",
	"tournament",
	"invitational",
	"showcase",
	"challenge",
	"madness",
	"cup",
	"neutral",
}

// IsNeutral applies the detection policy for one game.
//
// An explicit flag on the game always wins. Without one the call falls back
// to heuristics: an event name containing a tournament-style keyword, or a
// listed venue that does not match the nominal home team's usual venue. The
// heuristics are best-effort and known to produce both false positives and
// false negatives, which is why the explicit flag takes precedence.
//
// homeVenue is the home team's usual venue if known, "" otherwise.
func IsNeutral(g model.Game, homeVenue string, keywords []string) bool {
	if g.Neutral != nil {
		return *g.Neutral
	}
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	if event := strings.ToLower(g.EventName); event != "" {
		for _, kw := range keywords {
			if strings.Contains(event, strings.ToLower(kw)) {
				return true
			}
		}
	}
	if g.Venue != "" && homeVenue != "" && !strings.EqualFold(g.Venue, homeVenue) {
		return true
	}
	return false
}
