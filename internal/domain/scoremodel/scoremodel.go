// Package scoremodel holds the single nonlinear observation model mapping two
// team states to an expected game margin and total.
//
// The filter's measurement update and the standalone outcome predictor both
// call Expected. Keeping exactly one copy of the formula is what guarantees
// the two code paths can never drift apart on the baseline constant.
package scoremodel

// Baseline is the league-average points-per-100-possessions anchor that
// offensive and defensive ratings are centered on. A rating of 104 means
// "scores 4 points per 100 possessions more than an average team allows".
const Baseline = 100.0

// Inputs are the state components the observation model consumes, already
// resolved to the home/away slots of a specific matchup.
type Inputs struct {
	HomeOff float64
	HomeDef float64
	AwayOff float64
	AwayDef float64
	// HomeAdvantage is the effective home edge in points. Callers pass 0 for
	// neutral-site games.
	HomeAdvantage float64
	// Pace is the expected possessions for the game, normally the mean of the
	// two teams' tempo estimates.
	Pace float64
}

// Margin returns the expected home-minus-away score difference.
func Margin(in Inputs) float64 {
	return (in.HomeOff - in.AwayDef) - (in.AwayOff - in.HomeDef) + in.HomeAdvantage
}

// Total returns the expected combined score.
//
// Ratings are deviations from Baseline, so each side's per-100 expectation
// must be re-centered before scaling by pace. Dropping the re-centering term
// collapses the total to a pure rating differential and ignores defense
// entirely, which shows up as a monotonic under-prediction of totals.
func Total(in Inputs) float64 {
	homePer100 := (in.HomeOff - in.AwayDef) + Baseline
	awayPer100 := (in.AwayOff - in.HomeDef) + Baseline
	return (homePer100 + awayPer100) / Baseline * in.Pace
}

// Expected returns both expected margin and expected total for one matchup.
func Expected(in Inputs) (margin, total float64) {
	return Margin(in), Total(in)
}
