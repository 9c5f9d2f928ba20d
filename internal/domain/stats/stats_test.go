package stats_test

import (
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hoopsight/hoopsight/internal/domain/model"
	"github.com/hoopsight/hoopsight/internal/domain/stats"
)

func finished(id, home, away string, date time.Time, hs, as int) model.Game {
	return model.Game{
		GameID:    id,
		HomeTeam:  home,
		AwayTeam:  away,
		Date:      date,
		HomeScore: &hs,
		AwayScore: &as,
	}
}

func TestTeamMomentum(t *testing.T) {
	asOf := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	Convey("Given a team with no history", t, func() {
		m := stats.TeamMomentum("duke", nil, asOf, stats.MomentumConfig{})

		Convey("Then the signal is neutral", func() {
			So(m.Signal, ShouldEqual, 0)
			So(m.Games, ShouldEqual, 0)
		})
	})

	Convey("Given an all-win history", t, func() {
		var history []model.Game
		for i := 0; i < 5; i++ {
			history = append(history, finished(fmt.Sprintf("g%d", i), "duke", "unc", asOf.Add(-time.Duration(i+1)*day), 80, 70))
		}
		m := stats.TeamMomentum("duke", history, asOf, stats.MomentumConfig{})

		Convey("Then the win rate is 1 and the signal is positive", func() {
			So(m.WinRate, ShouldEqual, 1)
			So(m.AvgMargin, ShouldEqual, 10)
			So(m.Signal, ShouldBeGreaterThan, 0)
			So(m.Games, ShouldEqual, 5)
		})

		Convey("Then the same games viewed from the losing side mirror the signal", func() {
			opp := stats.TeamMomentum("unc", history, asOf, stats.MomentumConfig{})
			So(opp.WinRate, ShouldEqual, 0)
			So(opp.AvgMargin, ShouldEqual, -10)
			So(opp.Signal, ShouldBeLessThan, 0)
		})
	})

	Convey("Given two mirrored schedules that differ only in streak timing", t, func() {
		// Three wins and three losses each; one team's wins come last.
		var late, early []model.Game
		for i := 0; i < 6; i++ {
			date := asOf.Add(-time.Duration(6-i) * day)
			if i < 3 {
				late = append(late, finished(fmt.Sprintf("l%d", i), "duke", "unc", date, 70, 78))
				early = append(early, finished(fmt.Sprintf("e%d", i), "duke", "unc", date, 78, 70))
			} else {
				late = append(late, finished(fmt.Sprintf("l%d", i), "duke", "unc", date, 78, 70))
				early = append(early, finished(fmt.Sprintf("e%d", i), "duke", "unc", date, 70, 78))
			}
		}
		cfg := stats.MomentumConfig{Decay: 0.7}

		Convey("Then the more recent win streak carries strictly more momentum", func() {
			lateM := stats.TeamMomentum("duke", late, asOf, cfg)
			earlyM := stats.TeamMomentum("duke", early, asOf, cfg)
			So(lateM.Signal, ShouldBeGreaterThan, earlyM.Signal)
		})
	})

	Convey("Given recent losses after older wins", t, func() {
		history := []model.Game{
			// Newest two are losses, older three are wins.
			finished("g1", "duke", "unc", asOf.Add(-1*day), 60, 75),
			finished("g2", "duke", "uk", asOf.Add(-2*day), 60, 75),
			finished("g3", "duke", "unc", asOf.Add(-3*day), 90, 70),
			finished("g4", "duke", "uk", asOf.Add(-4*day), 90, 70),
			finished("g5", "duke", "unc", asOf.Add(-5*day), 90, 70),
		}
		cfg := stats.MomentumConfig{Window: 10, Decay: 0.5}
		m := stats.TeamMomentum("duke", history, asOf, cfg)

		Convey("Then recency weighting pulls the win rate below the raw fraction", func() {
			// Raw fraction is 3/5; decay 0.5 weights the two newest losses
			// 1 and 0.5 against wins at 0.25, 0.125, 0.0625.
			So(m.WinRate, ShouldBeLessThan, 0.6)
			So(m.Signal, ShouldBeLessThan, 0)
		})
	})

	Convey("Given games on or after the reference date", t, func() {
		history := []model.Game{
			finished("past", "duke", "unc", asOf.Add(-2*day), 90, 70),
			finished("sameday", "duke", "uk", asOf, 50, 90),
			finished("future", "duke", "unc", asOf.Add(3*day), 50, 90),
		}
		m := stats.TeamMomentum("duke", history, asOf, stats.MomentumConfig{})

		Convey("Then only strictly earlier games contribute", func() {
			So(m.Games, ShouldEqual, 1)
			So(m.WinRate, ShouldEqual, 1)
		})
	})

	Convey("Given the signal clamp", t, func() {
		history := []model.Game{
			finished("blowout", "duke", "unc", asOf.Add(-1*day), 140, 40),
		}
		m := stats.TeamMomentum("duke", history, asOf, stats.MomentumConfig{})

		Convey("Then even a 100-point blowout stays within [-1, 1]", func() {
			So(m.Signal, ShouldBeLessThanOrEqualTo, 1)
			So(m.Signal, ShouldBeGreaterThanOrEqualTo, -1)
		})
	})
}

func TestRestDays(t *testing.T) {
	asOf := time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	Convey("Given a team with no history", t, func() {
		So(stats.RestDays("duke", nil, asOf), ShouldEqual, stats.DefaultRestDays)
	})

	Convey("Given a game three days earlier", t, func() {
		history := []model.Game{finished("g1", "duke", "unc", asOf.Add(-3*day), 80, 70)}
		So(stats.RestDays("duke", history, asOf), ShouldEqual, 3)
	})

	Convey("Given a tournament game earlier the same day", t, func() {
		history := []model.Game{finished("semi", "duke", "unc", asOf.Add(-6*time.Hour), 80, 70)}

		Convey("Then rest is zero, not the no-history default", func() {
			So(stats.RestDays("duke", history, asOf), ShouldEqual, 0)
		})
	})

	Convey("Given only games after the reference date", t, func() {
		history := []model.Game{finished("g1", "duke", "unc", asOf.Add(2*day), 80, 70)}
		So(stats.RestDays("duke", history, asOf), ShouldEqual, stats.DefaultRestDays)
	})
}

func TestFatigue(t *testing.T) {
	asOf := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	Convey("Given a team with no history", t, func() {
		So(stats.Fatigue("duke", nil, asOf), ShouldEqual, 0)
	})

	Convey("Given a dense week versus a sparse one", t, func() {
		var dense, sparse []model.Game
		for i := 1; i <= 4; i++ {
			dense = append(dense, finished(fmt.Sprintf("d%d", i), "duke", "unc", asOf.Add(-time.Duration(i)*day), 80, 70))
		}
		sparse = append(sparse, finished("s1", "duke", "unc", asOf.Add(-6*day), 80, 70))

		Convey("Then the dense schedule is more fatiguing", func() {
			So(stats.Fatigue("duke", dense, asOf), ShouldBeGreaterThan, stats.Fatigue("duke", sparse, asOf))
		})

		Convey("Then fatigue is never negative", func() {
			So(stats.Fatigue("duke", sparse, asOf), ShouldBeGreaterThanOrEqualTo, 0)
		})
	})
}

func TestTempoEstimate(t *testing.T) {
	asOf := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	Convey("Given an external tempo rating", t, func() {
		ext := 72.5
		history := []model.Game{finished("g1", "duke", "unc", asOf.Add(-1*day), 90, 80)}

		Convey("Then it wins over any history-derived estimate", func() {
			So(stats.TempoEstimate("duke", history, asOf, &ext, 68), ShouldEqual, 72.5)
		})

		Convey("Then an out-of-range rating is clipped", func() {
			fast := 95.0
			So(stats.TempoEstimate("duke", nil, asOf, &fast, 68), ShouldEqual, stats.TempoMax)
		})

		Convey("Then a non-positive rating is ignored", func() {
			zero := 0.0
			So(stats.TempoEstimate("duke", nil, asOf, &zero, 68), ShouldEqual, 68)
		})
	})

	Convey("Given only the team's own scoring history", t, func() {
		history := []model.Game{
			finished("g1", "duke", "unc", asOf.Add(-1*day), 70, 60),
			finished("g2", "unc", "duke", asOf.Add(-3*day), 80, 74),
		}
		got := stats.TempoEstimate("duke", history, asOf, nil, 68)

		Convey("Then the estimate is average points over assumed efficiency", func() {
			So(got, ShouldEqual, 72) // (70+74)/2 at 1.0 points per possession
		})

		Convey("Then it is not half the combined score", func() {
			So(got, ShouldNotEqual, (70.0+60+80+74)/2/2)
		})
	})

	Convey("Given no signal at all", t, func() {
		So(stats.TempoEstimate("duke", nil, asOf, nil, 68), ShouldEqual, 68)
		So(stats.TempoEstimate("duke", nil, asOf, nil, 0), ShouldEqual, 68)
	})
}

func TestStrengthOfSchedule(t *testing.T) {
	asOf := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	Convey("Given games against rated opponents", t, func() {
		history := []model.Game{
			finished("g1", "duke", "unc", asOf.Add(-1*day), 80, 70),
			finished("g2", "uk", "duke", asOf.Add(-2*day), 80, 70),
		}
		ratings := map[string]float64{"unc": 8, "uk": -2}

		Convey("Then the mean opponent net rating is returned", func() {
			So(stats.StrengthOfSchedule("duke", history, ratings), ShouldEqual, 3)
		})
	})

	Convey("Given no rated opponents", t, func() {
		So(stats.StrengthOfSchedule("duke", nil, nil), ShouldEqual, 0)
	})
}

func TestHealthScore(t *testing.T) {
	Convey("Given availability signals", t, func() {
		So(stats.HealthScore(nil), ShouldEqual, 1)

		v := 0.7
		So(stats.HealthScore(&v), ShouldEqual, 0.7)

		over := 1.4
		So(stats.HealthScore(&over), ShouldEqual, 1)

		under := -0.2
		So(stats.HealthScore(&under), ShouldEqual, 0)
	})
}
