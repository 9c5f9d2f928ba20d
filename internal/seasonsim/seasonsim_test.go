package seasonsim

import (
	"context"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hoopsight/hoopsight/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a season config", t, func() {
		cfg := Config{Teams: 6, Rounds: 2, Seed: 7}

		Convey("When generating the schedule", func() {
			games, truths := Generate(cfg)

			Convey("Then every ordered pair meets once per round", func() {
				So(truths, ShouldHaveLength, 6)
				So(games, ShouldHaveLength, 6*5*2)
			})

			Convey("Then every game is completed and decided", func() {
				for _, g := range games {
					So(g.Completed(), ShouldBeTrue)
					So(*g.HomeScore, ShouldNotEqual, *g.AwayScore)
					So(*g.HomeScore, ShouldBeGreaterThanOrEqualTo, 0)
					So(*g.AwayScore, ShouldBeGreaterThanOrEqualTo, 0)
				}
			})

			Convey("Then the schedule is date-ordered", func() {
				for i := 1; i < len(games); i++ {
					So(games[i].Date.After(games[i-1].Date), ShouldBeTrue)
				}
			})

			Convey("Then the same seed reproduces the same season", func() {
				again, againTruths := Generate(cfg)
				So(again, ShouldResemble, games)
				So(againTruths, ShouldResemble, truths)
			})

			Convey("Then a different seed produces a different season", func() {
				other, _ := Generate(Config{Teams: 6, Rounds: 2, Seed: 8})
				So(other, ShouldNotResemble, games)
			})
		})

		Convey("When generating with a zero config", func() {
			games, truths := Generate(Config{})

			Convey("Then the defaults fill in", func() {
				So(truths, ShouldHaveLength, 12)
				So(games, ShouldHaveLength, 12*11*2)
			})
		})
	})
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Teams: 8, Rounds: 2, Seed: 42, ScoreNoise: 8}

	Convey("Given a synthetic season replay", t, func() {
		report, err := Run(ctx, cfg)
		So(err, ShouldBeNil)

		Convey("Then every game is counted and the warmup is skipped", func() {
			So(report.Games, ShouldEqual, 8*7*2)
			So(report.Evaluated, ShouldBeGreaterThan, 0)
			So(report.Evaluated, ShouldBeLessThan, report.Games)
		})

		Convey("Then the estimator beats a coin flip on winners", func() {
			So(report.WinnerAccuracy, ShouldBeGreaterThan, 0.55)
		})

		Convey("Then the errors are finite and plausible", func() {
			So(math.IsNaN(report.MarginMAE), ShouldBeFalse)
			So(report.MarginMAE, ShouldBeGreaterThan, 0)
			So(report.MarginMAE, ShouldBeLessThan, 25)
			So(report.TotalMAE, ShouldBeGreaterThan, 0)
			So(report.TotalMAE, ShouldBeLessThan, 40)
		})

		Convey("Then the calibration buckets cover every evaluated game", func() {
			total := 0
			for _, b := range report.Calibration {
				So(b.Lo, ShouldBeLessThan, b.Hi)
				So(b.Count, ShouldBeGreaterThan, 0)
				So(b.MeanConfidence, ShouldBeBetweenOrEqual, b.Lo, b.Hi)
				So(b.WinnerAccuracy, ShouldBeBetweenOrEqual, 0, 1)
				total += b.Count
			}
			So(total, ShouldEqual, report.Evaluated)
		})

		Convey("Then the recovered ordering tracks the truth", func() {
			So(report.RankCorrelation, ShouldBeGreaterThan, 0)
			So(report.RankCorrelation, ShouldBeLessThanOrEqualTo, 1)
		})

		Convey("Then the replay is deterministic", func() {
			again, err := Run(ctx, cfg)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, report)
		})
	})
}

func TestRunCancellation(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("When running the season", func() {
			_, err := Run(ctx, Config{Teams: 4, Rounds: 1, Seed: 3})

			Convey("Then the replay aborts", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "season aborted")
			})
		})
	})
}
