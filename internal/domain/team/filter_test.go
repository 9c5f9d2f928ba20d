package team_test

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hoopsight/hoopsight/internal/domain/model"
	"github.com/hoopsight/hoopsight/internal/domain/team"
)

func TestNewFilter(t *testing.T) {
	Convey("Given a fresh filter", t, func() {
		f := team.NewFilter(team.DefaultConfig())

		Convey("Then it reports the neutral prior", func() {
			st := f.State()
			So(st.Off, ShouldEqual, 100)
			So(st.Def, ShouldEqual, 100)
			So(st.HomeAdv, ShouldEqual, 3)
			So(st.Health, ShouldEqual, 1)
			So(st.Momentum, ShouldEqual, 0)
			So(st.Fatigue, ShouldEqual, 0)
			So(st.Tempo, ShouldEqual, 68)
		})

		Convey("Then it is not yet tracking", func() {
			So(f.Tracking(), ShouldBeFalse)
			So(f.Games(), ShouldEqual, 0)
		})

		Convey("Then zero config fields fall back to the same defaults", func() {
			g := team.NewFilter(team.Config{})
			So(g.State(), ShouldResemble, f.State())
		})
	})
}

func TestPredict(t *testing.T) {
	Convey("Given a filter advancing without new information", t, func() {
		f := team.NewFilter(team.DefaultConfig())
		before := f.Uncertainty()
		f.Predict(team.Step{RestDays: 2, Health: math.NaN()})

		Convey("Then ratings random-walk in place", func() {
			st := f.State()
			So(st.Off, ShouldAlmostEqual, 100, 1e-6)
			So(st.Def, ShouldAlmostEqual, 100, 1e-6)
		})

		Convey("Then uncertainty grows", func() {
			after := f.Uncertainty()
			So(after.OffVar, ShouldBeGreaterThan, before.OffVar)
			So(after.DefVar, ShouldBeGreaterThan, before.DefVar)
		})

		Convey("Then a NaN health signal keeps the current estimate", func() {
			So(f.State().Health, ShouldAlmostEqual, 1, 1e-6)
		})
	})

	Convey("Given a full season of no-information steps", t, func() {
		f := team.NewFilter(team.DefaultConfig())
		for i := 0; i < 40; i++ {
			f.Predict(team.Step{RestDays: 2, Health: math.NaN()})
		}

		Convey("Then health does not drift off its bound", func() {
			So(f.State().Health, ShouldAlmostEqual, 1, 1e-9)
		})

		Convey("Then fatigue does not inflate away from zero", func() {
			So(f.State().Fatigue, ShouldAlmostEqual, 0, 1e-9)
		})
	})

	Convey("Given an external health signal", t, func() {
		f := team.NewFilter(team.DefaultConfig())
		f.Predict(team.Step{RestDays: 2, Health: 0.6})

		Convey("Then health tracks the signal", func() {
			So(f.State().Health, ShouldAlmostEqual, 0.6, 1e-6)
		})

		Convey("Then an out-of-range signal is clipped", func() {
			f.Predict(team.Step{RestDays: 2, Health: 1.8})
			So(f.State().Health, ShouldBeLessThanOrEqualTo, 1)
		})
	})

	Convey("Given accumulated momentum and fatigue", t, func() {
		obs := model.Observation{Margin: 20, Total: 150}
		opp := team.DefaultConfig().Prior()

		f := team.NewFilter(team.DefaultConfig())
		f.Update(obs, opp, true, false)
		fatigued := f.State().Fatigue
		So(fatigued, ShouldBeGreaterThan, 0)

		Convey("When the team rests a long stretch", func() {
			f.Predict(team.Step{RestDays: 30, Health: math.NaN()})

			Convey("Then fatigue decays toward zero", func() {
				So(f.State().Fatigue, ShouldBeLessThan, fatigued)
				So(f.State().Fatigue, ShouldBeGreaterThanOrEqualTo, 0)
			})
		})

		Convey("When form pulls momentum upward", func() {
			f.Predict(team.Step{RestDays: 2, Health: math.NaN(), FormPull: 1})

			Convey("Then momentum moves toward the pull", func() {
				So(f.State().Momentum, ShouldBeGreaterThan, 0)
				So(f.State().Momentum, ShouldBeLessThanOrEqualTo, 1)
			})
		})
	})
}

func TestUpdate(t *testing.T) {
	cfg := team.DefaultConfig()
	opp := cfg.Prior()

	Convey("Given a home team that keeps winning big", t, func() {
		f := team.NewFilter(cfg)
		for i := 0; i < 8; i++ {
			f.Predict(team.Step{RestDays: 3, Health: math.NaN()})
			f.Update(model.Observation{Margin: 15, Total: 140}, opp, true, false)
		}

		Convey("Then its effective strength rises above the prior", func() {
			// Margin observations identify Off+Def jointly; winning big
			// must push that sum above the 200 a prior team carries.
			st := f.State()
			So(st.Off+st.Def, ShouldBeGreaterThan, 200)
		})

		Convey("Then it is tracking", func() {
			So(f.Tracking(), ShouldBeTrue)
			So(f.Games(), ShouldEqual, 8)
		})

		Convey("Then rating uncertainty shrinks below the prior", func() {
			fresh := team.NewFilter(cfg)
			So(f.Uncertainty().OffVar, ShouldBeLessThan, fresh.Uncertainty().OffVar)
		})
	})

	Convey("Given the same losses seen from the away side", t, func() {
		f := team.NewFilter(cfg)
		for i := 0; i < 8; i++ {
			f.Predict(team.Step{RestDays: 3, Health: math.NaN()})
			// Home margin +15 means this away team lost by 15.
			f.Update(model.Observation{Margin: 15, Total: 140}, opp, false, false)
		}

		Convey("Then its effective strength falls below the prior", func() {
			st := f.State()
			So(st.Off+st.Def, ShouldBeLessThan, 200)
		})
	})

	Convey("Given bounded components after many updates", t, func() {
		f := team.NewFilter(cfg)
		for i := 0; i < 20; i++ {
			f.Predict(team.Step{RestDays: 0, Health: math.NaN()})
			f.Update(model.Observation{Margin: 40, Total: 200}, opp, true, false)
		}
		st := f.State()

		Convey("Then home advantage stays inside its bounds", func() {
			So(st.HomeAdv, ShouldBeGreaterThanOrEqualTo, team.HomeAdvMin)
			So(st.HomeAdv, ShouldBeLessThanOrEqualTo, team.HomeAdvMax)
		})

		Convey("Then tempo stays inside its bounds", func() {
			So(st.Tempo, ShouldBeGreaterThanOrEqualTo, team.TempoMin)
			So(st.Tempo, ShouldBeLessThanOrEqualTo, team.TempoMax)
		})

		Convey("Then health and fatigue stay in range", func() {
			So(st.Health, ShouldBeGreaterThanOrEqualTo, 0)
			So(st.Health, ShouldBeLessThanOrEqualTo, 1)
			So(st.Fatigue, ShouldBeGreaterThanOrEqualTo, 0)
		})
	})

	Convey("Given a neutral-site game", t, func() {
		measureHome := team.NewFilter(cfg).MeasurementFunc(opp, true, false)
		measureNeutral := team.NewFilter(cfg).MeasurementFunc(opp, true, true)
		x := cfg.Prior()

		Convey("Then the neutral expectation drops the home edge", func() {
			withEdge := measureHome(stateVector(x))
			without := measureNeutral(stateVector(x))
			So(withEdge[0]-without[0], ShouldAlmostEqual, x.HomeAdv, 1e-9)
			So(withEdge[1], ShouldAlmostEqual, without[1], 1e-9)
		})
	})

	Convey("Given identical updates on two fresh filters", t, func() {
		run := func() team.State {
			f := team.NewFilter(cfg)
			for i := 0; i < 5; i++ {
				f.Predict(team.Step{RestDays: 2, Health: math.NaN(), FormPull: 0.3})
				f.Update(model.Observation{Margin: float64(3 + i), Total: 145}, opp, i%2 == 0, false)
			}
			return f.State()
		}

		Convey("Then the resulting states are identical", func() {
			So(run(), ShouldResemble, run())
		})
	})
}

// stateVector flattens a State into filter component order for driving a
// measurement function directly.
func stateVector(s team.State) []float64 {
	v := make([]float64, team.Dim)
	v[team.Off] = s.Off
	v[team.Def] = s.Def
	v[team.HomeAdv] = s.HomeAdv
	v[team.Health] = s.Health
	v[team.Momentum] = s.Momentum
	v[team.Fatigue] = s.Fatigue
	v[team.Tempo] = s.Tempo
	return v
}
