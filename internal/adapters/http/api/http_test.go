package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hoopsight/hoopsight/internal/domain/league"
	"github.com/hoopsight/hoopsight/internal/domain/model"
	"github.com/hoopsight/hoopsight/internal/domain/team"
)

// fakeDeps scripts every dependency the handlers call.
type fakeDeps struct {
	prediction model.Prediction
	predictErr error
	ratings    map[string]float64
	ratingsErr error
	state      team.State
	stateErr   error
	accepted   bool
	submitErr  error
	submitted  []model.Game
}

func (f *fakeDeps) Predict(_ context.Context, home, away string, isNeutral bool) (model.Prediction, error) {
	return f.prediction, f.predictErr
}

func (f *fakeDeps) Ratings(_ context.Context) (map[string]float64, error) {
	return f.ratings, f.ratingsErr
}

func (f *fakeDeps) TeamState(_ context.Context, teamID string) (team.State, team.Uncertainty, error) {
	return f.state, team.Uncertainty{OffVar: 10}, f.stateErr
}

func (f *fakeDeps) SubmitResult(_ context.Context, g model.Game) (bool, error) {
	f.submitted = append(f.submitted, g)
	return f.accepted, f.submitErr
}

type fakeStats struct{}

func (fakeStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newMux(deps *fakeDeps) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(deps, fakeStats{}).Register(context.Background(), mux)
	return mux
}

func doReq(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestPredictEndpoint(t *testing.T) {
	Convey("Given a predict endpoint", t, func() {
		deps := &fakeDeps{prediction: model.Prediction{
			HomeTeam:   "duke",
			AwayTeam:   "unc",
			Margin:     4.5,
			Total:      148,
			Confidence: 62,
			Source:     model.SourceHybrid,
		}}
		mux := newMux(deps)

		Convey("When both teams are supplied", func() {
			rec := doReq(mux, http.MethodGet, "/predict?home=duke&away=unc", "")

			Convey("Then the forecast comes back as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got model.Prediction
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got.Margin, ShouldEqual, 4.5)
				So(got.Source, ShouldEqual, model.SourceHybrid)
			})
		})

		Convey("When a team parameter is missing", func() {
			rec := doReq(mux, http.MethodGet, "/predict?home=duke", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When home and away are the same team", func() {
			rec := doReq(mux, http.MethodGet, "/predict?home=duke&away=duke", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the neutral flag is garbage", func() {
			rec := doReq(mux, http.MethodGet, "/predict?home=duke&away=unc&neutral=maybe", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a team is unknown", func() {
			deps.predictErr = fmt.Errorf("looking up home: %w", league.ErrUnknownTeam)
			rec := doReq(mux, http.MethodGet, "/predict?home=duke&away=nobody", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the predictor fails internally", func() {
			deps.predictErr = errors.New("boom")
			rec := doReq(mux, http.MethodGet, "/predict?home=duke&away=unc", "")
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When the method is POST", func() {
			rec := doReq(mux, http.MethodPost, "/predict?home=duke&away=unc", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRatingsEndpoint(t *testing.T) {
	Convey("Given a ratings endpoint", t, func() {
		deps := &fakeDeps{ratings: map[string]float64{
			"unc":  2.0,
			"duke": 6.5,
			"nova": 2.0,
		}}
		mux := newMux(deps)

		Convey("When ratings are requested", func() {
			rec := doReq(mux, http.MethodGet, "/ratings", "")

			Convey("Then teams come back strongest first, ties by id", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got []ratingEntry
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got, ShouldHaveLength, 3)
				So(got[0].TeamID, ShouldEqual, "duke")
				So(got[1].TeamID, ShouldEqual, "nova")
				So(got[2].TeamID, ShouldEqual, "unc")
			})
		})

		Convey("When the service is not serving yet", func() {
			deps.ratingsErr = errors.New("service not started")
			rec := doReq(mux, http.MethodGet, "/ratings", "")

			Convey("Then the endpoint reports unavailable", func() {
				So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func TestTeamEndpoint(t *testing.T) {
	Convey("Given a team endpoint", t, func() {
		deps := &fakeDeps{state: team.State{Off: 106, Def: 102, Tempo: 70, Health: 1}}
		mux := newMux(deps)

		Convey("When an existing team is requested", func() {
			rec := doReq(mux, http.MethodGet, "/teams/duke", "")

			Convey("Then the state and net rating come back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got teamResponse
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got.TeamID, ShouldEqual, "duke")
				So(got.State.Off, ShouldEqual, 106)
				So(got.Net, ShouldEqual, 4)
			})
		})

		Convey("When the team id is missing from the path", func() {
			rec := doReq(mux, http.MethodGet, "/teams/", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the path nests deeper than one id", func() {
			rec := doReq(mux, http.MethodGet, "/teams/duke/roster", "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the team is unknown", func() {
			deps.stateErr = fmt.Errorf("state: %w", league.ErrUnknownTeam)
			rec := doReq(mux, http.MethodGet, "/teams/nobody", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestResultsEndpoint(t *testing.T) {
	valid := `{
		"game_id": "g1",
		"home_team": "duke",
		"away_team": "unc",
		"date": "2026-01-10T19:00:00Z",
		"home_score": 78,
		"away_score": 70
	}`

	Convey("Given a results endpoint", t, func() {
		deps := &fakeDeps{accepted: true}
		mux := newMux(deps)

		Convey("When a valid result is posted", func() {
			rec := doReq(mux, http.MethodPost, "/results", valid)

			Convey("Then it is acknowledged as accepted", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				var ack ackResponse
				So(json.Unmarshal(rec.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.Status, ShouldEqual, "accepted")
				So(ack.Duplicate, ShouldBeFalse)
				So(deps.submitted, ShouldHaveLength, 1)
				So(deps.submitted[0].GameID, ShouldEqual, "g1")
			})
		})

		Convey("When the same game was already recorded", func() {
			deps.accepted = false
			rec := doReq(mux, http.MethodPost, "/results", valid)

			Convey("Then the ack flags the duplicate", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var ack ackResponse
				So(json.Unmarshal(rec.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.Duplicate, ShouldBeTrue)
			})
		})

		Convey("When the body is not JSON", func() {
			rec := doReq(mux, http.MethodPost, "/results", "not json")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the score is missing", func() {
			body := `{"game_id":"g1","home_team":"duke","away_team":"unc","date":"2026-01-10T19:00:00Z"}`
			rec := doReq(mux, http.MethodPost, "/results", body)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the date is not RFC3339", func() {
			body := `{"game_id":"g1","home_team":"duke","away_team":"unc","date":"01/10/2026","home_score":78,"away_score":70}`
			rec := doReq(mux, http.MethodPost, "/results", body)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the service rejects the record", func() {
			deps.submitErr = &league.DataError{GameID: "g1", Reason: "identical team ids"}
			rec := doReq(mux, http.MethodPost, "/results", valid)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the queue is full", func() {
			deps.submitErr = errors.New("result queue full")
			rec := doReq(mux, http.MethodPost, "/results", valid)
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
		})

		Convey("When the method is GET", func() {
			rec := doReq(mux, http.MethodGet, "/results", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given a stats endpoint", t, func() {
		mux := newMux(&fakeDeps{})

		Convey("When stats are requested", func() {
			rec := doReq(mux, http.MethodGet, "/stats", "")

			Convey("Then the service stats come back as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got map[string]interface{}
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got["started"], ShouldEqual, true)
			})
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the health endpoint", t, func() {
		mux := newMux(&fakeDeps{})

		Convey("When health is requested", func() {
			rec := doReq(mux, http.MethodGet, "/healthz", "")

			Convey("Then it reports OK", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}
