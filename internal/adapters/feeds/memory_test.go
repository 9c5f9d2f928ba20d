package feeds_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hoopsight/hoopsight/internal/adapters/feeds"
	"github.com/hoopsight/hoopsight/internal/domain/model"
)

func intPtr(v int) *int { return &v }

func TestMemorySource(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, time.January, 1, 19, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	played := model.Game{
		GameID: "g1", HomeTeam: "duke", AwayTeam: "unc",
		Date: base.Add(2 * day), HomeScore: intPtr(80), AwayScore: intPtr(70),
	}
	earlier := model.Game{
		GameID: "g0", HomeTeam: "uk", AwayTeam: "duke",
		Date: base, HomeScore: intPtr(66), AwayScore: intPtr(60),
	}
	upcoming := model.Game{
		GameID: "g2", HomeTeam: "unc", AwayTeam: "uk",
		Date: base.Add(5 * day),
	}

	Convey("Given a source with mixed games", t, func() {
		src := feeds.NewMemorySource(played, upcoming)
		src.Add(earlier)

		Convey("Then completed games come back date ascending", func() {
			got, err := src.ListCompleted(ctx)
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 2)
			So(got[0].GameID, ShouldEqual, "g0")
			So(got[1].GameID, ShouldEqual, "g1")
		})

		Convey("Then upcoming games respect the window", func() {
			got, err := src.ListUpcoming(ctx, base, base.Add(10*day))
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 1)
			So(got[0].GameID, ShouldEqual, "g2")

			none, err := src.ListUpcoming(ctx, base, base.Add(day))
			So(err, ShouldBeNil)
			So(none, ShouldBeEmpty)
		})
	})
}

func TestStaticSources(t *testing.T) {
	ctx := context.Background()

	Convey("Given static collaborator feeds", t, func() {
		ratings := feeds.StaticRatings{"duke": {Offense: 110, Defense: 104, Tempo: 71}}
		health := feeds.StaticHealth{"duke": 0.8}
		venues := feeds.StaticVenues{"duke": "Cameron Indoor Stadium"}

		Convey("Then present entries resolve", func() {
			r, ok := ratings.Rating(ctx, "duke")
			So(ok, ShouldBeTrue)
			So(r.Net(), ShouldEqual, 6)

			h, ok := health.Health(ctx, "duke", time.Now())
			So(ok, ShouldBeTrue)
			So(h, ShouldEqual, 0.8)

			So(venues.HomeVenue(ctx, "duke"), ShouldEqual, "Cameron Indoor Stadium")
		})

		Convey("Then absences are explicit, not zero-valued surprises", func() {
			_, ok := ratings.Rating(ctx, "unc")
			So(ok, ShouldBeFalse)

			_, ok = health.Health(ctx, "unc", time.Now())
			So(ok, ShouldBeFalse)

			So(venues.HomeVenue(ctx, "unc"), ShouldEqual, "")
		})
	})
}
