package types_test

import (
	"testing"
	"time"

	"github.com/okian/tribureau/internal/domain/model"
	"github.com/okian/tribureau/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewProfile(t *testing.T) {
	Convey("Given the latest readings of a user", t, func() {
		now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		latest := map[model.Source]model.Reading{
			model.SourceExperian: {
				ID: "r1", Source: model.SourceExperian, Available: true, CapturedAt: now,
				ExternalReportID: "EXP-1", Metrics: &model.Metrics{Score: 712},
			},
			model.SourceTransUnion: {
				ID: "r2", Source: model.SourceTransUnion, CapturedAt: now, ErrorReason: "TransUnion service temporarily unavailable",
			},
		}

		Convey("When the profile is assembled", func() {
			p := types.NewProfile(model.User{ID: "u-1"}, latest, nil)

			Convey("Then it should list every source in order", func() {
				So(len(p.Sources), ShouldEqual, 3)
				So(p.Sources[0].Source, ShouldEqual, model.SourceExperian)
				So(p.Sources[1].Source, ShouldEqual, model.SourceEquifax)
				So(p.Sources[2].Source, ShouldEqual, model.SourceTransUnion)
				So(p.Aggregate, ShouldBeNil)
			})

			Convey("Then available, failed and never-fetched sources should be distinguishable", func() {
				So(p.Sources[0].Fetched, ShouldBeTrue)
				So(*p.Sources[0].Score, ShouldEqual, 712)
				So(p.Sources[0].CapturedAt.Equal(now), ShouldBeTrue)

				So(p.Sources[1].Fetched, ShouldBeFalse)
				So(p.Sources[1].Score, ShouldBeNil)

				So(p.Sources[2].Fetched, ShouldBeTrue)
				So(p.Sources[2].Available, ShouldBeFalse)
				So(p.Sources[2].Score, ShouldBeNil)
				So(p.Sources[2].ErrorReason, ShouldNotBeEmpty)
			})
		})
	})
}

func TestNewReportRef(t *testing.T) {
	Convey("Given a failed reading", t, func() {
		r := model.Reading{ID: "r9", Source: model.SourceEquifax, ErrorReason: "down"}

		Convey("Then the reference should carry the reason", func() {
			ref := types.NewReportRef(r)
			So(ref.ID, ShouldEqual, "r9")
			So(ref.Available, ShouldBeFalse)
			So(ref.ErrorReason, ShouldEqual, "down")
		})
	})
}
