package bureau_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/okian/tribureau/internal/domain/bureau"
	"github.com/okian/tribureau/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRandomAdapter(t *testing.T) {
	Convey("Given random adapters with no latency", t, func() {
		ctx := context.Background()

		Convey("When the failure rate is zero", func() {
			a := bureau.NewRandomAdapter(model.SourceEquifax,
				bureau.WithFailureRate(0),
				bureau.WithLatencyRange(0, 0),
				bureau.WithSeed(7),
			)

			Convey("Then every call should succeed inside the source's score range", func() {
				lo, hi := bureau.DefaultScoreRange(model.SourceEquifax)
				ids := map[string]bool{}
				for i := 0; i < 200; i++ {
					out := a.Fetch(ctx, "123-45-6789")
					So(out.Available, ShouldBeTrue)
					So(out.ErrorReason, ShouldBeEmpty)
					So(out.Metrics, ShouldNotBeNil)
					So(out.Metrics.Score, ShouldBeBetweenOrEqual, lo, hi)
					So(out.Metrics.UtilizationRate, ShouldBeBetweenOrEqual, 0, 0.8)
					So(strings.HasPrefix(out.ExternalReportID, "EQF-"), ShouldBeTrue)
					So(ids[out.ExternalReportID], ShouldBeFalse)
					ids[out.ExternalReportID] = true
				}
				So(a.Source(), ShouldEqual, model.SourceEquifax)
			})
		})

		Convey("When the failure rate is one", func() {
			a := bureau.NewRandomAdapter(model.SourceExperian, bureau.WithFailureRate(1), bureau.WithLatencyRange(0, 0))

			Convey("Then every call should fail with a reason and no metrics", func() {
				for i := 0; i < 20; i++ {
					out := a.Fetch(ctx, "123-45-6789")
					So(out.Available, ShouldBeFalse)
					So(out.Metrics, ShouldBeNil)
					So(out.ErrorReason, ShouldEqual, "Experian service temporarily unavailable")
				}
			})
		})

		Convey("When a custom score range is configured", func() {
			a := bureau.NewRandomAdapter(model.SourceTransUnion,
				bureau.WithFailureRate(0),
				bureau.WithLatencyRange(0, 0),
				bureau.WithScoreRange(700, 701),
			)

			Convey("Then scores should stay inside it", func() {
				for i := 0; i < 50; i++ {
					So(a.Fetch(ctx, "k").Metrics.Score, ShouldBeBetweenOrEqual, 700, 701)
				}
			})
		})

		Convey("When the context ends before the simulated latency", func() {
			a := bureau.NewRandomAdapter(model.SourceExperian,
				bureau.WithFailureRate(0),
				bureau.WithLatencyRange(time.Second, 2*time.Second),
			)
			cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
			defer cancel()

			Convey("Then the call should be reported as a failure", func() {
				start := time.Now()
				out := a.Fetch(cctx, "k")
				So(time.Since(start), ShouldBeLessThan, time.Second)
				So(out.Available, ShouldBeFalse)
				So(out.ErrorReason, ShouldContainSubstring, "cancelled")
			})
		})
	})
}

func TestDefaultProfiles(t *testing.T) {
	Convey("Given the default source profiles", t, func() {
		Convey("Then score ranges should differ per source", func() {
			seen := map[[2]int]bool{}
			for _, src := range model.Sources() {
				lo, hi := bureau.DefaultScoreRange(src)
				So(lo, ShouldBeLessThan, hi)
				So(seen[[2]int{lo, hi}], ShouldBeFalse)
				seen[[2]int{lo, hi}] = true
			}
		})

		Convey("Then failure rates should match the reference values", func() {
			So(bureau.DefaultFailureRate(model.SourceExperian), ShouldEqual, 0.10)
			So(bureau.DefaultFailureRate(model.SourceEquifax), ShouldEqual, 0.15)
			So(bureau.DefaultFailureRate(model.SourceTransUnion), ShouldEqual, 0.12)
		})
	})
}

func TestFixtureAdapter(t *testing.T) {
	Convey("Given fixture adapters", t, func() {
		ctx := context.Background()

		Convey("When configured with a score", func() {
			a := bureau.NewFixtureAdapter(model.SourceExperian, bureau.WithFixtureScore(750))
			first := a.Fetch(ctx, "k")
			second := a.Fetch(ctx, "k")

			Convey("Then it should return the same metrics with fresh report ids", func() {
				So(first.Available, ShouldBeTrue)
				So(first.Metrics.Score, ShouldEqual, 750)
				So(second.Metrics.Score, ShouldEqual, 750)
				So(first.ExternalReportID, ShouldNotEqual, second.ExternalReportID)
				So(a.Calls(), ShouldEqual, 2)
			})
		})

		Convey("When configured to fail", func() {
			a := bureau.NewFixtureAdapter(model.SourceEquifax, bureau.WithFixtureFailure(""))
			out := a.Fetch(ctx, "k")

			Convey("Then it should fail with the default reason", func() {
				So(out.Available, ShouldBeFalse)
				So(out.ErrorReason, ShouldEqual, "Equifax service temporarily unavailable")
			})
		})

		Convey("When configured without report ids", func() {
			out := bureau.NewFixtureAdapter(model.SourceTransUnion, bureau.WithoutReportID()).Fetch(ctx, "k")
			So(out.Available, ShouldBeTrue)
			So(out.ExternalReportID, ShouldBeEmpty)
		})

		Convey("When the call is slower than the deadline", func() {
			a := bureau.NewFixtureAdapter(model.SourceTransUnion, bureau.WithFixtureDelay(time.Second))
			cctx, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
			defer cancel()
			So(a.Fetch(cctx, "k").Available, ShouldBeFalse)
		})
	})
}
