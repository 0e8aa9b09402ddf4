package aggregation

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/tribureau/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func reading(src model.Source, score int) model.Reading {
	return model.Reading{
		ID:        "r-" + string(src),
		UserID:    "u-1",
		Source:    src,
		Available: true,
		Metrics:   &model.Metrics{Score: score},
	}
}

func failed(src model.Source) model.Reading {
	return model.Reading{ID: "r-" + string(src), UserID: "u-1", Source: src, ErrorReason: "service unavailable"}
}

func weightSum(cs []model.Component) float64 {
	var s float64
	for _, c := range cs {
		s += c.Weight
	}
	return s
}

func allSources(res model.AggregatedResult) map[model.Source]int {
	counts := map[model.Source]int{}
	for _, c := range res.Components {
		counts[c.Source]++
	}
	for _, s := range res.MissingSources {
		counts[s]++
	}
	return counts
}

func TestAggregateProperties(t *testing.T) {
	Convey("Given an engine with the default weight table", t, func() {
		engine := NewEngine()
		subsets := [][]model.Reading{
			{reading(model.SourceEquifax, 640)},
			{reading(model.SourceExperian, 720), reading(model.SourceTransUnion, 690)},
			{reading(model.SourceExperian, 750), reading(model.SourceEquifax, 720), reading(model.SourceTransUnion, 705)},
		}
		custom := map[model.Source]float64{model.SourceExperian: 2, model.SourceEquifax: 1, model.SourceTransUnion: 1}

		Convey("Then components, weights and the source partition should hold for every subset and method", func() {
			for _, readings := range subsets {
				for _, method := range model.Methods() {
					res, err := engine.Aggregate(Input{UserID: "u-1", Readings: readings, Method: method, CustomWeights: custom})
					So(err, ShouldBeNil)

					So(len(res.Components), ShouldEqual, len(readings))
					if len(readings) == 1 {
						So(res.Components[0].Weight, ShouldEqual, 1)
					} else {
						So(math.Abs(weightSum(res.Components)-1), ShouldBeLessThan, 1e-9)
					}

					counts := allSources(res)
					So(len(counts), ShouldEqual, 3)
					for _, src := range model.Sources() {
						So(counts[src], ShouldEqual, 1)
					}
					So(res.RiskCategory, ShouldEqual, Classify(res.CombinedScore))
					So(res.Recommendation, ShouldEqual, Recommend(res.CombinedScore))
					So(res.Method, ShouldEqual, method)
					So(res.UserID, ShouldEqual, "u-1")
				}
			}
		})
	})
}

func TestAggregateMethods(t *testing.T) {
	Convey("Given three usable readings", t, func() {
		engine := NewEngine()
		readings := []model.Reading{
			reading(model.SourceTransUnion, 705),
			reading(model.SourceExperian, 750),
			reading(model.SourceEquifax, 720),
		}

		Convey("When using the weighted method with default weights", func() {
			res, err := engine.Aggregate(Input{Readings: readings, Method: model.MethodWeighted})

			Convey("Then the combined score should be 726 and Good", func() {
				So(err, ShouldBeNil)
				So(res.CombinedScore, ShouldEqual, 726)
				So(res.RiskCategory, ShouldEqual, model.RiskGood)
				So(res.Recommendation, ShouldEqual, RecommendStandard)
			})

			Convey("Then components should follow source order with normalized weights", func() {
				So(res.Components[0].Source, ShouldEqual, model.SourceExperian)
				So(res.Components[1].Source, ShouldEqual, model.SourceEquifax)
				So(res.Components[2].Source, ShouldEqual, model.SourceTransUnion)
				So(res.Components[0].Weight, ShouldAlmostEqual, 0.35, 1e-12)
				So(res.Components[2].Weight, ShouldAlmostEqual, 0.30, 1e-12)
				So(res.Components[0].ReadingID, ShouldEqual, "r-experian")
				So(res.MissingSources, ShouldBeEmpty)
			})
		})

		Convey("When using average", func() {
			res, err := engine.Aggregate(Input{Readings: readings, Method: model.MethodAverage})

			Convey("Then the score should be the rounded mean and weights 1/N", func() {
				So(err, ShouldBeNil)
				So(res.CombinedScore, ShouldEqual, 725)
				for _, c := range res.Components {
					So(c.Weight, ShouldAlmostEqual, 1.0/3, 1e-12)
				}
			})
		})

		Convey("When using lowest and highest", func() {
			low, err := engine.Aggregate(Input{Readings: readings, Method: model.MethodLowest})
			So(err, ShouldBeNil)
			high, err := engine.Aggregate(Input{Readings: readings, Method: model.MethodHighest})
			So(err, ShouldBeNil)

			Convey("Then they should equal the min and max with weight on the winner only", func() {
				So(low.CombinedScore, ShouldEqual, 705)
				So(low.Components[2].Weight, ShouldEqual, 1)
				So(low.Components[0].Weight, ShouldEqual, 0)
				So(high.CombinedScore, ShouldEqual, 750)
				So(high.Components[0].Weight, ShouldEqual, 1)
				So(high.Components[1].Weight, ShouldEqual, 0)
			})
		})

		Convey("When using custom weights", func() {
			res, err := engine.Aggregate(Input{
				Readings:      readings,
				Method:        model.MethodCustom,
				CustomWeights: map[model.Source]float64{model.SourceExperian: 1, model.SourceEquifax: 1, model.SourceTransUnion: 2},
			})

			Convey("Then weights should be normalized before use", func() {
				So(err, ShouldBeNil)
				// (750 + 720 + 2*705) / 4 = 720
				So(res.CombinedScore, ShouldEqual, 720)
				So(res.Components[2].Weight, ShouldAlmostEqual, 0.5, 1e-12)
				So(res.Components[0].Weight, ShouldAlmostEqual, 0.25, 1e-12)
			})
		})
	})
}

func TestAggregateMedian(t *testing.T) {
	Convey("Given the median method", t, func() {
		engine := NewEngine()

		Convey("When there are three distinct scores", func() {
			res, err := engine.Aggregate(Input{Method: model.MethodMedian, Readings: []model.Reading{
				reading(model.SourceExperian, 800),
				reading(model.SourceEquifax, 600),
				reading(model.SourceTransUnion, 700),
			}})

			Convey("Then the middle score should carry all the weight", func() {
				So(err, ShouldBeNil)
				So(res.CombinedScore, ShouldEqual, 700)
				So(res.Components[2].Weight, ShouldEqual, 1)
				So(res.Components[0].Weight, ShouldEqual, 0)
				So(res.Components[1].Weight, ShouldEqual, 0)
			})
		})

		Convey("When there are two scores", func() {
			res, err := engine.Aggregate(Input{Method: model.MethodMedian, Readings: []model.Reading{
				reading(model.SourceExperian, 701),
				reading(model.SourceEquifax, 700),
				failed(model.SourceTransUnion),
			}})

			Convey("Then the rounded mean of both should be used with half weights", func() {
				So(err, ShouldBeNil)
				So(res.CombinedScore, ShouldEqual, 701)
				So(res.Components[0].Weight, ShouldEqual, 0.5)
				So(res.Components[1].Weight, ShouldEqual, 0.5)
				So(res.MissingSources, ShouldResemble, []model.Source{model.SourceTransUnion})
			})
		})
	})
}

func TestAggregateTieBreak(t *testing.T) {
	Convey("Given equal scores from every source", t, func() {
		engine := NewEngine()
		readings := []model.Reading{
			reading(model.SourceTransUnion, 650),
			reading(model.SourceEquifax, 650),
			reading(model.SourceExperian, 650),
		}

		Convey("Then lowest and highest should favour the first source and median the middle one", func() {
			for _, m := range []model.Method{model.MethodLowest, model.MethodHighest, model.MethodMedian} {
				res, err := engine.Aggregate(Input{Readings: readings, Method: m})
				So(err, ShouldBeNil)
				So(res.CombinedScore, ShouldEqual, 650)
				if m == model.MethodMedian {
					So(res.Components[1].Weight, ShouldEqual, 1)
				} else {
					So(res.Components[0].Weight, ShouldEqual, 1)
				}
			}
		})
	})
}

func TestAggregateErrors(t *testing.T) {
	Convey("Given invalid aggregation inputs", t, func() {
		engine := NewEngine()
		readings := []model.Reading{reading(model.SourceExperian, 700)}

		Convey("When no reading is usable", func() {
			_, err := engine.Aggregate(Input{Method: model.MethodAverage, Readings: []model.Reading{
				failed(model.SourceExperian),
				{Source: model.SourceEquifax, Available: true, Metrics: &model.Metrics{}},
			}})
			So(errors.Is(err, ErrNoUsableData), ShouldBeTrue)

			_, err = engine.Aggregate(Input{Method: model.MethodWeighted})
			So(errors.Is(err, ErrNoUsableData), ShouldBeTrue)
		})

		Convey("When the method is unknown", func() {
			_, err := engine.Aggregate(Input{Method: "mode", Readings: readings})
			So(errors.Is(err, ErrUnknownMethod), ShouldBeTrue)
		})

		Convey("When custom is requested without weights", func() {
			_, err := engine.Aggregate(Input{Method: model.MethodCustom, Readings: readings})
			So(errors.Is(err, ErrMissingWeights), ShouldBeTrue)
		})

		Convey("When custom weights are invalid", func() {
			for _, w := range []map[model.Source]float64{
				{model.SourceExperian: -1},
				{model.SourceExperian: 0},
				{"innovis": 1, model.SourceExperian: 1},
				{model.SourceEquifax: 1},
			} {
				_, err := engine.Aggregate(Input{Method: model.MethodCustom, Readings: readings, CustomWeights: w})
				So(errors.Is(err, ErrInvalidWeights), ShouldBeTrue)
			}
		})

		Convey("When a source appears twice", func() {
			_, err := engine.Aggregate(Input{Method: model.MethodAverage, Readings: []model.Reading{
				reading(model.SourceExperian, 700), reading(model.SourceExperian, 710),
			}})
			So(errors.Is(err, ErrDuplicateSource), ShouldBeTrue)
		})
	})
}

func TestEngineDefaultWeights(t *testing.T) {
	Convey("Given an engine with a custom default table", t, func() {
		engine := NewEngine(WithDefaultWeights(map[model.Source]float64{
			model.SourceExperian:   1,
			model.SourceEquifax:    0,
			model.SourceTransUnion: 0,
		}))

		Convey("Then weighted should follow the configured table", func() {
			res, err := engine.Aggregate(Input{Method: model.MethodWeighted, Readings: []model.Reading{
				reading(model.SourceExperian, 610),
				reading(model.SourceEquifax, 800),
			}})
			So(err, ShouldBeNil)
			So(res.CombinedScore, ShouldEqual, 610)
			So(res.Components[0].Weight, ShouldEqual, 1)
			So(res.Components[1].Weight, ShouldEqual, 0)
		})
	})
}
