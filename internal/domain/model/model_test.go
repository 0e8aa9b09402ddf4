package model_test

import (
	"errors"
	"testing"

	"github.com/okian/tribureau/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSources(t *testing.T) {
	Convey("Given the fixed source set", t, func() {
		sources := model.Sources()

		Convey("Then it should hold exactly three sources in enumeration order", func() {
			So(sources, ShouldResemble, []model.Source{model.SourceExperian, model.SourceEquifax, model.SourceTransUnion})
			for i, s := range sources {
				So(s.Index(), ShouldEqual, i)
				So(s.Valid(), ShouldBeTrue)
			}
		})

		Convey("When parsing source names", func() {
			s, err := model.ParseSource(" TransUnion ")
			So(err, ShouldBeNil)
			So(s, ShouldEqual, model.SourceTransUnion)

			_, err = model.ParseSource("innovis")
			So(errors.Is(err, model.ErrUnknownSource), ShouldBeTrue)
		})

		Convey("Then each source should have a distinct report prefix", func() {
			seen := map[string]bool{}
			for _, s := range sources {
				So(seen[s.ReportPrefix()], ShouldBeFalse)
				seen[s.ReportPrefix()] = true
			}
		})
	})
}

func TestMethods(t *testing.T) {
	Convey("Given method names", t, func() {
		Convey("Then every supported method should parse", func() {
			for _, m := range model.Methods() {
				parsed, err := model.ParseMethod(string(m))
				So(err, ShouldBeNil)
				So(parsed, ShouldEqual, m)
			}
		})

		Convey("Then unknown methods should be rejected", func() {
			_, err := model.ParseMethod("mode")
			So(errors.Is(err, model.ErrUnknownMethod), ShouldBeTrue)
		})
	})
}

func TestReadingValidate(t *testing.T) {
	Convey("Given readings", t, func() {
		Convey("When the reading is available with metrics", func() {
			r := model.Reading{Source: model.SourceEquifax, Available: true, Metrics: &model.Metrics{Score: 700}}
			So(r.Validate(), ShouldBeNil)
			So(r.Usable(), ShouldBeTrue)
		})

		Convey("When the reading is available without a score", func() {
			r := model.Reading{Source: model.SourceEquifax, Available: true, Metrics: &model.Metrics{}}
			So(r.Validate(), ShouldBeNil)
			So(r.Usable(), ShouldBeFalse)
		})

		Convey("When the reading is unavailable with a reason", func() {
			r := model.Reading{Source: model.SourceExperian, ErrorReason: "down"}
			So(r.Validate(), ShouldBeNil)
			So(r.Usable(), ShouldBeFalse)
		})

		Convey("When the invariant is broken", func() {
			So(model.Reading{Source: model.SourceExperian, Available: true}.Validate(), ShouldNotBeNil)
			So(model.Reading{Source: model.SourceExperian}.Validate(), ShouldNotBeNil)
			So(model.Reading{Source: model.SourceExperian, ErrorReason: "x", Metrics: &model.Metrics{}}.Validate(), ShouldNotBeNil)
			So(model.Reading{Source: "innovis", ErrorReason: "x"}.Validate(), ShouldNotBeNil)
		})
	})
}

func TestUserValidate(t *testing.T) {
	Convey("Given a user", t, func() {
		u := model.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", CorrelationKey: "123-45-6789"}

		Convey("Then a complete user should validate", func() {
			So(u.Validate(), ShouldBeNil)
			So(u.FullName(), ShouldEqual, "Ada Lovelace")
		})

		Convey("Then a malformed correlation key should be rejected", func() {
			u.CorrelationKey = "123456789"
			So(errors.Is(u.Validate(), model.ErrInvalidUser), ShouldBeTrue)
		})

		Convey("Then a missing name should be rejected", func() {
			u.FirstName = " "
			So(errors.Is(u.Validate(), model.ErrInvalidUser), ShouldBeTrue)
		})
	})
}
