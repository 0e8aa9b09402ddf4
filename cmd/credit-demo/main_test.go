package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestRunDemoFlags(t *testing.T) {
	convey.Convey("Given the demo command", t, func() {
		reset := func() {
			baseURL, method, weights = "http://127.0.0.1:1", "", ""
			users, workers = 1, 1
			timeout, runTimeout = defaultTimeout, defaultRunTimeout
		}
		reset()
		defer reset()
		rootCmd.SetContext(context.Background())
		rootCmd.SetOut(&bytes.Buffer{})

		convey.Convey("When the method is unknown", func() {
			method = "mode"

			convey.Convey("Then it should be rejected before any request", func() {
				convey.So(runDemo(rootCmd, nil), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When weights are given without the custom method", func() {
			method, weights = "weighted", "experian=1"
			err := runDemo(rootCmd, nil)

			convey.Convey("Then it should be rejected", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "--method custom")
			})
		})

		convey.Convey("When weights are malformed", func() {
			method, weights = "custom", "experian"

			convey.Convey("Then it should be rejected", func() {
				convey.So(runDemo(rootCmd, nil), convey.ShouldNotBeNil)
			})
		})
	})
}
