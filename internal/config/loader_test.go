package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/tribureau/internal/config"
	"github.com/okian/tribureau/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with no file and no environment variables", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.FetchTimeoutMS, convey.ShouldEqual, 2000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TRIBUREAU_ADDR", ":7070")
			_ = os.Setenv("TRIBUREAU_FETCH_TIMEOUT_MS", "500")
			_ = os.Setenv("TRIBUREAU_DEFAULT_METHOD", "median")
			_ = os.Setenv("TRIBUREAU_FAILURE_RATES__EXPERIAN", "0.5")
			_ = os.Setenv("TRIBUREAU_FIXTURE_FAILURES", "equifax, transunion")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should apply them over the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.FetchTimeoutMS, convey.ShouldEqual, 500)
				convey.So(cfg.Method(), convey.ShouldEqual, model.MethodMedian)

				rate, _ := cfg.FailureRate(model.SourceExperian)
				convey.So(rate, convey.ShouldEqual, 0.5)
				other, _ := cfg.FailureRate(model.SourceEquifax)
				convey.So(other, convey.ShouldEqual, 0.15)

				convey.So(cfg.FixtureFailures, convey.ShouldResemble, []string{"equifax", "transunion"})
				convey.So(cfg.FixtureFails(model.SourceTransUnion), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			yamlContent := `
addr: ":9090"
store_driver: sqlite
sqlite_path: /tmp/tribureau-test.db
bureau_mode: fixture
fixture_scores:
  experian: 720
  equifax: 710
  transunion: 730
fixture_failures:
  - equifax
score_ranges:
  experian:
    min: 650
    max: 800
default_weights:
  experian: 0.5
  equifax: 0.25
  transunion: 0.25
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TRIBUREAU_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.BureauMode, convey.ShouldEqual, config.BureauFixture)

				score, ok := cfg.FixtureScore(model.SourceTransUnion)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(score, convey.ShouldEqual, 730)
				convey.So(cfg.FixtureFails(model.SourceEquifax), convey.ShouldBeTrue)

				r, _ := cfg.ScoreRange(model.SourceExperian)
				convey.So(r, convey.ShouldResemble, config.ScoreRange{Min: 650, Max: 800})
				convey.So(cfg.Weights()[model.SourceExperian], convey.ShouldEqual, 0.5)
			})

			convey.Convey("Then defaults should fill in the missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.FetchTimeoutMS, convey.ShouldEqual, 2000)
				convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 1024)
				r, ok := cfg.ScoreRange(model.SourceEquifax)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(r, convey.ShouldResemble, config.ScoreRange{Min: 580, Max: 849})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
refresh_workers: 3
refresh_queue_size: 50
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TRIBUREAU_CONFIG", tmpFile)
			_ = os.Setenv("TRIBUREAU_ADDR", ":8080")
			_ = os.Setenv("TRIBUREAU_REFRESH_WORKERS", "7")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RefreshWorkers, convey.ShouldEqual, 7)
				convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("TRIBUREAU_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("TRIBUREAU_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("TRIBUREAU_REFRESH_WORKERS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("TRIBUREAU_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading a failure rate outside [0,1]", func() {
			_ = os.Setenv("TRIBUREAU_FAILURE_RATES__TRANSUNION", "1.2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"TRIBUREAU_CONFIG",
		"TRIBUREAU_ADDR",
		"TRIBUREAU_FETCH_TIMEOUT_MS",
		"TRIBUREAU_DEFAULT_METHOD",
		"TRIBUREAU_FAILURE_RATES__EXPERIAN",
		"TRIBUREAU_FAILURE_RATES__TRANSUNION",
		"TRIBUREAU_FIXTURE_FAILURES",
		"TRIBUREAU_REFRESH_WORKERS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "tribureau-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
