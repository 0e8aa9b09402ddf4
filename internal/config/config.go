// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New(ctx) builds a Config populated with defaults.
//   - Load(ctx) layers a YAML file and environment variables on top.
//   - Maps are keyed by source name (experian, equifax, transunion).
package config

import (
	"context"
	"runtime"
	"time"

	"github.com/okian/tribureau/internal/domain/model"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Bureau modes.
const (
	BureauRandom  = "random"
	BureauFixture = "fixture"
)

// ScoreRange is an inclusive score range for one simulated bureau.
type ScoreRange struct {
	Min int `koanf:"min"`
	Max int `koanf:"max"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the persistence backend: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`

	// SQLitePath is the database file used when StoreDriver is sqlite.
	SQLitePath string `koanf:"sqlite_path"`

	// SQLDebug logs every statement issued by the sqlite store.
	SQLDebug bool `koanf:"sql_debug"`

	// BureauMode selects the adapter set: random or fixture.
	BureauMode string `koanf:"bureau_mode"`

	// RandomSeed seeds the random adapters. Zero means time-based.
	RandomSeed int64 `koanf:"random_seed"`

	// FetchTimeoutMS bounds a single bureau call.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// BureauLatencyMinMS and BureauLatencyMaxMS bound the simulated bureau latency.
	BureauLatencyMinMS int `koanf:"bureau_latency_min_ms"`
	BureauLatencyMaxMS int `koanf:"bureau_latency_max_ms"`

	// FailureRates maps a source to its simulated failure probability.
	FailureRates map[string]float64 `koanf:"failure_rates"`

	// ScoreRanges maps a source to its simulated score range.
	ScoreRanges map[string]ScoreRange `koanf:"score_ranges"`

	// DefaultWeights maps a source to its weight for the weighted method.
	DefaultWeights map[string]float64 `koanf:"default_weights"`

	// DefaultMethod is used by background refreshes.
	DefaultMethod string `koanf:"default_method"`

	// CustomWeightFallback fills in sources a custom weight request omits.
	CustomWeightFallback float64 `koanf:"custom_weight_fallback"`

	// FixtureScores and FixtureFailures drive the fixture adapters.
	FixtureScores   map[string]int `koanf:"fixture_scores"`
	FixtureFailures []string       `koanf:"fixture_failures"`

	// RefreshQueueSize bounds the background refresh queue.
	RefreshQueueSize int `koanf:"refresh_queue_size"`

	// RefreshWorkers sets the number of refresh workers.
	RefreshWorkers int `koanf:"refresh_workers"`

	// RefreshDedupeSize caps the number of tracked pending refreshes.
	RefreshDedupeSize int `koanf:"refresh_dedupe_size"`

	// StoreMetricsIntervalMS is how often record gauges are refreshed.
	StoreMetricsIntervalMS int `koanf:"store_metrics_interval_ms"`

	// ShutdownTimeoutMS bounds graceful shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// New returns a Config populated with defaults. Context is accepted first to
// follow the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		StoreDriver:        StoreMemory,
		SQLitePath:         "tribureau.db",
		BureauMode:         BureauRandom,
		FetchTimeoutMS:     2000,
		BureauLatencyMinMS: 50,
		BureauLatencyMaxMS: 150,
		FailureRates: map[string]float64{
			"experian":   0.10,
			"equifax":    0.15,
			"transunion": 0.12,
		},
		ScoreRanges: map[string]ScoreRange{
			"experian":   {Min: 600, Max: 849},
			"equifax":    {Min: 580, Max: 849},
			"transunion": {Min: 590, Max: 849},
		},
		DefaultWeights: map[string]float64{
			"experian":   0.35,
			"equifax":    0.35,
			"transunion": 0.30,
		},
		DefaultMethod:          string(model.MethodWeighted),
		CustomWeightFallback:   0.33,
		FixtureScores:          map[string]int{},
		RefreshQueueSize:       1024,
		RefreshWorkers:         runtime.NumCPU(),
		RefreshDedupeSize:      100_000,
		StoreMetricsIntervalMS: 5000,
		ShutdownTimeoutMS:      10_000,
	}
}

// FetchTimeout returns the per-bureau call timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// BureauLatency returns the simulated latency bounds.
func (c *Config) BureauLatency() (time.Duration, time.Duration) {
	return time.Duration(c.BureauLatencyMinMS) * time.Millisecond,
		time.Duration(c.BureauLatencyMaxMS) * time.Millisecond
}

// ShutdownTimeout returns the graceful shutdown bound.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// StoreMetricsInterval returns how often record gauges are refreshed.
func (c *Config) StoreMetricsInterval() time.Duration {
	return time.Duration(c.StoreMetricsIntervalMS) * time.Millisecond
}

// Method returns the configured default aggregation method.
func (c *Config) Method() model.Method {
	return model.Method(c.DefaultMethod)
}

// Weights returns the default weight table keyed by source.
func (c *Config) Weights() map[model.Source]float64 {
	return floatsBySource(c.DefaultWeights)
}

// FailureRate returns the configured failure probability for src.
func (c *Config) FailureRate(src model.Source) (float64, bool) {
	rate, ok := floatsBySource(c.FailureRates)[src]
	return rate, ok
}

// ScoreRange returns the configured score range for src.
func (c *Config) ScoreRange(src model.Source) (ScoreRange, bool) {
	for raw, r := range c.ScoreRanges {
		if s, err := model.ParseSource(raw); err == nil && s == src {
			return r, true
		}
	}
	return ScoreRange{}, false
}

// FixtureScore returns the fixed score for src in fixture mode.
func (c *Config) FixtureScore(src model.Source) (int, bool) {
	for raw, score := range c.FixtureScores {
		if s, err := model.ParseSource(raw); err == nil && s == src {
			return score, true
		}
	}
	return 0, false
}

// FixtureFails reports whether src is configured to fail in fixture mode.
func (c *Config) FixtureFails(src model.Source) bool {
	for _, raw := range c.FixtureFailures {
		if s, err := model.ParseSource(raw); err == nil && s == src {
			return true
		}
	}
	return false
}

func floatsBySource(in map[string]float64) map[model.Source]float64 {
	out := make(map[model.Source]float64, len(in))
	for raw, v := range in {
		if s, err := model.ParseSource(raw); err == nil {
			out[s] = v
		}
	}
	return out
}
