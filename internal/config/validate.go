package config

import (
	"strings"

	"github.com/okian/tribureau/internal/domain/model"
)

// Score bounds accepted for simulated ranges.
const (
	MinScore = 300
	MaxScore = 850
)

// Validate checks the configuration and returns an ErrInvalidConfig-wrapped
// error describing the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return invalid("addr must not be empty")
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return invalid("unknown log_format %q", c.LogFormat)
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return invalid("sqlite_path must not be empty for the sqlite driver")
		}
	default:
		return invalid("unknown store_driver %q", c.StoreDriver)
	}
	switch c.BureauMode {
	case BureauRandom, BureauFixture:
	default:
		return invalid("unknown bureau_mode %q", c.BureauMode)
	}
	if !c.Method().Valid() {
		return invalid("unknown default_method %q", c.DefaultMethod)
	}
	if c.Method() == model.MethodCustom {
		return invalid("default_method custom needs per-request weights")
	}
	if c.FetchTimeoutMS <= 0 {
		return invalid("fetch_timeout_ms must be positive")
	}
	if c.BureauLatencyMinMS < 0 || c.BureauLatencyMaxMS < c.BureauLatencyMinMS {
		return invalid("bureau latency range %d..%d is invalid", c.BureauLatencyMinMS, c.BureauLatencyMaxMS)
	}
	if c.RefreshQueueSize <= 0 {
		return invalid("refresh_queue_size must be positive")
	}
	if c.RefreshWorkers <= 0 {
		return invalid("refresh_workers must be positive")
	}
	if c.CustomWeightFallback < 0 {
		return invalid("custom_weight_fallback must not be negative")
	}
	if err := c.validateFailureRates(); err != nil {
		return err
	}
	if err := c.validateScoreRanges(); err != nil {
		return err
	}
	if err := c.validateWeights(); err != nil {
		return err
	}
	return c.validateFixtures()
}

func (c *Config) validateFailureRates() error {
	for raw, rate := range c.FailureRates {
		if _, err := model.ParseSource(raw); err != nil {
			return invalid("failure_rates: %v", err)
		}
		if rate < 0 || rate > 1 {
			return invalid("failure_rates.%s = %v is outside [0,1]", raw, rate)
		}
	}
	return nil
}

func (c *Config) validateScoreRanges() error {
	seen := make(map[ScoreRange]string, len(c.ScoreRanges))
	for raw, r := range c.ScoreRanges {
		if _, err := model.ParseSource(raw); err != nil {
			return invalid("score_ranges: %v", err)
		}
		if r.Min < MinScore || r.Max > MaxScore || r.Min > r.Max {
			return invalid("score_ranges.%s %d..%d must satisfy %d <= min <= max <= %d",
				raw, r.Min, r.Max, MinScore, MaxScore)
		}
		if other, dup := seen[r]; dup {
			return invalid("score_ranges.%s duplicates score_ranges.%s", raw, other)
		}
		seen[r] = raw
	}
	return nil
}

func (c *Config) validateWeights() error {
	total := 0.0
	for raw, w := range c.DefaultWeights {
		if _, err := model.ParseSource(raw); err != nil {
			return invalid("default_weights: %v", err)
		}
		if w < 0 {
			return invalid("default_weights.%s must not be negative", raw)
		}
		total += w
	}
	if len(c.DefaultWeights) > 0 && total == 0 {
		return invalid("default_weights must not sum to zero")
	}
	return nil
}

func (c *Config) validateFixtures() error {
	for raw, score := range c.FixtureScores {
		if _, err := model.ParseSource(raw); err != nil {
			return invalid("fixture_scores: %v", err)
		}
		if score < 0 || score > MaxScore {
			return invalid("fixture_scores.%s = %d is out of range", raw, score)
		}
	}
	for _, raw := range c.FixtureFailures {
		if _, err := model.ParseSource(raw); err != nil {
			return invalid("fixture_failures: %v", err)
		}
	}
	return nil
}
