package service

import (
	"context"
	"fmt"

	"github.com/okian/tribureau/internal/adapters/repository"
	"github.com/okian/tribureau/internal/config"
	"github.com/okian/tribureau/internal/domain/bureau"
	"github.com/okian/tribureau/internal/domain/model"
)

// RandomAdapters returns one randomized adapter per source with the
// built-in profiles.
func RandomAdapters(opts ...bureau.RandomOption) []bureau.Adapter {
	out := make([]bureau.Adapter, 0, len(model.Sources()))
	for _, src := range model.Sources() {
		out = append(out, bureau.NewRandomAdapter(src, opts...))
	}
	return out
}

// AdaptersFromConfig builds the adapter set selected by cfg.BureauMode.
func AdaptersFromConfig(cfg *config.Config) []bureau.Adapter {
	out := make([]bureau.Adapter, 0, len(model.Sources()))
	minLatency, maxLatency := cfg.BureauLatency()

	for i, src := range model.Sources() {
		if cfg.BureauMode == config.BureauFixture {
			var opts []bureau.FixtureOption
			if score, ok := cfg.FixtureScore(src); ok {
				opts = append(opts, bureau.WithFixtureScore(score))
			}
			if cfg.FixtureFails(src) {
				opts = append(opts, bureau.WithFixtureFailure(""))
			}
			out = append(out, bureau.NewFixtureAdapter(src, opts...))
			continue
		}

		opts := []bureau.RandomOption{bureau.WithLatencyRange(minLatency, maxLatency)}
		if rate, ok := cfg.FailureRate(src); ok {
			opts = append(opts, bureau.WithFailureRate(rate))
		}
		if r, ok := cfg.ScoreRange(src); ok {
			opts = append(opts, bureau.WithScoreRange(r.Min, r.Max))
		}
		if cfg.RandomSeed != 0 {
			opts = append(opts, bureau.WithSeed(cfg.RandomSeed+int64(i)))
		}
		out = append(out, bureau.NewRandomAdapter(src, opts...))
	}
	return out
}

// StoreFromConfig opens the store selected by cfg.StoreDriver.
func StoreFromConfig(cfg *config.Config) (repository.Store, error) {
	opts := []repository.Option{
		repository.WithMetricsUpdateInterval(cfg.StoreMetricsInterval()),
		repository.WithSQLDebug(cfg.SQLDebug),
	}
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		store, err := repository.NewSQLiteStore(cfg.SQLitePath, opts...)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case config.StoreMemory, "":
		return repository.NewMemoryStore(opts...), nil
	default:
		return nil, fmt.Errorf("%w: unknown store_driver %q", config.ErrInvalidConfig, cfg.StoreDriver)
	}
}

// NewFromConfig builds a Service, its store and its adapters from cfg.
// Extra options are applied last.
func NewFromConfig(_ context.Context, cfg *config.Config, extra ...Option) (*Service, error) {
	store, err := StoreFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithStore(store),
		WithAdapters(AdaptersFromConfig(cfg)...),
		WithFetchTimeout(cfg.FetchTimeout()),
		WithDefaultMethod(cfg.Method()),
		WithDefaultWeights(cfg.Weights()),
		WithWorkerCount(cfg.RefreshWorkers),
		WithQueueSize(cfg.RefreshQueueSize),
		WithDedupeSize(cfg.RefreshDedupeSize),
	}
	return New(append(opts, extra...)...), nil
}
