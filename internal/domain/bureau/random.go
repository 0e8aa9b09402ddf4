package bureau

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/tribureau/internal/domain/model"
)

// Default simulation constants.
const (
	defaultMinLatency = 50 * time.Millisecond
	defaultMaxLatency = 150 * time.Millisecond
)

// RandomAdapter simulates a bureau that fails at a fixed rate and returns
// randomized reports otherwise.
type RandomAdapter struct {
	source     model.Source
	profile    profile
	minLatency time.Duration
	maxLatency time.Duration
	now        func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// RandomOption configures a RandomAdapter.
type RandomOption func(*RandomAdapter)

// WithFailureRate sets the probability in [0,1] that a call fails.
func WithFailureRate(rate float64) RandomOption {
	return func(a *RandomAdapter) {
		if rate >= 0 && rate <= 1 {
			a.profile.failureRate = rate
		}
	}
}

// WithScoreRange sets the inclusive score range.
func WithScoreRange(minScore, maxScore int) RandomOption {
	return func(a *RandomAdapter) {
		if minScore > 0 && maxScore >= minScore {
			a.profile.minScore = minScore
			a.profile.maxScore = maxScore
		}
	}
}

// WithLatencyRange sets the simulated response latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) RandomOption {
	return func(a *RandomAdapter) {
		if minLatency >= 0 && maxLatency >= minLatency {
			a.minLatency = minLatency
			a.maxLatency = maxLatency
		}
	}
}

// WithSeed makes the adapter reproducible.
func WithSeed(seed int64) RandomOption {
	return func(a *RandomAdapter) {
		a.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulation only
	}
}

// NewRandomAdapter creates a randomized adapter for src using its default
// profile.
func NewRandomAdapter(src model.Source, opts ...RandomOption) *RandomAdapter {
	a := &RandomAdapter{
		source:     src,
		profile:    profiles[src],
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		now:        time.Now,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano() + int64(src.Index()))), //nolint:gosec // simulation only
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Source returns the bureau this adapter simulates.
func (a *RandomAdapter) Source() model.Source { return a.source }

// Fetch simulates one bureau call.
func (a *RandomAdapter) Fetch(ctx context.Context, _ string) Outcome {
	a.mu.Lock()
	latency := a.minLatency
	if spread := a.maxLatency - a.minLatency; spread > 0 {
		latency += time.Duration(a.rng.Int63n(int64(spread)))
	}
	fail := a.rng.Float64() < a.profile.failureRate
	var metrics *model.Metrics
	if !fail {
		metrics = a.profile.metrics(a.source, a.rng)
	}
	a.mu.Unlock()

	if err := waitLatency(ctx, latency); err != nil {
		return Failure(err.Error())
	}
	if fail {
		return Failure(unavailableReason(a.source))
	}
	return Outcome{
		Available:        true,
		ExternalReportID: newReportID(a.source, a.now()),
		Metrics:          metrics,
	}
}
