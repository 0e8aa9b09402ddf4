package bureau

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/okian/tribureau/internal/domain/model"
)

// FixtureAdapter returns the same outcome on every call. It is used by
// tests and by the fixture bureau mode.
type FixtureAdapter struct {
	source  model.Source
	score   int
	reason  string
	delay   time.Duration
	omitID  bool
	calls   atomic.Int64
	metrics model.Metrics
}

// FixtureOption configures a FixtureAdapter.
type FixtureOption func(*FixtureAdapter)

// WithFixtureScore sets the returned score.
func WithFixtureScore(score int) FixtureOption {
	return func(a *FixtureAdapter) { a.score = score }
}

// WithFixtureFailure makes every call fail with reason.
func WithFixtureFailure(reason string) FixtureOption {
	return func(a *FixtureAdapter) {
		if reason == "" {
			reason = unavailableReason(a.source)
		}
		a.reason = reason
	}
}

// WithFixtureDelay delays every call by d, honoring ctx.
func WithFixtureDelay(d time.Duration) FixtureOption {
	return func(a *FixtureAdapter) { a.delay = d }
}

// WithoutReportID makes successful outcomes carry no external report id.
func WithoutReportID() FixtureOption {
	return func(a *FixtureAdapter) { a.omitID = true }
}

// NewFixtureAdapter creates a deterministic adapter for src. The default
// score is the midpoint of the source's default range.
func NewFixtureAdapter(src model.Source, opts ...FixtureOption) *FixtureAdapter {
	lo, hi := DefaultScoreRange(src)
	a := &FixtureAdapter{source: src, score: (lo + hi) / 2}
	for _, opt := range opts {
		opt(a)
	}
	a.metrics = model.Metrics{
		Score:                  a.score,
		UtilizationRate:        0.25,
		AccountsCount:          10,
		InquiriesLast6Months:   1,
		OldestAccountAgeMonths: 96,
		TotalDebt:              25000,
		MonthlyPayments:        900,
		PaymentHistory:         model.PaymentHistory{OnTime: 98, Late30: 1},
		CreditMix:              model.CreditMix{Revolving: 4, Installment: 2, Mortgage: 1, Open: 6},
	}
	return a
}

// Source returns the configured source.
func (a *FixtureAdapter) Source() model.Source { return a.source }

// Calls returns how many times Fetch was invoked.
func (a *FixtureAdapter) Calls() int64 { return a.calls.Load() }

// Fetch returns the configured outcome.
func (a *FixtureAdapter) Fetch(ctx context.Context, _ string) Outcome {
	n := a.calls.Add(1)
	if err := waitLatency(ctx, a.delay); err != nil {
		return Failure(err.Error())
	}
	if a.reason != "" {
		return Failure(a.reason)
	}
	m := a.metrics
	m.Extra = map[string]any{"source": a.source.DisplayName(), "report_type": "Fixture"}
	out := Outcome{Available: true, Metrics: &m}
	if !a.omitID {
		out.ExternalReportID = fmt.Sprintf("%s-FIX-%d", a.source.ReportPrefix(), n)
	}
	return out
}
