// Package fetch fans a user's report request out to every bureau adapter and
// records each outcome.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/tribureau/internal/domain/bureau"
	"github.com/okian/tribureau/internal/domain/model"
	"github.com/okian/tribureau/pkg/logger"
	"github.com/okian/tribureau/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// UserLookup resolves a user. Implementations return an error wrapping
// ErrUnknownUser when the user does not exist.
type UserLookup interface {
	LookupUser(ctx context.Context, userID string) (model.User, error)
}

// ReadingWriter persists one reading and returns its id.
type ReadingWriter interface {
	SaveReading(ctx context.Context, r model.Reading) (string, error)
}

// Result summarizes one FetchAll call.
type Result struct {
	UserID string
	// Readings holds one persisted reading per adapter in source order.
	Readings      []model.Reading
	Success       bool
	FailedSources []model.Source
}

// Degraded reports whether some, but not all, sources failed.
func (r Result) Degraded() bool {
	return r.Success && len(r.FailedSources) > 0
}

// Err returns ErrAllSourcesFailed when no source succeeded.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrAllSourcesFailed, strings.Join(sourceNames(r.FailedSources), ", "))
}

// Orchestrator calls all adapters concurrently and writes every outcome.
type Orchestrator struct {
	adapters []bureau.Adapter
	users    UserLookup
	writer   ReadingWriter
	timeout  time.Duration
	clock    *Clock
	newID    func() string
	log      logger.Logger
}

// NewOrchestrator creates an orchestrator over adapters.
func NewOrchestrator(adapters []bureau.Adapter, users UserLookup, writer ReadingWriter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		adapters: adapters,
		users:    users,
		writer:   writer,
		timeout:  defaultTimeout,
		clock:    NewClock(nil),
		newID:    defaultID,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = logger.Get().Named("fetch")
	}
	return o
}

// FetchAll resolves the user, queries every adapter concurrently and
// persists one reading per adapter whether it succeeded or not. Unknown
// users are rejected before any adapter is called.
func (o *Orchestrator) FetchAll(ctx context.Context, userID string) (Result, error) {
	if len(o.adapters) == 0 {
		return Result{}, ErrNoAdapters
	}
	user, err := o.users.LookupUser(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	readings := make([]model.Reading, len(o.adapters))
	var (
		mu        sync.Mutex
		writeErrs []error
	)
	// Writes must land even when the caller has gone away.
	writeCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	for i, a := range o.adapters {
		g.Go(func() error {
			r := o.fetchOne(ctx, a, user)
			id, err := o.writer.SaveReading(writeCtx, r)
			if err != nil {
				metrics.RecordStoreError("readings", "save")
				mu.Lock()
				writeErrs = append(writeErrs, fmt.Errorf("%s: %w", a.Source(), err))
				mu.Unlock()
			} else {
				r.ID = id
			}
			readings[i] = r
			return nil
		})
	}
	_ = g.Wait()

	if len(writeErrs) > 0 {
		return Result{}, fmt.Errorf("%w: %w", ErrStore, errors.Join(writeErrs...))
	}

	res := Result{UserID: userID, Readings: sortBySource(readings), FailedSources: []model.Source{}}
	for _, r := range res.Readings {
		if r.Available {
			res.Success = true
		} else {
			res.FailedSources = append(res.FailedSources, r.Source)
		}
	}

	outcome := "complete"
	switch {
	case !res.Success:
		outcome = "failed"
	case res.Degraded():
		outcome = "degraded"
	}
	metrics.RecordFetchRun(outcome)
	o.log.Info(ctx, "fetch completed",
		logger.String("user_id", userID),
		logger.String("outcome", outcome),
		logger.Strings("failed_sources", sourceNames(res.FailedSources)),
	)
	return res, nil
}

// fetchOne calls a single adapter under the per-call timeout and stamps the
// outcome into an unsaved reading.
func (o *Orchestrator) fetchOne(ctx context.Context, a bureau.Adapter, user model.User) model.Reading {
	src := a.Source()
	start := time.Now()

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	done := make(chan bureau.Outcome, 1)
	go func() { done <- a.Fetch(callCtx, user.CorrelationKey) }()

	var out bureau.Outcome
	select {
	case out = <-done:
	case <-callCtx.Done():
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			metrics.RecordSourceTimeout(string(src))
			out = bureau.Failure(fmt.Sprintf("%s did not respond within %s", src.DisplayName(), o.timeout))
		} else {
			out = bureau.Failure(fmt.Sprintf("request cancelled: %v", callCtx.Err()))
		}
	}
	if out.Available && out.Metrics == nil {
		out = bureau.Failure(src.DisplayName() + " returned no report data")
	}
	if !out.Available && out.ErrorReason == "" {
		out.ErrorReason = src.DisplayName() + " request failed"
	}

	captured := o.clock.Now()
	r := model.Reading{
		ID:               o.newID(),
		UserID:           user.ID,
		Source:           src,
		CapturedAt:       captured,
		ExternalReportID: out.ExternalReportID,
		Available:        out.Available,
	}
	if r.ExternalReportID == "" {
		r.ExternalReportID = fmt.Sprintf("%s-%d", strings.ToLower(src.ReportPrefix()), captured.UnixMilli())
	}
	if out.Available {
		r.Metrics = out.Metrics
	} else {
		r.ErrorReason = out.ErrorReason
		o.log.Warn(ctx, "source unavailable",
			logger.String("user_id", user.ID),
			logger.String("source", string(src)),
			logger.String("reason", out.ErrorReason),
		)
	}

	result := "available"
	if !r.Available {
		result = "unavailable"
	}
	metrics.RecordSourceFetch(string(src), result, float64(time.Since(start).Microseconds())/1000)
	return r
}

func sortBySource(readings []model.Reading) []model.Reading {
	out := make([]model.Reading, 0, len(readings))
	for _, src := range model.Sources() {
		for _, r := range readings {
			if r.Source == src {
				out = append(out, r)
			}
		}
	}
	return out
}

func sourceNames(sources []model.Source) []string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = string(s)
	}
	return names
}
