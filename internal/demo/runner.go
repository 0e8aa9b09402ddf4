package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/tribureau/internal/domain/model"
	"github.com/okian/tribureau/internal/domain/types"
	"github.com/okian/tribureau/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const reportsPath = "/api/credit-reports/users/"

// aggregateRequest is the body of POST .../aggregate.
type aggregateRequest struct {
	Method  model.Method             `json:"method,omitempty"`
	Weights map[model.Source]float64 `json:"weights,omitempty"`
}

// runner carries the state shared by the per-user pipelines.
type runner struct {
	cfg    *Config
	client *Client
	log    logger.Logger

	mu         sync.Mutex
	stats      *Stats
	violations []error
}

// Run executes a complete demo against cfg.BaseURL and writes a summary to
// out. Request failures are counted; inconsistent responses fail the run.
func Run(ctx context.Context, cfg *Config, out io.Writer) (*Stats, error) {
	r := &runner{
		cfg:    cfg,
		client: NewClient(cfg.BaseURL, cfg.Timeout),
		log:    logger.Get().Named("demo"),
		stats:  &Stats{StartTime: time.Now()},
	}

	r.log.Info(ctx, "starting credit demo",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("users", cfg.Users),
		logger.Int("workers", cfg.Workers),
		logger.String("method", string(cfg.Method)),
		logger.Bool("refresh", cfg.Refresh))

	if err := r.checkHealth(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	users := generateUsers(cfg.Users, uuid.New())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, u := range users {
		g.Go(func() error { return r.runUser(gctx, u) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var stats types.Stats
	if _, err := r.client.Get(ctx, "/stats", &stats); err != nil {
		r.log.Warn(ctx, "stats unavailable", logger.Error(err))
	}

	r.stats.EndTime = time.Now()
	r.stats.Duration = r.stats.EndTime.Sub(r.stats.StartTime)
	displayFinalStats(out, r.stats, stats)

	if len(r.violations) > 0 {
		return r.stats, fmt.Errorf("%d inconsistent responses: %w", len(r.violations), errors.Join(r.violations...))
	}
	r.log.Info(ctx, "demo completed successfully")
	return r.stats, nil
}

func (r *runner) checkHealth(ctx context.Context) error {
	var health struct {
		Status string `json:"status"`
	}
	if _, err := r.client.Get(ctx, "/api/health", &health); err != nil {
		return err
	}
	if health.Status != "ok" {
		return fmt.Errorf("unexpected status %q", health.Status)
	}
	return nil
}

// runUser creates one user and drives it through fetch, aggregate and the
// optional refresh. Only context cancellation aborts the run.
func (r *runner) runUser(ctx context.Context, req userRequest) error {
	var u model.User
	if _, err := r.client.Post(ctx, "/api/users", req, &u); err != nil {
		return r.requestFailed(ctx, "create user", err)
	}
	r.update(func(s *Stats) { s.UsersCreated++ })

	var summary types.FetchSummary
	if _, err := r.client.Post(ctx, reportsPath+u.ID+"/fetch", nil, &summary); err != nil {
		return r.requestFailed(ctx, "fetch", err)
	}
	r.check(verifyFetch(summary))
	r.update(func(s *Stats) {
		switch {
		case !summary.Success:
			s.FetchFailed++
		case len(summary.FailedSources) > 0:
			s.FetchDegraded++
		default:
			s.FetchSucceeded++
		}
	})

	var res model.AggregatedResult
	_, err := r.client.Post(ctx, reportsPath+u.ID+"/aggregate",
		aggregateRequest{Method: r.cfg.Method, Weights: r.cfg.Weights}, &res)
	var se *StatusError
	switch {
	case errors.As(err, &se) && se.Status == http.StatusUnprocessableEntity:
		r.update(func(s *Stats) { s.NoUsableData++ })
	case err != nil:
		return r.requestFailed(ctx, "aggregate", err)
	default:
		r.check(verifyAggregate(res, r.cfg.Method))
		r.update(func(s *Stats) {
			s.Aggregated++
			s.Scores = append(s.Scores, res.CombinedScore)
		})
		if r.cfg.Verbose {
			r.log.Info(ctx, "aggregated",
				logger.String("user", u.ID),
				logger.Int("score", res.CombinedScore),
				logger.String("risk", string(res.RiskCategory)))
		}
	}

	var profile types.Profile
	if _, err := r.client.Get(ctx, reportsPath+u.ID+"/profile", &profile); err != nil {
		return r.requestFailed(ctx, "profile", err)
	}
	r.check(verifyProfile(profile, res.ID))

	if !r.cfg.Refresh {
		return nil
	}
	var ticket types.RefreshTicket
	status, err := r.client.Post(ctx, reportsPath+u.ID+"/refresh", nil, &ticket)
	if err != nil {
		return r.requestFailed(ctx, "refresh", err)
	}
	r.update(func(s *Stats) {
		if status == http.StatusOK && ticket.Duplicate {
			s.RefreshPending++
			return
		}
		s.RefreshQueued++
	})
	return nil
}

func (r *runner) requestFailed(ctx context.Context, step string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	r.log.Warn(ctx, "request failed", logger.String("step", step), logger.Error(err))
	r.update(func(s *Stats) { s.RequestFailures++ })
	return nil
}

func (r *runner) update(fn func(*Stats)) {
	r.mu.Lock()
	fn(r.stats)
	r.mu.Unlock()
}

func (r *runner) check(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	r.violations = append(r.violations, err)
	r.mu.Unlock()
}

// displayFinalStats prints the run counters, the top scores and the server
// side counters.
func displayFinalStats(out io.Writer, s *Stats, server types.Stats) {
	scores := append([]int(nil), s.Scores...)
	sort.Sort(sort.Reverse(sort.IntSlice(scores)))

	_, _ = fmt.Fprintf(out, "users created:      %d\n", s.UsersCreated)
	_, _ = fmt.Fprintf(out, "fetch ok/degraded/failed: %d/%d/%d\n", s.FetchSucceeded, s.FetchDegraded, s.FetchFailed)
	_, _ = fmt.Fprintf(out, "aggregated:         %d (no usable data: %d)\n", s.Aggregated, s.NoUsableData)
	if s.RefreshQueued+s.RefreshPending > 0 {
		_, _ = fmt.Fprintf(out, "refresh queued/pending: %d/%d\n", s.RefreshQueued, s.RefreshPending)
	}
	_, _ = fmt.Fprintf(out, "request failures:   %d\n", s.RequestFailures)
	if len(scores) > 0 {
		_, _ = fmt.Fprintf(out, "top scores:         %v\n", scores[:min(topN, len(scores))])
		_, _ = fmt.Fprintf(out, "average score:      %.1f\n", averageScore(scores))
	}
	_, _ = fmt.Fprintf(out, "server: users=%d readings=%d results=%d queue=%d/%d\n",
		server.Users, server.Readings, server.Results, server.QueueLength, server.QueueCapacity)
	_, _ = fmt.Fprintf(out, "duration:           %s\n", s.Duration.Round(time.Millisecond))
}

func averageScore(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, v := range scores {
		sum += v
	}
	return float64(sum) / float64(len(scores))
}
