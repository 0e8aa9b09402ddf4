package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/tribureau/internal/adapters/repository"
	"github.com/okian/tribureau/internal/domain/aggregation"
	"github.com/okian/tribureau/internal/domain/model"
	"github.com/okian/tribureau/internal/domain/types"
	"github.com/okian/tribureau/pkg/logger"
	"github.com/okian/tribureau/pkg/metrics"
)

// FetchAll queries every bureau for the user and records each outcome.
// A fetch in which every source failed is not an error; it is reported
// with Success false.
func (s *Service) FetchAll(ctx context.Context, userID string) (types.FetchSummary, error) {
	res, err := s.orchestrator.FetchAll(ctx, userID)
	if err != nil {
		return types.FetchSummary{}, err
	}

	summary := types.FetchSummary{
		UserID:        res.UserID,
		Success:       res.Success,
		FailedSources: res.FailedSources,
		Reports:       make([]types.ReportRef, len(res.Readings)),
	}
	for i, r := range res.Readings {
		summary.Reports[i] = types.NewReportRef(r)
	}
	return summary, nil
}

// Aggregate combines the latest reading of every source into a new stored
// result. An empty method means the configured default. Weights are only
// read by the custom method.
func (s *Service) Aggregate(ctx context.Context, userID string, method model.Method, weights map[model.Source]float64) (model.AggregatedResult, error) {
	if _, err := s.lookup(ctx, userID); err != nil {
		return model.AggregatedResult{}, err
	}
	if method == "" {
		method = s.defaultMethod
	}

	latest, err := s.store.LatestPerSource(ctx, userID)
	if err != nil {
		return model.AggregatedResult{}, fmt.Errorf("load latest readings: %w", err)
	}
	readings := make([]model.Reading, 0, len(latest))
	for _, src := range model.Sources() {
		if r, ok := latest[src]; ok {
			readings = append(readings, r)
		}
	}

	res, err := s.engine.Aggregate(aggregation.Input{
		UserID:        userID,
		Readings:      readings,
		Method:        method,
		CustomWeights: weights,
	})
	if err != nil {
		metrics.RecordAggregationError(aggregationErrorKind(err))
		return model.AggregatedResult{}, err
	}

	res.ID = s.newID()
	res.ComputedAt = s.clock.Now()
	id, err := s.store.SaveResult(ctx, res)
	if err != nil {
		metrics.RecordStoreError("results", "save")
		return model.AggregatedResult{}, fmt.Errorf("save result: %w", err)
	}
	res.ID = id

	metrics.RecordAggregation(string(res.Method), string(res.RiskCategory), res.CombinedScore)
	s.logger.Info(ctx, "aggregate computed",
		logger.String("user_id", userID),
		logger.String("method", string(res.Method)),
		logger.Int("combined_score", res.CombinedScore),
		logger.String("risk", string(res.RiskCategory)),
		logger.Int("components", len(res.Components)),
	)
	return res, nil
}

// Profile returns the latest reading summary per source and the latest
// aggregated result, if the user has one.
func (s *Service) Profile(ctx context.Context, userID string) (types.Profile, error) {
	u, err := s.lookup(ctx, userID)
	if err != nil {
		return types.Profile{}, err
	}
	latest, err := s.store.LatestPerSource(ctx, userID)
	if err != nil {
		return types.Profile{}, fmt.Errorf("load latest readings: %w", err)
	}

	var agg *model.AggregatedResult
	res, err := s.store.LatestResult(ctx, userID)
	switch {
	case err == nil:
		agg = &res
	case !errors.Is(err, repository.ErrNotFound):
		return types.Profile{}, fmt.Errorf("load latest result: %w", err)
	}
	return types.NewProfile(u, latest, agg), nil
}

// SourceReport returns the latest reading of one source with full metrics.
// It returns ErrNoReport when the source was never fetched for the user and
// an *UnavailableError when the latest attempt recorded a failure.
func (s *Service) SourceReport(ctx context.Context, userID string, src model.Source) (model.Reading, error) {
	if !src.Valid() {
		return model.Reading{}, fmt.Errorf("%w: %q", model.ErrUnknownSource, src)
	}
	if _, err := s.lookup(ctx, userID); err != nil {
		return model.Reading{}, err
	}

	r, err := s.store.LatestForSource(ctx, userID, src)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Reading{}, fmt.Errorf("%w: %s", ErrNoReport, src)
	}
	if err != nil {
		return model.Reading{}, fmt.Errorf("load %s reading: %w", src, err)
	}
	if !r.Available {
		return model.Reading{}, &UnavailableError{Source: src, Reason: r.ErrorReason, CapturedAt: r.CapturedAt}
	}
	return r, nil
}

func aggregationErrorKind(err error) string {
	switch {
	case errors.Is(err, aggregation.ErrNoUsableData):
		return "no_usable_data"
	case errors.Is(err, aggregation.ErrUnknownMethod):
		return "unknown_method"
	case errors.Is(err, aggregation.ErrMissingWeights):
		return "missing_weights"
	case errors.Is(err, aggregation.ErrInvalidWeights):
		return "invalid_weights"
	case errors.Is(err, aggregation.ErrDuplicateSource):
		return "duplicate_source"
	default:
		return "other"
	}
}
