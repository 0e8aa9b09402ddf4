package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/tribureau/internal/adapters/mq/queue"
	"github.com/okian/tribureau/internal/domain/model"
	"github.com/okian/tribureau/internal/domain/types"
	"github.com/okian/tribureau/pkg/logger"
	"github.com/okian/tribureau/pkg/metrics"
)

// Refresh ticket statuses.
const (
	RefreshQueued    = "queued"
	RefreshDuplicate = "duplicate"
)

// Refresh queues a background fetch-and-aggregate for the user. While a
// refresh for the same user is pending, further requests are answered as
// duplicates without queueing anything.
func (s *Service) Refresh(ctx context.Context, userID string) (types.RefreshTicket, error) {
	s.mu.RLock()
	started, q, d := s.started, s.queue, s.deduper
	s.mu.RUnlock()
	if !started {
		return types.RefreshTicket{}, ErrNotStarted
	}
	if _, err := s.lookup(ctx, userID); err != nil {
		return types.RefreshTicket{}, err
	}

	job := model.RefreshJob{
		ID:          s.newID(),
		UserID:      userID,
		Method:      s.defaultMethod,
		RequestedAt: s.now().UTC(),
	}
	key := job.DedupeKey()
	if d.SeenAndRecord(ctx, key) {
		metrics.RecordRefreshDuplicate()
		s.logger.Debug(ctx, "refresh already pending", logger.String("user_id", userID))
		return types.RefreshTicket{UserID: userID, Status: RefreshDuplicate, Duplicate: true}, nil
	}

	if err := q.Enqueue(ctx, job); err != nil {
		d.Unrecord(ctx, key)
		switch {
		case errors.Is(err, queue.ErrQueueFull):
			return types.RefreshTicket{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		case errors.Is(err, queue.ErrQueueClosed):
			return types.RefreshTicket{}, fmt.Errorf("%w: %w", ErrStopped, err)
		default:
			return types.RefreshTicket{}, err
		}
	}
	return types.RefreshTicket{JobID: job.ID, UserID: userID, Status: RefreshQueued}, nil
}

// HandleRefresh runs one refresh job: fetch every source, then aggregate
// with the job's method. A fetch in which every source failed ends the job
// with an error and is not retried.
func (s *Service) HandleRefresh(ctx context.Context, job model.RefreshJob) error {
	res, err := s.orchestrator.FetchAll(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", job.UserID, err)
	}
	if err := res.Err(); err != nil {
		metrics.RecordErrorByComponent("refresh", "all_sources_failed")
		return fmt.Errorf("refresh %s: %w", job.UserID, err)
	}

	method := job.Method
	if method == "" {
		method = s.defaultMethod
	}
	if _, err := s.Aggregate(ctx, job.UserID, method, nil); err != nil {
		return fmt.Errorf("refresh %s: aggregate: %w", job.UserID, err)
	}
	return nil
}
