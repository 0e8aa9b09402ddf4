// Package service wires the bureau adapters, the stores, the aggregation
// engine and the background refresh pipeline into the operations served by
// the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/tribureau/internal/adapters/mq/queue"
	"github.com/okian/tribureau/internal/adapters/mq/worker"
	"github.com/okian/tribureau/internal/adapters/repository"
	"github.com/okian/tribureau/internal/domain/aggregation"
	"github.com/okian/tribureau/internal/domain/bureau"
	"github.com/okian/tribureau/internal/domain/dedupe"
	"github.com/okian/tribureau/internal/domain/fetch"
	"github.com/okian/tribureau/internal/domain/model"
	"github.com/okian/tribureau/internal/domain/types"
	"github.com/okian/tribureau/pkg/logger"
	"github.com/okian/tribureau/pkg/metrics"
)

// Service implements the API dependencies of the credit profile system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store        repository.Store
	adapters     []bureau.Adapter
	orchestrator *fetch.Orchestrator
	engine       *aggregation.Engine
	clock        *fetch.Clock

	// Refresh pipeline, built on Start
	deduper dedupe.Deduper
	queue   queue.Queue
	pool    *worker.Pool

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	fetchTimeout   time.Duration
	defaultMethod  model.Method
	defaultWeights map[model.Source]float64
	now            func() time.Time
	newID          func() string

	// State
	started bool
	stopped bool

	logger logger.Logger
}

// New constructs a Service. Without options it uses an in-memory store and
// randomized adapters for every source.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU(),
		queueSize:      1024,
		dedupeSize:     100_000,
		fetchTimeout:   2 * time.Second,
		defaultMethod:  model.MethodWeighted,
		defaultWeights: aggregation.DefaultWeights(),
		now:            time.Now,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if len(s.adapters) == 0 {
		s.adapters = RandomAdapters()
	}

	s.clock = fetch.NewClock(s.now)
	s.engine = aggregation.NewEngine(aggregation.WithDefaultWeights(s.defaultWeights))
	s.orchestrator = fetch.NewOrchestrator(s.adapters, userDirectory{users: s.store}, s.store,
		fetch.WithTimeout(s.fetchTimeout),
		fetch.WithClock(s.clock),
		fetch.WithLogger(s.logger.Named("fetch")),
	)
	return s
}

// Start builds the refresh queue and starts the worker pool. Workers stop
// when ctx is cancelled or on Stop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting credit profile service...")

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.queue = q
	s.pool = worker.NewPool(s.workerCount, q, worker.HandlerFunc(s.HandleRefresh),
		worker.WithDeduper(s.deduper),
		worker.WithLogger(s.logger.Named("refresh-worker")),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "credit profile service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("adapters", len(s.adapters)),
		logger.Duration("fetchTimeout", s.fetchTimeout),
		logger.String("defaultMethod", string(s.defaultMethod)),
	)
	return nil
}

// Stop drains the refresh pipeline and closes the store. A stopped service
// cannot be started again.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.logger.Info(ctx, "stopping credit profile service...")

	var shutdownErr error
	if s.pool != nil {
		shutdownErr = s.pool.Shutdown(ctx)
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "error closing store", logger.Error(err))
		if shutdownErr == nil {
			shutdownErr = fmt.Errorf("close store: %w", err)
		}
	}

	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "credit profile service stopped")
	return shutdownErr
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Started:       s.started,
		Workers:       s.workerCount,
		QueueCapacity: s.queueSize,
	}
	if s.started {
		stats.QueueLength = s.queue.Len()
		stats.PendingRefresh = s.deduper.Size()
		metrics.UpdateRefreshQueueSize(stats.QueueLength)
		metrics.UpdateWorkerCount(s.workerCount)
	}
	if s.stopped {
		return stats
	}

	var err error
	if stats.Users, err = s.store.CountUsers(ctx); err != nil {
		s.logger.Warn(ctx, "count users failed", logger.Error(err))
	}
	if stats.Readings, err = s.store.CountReadings(ctx); err != nil {
		s.logger.Warn(ctx, "count readings failed", logger.Error(err))
	}
	if stats.Results, err = s.store.CountResults(ctx); err != nil {
		s.logger.Warn(ctx, "count results failed", logger.Error(err))
	}
	metrics.UpdateTotalUsers(int(stats.Users))
	metrics.UpdateStoredRecords("readings", stats.Readings)
	metrics.UpdateStoredRecords("results", stats.Results)
	return stats
}

// DefaultMethod returns the method used when a request names none.
func (s *Service) DefaultMethod() model.Method {
	return s.defaultMethod
}
