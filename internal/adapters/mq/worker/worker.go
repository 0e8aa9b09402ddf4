// Package worker runs refresh jobs taken from the queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/tribureau/internal/adapters/mq/queue"
	"github.com/okian/tribureau/internal/domain/dedupe"
	"github.com/okian/tribureau/pkg/logger"
	"github.com/okian/tribureau/pkg/metrics"
)

// Job is what workers read off the queue.
type Job = queue.Job

// Handler does the work for one job.
type Handler interface {
	HandleRefresh(ctx context.Context, j Job) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, j Job) error

// HandleRefresh calls f.
func (f HandlerFunc) HandleRefresh(ctx context.Context, j Job) error { return f(ctx, j) }

// Source is where workers receive jobs from.
type Source interface {
	Dequeue() <-chan Job
}

// Pool runs a fixed number of workers over one queue.
type Pool struct {
	size    int
	source  Source
	handler Handler
	deduper dedupe.Deduper
	name    string
	logger  logger.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPool creates a pool of size workers. A size below one defaults to the
// number of CPUs.
func NewPool(size int, source Source, handler Handler, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		size:    size,
		source:  source,
		handler: handler,
		name:    "refresh-worker",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named(p.name)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Start launches the workers. They stop when ctx is cancelled, when the
// queue is closed and drained, or on Shutdown.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(runCtx, p.logger.Named(p.name+"-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(p.size)
}

func (p *Pool) run(ctx context.Context, log logger.Logger) {
	defer p.wg.Done()
	jobs := p.source.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			p.process(ctx, log, j)
		}
	}
}

func (p *Pool) process(ctx context.Context, log logger.Logger, j Job) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
		if p.deduper != nil {
			p.deduper.Unrecord(ctx, j.DedupeKey())
		}
	}()

	if err := p.handle(ctx, j); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "refresh_failed")
		log.Error(ctx, "refresh failed",
			logger.String("job_id", j.ID),
			logger.String("user_id", j.UserID),
			logger.Error(err),
		)
		return
	}
	log.Debug(ctx, "refresh completed", logger.String("job_id", j.ID), logger.String("user_id", j.UserID))
}

// handle shields the worker from handler panics.
func (p *Pool) handle(ctx context.Context, j Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return p.handler.HandleRefresh(ctx, j)
}

// Shutdown closes the queue when it supports closing, lets workers drain
// what is left and waits for them. If ctx expires first, in-flight work
// is cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		p.logger.Warn(ctx, "worker shutdown timed out")
		err = fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
	if cancel != nil {
		cancel()
	}
	<-done
	metrics.UpdateWorkerCount(0)
	return err
}
