package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/tribureau/internal/adapters/mq/queue"
	"github.com/okian/tribureau/internal/adapters/mq/worker"
	"github.com/okian/tribureau/internal/domain/dedupe"
	logging "github.com/okian/tribureau/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	if err := logging.Init(); err != nil {
		panic(err)
	}
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu   sync.Mutex
	seen []string
	fail map[string]bool
}

func (r *recorder) HandleRefresh(_ context.Context, j worker.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, j.UserID)
	if r.fail[j.UserID] {
		return errors.New("all sources failed")
	}
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestPoolProcessesJobs(t *testing.T) {
	convey.Convey("Given a pool of three workers over a queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		d := dedupe.NewInMemoryDeduper()
		rec := &recorder{fail: map[string]bool{"u-3": true}}
		pool := worker.NewPool(3, q, rec, worker.WithDeduper(d))
		convey.So(pool.Size(), convey.ShouldEqual, 3)
		pool.Start(ctx)

		convey.Convey("When jobs are enqueued with their dedupe keys recorded", func() {
			for i := 0; i < 10; i++ {
				user := fmt.Sprintf("u-%d", i)
				convey.So(d.SeenAndRecord(ctx, user), convey.ShouldBeFalse)
				convey.So(q.Enqueue(ctx, queue.Job{ID: "j" + user, UserID: user}), convey.ShouldBeNil)
			}
			convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)

			convey.Convey("Then every job should be handled and released, failures included", func() {
				convey.So(rec.count(), convey.ShouldEqual, 10)
				convey.So(d.Size(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestPoolRecoversFromPanics(t *testing.T) {
	convey.Convey("Given a handler that panics", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue()
		var calls atomic.Int32
		pool := worker.NewPool(1, q, worker.HandlerFunc(func(context.Context, worker.Job) error {
			if calls.Add(1) == 1 {
				panic("boom")
			}
			return nil
		}))
		pool.Start(ctx)

		convey.So(q.Enqueue(ctx, queue.Job{UserID: "a"}), convey.ShouldBeNil)
		convey.So(q.Enqueue(ctx, queue.Job{UserID: "b"}), convey.ShouldBeNil)
		convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)

		convey.Convey("Then the worker should survive and keep processing", func() {
			convey.So(calls.Load(), convey.ShouldEqual, 2)
		})
	})
}

func TestPoolShutdownTimeout(t *testing.T) {
	convey.Convey("Given a handler that blocks until cancelled", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue()
		started := make(chan struct{})
		pool := worker.NewPool(1, q, worker.HandlerFunc(func(ctx context.Context, _ worker.Job) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}))
		pool.Start(ctx)
		convey.So(q.Enqueue(ctx, queue.Job{UserID: "slow"}), convey.ShouldBeNil)
		<-started

		convey.Convey("When shutdown has a short deadline", func() {
			sctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			err := pool.Shutdown(sctx)

			convey.Convey("Then it should report the timeout and still stop the worker", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			})
		})
	})
}

func TestPoolStopsWithContext(t *testing.T) {
	convey.Convey("Given a started pool", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(2, q, &recorder{})
		pool.Start(ctx)
		pool.Start(ctx)

		convey.Convey("When the parent context is cancelled", func() {
			cancel()

			convey.Convey("Then shutdown should return promptly", func() {
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}
