package queue_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/tribureau/internal/adapters/mq/queue"
	. "github.com/smartystreets/goconvey/convey"
)

func job(user string) queue.Job {
	return queue.Job{ID: "job-" + user, UserID: user, Method: "weighted"}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))

		Convey("Then it should report its capacity and start empty", func() {
			So(q.Cap(), ShouldEqual, 2)
			So(q.Len(), ShouldEqual, 0)
			So(q.IsClosed(), ShouldBeFalse)
		})

		Convey("When enqueuing up to capacity", func() {
			So(q.Enqueue(ctx, job("a")), ShouldBeNil)
			So(q.Enqueue(ctx, job("b")), ShouldBeNil)

			Convey("Then the next enqueue should be rejected as full", func() {
				So(errors.Is(q.Enqueue(ctx, job("c")), queue.ErrQueueFull), ShouldBeTrue)
				So(q.Len(), ShouldEqual, 2)
			})

			Convey("Then jobs should come out in order", func() {
				So((<-q.Dequeue()).UserID, ShouldEqual, "a")
				So((<-q.Dequeue()).UserID, ShouldEqual, "b")
			})

			Convey("And after closing, queued jobs should drain and the channel close", func() {
				So(q.Close(), ShouldBeNil)
				So(q.Close(), ShouldBeNil)
				So(q.IsClosed(), ShouldBeTrue)
				So(errors.Is(q.Enqueue(ctx, job("d")), queue.ErrQueueClosed), ShouldBeTrue)

				var drained []string
				for j := range q.Dequeue() {
					drained = append(drained, j.UserID)
				}
				So(drained, ShouldResemble, []string{"a", "b"})
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			So(q.Enqueue(cctx, job("a")), ShouldNotBeNil)
			So(q.Len(), ShouldEqual, 0)
		})
	})
}

func TestInMemoryQueueConcurrentEnqueueAndClose(t *testing.T) {
	Convey("Given producers racing with Close", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(1000))
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					_ = q.Enqueue(ctx, job(fmt.Sprintf("u-%d-%d", i, j)))
				}
			}()
		}
		So(q.Close(), ShouldBeNil)
		wg.Wait()

		Convey("Then nothing should panic and the queue should drain", func() {
			n := 0
			for range q.Dequeue() {
				n++
			}
			So(n, ShouldBeLessThanOrEqualTo, 400)
		})
	})
}
