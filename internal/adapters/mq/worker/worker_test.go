package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	queue "github.com/okian/dataq/internal/adapters/mq/queue"
	worker "github.com/okian/dataq/internal/adapters/mq/worker"
	"github.com/okian/dataq/internal/domain/dimension"
	"github.com/okian/dataq/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan queue.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobs: make(chan queue.Job, 16)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	close(mq.jobs)
	return nil
}

type stubAssessor struct {
	dim   model.Dimension
	score float64
	err   error
	calls atomic.Int64
	block chan struct{}
}

func (s *stubAssessor) Dimension() model.Dimension { return s.dim }

func (s *stubAssessor) Assess(context.Context, model.Dataset, *model.Schema, model.DetailLevel) (model.DimensionResult, error) {
	s.calls.Add(1)
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return model.DimensionResult{}, s.err
	}
	return model.DimensionResult{
		Score:  s.score,
		Issues: []model.Issue{{Type: model.IssueMissingValues, Severity: model.SeverityLow}},
	}, nil
}

func waitResult(t *testing.T, ch <-chan queue.JobResult) queue.JobResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job result")
		return queue.JobResult{}
	}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker with a completeness assessor", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		mq := newMockQueue()
		stub := &stubAssessor{dim: model.Completeness, score: 0.8}
		w := worker.NewInMemoryWorker(mq, dimension.NewRegistry(stub), worker.WithName("test"))
		go w.Run(ctx)

		convey.Convey("When a job arrives", func() {
			reply := make(chan queue.JobResult, 1)
			mq.jobs <- queue.Job{ID: "j1", Dimension: model.Completeness, Level: model.DetailLow, Reply: reply}
			res := waitResult(t, reply)

			convey.Convey("Then the result is sent back", func() {
				convey.So(res.Err, convey.ShouldBeNil)
				convey.So(res.JobID, convey.ShouldEqual, "j1")
				convey.So(res.Dimension, convey.ShouldEqual, model.Completeness)
				convey.So(res.Result.Score, convey.ShouldEqual, 0.8)
				convey.So(res.Latency >= 0, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a job names an unknown dimension", func() {
			reply := make(chan queue.JobResult, 1)
			mq.jobs <- queue.Job{ID: "j2", Dimension: model.Diversity, Reply: reply}
			res := waitResult(t, reply)

			convey.Convey("Then the error is replied", func() {
				convey.So(errors.Is(res.Err, dimension.ErrUnknownDimension), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the queue closes", func() {
			_ = mq.Close()

			convey.Convey("Then Run returns", func() {
				select {
				case <-w.Done():
				case <-time.After(2 * time.Second):
					t.Fatal("worker did not stop")
				}
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given an assessor that fails", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		boom := errors.New("boom")
		mq := newMockQueue()
		w := worker.NewInMemoryWorker(mq, dimension.NewRegistry(&stubAssessor{dim: model.Uniqueness, err: boom}))
		go w.Run(ctx)

		reply := make(chan queue.JobResult, 1)
		mq.jobs <- queue.Job{ID: "j3", Dimension: model.Uniqueness, Reply: reply}
		res := waitResult(t, reply)

		convey.Convey("Then the wrapped error is replied", func() {
			convey.So(errors.Is(res.Err, boom), convey.ShouldBeTrue)
			convey.So(res.Err.Error(), convey.ShouldContainSubstring, "uniqueness")
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		stubs := []dimension.Assessor{
			&stubAssessor{dim: model.Completeness, score: 1},
			&stubAssessor{dim: model.Consistency, score: 0.5},
		}
		pool := worker.NewPool(3, q, dimension.NewRegistry(stubs...))
		pool.Start(ctx)

		convey.Convey("When many jobs are enqueued", func() {
			const n = 20
			reply := make(chan queue.JobResult, n)
			for i := 0; i < n; i++ {
				d := model.Completeness
				if i%2 == 1 {
					d = model.Consistency
				}
				convey.So(q.Enqueue(ctx, queue.Job{ID: "job", Dimension: d, Reply: reply}), convey.ShouldBeNil)
			}

			convey.Convey("Then every job gets exactly one reply", func() {
				total := 0.0
				for i := 0; i < n; i++ {
					total += waitResult(t, reply).Result.Score
				}
				convey.So(total, convey.ShouldEqual, 10*1+10*0.5)
				convey.So(pool.Size(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the pool shuts down", func() {
			err := pool.Shutdown(context.Background())

			convey.Convey("Then the queue is closed and workers stop", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(pool.Active(), convey.ShouldEqual, 0)
			})
		})
	})

	convey.Convey("Given a worker stuck in an assessment", t, func() {
		q := queue.NewInMemoryQueue()
		stuck := &stubAssessor{dim: model.Diversity, block: make(chan struct{})}
		defer close(stuck.block)

		pool := worker.NewPool(1, q, dimension.NewRegistry(stuck))
		pool.Start(context.Background())
		_ = q.Enqueue(context.Background(), queue.Job{ID: "slow", Dimension: model.Diversity, Reply: make(chan queue.JobResult, 1)})
		for stuck.calls.Load() == 0 {
			time.Sleep(time.Millisecond)
		}

		convey.Convey("Then shutdown gives up when its context expires", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			err := pool.Shutdown(ctx)
			convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
			convey.So(pool.Active(), convey.ShouldEqual, 1)
		})
	})
}
