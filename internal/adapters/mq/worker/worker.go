// Package worker runs assessment jobs pulled from the queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/dataq/internal/adapters/mq/queue"
	"github.com/okian/dataq/internal/domain/dimension"
	"github.com/okian/dataq/internal/domain/model"
	"github.com/okian/dataq/pkg/logger"
	"github.com/okian/dataq/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Resolver finds the assessor for a dimension.
type Resolver interface {
	Lookup(d model.Dimension) (dimension.Assessor, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs and replies with their results.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is drained.
	Run(ctx context.Context)

	// Shutdown stops the worker without waiting for the queue to drain.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	assessors Resolver
	name      string
	active    *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, assessors Resolver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		assessors: assessors,
		name:      "worker",
		active:    new(atomic.Int64),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// process runs one job and always sends exactly one reply.
func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	defer func() { metrics.UpdateWorkerActiveCount(int(w.active.Add(-1))) }()

	start := time.Now()
	res := queue.JobResult{JobID: j.ID, Dimension: j.Dimension}
	defer func() {
		res.Latency = time.Since(start)
		metrics.RecordWorkerProcessingLatency(float64(res.Latency.Milliseconds()))
		w.reply(ctx, j, res)
	}()

	a, err := w.assessors.Lookup(j.Dimension)
	if err != nil {
		res.Err = err
		w.fail(ctx, j, "unknown_dimension", err)
		return
	}

	res.Result, err = a.Assess(ctx, j.Data, j.Schema, j.Level)
	if err != nil {
		res.Err = fmt.Errorf("assess %s: %w", j.Dimension, err)
		w.fail(ctx, j, "assess_failed", err)
		return
	}

	metrics.RecordAssessment(string(j.Dimension), float64(time.Since(start).Milliseconds()), res.Result.Score)
	for _, is := range res.Result.Issues {
		metrics.RecordIssue(string(j.Dimension), string(is.Severity))
	}
	w.logger.Debug(ctx, "job processed",
		logger.String("job_id", j.ID),
		logger.String("dimension", string(j.Dimension)),
		logger.Float64("score", res.Result.Score),
		logger.Duration("queued", start.Sub(j.EnqueuedAt)),
	)
}

func (w *InMemoryWorker) fail(ctx context.Context, j queue.Job, kind string, err error) { //nolint:gocritic // hugeParam
	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", kind)
	w.logger.Error(ctx, "assessment failed",
		logger.String("job_id", j.ID),
		logger.String("dimension", string(j.Dimension)),
		logger.Error(err),
	)
}

func (w *InMemoryWorker) reply(ctx context.Context, j queue.Job, res queue.JobResult) { //nolint:gocritic // hugeParam
	if j.Reply == nil {
		return
	}
	select {
	case j.Reply <- res:
	default:
		w.logger.Warn(ctx, "reply dropped", logger.String("job_id", j.ID))
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	active  *atomic.Int64
	logger  logger.Logger
}

// NewPool creates a new worker pool. A non-positive workerCount defaults to
// a multiple of the CPU count.
func NewPool(workerCount int, q Queue, assessors Resolver, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	// Options are applied to a bare worker to pick up the shared logger.
	bare := &InMemoryWorker{logger: logger.Nop()}
	for _, opt := range opts {
		opt(bare)
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		active:  new(atomic.Int64),
		logger:  bare.logger.Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		wopts := append(append([]Option{}, opts...), WithName("worker-"+strconv.Itoa(i)), withActive(pool.active))
		pool.workers[i] = NewInMemoryWorker(q, assessors, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Active returns the number of workers currently running a job.
func (p *Pool) Active() int { return int(p.active.Load()) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue, lets workers drain it, and stops any worker
// still running when ctx or the pool timeout expires.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var firstErr error
	for i, w := range p.workers {
		select {
		case <-w.Done():
			continue
		case <-shutdownCtx.Done():
		}
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	metrics.UpdateWorkerCount(0)
	return firstErr
}
