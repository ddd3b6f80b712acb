// Package queue carries assessment jobs from the service to the worker pool.
//
// The in-memory implementation is a bounded channel; a full queue rejects
// work instead of blocking the caller.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/dataq/internal/domain/model"
	"github.com/okian/dataq/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
)

// Job asks a worker to assess one dimension of a dataset.
type Job struct {
	ID        string
	Dimension model.Dimension
	Data      model.Dataset
	Schema    *model.Schema
	Level     model.DetailLevel
	// Reply receives exactly one JobResult. It must be buffered so a worker
	// never blocks on a caller that stopped waiting.
	Reply      chan<- JobResult
	EnqueuedAt time.Time
}

// JobResult is the outcome of a Job.
type JobResult struct {
	JobID     string
	Dimension model.Dimension
	Result    model.DimensionResult
	Err       error
	Latency   time.Duration
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job without blocking. It returns ErrFull when the queue
	// is at capacity and ErrClosed after Close.
	Enqueue(ctx context.Context, j Job) error

	// EnqueueAll adds every job or none of them. It returns ErrFull when the
	// free capacity is smaller than len(jobs).
	EnqueueAll(ctx context.Context, jobs []Job) error

	// Dequeue returns a channel that will receive jobs as they become available.
	// The channel will be closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Cap returns the queue capacity.
	Cap() int

	// Close stops accepting jobs. Queued jobs are still delivered.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int
	mu       sync.RWMutex
	closed   bool
	// admit serializes producers so a batch sees stable free capacity.
	admit sync.Mutex
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	q.admit.Lock()
	defer q.admit.Unlock()

	if j.EnqueuedAt.IsZero() {
		j.EnqueuedAt = time.Now()
	}
	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		q.observe()
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// EnqueueAll adds jobs atomically with respect to other producers.
// Consumers only free space, so once the batch fits every send succeeds.
func (q *InMemoryQueue) EnqueueAll(ctx context.Context, jobs []Job) error {
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	q.admit.Lock()
	defer q.admit.Unlock()

	if free := q.capacity - len(q.jobs); free < len(jobs) {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return fmt.Errorf("%w: %d jobs, %d free", ErrFull, len(jobs), free)
	}
	now := time.Now()
	for i := range jobs {
		j := jobs[i]
		if j.EnqueuedAt.IsZero() {
			j.EnqueuedAt = now
		}
		q.jobs <- j
		metrics.RecordQueueEnqueue()
	}
	q.observe()
	return nil
}

// Dequeue returns a channel that will receive jobs as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for {
			select {
			case j, ok := <-q.jobs:
				if !ok {
					return
				}
				metrics.RecordQueueDequeue()
				q.observe()
				select {
				case out <- j:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return q.observe()
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int { return q.capacity }

func (q *InMemoryQueue) observe() int {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
