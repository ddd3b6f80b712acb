package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/dataq/internal/domain/model"
)

func job(id string) Job {
	return Job{ID: id, Dimension: model.Completeness, Level: model.DetailLow}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, job("job1")); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	j := <-q.Dequeue(ctx)
	if j.ID != "job1" {
		t.Errorf("expected job1, got %v", j.ID)
	}
	if j.EnqueuedAt.IsZero() {
		t.Error("expected enqueue time to be stamped")
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if err := q.Enqueue(ctx, job(id)); err != nil {
			t.Fatalf("expected enqueue to succeed, got %v", err)
		}
	}
	if err := q.Enqueue(ctx, job("c")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if q.Cap() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Cap())
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, job("a")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	_ = q.Enqueue(ctx, job("queued"))
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if err := q.Enqueue(ctx, job("late")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	var got []string
	for j := range q.Dequeue(ctx) {
		got = append(got, j.ID)
	}
	if len(got) != 1 || got[0] != "queued" {
		t.Errorf("expected queued job to drain after close, got %v", got)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	const producers, perProducer = 8, 50
	q := NewInMemoryQueue(WithCapacity(producers * perProducer))
	ctx := context.Background()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := q.Enqueue(ctx, job(fmt.Sprintf("%d-%d", p, i))); err != nil {
					t.Errorf("enqueue: %v", err)
				}
			}
		}(p)
	}
	wg.Wait()
	_ = q.Close()

	seen := make(map[string]bool)
	timeout := time.After(5 * time.Second)
	out := q.Dequeue(ctx)
	for {
		select {
		case j, ok := <-out:
			if !ok {
				if len(seen) != producers*perProducer {
					t.Errorf("expected %d jobs, got %d", producers*perProducer, len(seen))
				}
				return
			}
			if seen[j.ID] {
				t.Errorf("job %s delivered twice", j.ID)
			}
			seen[j.ID] = true
		case <-timeout:
			t.Fatal("timed out draining queue")
		}
	}
}

func TestInMemoryQueue_DequeueStopsOnCancel(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	out := q.Dequeue(ctx)
	cancel()

	select {
	case _, ok := <-out:
		if ok {
			t.Error("expected no job after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("dequeue channel not closed after cancel")
	}
}

func TestInMemoryQueue_EnqueueAll(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(3))
	ctx := context.Background()

	if err := q.Enqueue(ctx, job("first")); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}

	batch := []Job{job("a"), job("b"), job("c")}
	if err := q.EnqueueAll(ctx, batch); !errors.Is(err, ErrFull) {
		t.Fatalf("expected ErrFull for an oversized batch, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected a rejected batch to leave length 1, got %d", l)
	}

	if err := q.EnqueueAll(ctx, batch[:2]); err != nil {
		t.Fatalf("expected a fitting batch to succeed, got %v", err)
	}
	if l := q.Len(ctx); l != 3 {
		t.Errorf("expected length 3, got %d", l)
	}

	out := q.Dequeue(ctx)
	for _, want := range []string{"first", "a", "b"} {
		j := <-out
		if j.ID != want {
			t.Errorf("expected %s, got %s", want, j.ID)
		}
		if j.EnqueuedAt.IsZero() {
			t.Errorf("expected %s to be stamped", j.ID)
		}
	}

	_ = q.Close()
	if err := q.EnqueueAll(ctx, batch[:1]); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
