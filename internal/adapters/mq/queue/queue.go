// Package queue buffers analysis records between the request path and the
// history writers.
package queue

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Record is the payload type flowing through the queue.
type Record = model.AnalysisRecord

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a record to the queue.
	// Returns false if the queue is full or closed and the record was dropped.
	Enqueue(ctx context.Context, r Record) bool

	// Dequeue returns a channel that receives records as they become available.
	// The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Record

	// Len returns the current number of queued records.
	Len(ctx context.Context) int

	// Close stops accepting records. Queued records can still be dequeued.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	records  chan Record
	capacity int

	mu     sync.RWMutex
	closed bool

	dequeueDropped atomic.Int64
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.records = make(chan Record, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a record without blocking. A full or closed queue drops it.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Record) bool { //nolint:gocritic // hugeParam: records are passed by value through the channel
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueDropped()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueDropped()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	}

	select {
	case q.records <- r:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.records))
		return true
	default:
		metrics.RecordQueueDropped()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives records as they become available.
// When ctx ends while a record is in hand, that record is lost; it is counted
// as dropped (see DequeueDropped) rather than put back.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Record {
	out := make(chan Record)
	go func() {
		defer close(out)
		for r := range q.records {
			select {
			case out <- r:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.records))
			case <-ctx.Done():
				q.dequeueDropped.Add(1)
				metrics.RecordQueueDropped()
				metrics.RecordErrorByComponent("queue", "dequeue_cancelled")
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued records.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.records)
	metrics.UpdateQueueSize(size)
	return size
}

// DequeueDropped returns how many records were taken off the queue but lost
// because the consumer's context ended.
func (q *InMemoryQueue) DequeueDropped() int64 { return q.dequeueDropped.Load() }

// Capacity returns the configured queue capacity.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close stops the queue. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.records)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
