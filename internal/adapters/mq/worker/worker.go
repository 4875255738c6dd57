// Package worker drains queued analysis records into the history store.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/lineup/internal/adapters/mq/queue"
	"github.com/okian/lineup/pkg/logger"
	"github.com/okian/lineup/pkg/metrics"
)

const (
	defaultWorkerCount  = 2
	defaultWriteTimeout = 5 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// HistoryWriter persists one analysis record.
type HistoryWriter interface {
	SaveAnalysis(ctx context.Context, rec queue.Record) error
}

// Queue defines how workers receive records.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Record
}

// Worker processes records until its queue is drained or it is stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for one queue consumer.
type InMemoryWorker struct {
	queue        Queue
	writer       HistoryWriter
	name         string
	writeTimeout time.Duration
	processed    *atomic.Int64

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, writer HistoryWriter, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:        q,
		writer:       writer,
		name:         "worker",
		writeTimeout: defaultWriteTimeout,
		processed:    &atomic.Int64{},
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	records := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case rec, ok := <-records:
			if !ok {
				return
			}
			if err := w.process(ctx, rec); err != nil {
				w.logger.Error(ctx, "history write failed", logger.String("analysis_id", rec.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker and waits for the current record to finish.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stop()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) stop() {
	w.stopOnce.Do(func() { close(w.shutdown) })
}

// Processed returns the number of records this worker has written.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

func (w *InMemoryWorker) process(ctx context.Context, rec queue.Record) error { //nolint:gocritic // hugeParam: records are passed by value through the channel
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	writeCtx, cancel := context.WithTimeout(ctx, w.writeTimeout)
	defer cancel()

	if err := w.writer.SaveAnalysis(writeCtx, rec); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "history_write")
		return fmt.Errorf("save analysis %s: %w", rec.ID, err)
	}
	w.processed.Add(1)
	metrics.RecordHistorySaved()
	return nil
}

// Pool runs several workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers sharing q and writer.
func NewPool(workerCount int, q Queue, writer HistoryWriter, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("history-worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, writer, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of records written by all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Shutdown closes the queue and lets the workers drain it. Workers still
// running when ctx (or the pool timeout) expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-drainCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			w.stop()
		}
	}
	metrics.UpdateWorkerCount(0)
	if timedOut {
		return fmt.Errorf("worker pool drain: %w", drainCtx.Err())
	}
	return nil
}
