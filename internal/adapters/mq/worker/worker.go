// Package worker drains the submission queue into the ranking engine.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
)

// Submission is what workers read off the queue.
type Submission = model.Submission

// Submitter applies one submission under the max-score rule.
type Submitter interface {
	Apply(ctx context.Context, s Submission) error
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Submission
}

// Worker processes queued submissions until stopped.
type Worker struct {
	queue     Queue
	submitter Submitter
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewWorker creates a single worker.
func NewWorker(queue Queue, submitter Submitter, opts ...Option) *Worker {
	w := &Worker{
		queue:     queue,
		submitter: submitter,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run starts the worker loop until ctx is canceled or Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	submissions := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-submissions:
			if !ok {
				return
			}
			if err := w.process(ctx, s); err != nil {
				w.logger.Error(ctx, "submission processing failed",
					logger.String("submissionID", s.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker, waiting for the in-flight submission.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *Worker) process(ctx context.Context, s Submission) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.submitter.Apply(ctx, s); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "apply_error")
		return fmt.Errorf("apply submission %s: %w", s.ID, err)
	}
	return nil
}

// Pool manages a fixed set of workers.
type Pool struct {
	workers []*Worker

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a worker pool. A non-positive workerCount defaults to a
// multiple of the CPU count.
func NewPool(workerCount int, queue Queue, submitter Submitter) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:  make([]*Worker, workerCount),
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewWorker(queue, submitter, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)

	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals all workers and waits bounded time for each to finish.
// Safe to call more than once.
func (p *Pool) Stop() {
	select {
	case <-p.shutdown:
		return
	default:
		close(p.shutdown)
	}
	for _, w := range p.workers {
		select {
		case <-w.shutdown:
		default:
			close(w.shutdown)
		}
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerCount(0)
}
