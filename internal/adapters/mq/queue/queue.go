// Package queue defines the contract for buffering score submissions on the
// async ingestion path.
package queue

import (
	"context"
	"sync"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 100000
)

// Submission is the payload type flowing through the queue.
type Submission = model.Submission

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a submission to the queue.
	// Returns false when the queue is full or closed.
	Enqueue(ctx context.Context, s Submission) bool

	// Dequeue returns a channel delivering submissions as they arrive.
	// The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Submission

	// Len returns the current number of queued submissions.
	Len(ctx context.Context) int

	// Close shuts down the queue. After closing, no new submissions can be
	// enqueued and the dequeue channel drains then closes.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue over a buffered channel.
type InMemoryQueue struct {
	submissions chan Submission
	capacity    int
	mu          sync.RWMutex
	closed      bool
}

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.submissions = make(chan Submission, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a submission to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s Submission) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.submissions <- s:
		metrics.RecordQueueEnqueue()
		q.publishSizeMetrics()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel delivering submissions as they arrive.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Submission {
	out := make(chan Submission)
	go func() {
		defer close(out)
		for s := range q.submissions {
			select {
			case out <- s:
				metrics.RecordQueueDequeue()
				q.publishSizeMetrics()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued submissions.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return len(q.submissions)
}

// Close shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.submissions)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) publishSizeMetrics() {
	size := len(q.submissions)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
