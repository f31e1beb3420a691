package queue

import (
	"context"
	"sync"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/repository"
	"travel-ai-planner/internal/infra/metrics"
)

var _ repository.PlanJobQueue = (*PlanJobQueue)(nil)

// PlanJobQueue is an unbounded in-process FIFO with many producers and a
// single consumer. Enqueue never blocks; Dequeue waits until a job arrives
// or its context is cancelled. A cancelled Dequeue never consumes a job:
// jobs are only removed under the lock once the consumer is committed.
type PlanJobQueue struct {
	mu     sync.Mutex
	jobs   []model.PlanGenerationJob
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

func NewPlanJobQueue() *PlanJobQueue {
	return &PlanJobQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (q *PlanJobQueue) Enqueue(job model.PlanGenerationJob) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return domain.ErrQueueClosed
	}
	q.jobs = append(q.jobs, job)
	metrics.SetQueueDepth(len(q.jobs))
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

func (q *PlanJobQueue) Dequeue(ctx context.Context) (model.PlanGenerationJob, error) {
	for {
		q.mu.Lock()
		if len(q.jobs) > 0 {
			job := q.jobs[0]
			q.jobs = q.jobs[1:]
			metrics.SetQueueDepth(len(q.jobs))
			q.mu.Unlock()
			return job, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return model.PlanGenerationJob{}, domain.ErrQueueClosed
		}

		select {
		case <-ctx.Done():
			return model.PlanGenerationJob{}, ctx.Err()
		case <-q.done:
			// drain remaining jobs before reporting closed
		case <-q.wake:
		}
	}
}

func (q *PlanJobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Close stops accepting new jobs. The consumer drains what is queued and
// then receives domain.ErrQueueClosed.
func (q *PlanJobQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}
