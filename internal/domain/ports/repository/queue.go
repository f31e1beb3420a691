package repository

import (
	"context"

	"travel-ai-planner/internal/domain/model"
)

// PlanJobQueue is a multi-producer, single-consumer FIFO of generation
// jobs. Enqueue never blocks and never drops; Dequeue is cancellable and a
// cancelled Dequeue must not consume a job. Exactly one consumer owns the
// dequeue side.
type PlanJobQueue interface {
	Enqueue(job model.PlanGenerationJob) error
	Dequeue(ctx context.Context) (model.PlanGenerationJob, error)
	Len() int
	Close()
}
