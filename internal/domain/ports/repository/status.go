package repository

import (
	"context"

	"travel-ai-planner/internal/domain/model"
)

// StatusStore is the TTL-backed progress record store. Written only by the
// generation worker; read by pollers. A missing key means unknown/expired,
// reported as domain.ErrNotFound, never as a failure of the job itself.
type StatusStore interface {
	Set(ctx context.Context, state *model.PlanGenerationState) error
	Get(ctx context.Context, planID string) (*model.PlanGenerationState, error)
}

// ResultCache holds the completed itinerary keyed by plan id for a short
// window after completion.
type ResultCache interface {
	StoreResult(ctx context.Context, planID string, it *model.TravelItinerary) error
	GetResult(ctx context.Context, planID string) (*model.TravelItinerary, error)
}
