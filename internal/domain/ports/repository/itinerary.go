package repository

import (
	"context"

	"travel-ai-planner/internal/domain/model"
)

// ItineraryRepository persists the final generated itinerary keyed by the
// job's external plan id. Write failures are logged by the caller, never
// propagated into the job's terminal status.
type ItineraryRepository interface {
	Save(ctx context.Context, it *model.SavedItinerary) error
	FindByPlanID(ctx context.Context, planID string) (*model.SavedItinerary, error)
}
