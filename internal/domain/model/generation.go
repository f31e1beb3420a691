package model

import "time"

type GenerationStatus string

const (
	GenerationPending    GenerationStatus = "pending"
	GenerationInProgress GenerationStatus = "in_progress"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationFailed     GenerationStatus = "failed"
)

// Terminal reports whether no further transitions may occur.
func (s GenerationStatus) Terminal() bool {
	return s == GenerationCompleted || s == GenerationFailed
}

var statusRank = map[GenerationStatus]int{
	GenerationPending:    0,
	GenerationInProgress: 1,
	GenerationCompleted:  2,
	GenerationFailed:     2,
}

// CanTransition enforces the monotonic Pending -> InProgress -> terminal
// order. Repeated InProgress writes (progress checkpoints) are allowed;
// leaving a terminal state is not.
func CanTransition(from, to GenerationStatus) bool {
	if from.Terminal() {
		return false
	}
	if from == to {
		return to == GenerationInProgress
	}
	return statusRank[to] > statusRank[from]
}

// PlanGenerationJob is an immutable unit of itinerary-generation work.
// Exactly one of UserID / AnonymousCookieID identifies the owner.
type PlanGenerationJob struct {
	PlanID            string
	Request           TravelPlanRequest
	UserID            string
	AnonymousCookieID string
	EnqueuedAt        time.Time
}

// PlanGenerationState is the poller-visible progress record, written only
// by the generation worker and expired by the status store's TTL.
type PlanGenerationState struct {
	PlanID          string           `json:"planId"`
	Status          GenerationStatus `json:"status"`
	ProgressPercent int              `json:"progressPercent"`
	CurrentStep     string           `json:"currentStep"`
	StartedAt       time.Time        `json:"startedAt"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
	Error           string           `json:"error,omitempty"`
}

func NewPlanGenerationState(planID string) *PlanGenerationState {
	return &PlanGenerationState{
		PlanID:    planID,
		Status:    GenerationPending,
		StartedAt: time.Now(),
	}
}
