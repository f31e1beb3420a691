package adapter

import (
	"context"

	"travel-ai-planner/internal/domain/model"
)

// StreamNotifier pushes named events to a single caller during an
// interactive session. Every session terminates with exactly one of
// StreamEnd or StreamError.
type StreamNotifier interface {
	StreamStart(ctx context.Context, callerID string) error
	StreamChunk(ctx context.Context, callerID, text string) error
	StreamEnd(ctx context.Context, callerID, fullText string) error
	StreamError(ctx context.Context, callerID, message string) error
}

// GroupNotifier scopes connections to a plan id's notification group and
// pushes status payloads to all joined subscribers. Membership changes take
// effect before the next broadcast.
type GroupNotifier interface {
	JoinGroup(connID, planID string)
	LeaveGroup(connID, planID string)
	BroadcastStatus(ctx context.Context, planID string, state *model.PlanGenerationState)
}
