package adapter

import (
	"context"
	"time"
)

// RateLimitVerdict is the admission decision for one caller.
type RateLimitVerdict struct {
	Allowed bool
	Message string
}

// RateLimiter is the admission-control port checked before any AI call on
// the interactive path.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, callerID string) (RateLimitVerdict, error)
}

// UsageRecorder receives fire-and-forget usage telemetry after a session.
// Latency covers the whole session, admission through the final chunk.
type UsageRecorder interface {
	RecordUsage(ctx context.Context, callerID, modelName string, cacheHit bool, inputTokens, outputTokens int, latency time.Duration)
}
