package telemetry

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain/ports/adapter"
	"travel-ai-planner/internal/infra/metrics"
)

var _ adapter.UsageRecorder = (*Recorder)(nil)

// Recorder is the fire-and-forget usage sink backed by Prometheus counters
// plus a structured debug log per session.
type Recorder struct {
	provider string
	log      *zerolog.Logger
}

func NewRecorder(provider string, logger *zerolog.Logger) *Recorder {
	l := logger.With().Str("component", "UsageRecorder").Logger()
	return &Recorder{provider: provider, log: &l}
}

// RecordUsage is only invoked for sessions that completed, so the latency
// histogram observes success=true.
func (r *Recorder) RecordUsage(ctx context.Context, callerID, modelName string, cacheHit bool, inputTokens, outputTokens int, latency time.Duration) {
	metrics.ObserveAIUsage(r.provider, modelName, inputTokens, outputTokens, inputTokens+outputTokens, int(latency.Milliseconds()), true)
	if cacheHit {
		metrics.IncCacheRequest("ai_response", "hit")
	}
	r.log.Debug().
		Str("caller_id", callerID).
		Str("model", modelName).
		Bool("cache_hit", cacheHit).
		Int("input_tokens", inputTokens).
		Int("output_tokens", outputTokens).
		Dur("latency", latency).
		Msg("usage recorded")
}
