package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain/ports/repository"
	"travel-ai-planner/internal/infra/metrics"
)

// CacheCleanupWorker periodically evicts expired AI response cache rows.
// The initial delay keeps a fleet restart from sweeping in lockstep at boot.
type CacheCleanupWorker struct {
	interval   time.Duration
	startDelay time.Duration
	cache      repository.AIResponseCacheRepository
	log        *zerolog.Logger
}

func NewCacheCleanupWorker(interval, startDelay time.Duration, cache repository.AIResponseCacheRepository, logger *zerolog.Logger) *CacheCleanupWorker {
	l := logger.With().Str("component", "CacheCleanupWorker").Logger()
	return &CacheCleanupWorker{
		interval:   interval,
		startDelay: startDelay,
		cache:      cache,
		log:        &l,
	}
}

func (w *CacheCleanupWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("start_delay", w.startDelay).Msg("starting cache cleanup worker")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(w.startDelay):
	}

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping cache cleanup worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// sweep failures are logged and retried on the next tick; zero eligible
// rows is a no-op.
func (w *CacheCleanupWorker) sweep(ctx context.Context) {
	n, err := w.cache.DeleteExpired(ctx, time.Now())
	if err != nil {
		w.log.Error().Err(err).Msg("cache sweep failed")
		return
	}
	if n > 0 {
		metrics.AddSweptEntries(n)
		w.log.Info().Int64("count", n).Msg("expired cache entries removed")
	}
}
