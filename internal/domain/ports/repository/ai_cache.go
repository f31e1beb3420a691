package repository

import (
	"context"
	"time"

	"travel-ai-planner/internal/domain/model"
)

// AIResponseCacheRepository is the content-addressed response store.
type AIResponseCacheRepository interface {
	// Lookup returns the unexpired entry for fingerprint, atomically
	// incrementing its hit count. Misses return domain.ErrNotFound and
	// never touch the hit count.
	Lookup(ctx context.Context, fingerprint string) (*model.AIResponseCacheEntry, error)

	// Store upserts the entry keyed by its fingerprint. A duplicate store
	// must never create a second row.
	Store(ctx context.Context, entry *model.AIResponseCacheEntry) error

	// DeleteExpired removes every entry whose expiry has passed at now.
	// Entries without expiry are never deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
