package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/repository"
)

var _ repository.AIResponseCacheRepository = (*aiCacheRepo)(nil)

type aiCacheRepo struct {
	pool *pgxpool.Pool
}

func NewAICacheRepo(pool *pgxpool.Pool) *aiCacheRepo {
	return &aiCacheRepo{pool: pool}
}

// Lookup increments hit_count and returns the entry in one statement so
// concurrent hits never lose an increment. Expired rows count as misses.
func (r *aiCacheRepo) Lookup(ctx context.Context, fingerprint string) (*model.AIResponseCacheEntry, error) {
	const q = `
UPDATE ai_response_cache
SET hit_count = hit_count + 1
WHERE prompt_fingerprint = $1
  AND (expires_at IS NULL OR expires_at > $2)
RETURNING response, created_at, expires_at, model_name, token_count, hit_count;`

	entry := model.AIResponseCacheEntry{PromptFingerprint: fingerprint}
	err := r.pool.QueryRow(ctx, q, fingerprint, time.Now()).Scan(
		&entry.Response, &entry.CreatedAt, &entry.ExpiresAt,
		&entry.ModelName, &entry.TokenCount, &entry.HitCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, dbErr("ai cache lookup failed", err)
	}
	return &entry, nil
}

func (r *aiCacheRepo) Store(ctx context.Context, entry *model.AIResponseCacheEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	const q = `
INSERT INTO ai_response_cache (prompt_fingerprint, response, created_at, expires_at, model_name, token_count, hit_count)
VALUES ($1, $2, $3, $4, $5, $6, 0)
ON CONFLICT (prompt_fingerprint) DO UPDATE SET
  response = EXCLUDED.response,
  expires_at = EXCLUDED.expires_at,
  model_name = EXCLUDED.model_name,
  token_count = EXCLUDED.token_count;`

	_, err := r.pool.Exec(ctx, q,
		entry.PromptFingerprint, entry.Response, entry.CreatedAt,
		entry.ExpiresAt, entry.ModelName, entry.TokenCount)
	if err != nil {
		return dbErr("ai cache store failed", err)
	}
	return nil
}

func (r *aiCacheRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `
DELETE FROM ai_response_cache
WHERE expires_at IS NOT NULL AND expires_at <= $1;`

	ct, err := r.pool.Exec(ctx, q, now)
	if err != nil {
		return 0, dbErr("ai cache sweep failed", err)
	}
	return ct.RowsAffected(), nil
}
