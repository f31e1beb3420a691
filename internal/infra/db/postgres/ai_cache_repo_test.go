//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
)

func TestAICacheRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewAICacheRepo(testPool)
	ctx := context.Background()

	entry := func(fp string, exp *time.Time) *model.AIResponseCacheEntry {
		return &model.AIResponseCacheEntry{
			PromptFingerprint: fp,
			Response:          `{"days":[{"day":1,"morning":["x"],"afternoon":[],"evening":[]}]}`,
			ExpiresAt:         exp,
			ModelName:         "test-model",
			TokenCount:        120,
		}
	}

	fp := model.Fingerprint("plan a trip")

	t.Run("store and lookup increments hit count", func(t *testing.T) {
		cleanup(t)

		if err := repo.Store(ctx, entry(fp, nil)); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}

		got, err := repo.Lookup(ctx, fp)
		if err != nil {
			t.Fatalf("Lookup() failed: %v", err)
		}
		if got.HitCount != 1 {
			t.Errorf("Expected hit count 1, got %d", got.HitCount)
		}
		if got.ModelName != "test-model" || got.TokenCount != 120 {
			t.Errorf("Entry round trip mismatch: %+v", got)
		}

		got, err = repo.Lookup(ctx, fp)
		if err != nil {
			t.Fatalf("second Lookup() failed: %v", err)
		}
		if got.HitCount != 2 {
			t.Errorf("Expected hit count 2, got %d", got.HitCount)
		}
	})

	t.Run("miss returns not found", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.Lookup(ctx, model.Fingerprint("never stored")); err != domain.ErrNotFound {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("upsert keeps a single row and the hit count", func(t *testing.T) {
		cleanup(t)

		if err := repo.Store(ctx, entry(fp, nil)); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
		if _, err := repo.Lookup(ctx, fp); err != nil {
			t.Fatalf("Lookup() failed: %v", err)
		}

		updated := entry(fp, nil)
		updated.Response = `{"days":[{"day":1,"morning":["updated"],"afternoon":[],"evening":[]}]}`
		if err := repo.Store(ctx, updated); err != nil {
			t.Fatalf("upsert Store() failed: %v", err)
		}

		got, err := repo.Lookup(ctx, fp)
		if err != nil {
			t.Fatalf("Lookup() after upsert failed: %v", err)
		}
		if got.Response != updated.Response {
			t.Error("Upsert did not replace the response")
		}
		if got.HitCount != 2 {
			t.Errorf("Upsert reset the hit count: %d", got.HitCount)
		}

		var rows int
		if err := testPool.QueryRow(ctx, `SELECT count(*) FROM ai_response_cache`).Scan(&rows); err != nil {
			t.Fatalf("count query failed: %v", err)
		}
		if rows != 1 {
			t.Errorf("Expected a single row after upsert, got %d", rows)
		}
	})

	t.Run("expired entry reads as a miss", func(t *testing.T) {
		cleanup(t)

		past := time.Now().Add(-time.Minute)
		if err := repo.Store(ctx, entry(fp, &past)); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
		if _, err := repo.Lookup(ctx, fp); err != domain.ErrNotFound {
			t.Fatalf("Expected ErrNotFound for an expired entry, got %v", err)
		}
	})

	t.Run("sweep removes only expired rows", func(t *testing.T) {
		cleanup(t)

		past := time.Now().Add(-time.Minute)
		future := time.Now().Add(time.Hour)
		if err := repo.Store(ctx, entry(model.Fingerprint("a"), &past)); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
		if err := repo.Store(ctx, entry(model.Fingerprint("b"), &future)); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}
		if err := repo.Store(ctx, entry(model.Fingerprint("c"), nil)); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}

		n, err := repo.DeleteExpired(ctx, time.Now())
		if err != nil {
			t.Fatalf("DeleteExpired() failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 swept row, got %d", n)
		}

		if _, err := repo.Lookup(ctx, model.Fingerprint("b")); err != nil {
			t.Errorf("Unexpired entry was swept: %v", err)
		}
		if _, err := repo.Lookup(ctx, model.Fingerprint("c")); err != nil {
			t.Errorf("Null-expiry entry was swept: %v", err)
		}
	})

	t.Run("concurrent lookups never lose an increment", func(t *testing.T) {
		cleanup(t)

		if err := repo.Store(ctx, entry(fp, nil)); err != nil {
			t.Fatalf("Store() failed: %v", err)
		}

		const workers = 10
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := repo.Lookup(ctx, fp); err != nil {
					t.Errorf("Lookup() failed: %v", err)
				}
			}()
		}
		wg.Wait()

		got, err := repo.Lookup(ctx, fp)
		if err != nil {
			t.Fatalf("final Lookup() failed: %v", err)
		}
		if got.HitCount != workers+1 {
			t.Errorf("Expected hit count %d, got %d", workers+1, got.HitCount)
		}
	})
}
