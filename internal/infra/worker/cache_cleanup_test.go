package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
)

type sweepRecorder struct {
	mu      sync.Mutex
	calls   int
	deleted int64
	err     error
}

func (s *sweepRecorder) Lookup(ctx context.Context, fingerprint string) (*model.AIResponseCacheEntry, error) {
	return nil, domain.ErrNotFound
}

func (s *sweepRecorder) Store(ctx context.Context, entry *model.AIResponseCacheEntry) error {
	return nil
}

func (s *sweepRecorder) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.deleted, nil
}

func (s *sweepRecorder) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestCleanupSweepsAfterStartDelay(t *testing.T) {
	repo := &sweepRecorder{deleted: 3}
	log := zerolog.Nop()
	w := NewCacheCleanupWorker(10*time.Millisecond, 5*time.Millisecond, repo, &log)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("run: %v", err)
	}

	if got := repo.count(); got < 2 {
		t.Fatalf("sweeps %d, want the initial sweep plus at least one tick", got)
	}
}

func TestCleanupStopsBeforeFirstSweep(t *testing.T) {
	repo := &sweepRecorder{}
	log := zerolog.Nop()
	w := NewCacheCleanupWorker(time.Hour, time.Hour, repo, &log)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("run: %v", err)
	}
	if repo.count() != 0 {
		t.Fatal("sweep ran before the start delay elapsed")
	}
}

func TestCleanupSurvivesSweepErrors(t *testing.T) {
	repo := &sweepRecorder{err: errors.New("postgres down")}
	log := zerolog.Nop()
	w := NewCacheCleanupWorker(10*time.Millisecond, 0, repo, &log)

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Millisecond)
	defer cancel()
	_ = w.Run(ctx)

	if got := repo.count(); got < 2 {
		t.Fatalf("worker stopped retrying after an error: %d sweeps", got)
	}
}
