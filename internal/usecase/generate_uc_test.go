package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/adapter"
)

const validReply = `{"days":[{"day":1,"morning":["Louvre"],"afternoon":["Seine walk"],"evening":["dinner cruise"]}]}`

type memCacheRepo struct {
	entries   map[string]*model.AIResponseCacheEntry
	lookupErr error
	storeErr  error
	stored    int
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{entries: map[string]*model.AIResponseCacheEntry{}}
}

func (m *memCacheRepo) Lookup(ctx context.Context, fingerprint string) (*model.AIResponseCacheEntry, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	e, ok := m.entries[fingerprint]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.HitCount++
	return e, nil
}

func (m *memCacheRepo) Store(ctx context.Context, entry *model.AIResponseCacheEntry) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	m.stored++
	m.entries[entry.PromptFingerprint] = entry
	return nil
}

func (m *memCacheRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for fp, e := range m.entries {
		if e.ExpiresAt != nil && !e.ExpiresAt.After(now) {
			delete(m.entries, fp)
			n++
		}
	}
	return n, nil
}

type fakeGenAI struct {
	reply      string
	err        error
	calls      int
	noUsage    bool
	counted    int
	countErr   error
	countCalls int
}

func (f *fakeGenAI) Name() string { return "fake" }

func (f *fakeGenAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	f.countCalls++
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.counted, nil
}

func (f *fakeGenAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	s, _, err := f.ChatWithUsage(ctx, model, messages)
	return s, err
}

func (f *fakeGenAI) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	f.calls++
	if f.err != nil {
		return "", adapter.Usage{}, f.err
	}
	if f.noUsage {
		return f.reply, adapter.Usage{}, nil
	}
	return f.reply, adapter.Usage{PromptTokens: 40, CompletionTokens: 80, TotalTokens: 120}, nil
}

func (f *fakeGenAI) ChatStream(ctx context.Context, model string, messages []adapter.Message) (<-chan adapter.StreamChunk, error) {
	return nil, errors.New("not streamed in tests")
}

func newGenUC(cache *memCacheRepo, ai *fakeGenAI, ttl time.Duration) PlanGenerator {
	log := zerolog.Nop()
	return NewPlanGenerator(cache, ai, "test-model", ttl, &log)
}

func req() model.TravelPlanRequest {
	return model.TravelPlanRequest{
		Destination: "Paris",
		StartDate:   "2026-09-01",
		EndDate:     "2026-09-03",
		Travelers:   2,
		Budget:      "mid",
	}
}

func TestGenerateMissStoresEntry(t *testing.T) {
	cache := newMemCacheRepo()
	ai := &fakeGenAI{reply: validReply}
	uc := newGenUC(cache, ai, 6*time.Hour)

	it, err := uc.Generate(context.Background(), req())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(it.Days) != 1 || it.Days[0].Morning[0] != "Louvre" {
		t.Fatalf("itinerary: %+v", it)
	}
	if it.ModelName != "test-model" {
		t.Fatalf("model name %q", it.ModelName)
	}

	fp := model.Fingerprint(BuildItineraryPrompt(req()))
	entry, ok := cache.entries[fp]
	if !ok {
		t.Fatal("reply was not cached under the prompt fingerprint")
	}
	if entry.TokenCount != 120 {
		t.Fatalf("token count %d", entry.TokenCount)
	}
	if ai.countCalls != 0 {
		t.Fatal("token counting invoked although the provider reported usage")
	}
	if entry.ExpiresAt == nil {
		t.Fatal("expiry not set despite a positive TTL")
	}
}

func TestGenerateCountsTokensWhenUsageMissing(t *testing.T) {
	cache := newMemCacheRepo()
	ai := &fakeGenAI{reply: validReply, noUsage: true, counted: 77}
	uc := newGenUC(cache, ai, time.Hour)

	if _, err := uc.Generate(context.Background(), req()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ai.countCalls != 1 {
		t.Fatalf("count calls %d, want 1", ai.countCalls)
	}
	fp := model.Fingerprint(BuildItineraryPrompt(req()))
	if got := cache.entries[fp].TokenCount; got != 77 {
		t.Fatalf("token count %d, want 77", got)
	}
}

func TestGenerateCountFailureLeavesZero(t *testing.T) {
	cache := newMemCacheRepo()
	ai := &fakeGenAI{reply: validReply, noUsage: true, countErr: errors.New("tokenizer unavailable")}
	uc := newGenUC(cache, ai, time.Hour)

	if _, err := uc.Generate(context.Background(), req()); err != nil {
		t.Fatalf("counting trouble must not fail generation: %v", err)
	}
	fp := model.Fingerprint(BuildItineraryPrompt(req()))
	if got := cache.entries[fp].TokenCount; got != 0 {
		t.Fatalf("token count %d, want 0", got)
	}
}

func TestGenerateWrappedNotFoundIsMiss(t *testing.T) {
	cache := newMemCacheRepo()
	cache.lookupErr = fmt.Errorf("ai cache lookup: %w", domain.ErrNotFound)
	ai := &fakeGenAI{reply: validReply}
	uc := newGenUC(cache, ai, time.Hour)

	if _, err := uc.Generate(context.Background(), req()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ai.calls != 1 {
		t.Fatalf("provider calls %d, want 1", ai.calls)
	}
}

func TestGenerateZeroTTLNeverExpires(t *testing.T) {
	cache := newMemCacheRepo()
	uc := newGenUC(cache, &fakeGenAI{reply: validReply}, 0)

	if _, err := uc.Generate(context.Background(), req()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	fp := model.Fingerprint(BuildItineraryPrompt(req()))
	if cache.entries[fp].ExpiresAt != nil {
		t.Fatal("zero TTL must leave expiry unset")
	}
}

func TestGenerateHitSkipsProvider(t *testing.T) {
	cache := newMemCacheRepo()
	fp := model.Fingerprint(BuildItineraryPrompt(req()))
	cache.entries[fp] = &model.AIResponseCacheEntry{
		PromptFingerprint: fp,
		Response:          validReply,
		ModelName:         "cached-model",
	}
	ai := &fakeGenAI{reply: "should not be used"}
	uc := newGenUC(cache, ai, time.Hour)

	it, err := uc.Generate(context.Background(), req())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ai.calls != 0 {
		t.Fatal("provider called on cache hit")
	}
	if it.ModelName != "cached-model" {
		t.Fatalf("hit must report the cached model, got %q", it.ModelName)
	}
	if cache.entries[fp].HitCount != 1 {
		t.Fatalf("hit count %d", cache.entries[fp].HitCount)
	}
}

func TestGenerateUnparseableCachedRowRegenerates(t *testing.T) {
	cache := newMemCacheRepo()
	fp := model.Fingerprint(BuildItineraryPrompt(req()))
	cache.entries[fp] = &model.AIResponseCacheEntry{PromptFingerprint: fp, Response: "corrupted"}
	ai := &fakeGenAI{reply: validReply}
	uc := newGenUC(cache, ai, time.Hour)

	if _, err := uc.Generate(context.Background(), req()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if ai.calls != 1 {
		t.Fatalf("provider calls %d, want 1", ai.calls)
	}
}

func TestGenerateCacheErrorsDoNotBlock(t *testing.T) {
	cache := newMemCacheRepo()
	cache.lookupErr = errors.New("postgres down")
	cache.storeErr = errors.New("postgres down")
	uc := newGenUC(cache, &fakeGenAI{reply: validReply}, time.Hour)

	it, err := uc.Generate(context.Background(), req())
	if err != nil {
		t.Fatalf("cache trouble must not fail generation: %v", err)
	}
	if len(it.Days) != 1 {
		t.Fatalf("itinerary: %+v", it)
	}
}

func TestGenerateInvalidReply(t *testing.T) {
	cache := newMemCacheRepo()
	uc := newGenUC(cache, &fakeGenAI{reply: "sorry, I can't help with that"}, time.Hour)

	_, err := uc.Generate(context.Background(), req())
	if domain.CodeOf(err) != domain.CodeInvalidAIResponse {
		t.Fatalf("want INVALID_AI_RESPONSE, got %v", err)
	}
	if cache.stored != 0 {
		t.Fatal("invalid reply must not be cached")
	}
}

func TestGenerateProviderFailurePropagates(t *testing.T) {
	provErr := domain.NewAllProvidersFailed([]domain.ProviderAttempt{
		{Provider: "openai", Err: domain.NewError(domain.CodeAIServiceUnavailable, "timeout", nil)},
	})
	uc := newGenUC(newMemCacheRepo(), &fakeGenAI{err: provErr}, time.Hour)

	_, err := uc.Generate(context.Background(), req())
	if domain.CodeOf(err) != domain.CodeAllProvidersFailed {
		t.Fatalf("want ALL_PROVIDERS_FAILED, got %v", err)
	}
}

func TestParseItineraryToleratesCodeFences(t *testing.T) {
	fenced := "```json\n" + validReply + "\n```"
	it, err := parseItinerary(fenced, "Paris")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(it.Days) != 1 {
		t.Fatalf("days: %+v", it.Days)
	}
}

func TestParseItineraryEmptyDays(t *testing.T) {
	if _, err := parseItinerary(`{"days":[]}`, "Paris"); domain.CodeOf(err) != domain.CodeInvalidAIResponse {
		t.Fatalf("got %v", err)
	}
}
