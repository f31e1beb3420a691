package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/adapter"
	"travel-ai-planner/internal/domain/ports/repository"
	"travel-ai-planner/internal/infra/metrics"
)

// Compile-time check
var _ PlanGenerator = (*planGeneratorUC)(nil)

// PlanGenerator produces a structured itinerary for a request, consulting
// the content-addressed response cache before calling any provider.
type PlanGenerator interface {
	Generate(ctx context.Context, req model.TravelPlanRequest) (*model.TravelItinerary, error)
}

type planGeneratorUC struct {
	cache    repository.AIResponseCacheRepository
	ai       adapter.AIServiceAdapter
	model    string
	cacheTTL time.Duration // 0 = entries never expire
	log      *zerolog.Logger
}

func NewPlanGenerator(
	cache repository.AIResponseCacheRepository,
	ai adapter.AIServiceAdapter,
	modelName string,
	cacheTTL time.Duration,
	logger *zerolog.Logger,
) *planGeneratorUC {
	l := logger.With().Str("component", "PlanGenerator").Logger()
	return &planGeneratorUC{cache: cache, ai: ai, model: modelName, cacheTTL: cacheTTL, log: &l}
}

func (g *planGeneratorUC) Generate(ctx context.Context, req model.TravelPlanRequest) (*model.TravelItinerary, error) {
	prompt := BuildItineraryPrompt(req)
	fp := model.Fingerprint(prompt)

	if entry, err := g.cache.Lookup(ctx, fp); err == nil {
		metrics.IncCacheRequest("ai_response", "hit")
		it, perr := parseItinerary(entry.Response, req.Destination)
		if perr == nil {
			it.ModelName = entry.ModelName
			return it, nil
		}
		// A cached row that no longer parses is useless; regenerate.
		g.log.Warn().Err(perr).Str("fingerprint", fp).Msg("cached response unparseable, regenerating")
	} else if !errors.Is(err, domain.ErrNotFound) {
		// Cache trouble must not block generation.
		g.log.Error().Err(err).Msg("ai cache lookup failed")
	} else {
		metrics.IncCacheRequest("ai_response", "miss")
	}

	messages := []adapter.Message{{Role: "user", Content: prompt}}
	reply, usage, err := g.ai.ChatWithUsage(ctx, g.model, messages)
	if err != nil {
		return nil, err
	}

	it, err := parseItinerary(reply, req.Destination)
	if err != nil {
		return nil, err
	}
	it.ModelName = g.model

	// Some providers report no usage; fall back to counting the prompt
	// so cached entries always carry a token figure.
	tokens := usage.TotalTokens
	if tokens == 0 {
		if n, cerr := g.ai.CountTokens(ctx, g.model, messages); cerr == nil {
			tokens = n
		} else {
			g.log.Debug().Err(cerr).Msg("token count fallback failed")
		}
	}

	entry := &model.AIResponseCacheEntry{
		PromptFingerprint: fp,
		Response:          reply,
		ModelName:         g.model,
		TokenCount:        tokens,
	}
	if g.cacheTTL > 0 {
		exp := time.Now().Add(g.cacheTTL)
		entry.ExpiresAt = &exp
	}
	if err := g.cache.Store(ctx, entry); err != nil {
		g.log.Error().Err(err).Str("fingerprint", fp).Msg("ai cache store failed")
	}
	return it, nil
}

// BuildItineraryPrompt renders the deterministic prompt whose digest keys
// the response cache.
func BuildItineraryPrompt(req model.TravelPlanRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan a travel itinerary for %s from %s to %s for %d traveler(s) with a %s budget.\n",
		req.Destination, req.StartDate, req.EndDate, req.Travelers, req.Budget)
	if len(req.Preferences) > 0 {
		fmt.Fprintf(&b, "Preferences: %s.\n", strings.Join(req.Preferences, ", "))
	}
	b.WriteString(`Respond with JSON only, in this exact shape:
{"days":[{"day":1,"morning":["..."],"afternoon":["..."],"evening":["..."]}]}`)
	return b.String()
}

// parseItinerary extracts the structured days from a model reply. Code
// fences around the JSON are tolerated; anything else is
// INVALID_AI_RESPONSE with the raw payload retained for diagnostics.
func parseItinerary(reply, destination string) (*model.TravelItinerary, error) {
	text := strings.TrimSpace(reply)
	if i := strings.Index(text, "{"); i > 0 {
		text = text[i:]
	}
	if i := strings.LastIndex(text, "}"); i >= 0 && i < len(text)-1 {
		text = text[:i+1]
	}

	var payload struct {
		Days []model.ItineraryDay `json:"days"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil || len(payload.Days) == 0 {
		return nil, domain.NewError(domain.CodeInvalidAIResponse, "itinerary reply is not valid JSON", err).
			WithContext("raw", truncate(reply, 2000))
	}
	return &model.TravelItinerary{
		Destination:   destination,
		Days:          payload.Days,
		GeneratedText: reply,
	}, nil
}
