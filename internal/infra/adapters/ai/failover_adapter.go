package ai

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/ports/adapter"
	"travel-ai-planner/internal/infra/metrics"
)

var _ adapter.AIServiceAdapter = (*FailoverAIAdapter)(nil)

// FailoverAIAdapter tries each configured provider in order and aggregates
// the per-provider failures. ALL_PROVIDERS_FAILED is the only AI failure
// kind it lets escape; a cancelled context aborts immediately.
type FailoverAIAdapter struct {
	providers []adapter.AIServiceAdapter
	log       *zerolog.Logger
}

func NewFailoverAIAdapter(providers []adapter.AIServiceAdapter, logger *zerolog.Logger) (*FailoverAIAdapter, error) {
	if len(providers) == 0 {
		return nil, domain.NewError(domain.CodeAPIConfiguration, "no AI providers configured", nil).
			WithContext("config_key", "ai.provider_order")
	}
	l := logger.With().Str("component", "FailoverAIAdapter").Logger()
	return &FailoverAIAdapter{providers: providers, log: &l}, nil
}

func (f *FailoverAIAdapter) Name() string {
	if len(f.providers) == 1 {
		return f.providers[0].Name()
	}
	return "failover"
}

func (f *FailoverAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	var attempts []domain.ProviderAttempt
	for _, p := range f.providers {
		n, err := p.CountTokens(ctx, model, messages)
		if err == nil {
			return n, nil
		}
		if errors.Is(err, context.Canceled) {
			return 0, err
		}
		attempts = f.noteFailure(attempts, p, err)
	}
	return 0, domain.NewAllProvidersFailed(attempts)
}

func (f *FailoverAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := f.ChatWithUsage(ctx, model, messages)
	return reply, err
}

func (f *FailoverAIAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	var attempts []domain.ProviderAttempt
	for _, p := range f.providers {
		reply, usage, err := p.ChatWithUsage(ctx, model, messages)
		if err == nil {
			return reply, usage, nil
		}
		if errors.Is(err, context.Canceled) {
			return "", adapter.Usage{}, err
		}
		attempts = f.noteFailure(attempts, p, err)
	}
	return "", adapter.Usage{}, domain.NewAllProvidersFailed(attempts)
}

// ChatStream fails over only while opening the stream. Once chunks have
// been handed to the caller the stream is not restartable; mid-stream
// errors flow through the channel.
func (f *FailoverAIAdapter) ChatStream(ctx context.Context, model string, messages []adapter.Message) (<-chan adapter.StreamChunk, error) {
	var attempts []domain.ProviderAttempt
	for _, p := range f.providers {
		ch, err := p.ChatStream(ctx, model, messages)
		if err == nil {
			return ch, nil
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		attempts = f.noteFailure(attempts, p, err)
	}
	return nil, domain.NewAllProvidersFailed(attempts)
}

func (f *FailoverAIAdapter) noteFailure(attempts []domain.ProviderAttempt, p adapter.AIServiceAdapter, err error) []domain.ProviderAttempt {
	metrics.IncProviderFailover(p.Name(), string(domain.CodeOf(err)))
	f.log.Warn().Err(err).Str("provider", p.Name()).Msg("provider attempt failed")
	return append(attempts, domain.ProviderAttempt{Provider: p.Name(), Err: err})
}
