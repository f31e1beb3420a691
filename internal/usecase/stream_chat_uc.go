package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/adapter"
	"travel-ai-planner/internal/infra/logging"
	"travel-ai-planner/internal/infra/metrics"
)

// Compile-time check
var _ StreamChatUseCase = (*streamChatUC)(nil)

// StreamChatInput carries one interactive chat invocation.
type StreamChatInput struct {
	CallerID    string
	Prompt      string
	PlanContext string // serialized plan JSON, compressed before prompting
	Destination string
	Days        int
	Travelers   int
	Budget      string
	History     string // serialized chat history JSON
}

type StreamChatUseCase interface {
	// Respond streams the assistant reply to the caller's notifier.
	// Every invocation terminates with exactly one of StreamEnd or
	// StreamError; Respond itself only errors on caller disconnect.
	Respond(ctx context.Context, in StreamChatInput) error
}

type streamChatUC struct {
	limiter  adapter.RateLimiter
	ai       adapter.AIServiceAdapter
	notifier adapter.StreamNotifier
	usage    adapter.UsageRecorder
	model    string
	log      *zerolog.Logger
}

func NewStreamChatUseCase(
	limiter adapter.RateLimiter,
	ai adapter.AIServiceAdapter,
	notifier adapter.StreamNotifier,
	usage adapter.UsageRecorder,
	modelName string,
	logger *zerolog.Logger,
) *streamChatUC {
	l := logger.With().Str("component", "StreamChatUC").Logger()
	return &streamChatUC{limiter: limiter, ai: ai, notifier: notifier, usage: usage, model: modelName, log: &l}
}

func (s *streamChatUC) Respond(ctx context.Context, in StreamChatInput) error {
	defer logging.TraceDuration(s.log, "StreamChatUC.Respond")()

	// Admission control: a refusal terminates before any AI work.
	verdict, err := s.limiter.CheckRateLimit(ctx, in.CallerID)
	if err != nil {
		s.log.Error().Err(err).Msg("rate limit check failed")
		return s.notifier.StreamError(ctx, in.CallerID, "service temporarily unavailable")
	}
	if !verdict.Allowed {
		return s.notifier.StreamError(ctx, in.CallerID, verdict.Message)
	}

	metrics.StreamSessionOpened()
	defer metrics.StreamSessionClosed()

	started := time.Now()
	messages := s.buildMessages(in)

	ch, err := s.ai.ChatStream(ctx, s.model, messages)
	if err != nil {
		s.log.Error().Err(err).Str("caller_id", in.CallerID).Msg("stream open failed")
		return s.notifier.StreamError(ctx, in.CallerID, err.Error())
	}

	if err := s.notifier.StreamStart(ctx, in.CallerID); err != nil {
		// Caller already gone; abandon the partial stream.
		return err
	}

	var full strings.Builder
	for chunk := range ch {
		if chunk.Err != nil {
			s.log.Error().Err(chunk.Err).Str("caller_id", in.CallerID).Msg("stream failed mid-flight")
			return s.notifier.StreamError(ctx, in.CallerID, chunk.Err.Error())
		}
		full.WriteString(chunk.Delta)
		if err := s.notifier.StreamChunk(ctx, in.CallerID, chunk.Delta); err != nil {
			return err
		}
	}
	if err := s.notifier.StreamEnd(ctx, in.CallerID, full.String()); err != nil {
		return err
	}

	// Fixed heuristic: one token per 4 characters.
	inputChars := 0
	for _, m := range messages {
		inputChars += len(m.Content)
	}
	s.usage.RecordUsage(ctx, in.CallerID, s.model, false, inputChars/4, full.Len()/4, time.Since(started))
	return nil
}

func (s *streamChatUC) buildMessages(in StreamChatInput) []adapter.Message {
	var sys strings.Builder
	sys.WriteString("You are a travel planning assistant.")
	if in.Destination != "" {
		fmt.Fprintf(&sys, " The trip: %s, %d day(s), %d traveler(s), %s budget.",
			in.Destination, in.Days, in.Travelers, in.Budget)
	}
	if plan := CompressPlan(in.PlanContext); plan != "" {
		sys.WriteString(" Current itinerary: ")
		sys.WriteString(plan)
	}

	history := CompressHistory(in.History)
	messages := make([]adapter.Message, 0, len(history)+2)
	messages = append(messages, adapter.Message{Role: "system", Content: sys.String()})
	for _, m := range history {
		messages = append(messages, adapter.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, adapter.Message{Role: model.RoleUser, Content: in.Prompt})
	return messages
}
