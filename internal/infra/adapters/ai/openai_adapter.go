package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.AIServiceAdapter on the official SDK.
type OpenAIAdapter struct {
	client openai.Client
	model  string
}

func NewOpenAIAdapter(apiKey, baseURL, model string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, domain.NewError(domain.CodeAPIConfiguration, "openai api key empty", nil).
			WithContext("config_key", "ai.openai_key")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIAdapter{client: openai.NewClient(opts...), model: model}, nil
}

func (o *OpenAIAdapter) Name() string { return "openai" }

func (o *OpenAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	enc, err := tiktoken.EncodingForModel(modelOrDefault(model, o.model))
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, err
		}
	}
	total := 0
	for _, m := range messages {
		// small fixed overhead per message for role/framing tokens
		total += len(enc.Encode(m.Content, nil, nil)) + 4
	}
	return total, nil
}

func (o *OpenAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := o.ChatWithUsage(ctx, model, messages)
	return reply, err
}

func (o *OpenAIAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	completion, err := o.client.Chat.Completions.New(ctx, o.params(model, messages))
	if err != nil {
		return "", adapter.Usage{}, o.classify(err)
	}

	u := adapter.Usage{
		PromptTokens:     int(completion.Usage.PromptTokens),
		CompletionTokens: int(completion.Usage.CompletionTokens),
		TotalTokens:      int(completion.Usage.TotalTokens),
	}
	for _, c := range completion.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, u, nil
		}
	}
	return "", u, domain.NewError(domain.CodeInvalidAIResponse, "no choice content", nil).
		WithContext("raw", completion.RawJSON())
}

// ChatStream opens the SSE stream and primes the first chunk so that
// connection-level failures surface as an error return (and can fail over)
// instead of a dead channel.
func (o *OpenAIAdapter) ChatStream(ctx context.Context, model string, messages []adapter.Message) (<-chan adapter.StreamChunk, error) {
	stream := o.client.Chat.Completions.NewStreaming(ctx, o.params(model, messages))

	var first string
	havePrimed := false
	for stream.Next() {
		if delta := chunkDelta(stream.Current()); delta != "" {
			first = delta
			havePrimed = true
			break
		}
	}
	if !havePrimed {
		err := stream.Err()
		_ = stream.Close()
		if err != nil {
			return nil, o.classify(err)
		}
		// stream legitimately ended with no content
		empty := make(chan adapter.StreamChunk)
		close(empty)
		return empty, nil
	}

	out := make(chan adapter.StreamChunk, 1)
	out <- adapter.StreamChunk{Delta: first}
	go func() {
		defer close(out)
		defer stream.Close()
		for stream.Next() {
			delta := chunkDelta(stream.Current())
			if delta == "" {
				continue
			}
			select {
			case out <- adapter.StreamChunk{Delta: delta}:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil {
			select {
			case out <- adapter.StreamChunk{Err: o.classify(err)}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

func (o *OpenAIAdapter) params(model string, messages []adapter.Message) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch strings.ToLower(m.Role) {
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		case "system":
			msgs = append(msgs, openai.SystemMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	return openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelOrDefault(model, o.model)),
		Messages: msgs,
	}
}

func chunkDelta(chunk openai.ChatCompletionChunk) string {
	if len(chunk.Choices) == 0 {
		return ""
	}
	return chunk.Choices[0].Delta.Content
}

func (o *OpenAIAdapter) classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 401 || apierr.StatusCode == 403:
			return domain.NewError(domain.CodeAPIConfiguration, "openai rejected credentials", err).
				WithContext("config_key", "ai.openai_key")
		case apierr.StatusCode == 429:
			e := domain.NewError(domain.CodeRateLimitExceeded, "openai rate limit exceeded", err)
			if apierr.Response != nil {
				if ra := apierr.Response.Header.Get("Retry-After"); ra != "" {
					e.WithContext("retry_after", ra)
				}
				if rem := apierr.Response.Header.Get("X-Ratelimit-Remaining-Requests"); rem != "" {
					e.WithContext("remaining", rem)
				}
			}
			return e
		default:
			return domain.NewError(domain.CodeAIServiceUnavailable, "openai request failed", err).
				WithContext("provider", o.Name()).
				WithContext("status", apierr.StatusCode)
		}
	}
	return domain.NewError(domain.CodeAIServiceUnavailable, "openai unreachable", err).
		WithContext("provider", o.Name())
}
