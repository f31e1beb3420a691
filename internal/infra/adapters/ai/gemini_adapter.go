package ai

import (
	"context"
	"errors"
	"iter"
	"strings"

	"google.golang.org/genai"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
	maxOut       int
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string, maxOut int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, domain.NewError(domain.CodeAPIConfiguration, "gemini api key empty", nil).
			WithContext("config_key", "ai.gemini_key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	if defaultModel == "" {
		defaultModel = "gemini-2.0-flash"
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel, maxOut: maxOut}, nil
}

func (g *GeminiAdapter) Name() string { return "gemini" }

func (g *GeminiAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	contents := toGenAIHistory(messages)
	resp, err := g.client.Models.CountTokens(ctx, modelOrDefault(model, g.defaultModel), contents, nil)
	if err != nil {
		return 0, g.classify(err)
	}
	return int(resp.TotalTokens), nil
}

func (g *GeminiAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := g.ChatWithUsage(ctx, model, messages)
	return reply, err
}

func (g *GeminiAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	if len(messages) == 0 {
		return "", adapter.Usage{}, domain.ErrInvalidArgument
	}
	resp, err := g.client.Models.GenerateContent(ctx,
		modelOrDefault(model, g.defaultModel),
		toGenAIHistory(messages),
		g.genConfig(),
	)
	if err != nil {
		return "", adapter.Usage{}, g.classify(err)
	}

	text := candidateText(resp)
	if text == "" {
		return "", adapter.Usage{}, domain.NewError(domain.CodeInvalidAIResponse, "gemini returned no text", nil).
			WithContext("candidates", len(resp.Candidates))
	}
	u := adapter.Usage{}
	if resp.UsageMetadata != nil {
		u.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		u.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		u.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return text, u, nil
}

// ChatStream pulls the first response up front so connection failures are
// returned synchronously; later chunks arrive on the channel.
func (g *GeminiAdapter) ChatStream(ctx context.Context, model string, messages []adapter.Message) (<-chan adapter.StreamChunk, error) {
	seq := g.client.Models.GenerateContentStream(ctx,
		modelOrDefault(model, g.defaultModel),
		toGenAIHistory(messages),
		g.genConfig(),
	)
	next, stop := iter.Pull2(seq)

	resp, err, ok := next()
	if !ok {
		stop()
		empty := make(chan adapter.StreamChunk)
		close(empty)
		return empty, nil
	}
	if err != nil {
		stop()
		return nil, g.classify(err)
	}

	out := make(chan adapter.StreamChunk, 1)
	if t := candidateText(resp); t != "" {
		out <- adapter.StreamChunk{Delta: t}
	}
	go func() {
		defer close(out)
		defer stop()
		for {
			resp, err, ok := next()
			if !ok {
				return
			}
			if err != nil {
				select {
				case out <- adapter.StreamChunk{Err: g.classify(err)}:
				case <-ctx.Done():
				}
				return
			}
			t := candidateText(resp)
			if t == "" {
				continue
			}
			select {
			case out <- adapter.StreamChunk{Delta: t}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// --- internal ---

func (g *GeminiAdapter) genConfig() *genai.GenerateContentConfig {
	if g.maxOut <= 0 {
		return nil
	}
	return &genai.GenerateContentConfig{MaxOutputTokens: int32(g.maxOut)}
}

func (g *GeminiAdapter) classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var aerr genai.APIError
	if errors.As(err, &aerr) {
		switch {
		case aerr.Code == 401 || aerr.Code == 403:
			return domain.NewError(domain.CodeAPIConfiguration, "gemini rejected credentials", err).
				WithContext("config_key", "ai.gemini_key")
		case aerr.Code == 429:
			return domain.NewError(domain.CodeRateLimitExceeded, "gemini rate limit exceeded", err).
				WithContext("status", aerr.Status)
		}
	}
	return domain.NewError(domain.CodeAIServiceUnavailable, "gemini request failed", err).
		WithContext("provider", g.Name())
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func toGenAIHistory(msgs []adapter.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		switch strings.ToLower(m.Role) {
		case "assistant", "model":
			role = genai.RoleModel
		case "system":
			// Gemini has no separate "system" role in history; treat as a
			// user instruction.
			role = genai.RoleUser
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}
