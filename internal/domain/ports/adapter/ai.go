package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Usage for a single chat call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// StreamChunk is one element of a streamed response. Err, when set, is the
// final element before the channel closes.
type StreamChunk struct {
	Delta string
	Err   error
}

// AIServiceAdapter is the port for LLM generation.
type AIServiceAdapter interface {
	// Name identifies the provider for failover bookkeeping.
	Name() string

	// CountTokens must return prompt tokens for the provided messages
	// (provider-specific counting; best-effort when exact isn't available).
	CountTokens(ctx context.Context, model string, messages []Message) (int, error)

	// Chat returns only the assistant text.
	Chat(ctx context.Context, model string, messages []Message) (string, error)

	// ChatWithUsage returns assistant text + usage as reported by the provider.
	ChatWithUsage(ctx context.Context, model string, messages []Message) (string, Usage, error)

	// ChatStream opens a finite, non-restartable sequence of text chunks.
	// The channel is closed after the last chunk; a trailing element with
	// Err set reports mid-stream failure.
	ChatStream(ctx context.Context, model string, messages []Message) (<-chan StreamChunk, error)
}
