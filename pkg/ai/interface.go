package ai

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// ChatRequest is a provider-neutral completion request.
// Providers with a fixed local model ignore Model.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature *float64
}

// Stream yields completion text fragments in order. It is not restartable.
// Next returns false when the stream is exhausted or failed; Err tells which.
type Stream interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}

// ChatStreamer is the interface for streamed chat completions.
// Implement this interface to add new AI providers (OpenAI, Ollama, etc.)
type ChatStreamer interface {
	// StreamChat returns an error only when the stream cannot be opened.
	StreamChat(ctx context.Context, req ChatRequest) (Stream, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)

// Float is a helper for ChatRequest.Temperature.
func Float(v float64) *float64 {
	return &v
}
