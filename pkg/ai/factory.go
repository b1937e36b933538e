package ai

import (
	"fmt"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "openai", "ollama" or "auto"

	// OpenAI config
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// NewChatStreamer creates a ChatStreamer based on the config
// This is the factory function - switch AI provider by changing config.Provider
func NewChatStreamer(cfg Config) (ChatStreamer, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIStreamer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), nil

	case ProviderOllama:
		return NewOllamaStreamer(cfg.OllamaBaseURL, cfg.OllamaModel), nil

	case ProviderAuto, "":
		ollama := NewOllamaStreamer(cfg.OllamaBaseURL, cfg.OllamaModel)
		if cfg.OpenAIAPIKey == "" {
			return ollama, nil
		}
		return NewFallbackStreamer(NewOpenAIStreamer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), ollama), nil
	}
	return nil, fmt.Errorf("unknown AI provider: %s", cfg.Provider)
}
