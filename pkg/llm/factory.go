package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// NewFromConfig creates the LLM client matching the configured provider.
// "ollama" and "openai" share the OpenAI-compatible client; "anthropic" uses
// the Messages API client.
func NewFromConfig(cfg *Config, logger *zap.Logger) (LLMClient, error) {
	switch cfg.Provider {
	case "ollama", "openai", "":
		return NewClient(cfg, logger)
	case "anthropic":
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
