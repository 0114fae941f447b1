package llm

import (
	"fmt"
	"os"
	"strings"
)

// NewProvider creates a provider based on the configuration
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "anthropic", "claude":
		return NewAnthropicProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	case "":
		return nil, fmt.Errorf("LLM provider not specified")
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ApplyEnv fills missing credentials and endpoints from the usual
// environment variables for the selected provider.
func ApplyEnv(config Config) Config {
	switch strings.ToLower(config.Provider) {
	case "openai":
		if config.APIKey == "" {
			config.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if config.BaseURL == "" {
			config.BaseURL = os.Getenv("OPENAI_BASE_URL")
		}
	case "anthropic", "claude":
		if config.APIKey == "" {
			config.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if config.Model == "" || strings.HasPrefix(config.Model, "gpt-") {
			config.Model = "claude-3-5-haiku-20241022"
		}
	case "ollama":
		if config.BaseURL == "" {
			config.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
		if config.Model == "" || strings.HasPrefix(config.Model, "gpt-") {
			config.Model = os.Getenv("OLLAMA_MODEL")
			if config.Model == "" {
				config.Model = "llama3.1:8b"
			}
		}
	}
	return config
}
