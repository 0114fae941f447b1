package llm

import (
	"context"
	"time"

	"github.com/manya9155/Hallucination-Detector/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name (e.g., "openai", "anthropic", "ollama")
	Name() string

	// Complete sends one prompt and returns the raw completion text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for a completion
type CompletionRequest struct {
	System      string  // Optional system instruction
	Prompt      string  // User prompt
	Model       string  // Optional: override config model
	MaxTokens   int     // Optional: override config max tokens
	Temperature float32 // Zero keeps the configured temperature
}

// CompletionResponse contains the completion text
type CompletionResponse struct {
	Text       string // Trimmed completion text
	Model      string // Model that answered
	TokensUsed int    // Total tokens (prompt + completion), estimated when unknown
}

// Config holds LLM provider configuration
type Config struct {
	Provider    string        // "openai", "anthropic", "ollama"
	Model       string        // Model name
	APIKey      string        // API key (not needed for Ollama)
	BaseURL     string        // Optional: custom endpoint
	Timeout     time.Duration // Request timeout
	MaxTokens   int           // Default max tokens
	Temperature float32       // Default sampling temperature
	HTTPProxy   string        // Optional: proxy for local providers
	HTTPSProxy  string
}

// DefaultConfig returns default LLM configuration
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Timeout:   30 * time.Second,
		MaxTokens: 400,
	}
}

// ConfigFromModel maps the application config onto a provider config.
// Proxy settings come from the shared HTTP section.
func ConfigFromModel(cfg model.Config) Config {
	c := Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Timeout:     cfg.LLM.Timeout,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		HTTPProxy:   cfg.HTTP.HTTPProxy,
		HTTPSProxy:  cfg.HTTP.HTTPSProxy,
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

func (c Config) resolve(req CompletionRequest, fallbackModel string) (modelName string, maxTokens int, temperature float32) {
	modelName = req.Model
	if modelName == "" {
		modelName = c.Model
	}
	if modelName == "" {
		modelName = fallbackModel
	}

	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 400
	}

	temperature = req.Temperature
	if temperature == 0 {
		temperature = c.Temperature
	}
	return modelName, maxTokens, temperature
}
