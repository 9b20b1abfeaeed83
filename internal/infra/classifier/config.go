// Package classifier provides language-model completion clients used to
// classify papers. It includes adapters for the OpenAI and Anthropic APIs.
// Calls are single-shot: failures are returned, never retried.
package classifier

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Supported provider names.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
)

// Client sends a prompt to a completion endpoint and returns the reply text.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Provider() string
}

// Config holds configuration parameters for a classifier client.
type Config struct {
	// Provider selects the backend: "openai" or "claude".
	Provider string

	// APIKey is the bearer credential for the provider.
	APIKey string

	// Model is the model identifier. Empty selects the provider default.
	Model string

	// BaseURL overrides the provider endpoint (proxies, tests).
	BaseURL string

	// MaxTokens is the maximum number of tokens for the reply.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float32

	// Timeout is the maximum duration for a single completion call.
	Timeout time.Duration
}

// DefaultModel returns the model used when Config.Model is empty.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderClaude:
		return "claude-sonnet-4-5-20250929"
	default:
		return "gpt-3.5-turbo"
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Provider != ProviderOpenAI && c.Provider != ProviderClaude {
		return fmt.Errorf("unknown provider %q (expected openai or claude)", c.Provider)
	}

	if c.APIKey == "" {
		return fmt.Errorf("api key cannot be empty for provider %s", c.Provider)
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	return nil
}

// New creates the client selected by config.Provider.
func New(config Config, httpClient *http.Client) (Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid classifier configuration: %w", err)
	}
	if config.Model == "" {
		config.Model = DefaultModel(config.Provider)
	}

	switch config.Provider {
	case ProviderClaude:
		return NewClaude(config, httpClient), nil
	default:
		return NewOpenAI(config, httpClient), nil
	}
}
