package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config selects and configures the AI provider.
type Config struct {
	Provider         string
	Timeout          time.Duration
	OpenAIAPIKey     string
	OpenAIModel      string
	GeminiAPIKey     string
	GeminiModel      string
	OpenRouterAPIKey string
	OpenRouterModel  string
	Logger           zerolog.Logger
}

// NewFromConfig builds the client for cfg.Provider. An empty provider or "none" disables AI features and
// returns nil without an error.
func NewFromConfig(ctx context.Context, cfg Config) (*Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	var (
		completer Completer
		err       error
	)

	switch provider {
	case "", "none":
		return nil, nil
	case "openai":
		completer, err = NewOpenAICompleter(OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel})
	case "gemini":
		completer, err = NewGeminiCompleter(ctx, GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
	case "openrouter":
		completer, err = NewOpenRouterCompleter(OpenRouterConfig{APIKey: cfg.OpenRouterAPIKey, Model: cfg.OpenRouterModel})
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewClient(provider, completer, cfg.Timeout, cfg.Logger), nil
}
