package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterConfig defines configuration options for the OpenRouter completer.
type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenRouterCompleter implements Completer against the OpenRouter chat completion endpoint.
type OpenRouterCompleter struct {
	client *resty.Client
	apiKey string
	model  string
}

// NewOpenRouterCompleter builds a resty backed completer.
func NewOpenRouterCompleter(cfg OpenRouterConfig) (*OpenRouterCompleter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "openai/gpt-4o-mini"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterBaseURL
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json")

	return &OpenRouterCompleter{client: client, apiKey: cfg.APIKey, model: cfg.Model}, nil
}

// Model returns the configured model name.
func (o *OpenRouterCompleter) Model() string {
	return o.model
}

// Complete posts a chat completion and extracts the first choice.
func (o *OpenRouterCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	payload := map[string]any{
		"model":       o.model,
		"temperature": req.Temperature,
		"messages": []map[string]string{
			{"role": "system", "content": req.System},
			{"role": "user", "content": req.Prompt},
		},
	}
	if req.MaxTokens > 0 {
		payload["max_tokens"] = req.MaxTokens
	}

	resp, err := o.client.R().
		SetContext(ctx).
		SetAuthToken(o.apiKey).
		SetBody(payload).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	if resp.IsError() {
		message := gjson.Get(resp.String(), "error.message").String()
		if message == "" {
			message = resp.Status()
		}
		return "", fmt.Errorf("openrouter request failed with status %d: %s", resp.StatusCode(), message)
	}

	content := gjson.Get(resp.String(), "choices.0.message.content")
	if !content.Exists() || strings.TrimSpace(content.String()) == "" {
		return "", fmt.Errorf("no choices returned from openrouter")
	}

	return strings.TrimSpace(content.String()), nil
}
