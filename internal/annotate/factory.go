package annotate

import (
	"context"
	"fmt"
	"strings"
)

// NewProvider creates a provider based on configuration
func NewProvider(config Config, splitter SentenceSplitter) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "", "local":
		return NewLocalProvider(splitter), nil

	case "openai":
		return NewOpenAIProvider(config, splitter)

	case "ollama":
		return NewOllamaProvider(config, splitter)

	default:
		return nil, fmt.Errorf("unknown annotation provider: %s (supported: local, openai, ollama)", config.Provider)
	}
}

// Endpoint returns the URL a provider talks to, or "" for local providers
func Endpoint(config Config) string {
	switch strings.ToLower(config.Provider) {
	case "openai":
		if config.BaseURL != "" {
			return config.BaseURL
		}
		return "https://api.openai.com/v1"
	case "ollama":
		if config.BaseURL != "" {
			return config.BaseURL
		}
		return "http://localhost:11434"
	}
	return ""
}

// Waiter blocks until a call to the given endpoint may proceed
type Waiter interface {
	Wait(ctx context.Context, endpoint string) error
}

// limitedProvider throttles calls to a remote provider
type limitedProvider struct {
	Provider
	waiter   Waiter
	endpoint string
}

// WithRateLimit wraps p so each call first waits on w for endpoint
func WithRateLimit(p Provider, w Waiter, endpoint string) Provider {
	if w == nil || endpoint == "" {
		return p
	}
	return &limitedProvider{Provider: p, waiter: w, endpoint: endpoint}
}

func (l *limitedProvider) Annotate(ctx context.Context, req Request) (*Document, error) {
	if err := l.waiter.Wait(ctx, l.endpoint); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return l.Provider.Annotate(ctx, req)
}
