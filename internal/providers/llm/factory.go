package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/example/nav-agent/internal/config"
)

// New returns the client the configuration names. Configuration is
// validated before this point, so a missing token here is a programmer
// error, not a user one.
func New(ctx context.Context, cfg *config.Config) (Client, error) {
	timeout := time.Duration(cfg.HTTPTimeoutMS) * time.Millisecond
	switch cfg.Provider {
	case "anthropic":
		return &AnthropicClient{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.AuthToken,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxOutputTokens,
			Timeout:   timeout,
		}, nil
	case "openai":
		return &OpenAIClient{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.AuthToken,
			Model:   cfg.Model,
			Timeout: timeout,
		}, nil
	case "gemini":
		key := cfg.AuthToken
		if key == "" {
			key = os.Getenv("GOOGLE_API_KEY")
		}
		return NewGeminiClient(ctx, key, cfg.Model)
	case "mock":
		return &MockClient{}, nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}
