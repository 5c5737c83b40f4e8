package ai

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"grasshopper/internal/config"
	"grasshopper/internal/domain/ports/adapter"
)

// NewFromConfig builds the configured provider wrapped in the concurrency limiter.
func NewFromConfig(ctx context.Context, cfg config.AIConfig, logger *zerolog.Logger) (adapter.AIServiceAdapter, error) {
	var (
		inner adapter.AIServiceAdapter
		err   error
	)
	switch cfg.Provider {
	case "openai":
		inner, err = NewOpenAIAdapter(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.ImageModel, cfg.ChatModel)
	case "gemini":
		inner, err = NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.ImageModel, cfg.ChatModel)
	case "noop":
		inner = NewNoopAIAdapter(logger)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s adapter: %w", cfg.Provider, err)
	}
	return NewLimitedAI(inner, cfg.ConcurrentLimit), nil
}
