package ai

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"grasshopper/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

var errTokensUnsupported = errors.New("ai: provider does not count tokens")

// NoopAIAdapter implements adapter.AIServiceAdapter for local/dev testing.
// It logs requests instead of calling a real provider.
type NoopAIAdapter struct {
	delay time.Duration
	log   *zerolog.Logger
}

// NewNoopAIAdapter constructs the noop adapter.
func NewNoopAIAdapter(logger *zerolog.Logger) *NoopAIAdapter {
	return &NoopAIAdapter{delay: 100 * time.Millisecond, log: logger}
}

func (a *NoopAIAdapter) Provider() string { return "noop" }

func (a *NoopAIAdapter) wait(ctx context.Context) error {
	// Simulate slight processing time and respect ctx
	select {
	case <-time.After(a.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *NoopAIAdapter) GenerateImage(ctx context.Context, req adapter.ImageRequest) (adapter.ImageResult, error) {
	if err := a.wait(ctx); err != nil {
		return adapter.ImageResult{}, err
	}
	a.log.Debug().Str("prompt", req.Prompt).Msg("[noop-ai] image")
	return adapter.ImageResult{
		URL: "https://placehold.co/1024x1024?text=" + url.QueryEscape(req.Prompt),
	}, nil
}

func (a *NoopAIAdapter) Complete(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	if err := a.wait(ctx); err != nil {
		return "", err
	}
	a.log.Debug().Int("messages", len(messages)).Msg("[noop-ai] chat")
	return fmt.Sprintf("This is a noop stylist reply to %d messages.", len(messages)), nil
}
