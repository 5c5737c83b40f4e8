package ai

import (
	"context"

	"grasshopper/internal/domain/ports/adapter"
)

// Compile-time check
var (
	_ adapter.AIServiceAdapter = (*limitedAI)(nil)
	_ adapter.TokenCounter     = (*limitedAI)(nil)
)

// limitedAI caps in-flight provider calls process-wide.
type limitedAI struct {
	inner adapter.AIServiceAdapter
	sem   chan struct{}
}

func NewLimitedAI(inner adapter.AIServiceAdapter, maxConcurrent int) adapter.AIServiceAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

// acquire waits for a slot or the caller's deadline, whichever comes first.
func (l *limitedAI) acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *limitedAI) release() { <-l.sem }

func (l *limitedAI) Provider() string { return l.inner.Provider() }

func (l *limitedAI) GenerateImage(ctx context.Context, req adapter.ImageRequest) (adapter.ImageResult, error) {
	if err := l.acquire(ctx); err != nil {
		return adapter.ImageResult{}, err
	}
	defer l.release()
	return l.inner.GenerateImage(ctx, req)
}

func (l *limitedAI) Complete(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer l.release()
	return l.inner.Complete(ctx, model, messages)
}

// CountTokens is local work for most providers and does not take a slot.
func (l *limitedAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	tc, ok := l.inner.(adapter.TokenCounter)
	if !ok {
		return 0, errTokensUnsupported
	}
	return tc.CountTokens(ctx, model, messages)
}
