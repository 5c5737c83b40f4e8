//go:build !integration

package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grasshopper/internal/domain/ports/adapter"
	"grasshopper/internal/infra/logging"
)

type blockingAI struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingAI) Provider() string { return "blocking" }

func (b *blockingAI) GenerateImage(ctx context.Context, req adapter.ImageRequest) (adapter.ImageResult, error) {
	b.entered <- struct{}{}
	<-b.release
	return adapter.ImageResult{URL: "u"}, nil
}

func (b *blockingAI) Complete(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	return "ok", nil
}

func TestLimitedAI_WaitRespectsContext(t *testing.T) {
	inner := &blockingAI{entered: make(chan struct{}, 1), release: make(chan struct{})}
	l := NewLimitedAI(inner, 1)

	done := make(chan error, 1)
	go func() {
		_, err := l.GenerateImage(context.Background(), adapter.ImageRequest{})
		done <- err
	}()
	<-inner.entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := l.Complete(ctx, "", nil)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)

	close(inner.release)
	require.NoError(t, <-done)

	reply, err := l.Complete(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
	assert.Equal(t, "blocking", l.Provider())
}

func TestLimitedAI_ZeroLimitReturnsInner(t *testing.T) {
	inner := NewNoopAIAdapter(logging.Nop())
	assert.Same(t, inner, NewLimitedAI(inner, 0))
}

func TestLimitedAI_CountTokensUnsupported(t *testing.T) {
	l := NewLimitedAI(NewNoopAIAdapter(logging.Nop()), 2)
	tc, ok := l.(adapter.TokenCounter)
	require.True(t, ok)
	_, err := tc.CountTokens(context.Background(), "", nil)
	assert.ErrorIs(t, err, errTokensUnsupported)
}

func TestNoopAIAdapter(t *testing.T) {
	a := NewNoopAIAdapter(logging.Nop())
	res, err := a.GenerateImage(context.Background(), adapter.ImageRequest{Prompt: "A stylish boots outfit"})
	require.NoError(t, err)
	assert.Contains(t, res.URL, "placehold.co")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Complete(ctx, "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
