//go:build !integration

package web

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"grasshopper/internal/config"
	"grasshopper/internal/domain/ports/adapter"
	"grasshopper/internal/infra/i18n"
	"grasshopper/internal/infra/logging"
	"grasshopper/internal/infra/memory"
	"grasshopper/internal/usecase"
)

// --- Fake provider ---

type fakeAI struct {
	mu       sync.Mutex
	imageURL string
	imageErr error
	reply    string
	chatErr  error
	panicked bool
	sent     [][]adapter.Message
	images   int
}

func (f *fakeAI) Provider() string { return "fake" }

func (f *fakeAI) GenerateImage(ctx context.Context, req adapter.ImageRequest) (adapter.ImageResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicked {
		panic("provider exploded")
	}
	f.images++
	if f.imageErr != nil {
		return adapter.ImageResult{}, f.imageErr
	}
	return adapter.ImageResult{URL: f.imageURL}, nil
}

func (f *fakeAI) Complete(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, messages)
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.reply, nil
}

// --- Harness ---

type harness struct {
	ai       *fakeAI
	repo     *memory.SessionRepo
	sessions *SessionManager
	server   *Server
}

func newHarness(t *testing.T, ai *fakeAI) *harness {
	t.Helper()
	logger := logging.Nop()
	repo := memory.NewSessionRepo()

	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	require.NoError(t, err)
	sm, err := NewSessionManager("test-secret", "grasshopper_session", "", false, time.Hour)
	require.NoError(t, err)

	outfitUC := usecase.NewOutfitUseCase(ai, ai.Provider(), usecase.OutfitOptions{Model: "dall-e-3", Timeout: time.Second}, logger)
	chatUC := usecase.NewChatUseCase(ai, ai.Provider(), usecase.ChatOptions{
		Model:        "gpt-4",
		SystemPrompt: config.DefaultSystemPrompt,
		Timeout:      time.Second,
	}, logger)
	sessionUC := usecase.NewSessionUseCase(repo, time.Hour, logger)

	srv, err := NewServer(outfitUC, chatUC, sessionUC, sm, tr, nil, Options{MetricsEnabled: true}, logger)
	require.NoError(t, err)
	return &harness{ai: ai, repo: repo, sessions: sm, server: srv}
}
