//go:build !integration

package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"grasshopper/internal/domain/model"
	"grasshopper/internal/domain/ports/adapter"
)

// ---- Fakes ----

type fakeImages struct {
	mu    sync.Mutex
	calls []adapter.ImageRequest
	url   string
	err   error
	block bool
}

func (f *fakeImages) GenerateImage(ctx context.Context, req adapter.ImageRequest) (adapter.ImageResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return adapter.ImageResult{}, ctx.Err()
	}
	if f.err != nil {
		return adapter.ImageResult{}, f.err
	}
	return adapter.ImageResult{URL: f.url}, nil
}

func (f *fakeImages) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeChat struct {
	mu     sync.Mutex
	model  string
	sent   [][]adapter.Message
	reply  string
	err    error
	tokens int
}

func (f *fakeChat) Complete(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.model = model
	cp := make([]adapter.Message, len(messages))
	copy(cp, messages)
	f.sent = append(f.sent, cp)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeChat) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens++
	return 10 * len(messages), nil
}

type memSessions struct {
	mu   sync.Mutex
	byID map[string]*model.Session
	seq  int
}

func newMemSessions() *memSessions {
	return &memSessions{byID: map[string]*model.Session{}}
}

func (m *memSessions) GetOrCreate(ctx context.Context, id string) (*model.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.byID[id]; ok && id != "" {
		return s, false, nil
	}
	m.seq++
	s := model.NewSession("sess-" + string(rune('a'+m.seq)))
	m.byID[s.ID] = s
	return s, true, nil
}

func (m *memSessions) Get(ctx context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.byID[id]; ok {
		return s, nil
	}
	return nil, errors.New("not found")
}

func (m *memSessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memSessions) Sweep(ctx context.Context, idleFor time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.byID {
		if time.Since(s.LastSeen()) > idleFor {
			delete(m.byID, id)
			n++
		}
	}
	return n, nil
}

func (m *memSessions) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID), nil
}
