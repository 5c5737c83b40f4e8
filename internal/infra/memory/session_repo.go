// File: internal/infra/memory/session_repo.go
package memory

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"grasshopper/internal/domain"
	"grasshopper/internal/domain/model"
	"grasshopper/internal/domain/ports/repository"
	"grasshopper/internal/infra/metrics"
)

// Compile-time check
var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps sessions in process memory; nothing survives a restart.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{
		sessions: make(map[string]*model.Session),
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

func (r *SessionRepo) newID() string {
	r.entropyMu.Lock()
	defer r.entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), r.entropy).String()
}

func (r *SessionRepo) GetOrCreate(ctx context.Context, id string) (*model.Session, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if id != "" {
		r.mu.RLock()
		s, ok := r.sessions[id]
		r.mu.RUnlock()
		if ok {
			return s, false, nil
		}
	}

	// Unknown ids are never adopted, a fresh id is always minted.
	s := model.NewSession(r.newID())
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	metrics.IncSessionsStarted()
	return s, true, nil
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}
	metrics.AddSessionsEnded("closed", 1)
	return nil
}

func (r *SessionRepo) Sweep(ctx context.Context, idleFor time.Duration) (int, error) {
	cutoff := time.Now().Add(-idleFor)
	r.mu.Lock()
	n := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	r.mu.Unlock()
	metrics.AddSessionsEnded("expired", n)
	return n, ctx.Err()
}

func (r *SessionRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}
