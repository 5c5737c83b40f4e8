// File: internal/usecase/session_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"grasshopper/internal/domain/model"
	"grasshopper/internal/domain/ports/repository"
	"grasshopper/internal/infra/logging"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

// Snapshot is a consistent read of one session for gallery rendering.
type Snapshot struct {
	SessionID string               `json:"session_id"`
	Wardrobe  []model.OutfitRecord `json:"wardrobe"`
	History   []string             `json:"history"`
	Turns     []model.ChatTurn     `json:"turns"`
}

type SessionUseCase interface {
	// Open returns the session for id, creating a fresh one when id is unknown.
	Open(ctx context.Context, id string) (*model.Session, bool, error)
	Snapshot(ctx context.Context, sess *model.Session) Snapshot
	End(ctx context.Context, id string) error
	// ExpireIdle ends sessions idle longer than the configured TTL.
	ExpireIdle(ctx context.Context) (int, error)
	Active(ctx context.Context) (int, error)
}

type sessionUC struct {
	repo    repository.SessionRepository
	idleTTL time.Duration

	log *zerolog.Logger
}

func NewSessionUseCase(repo repository.SessionRepository, idleTTL time.Duration, logger *zerolog.Logger) *sessionUC {
	if logger == nil {
		logger = logging.Nop()
	}
	return &sessionUC{repo: repo, idleTTL: idleTTL, log: logger}
}

func (s *sessionUC) Open(ctx context.Context, id string) (*model.Session, bool, error) {
	sess, created, err := s.repo.GetOrCreate(ctx, id)
	if err != nil {
		return nil, false, err
	}
	sess.Touch()
	if created {
		logging.With(logging.WithSessID(ctx, sess.ID), s.log).Debug().Msg("session started")
	}
	return sess, created, nil
}

func (s *sessionUC) Snapshot(_ context.Context, sess *model.Session) Snapshot {
	wardrobe, turns := sess.View()
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, t.Line())
	}
	return Snapshot{
		SessionID: sess.ID,
		Wardrobe:  wardrobe,
		History:   lines,
		Turns:     turns,
	}
}

func (s *sessionUC) End(ctx context.Context, id string) error {
	defer logging.TraceDuration(s.log, "SessionUC.End")()
	return s.repo.Delete(ctx, id)
}

func (s *sessionUC) ExpireIdle(ctx context.Context) (int, error) {
	if s.idleTTL <= 0 {
		return 0, nil
	}
	return s.repo.Sweep(ctx, s.idleTTL)
}

func (s *sessionUC) Active(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
