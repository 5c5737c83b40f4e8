package repository

import (
	"context"
	"time"

	"grasshopper/internal/domain/model"
)

// -----------------------------
// Sessions
// -----------------------------

type SessionRepository interface {
	// GetOrCreate returns the session for id, creating an empty one when absent.
	// An empty id always creates a new session. created reports which happened.
	GetOrCreate(ctx context.Context, id string) (sess *model.Session, created bool, err error)
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	// Sweep ends sessions not seen for longer than idleFor and returns how many.
	Sweep(ctx context.Context, idleFor time.Duration) (int, error)
	Count(ctx context.Context) (int, error)
}
