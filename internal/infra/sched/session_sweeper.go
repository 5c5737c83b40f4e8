package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SessionExpirer is the slice of the session use case the sweeper needs.
type SessionExpirer interface {
	ExpireIdle(ctx context.Context) (int, error)
}

// SessionSweeper periodically ends idle sessions via the use case.
type SessionSweeper struct {
	interval time.Duration
	sessions SessionExpirer
	log      *zerolog.Logger
}

func NewSessionSweeper(interval time.Duration, sessions SessionExpirer, logger *zerolog.Logger) *SessionSweeper {
	sweepLog := logger.With().Str("component", "SessionSweeper").Logger()
	return &SessionSweeper{
		interval: interval,
		sessions: sessions,
		log:      &sweepLog,
	}
}

func (w *SessionSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting session sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping session sweeper")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.sessions.ExpireIdle(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("session sweeper error")
			}
			if n > 0 {
				w.log.Info().Int("count", n).Msg("idle sessions ended")
			}
		}
	}
}
