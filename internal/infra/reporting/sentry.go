package reporting

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	"grasshopper/internal/config"
	"grasshopper/internal/infra/logging"
)

// Reporter forwards unexpected errors to an error tracker.
type Reporter interface {
	Capture(ctx context.Context, err error)
	Flush(timeout time.Duration)
}

type nopReporter struct{}

func (nopReporter) Capture(context.Context, error) {}
func (nopReporter) Flush(time.Duration)            {}

// Nop drops everything.
func Nop() Reporter { return nopReporter{} }

type sentryReporter struct{}

// NewSentry initialises the global sentry client. An empty DSN yields Nop.
func NewSentry(cfg config.SentryConfig) (Reporter, error) {
	if cfg.DSN == "" {
		return Nop(), nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		Debug:       false,
	})
	if err != nil {
		return nil, err
	}
	return sentryReporter{}, nil
}

func (sentryReporter) Capture(ctx context.Context, err error) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		if tid := logging.TraceID(ctx); tid != "" {
			scope.SetTag("trace_id", tid)
		}
		if sid := logging.SessID(ctx); sid != "" {
			scope.SetTag("session_id", sid)
		}
		sentry.CaptureException(err)
	})
}

func (sentryReporter) Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}
