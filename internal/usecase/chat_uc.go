// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"grasshopper/internal/domain"
	"grasshopper/internal/domain/model"
	"grasshopper/internal/domain/ports/adapter"
	"grasshopper/internal/infra/logging"
	"grasshopper/internal/infra/metrics"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

type ChatUseCase interface {
	// Send asks the advisor and records the exchange; it returns the reply text.
	Send(ctx context.Context, sess *model.Session, text string) (string, error)
}

type ChatOptions struct {
	Model        string
	SystemPrompt string
	Timeout      time.Duration
	// ReplayOriginalRoles sends prior advisor replies under the assistant role.
	ReplayOriginalRoles bool
	CountTokens         bool
}

type chatUC struct {
	ai       adapter.ChatCompleter
	provider string
	opts     ChatOptions

	log *zerolog.Logger
}

func NewChatUseCase(ai adapter.ChatCompleter, provider string, opts ChatOptions, logger *zerolog.Logger) *chatUC {
	if logger == nil {
		logger = logging.Nop()
	}
	return &chatUC{ai: ai, provider: provider, opts: opts, log: logger}
}

// BuildMessages projects the stored turns to the chat API shape.
// By default every stored line is replayed as user content, notes included.
func BuildMessages(system string, turns []model.ChatTurn, text string, replayRoles bool) []adapter.Message {
	msgs := make([]adapter.Message, 0, len(turns)+2)
	msgs = append(msgs, adapter.Message{Role: adapter.RoleSystem, Content: system})
	for _, t := range turns {
		if !replayRoles {
			msgs = append(msgs, adapter.Message{Role: adapter.RoleUser, Content: t.Line()})
			continue
		}
		switch t.Kind {
		case model.TurnAssistant:
			msgs = append(msgs, adapter.Message{Role: adapter.RoleAssistant, Content: t.Text})
		case model.TurnUser:
			msgs = append(msgs, adapter.Message{Role: adapter.RoleUser, Content: t.Text})
		default:
			msgs = append(msgs, adapter.Message{Role: adapter.RoleUser, Content: t.Line()})
		}
	}
	return append(msgs, adapter.Message{Role: adapter.RoleUser, Content: text})
}

func (c *chatUC) Send(ctx context.Context, sess *model.Session, text string) (string, error) {
	defer logging.TraceDuration(c.log, "ChatUC.Send")()
	log := logging.With(ctx, c.log)

	text = strings.TrimSpace(text)
	if text == "" {
		metrics.IncInputRejected("chat")
		return "", &domain.InvalidInputError{Field: "message"}
	}
	if sess == nil {
		return "", domain.ErrSessionNotFound
	}

	if err := sess.Acquire(ctx); err != nil {
		return "", err
	}
	defer sess.Release()
	sess.Touch()

	msgs := BuildMessages(c.opts.SystemPrompt, sess.Turns(), text, c.opts.ReplayOriginalRoles)
	c.observeTokens(ctx, msgs)

	callCtx := ctx
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := c.ai.Complete(callCtx, c.opts.Model, msgs)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = errors.New("response contained no choices")
	}
	metrics.ObserveAICall(c.provider, "chat", time.Since(start), err == nil)
	if err != nil {
		metrics.IncExternalFailure("chat")
		log.Error().Err(err).Int("messages", len(msgs)).Msg("chat completion failed")
		return "", domain.NewExternalServiceError("chat", err)
	}

	sess.RecordExchange(text, reply)
	metrics.IncChatExchange()
	log.Debug().Int("messages", len(msgs)).Msg("chat exchange recorded")
	return reply, nil
}

func (c *chatUC) observeTokens(ctx context.Context, msgs []adapter.Message) {
	if !c.opts.CountTokens {
		return
	}
	tc, ok := c.ai.(adapter.TokenCounter)
	if !ok {
		return
	}
	n, err := tc.CountTokens(ctx, c.opts.Model, msgs)
	if err != nil {
		logging.With(ctx, c.log).Debug().Err(err).Msg("token count unavailable")
		return
	}
	metrics.AddPromptTokens(c.provider, n)
}
