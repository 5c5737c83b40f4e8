// File: internal/usecase/outfit_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
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
var _ OutfitUseCase = (*outfitUC)(nil)

const (
	outfitPromptTemplate = "A stylish %s outfit, elegant, trendy, and modern."
	searchBaseURL        = "https://www.google.com/search?q="
	outfitImageSize      = "1024x1024"
	outfitImageCount     = 1
)

// OutfitResult is what the presentation layer needs after a successful generation.
type OutfitResult struct {
	Record    model.OutfitRecord `json:"record"`
	SearchURL string             `json:"search_url"`
}

type OutfitUseCase interface {
	Generate(ctx context.Context, sess *model.Session, idea string) (*OutfitResult, error)
}

type OutfitOptions struct {
	Model   string
	Timeout time.Duration
	// Dev logs ideas unredacted.
	Dev bool
}

type outfitUC struct {
	images   adapter.ImageGenerator
	provider string
	opts     OutfitOptions

	log *zerolog.Logger
}

func NewOutfitUseCase(images adapter.ImageGenerator, provider string, opts OutfitOptions, logger *zerolog.Logger) *outfitUC {
	if logger == nil {
		logger = logging.Nop()
	}
	return &outfitUC{images: images, provider: provider, opts: opts, log: logger}
}

// OutfitPrompt renders the fixed image prompt for an idea.
func OutfitPrompt(idea string) string {
	return fmt.Sprintf(outfitPromptTemplate, idea)
}

// SearchLink builds the web-search link shown next to a generated look.
func SearchLink(idea string) string {
	return searchBaseURL + url.QueryEscape(idea+" fashion outfit")
}

func (o *outfitUC) Generate(ctx context.Context, sess *model.Session, idea string) (*OutfitResult, error) {
	defer logging.TraceDuration(o.log, "OutfitUC.Generate")()
	log := logging.With(ctx, o.log)

	idea = strings.TrimSpace(idea)
	if idea == "" {
		metrics.IncInputRejected("outfit")
		return nil, &domain.InvalidInputError{Field: "idea"}
	}
	if sess == nil {
		return nil, domain.ErrSessionNotFound
	}

	if err := sess.Acquire(ctx); err != nil {
		return nil, err
	}
	defer sess.Release()
	sess.Touch()

	callCtx := ctx
	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := o.images.GenerateImage(callCtx, adapter.ImageRequest{
		Prompt: OutfitPrompt(idea),
		Model:  o.opts.Model,
		N:      outfitImageCount,
		Size:   outfitImageSize,
	})
	if err == nil && strings.TrimSpace(res.URL) == "" {
		err = errors.New("response contained no image")
	}
	metrics.ObserveAICall(o.provider, "image", time.Since(start), err == nil)
	if err != nil {
		metrics.IncExternalFailure("image")
		log.Error().Err(err).Str("idea", logging.Redact(idea, o.opts.Dev)).Msg("image generation failed")
		return nil, domain.NewExternalServiceError("image", err)
	}

	rec := model.NewOutfitRecord(idea, res.URL)
	sess.RecordOutfit(rec)
	metrics.IncOutfitGenerated()
	log.Info().Str("record_id", rec.ID).Msg("outfit generated")

	return &OutfitResult{Record: rec, SearchURL: SearchLink(idea)}, nil
}
