// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"grasshopper/internal/config"
	"grasshopper/internal/domain"
	aiAdapters "grasshopper/internal/infra/adapters/ai"
	"grasshopper/internal/infra/i18n"
	"grasshopper/internal/infra/logging"
	"grasshopper/internal/infra/memory"
	"grasshopper/internal/infra/metrics"
	"grasshopper/internal/infra/reporting"
	"grasshopper/internal/infra/sched"
	"grasshopper/internal/infra/web"
	"grasshopper/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	envPath := flag.String("env", ".env", "path to .env file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop provider allowed)")
	flag.Parse()

	boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	cfg, err := config.LoadConfig(*cfgPath, *envPath, *devMode)
	if err != nil {
		var mc *domain.MissingConfigError
		if errors.As(err, &mc) {
			boot.Error().Str("key", mc.Key).Str("hint", mc.Hint).
				Msgf("%s is not set; the stylist cannot start without it", mc.Key)
			return 2
		}
		boot.Error().Err(err).Msg("config")
		return 1
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	for _, w := range cfg.Runtime.Warnings {
		logger.Warn().Msg(w)
	}
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	// ---- Error reporting ----
	reporter, err := reporting.NewSentry(cfg.Sentry)
	if err != nil {
		logger.Error().Err(err).Msg("sentry init")
		return 1
	}
	defer reporter.Flush(2 * time.Second)

	// ---- Metrics ----
	if cfg.Metrics.Enabled {
		metrics.MustRegister()
		metrics.SetBuildInfo(version, commit)
	}

	// ---- AI adapter ----
	ai, err := aiAdapters.NewFromConfig(ctx, cfg.AI, logger)
	if err != nil {
		logger.Error().Err(err).Msg("ai adapter")
		return 1
	}
	logger.Info().
		Str("provider", ai.Provider()).
		Str("image_model", cfg.AI.ImageModel).
		Str("chat_model", cfg.AI.ChatModel).
		Msg("AI adapter ready")

	// ---- Repositories & use cases ----
	sessionRepo := memory.NewSessionRepo()
	sessionUC := usecase.NewSessionUseCase(sessionRepo, cfg.Session.IdleTTL, logger)
	outfitUC := usecase.NewOutfitUseCase(ai, ai.Provider(), usecase.OutfitOptions{
		Model:   cfg.AI.ImageModel,
		Timeout: cfg.AI.Timeout,
		Dev:     cfg.Runtime.Dev,
	}, logger)
	chatUC := usecase.NewChatUseCase(ai, ai.Provider(), usecase.ChatOptions{
		Model:               cfg.AI.ChatModel,
		SystemPrompt:        cfg.Chat.SystemPrompt,
		Timeout:             cfg.AI.Timeout,
		ReplayOriginalRoles: cfg.Chat.ReplayOriginalRoles,
		CountTokens:         cfg.AI.CountTokens,
	}, logger)

	// ---- Web ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		logger.Error().Err(err).Msg("i18n")
		return 1
	}
	if cfg.Session.Secret == "" {
		logger.Warn().Msg("session.secret not set; using a random per-process secret")
	}
	sm, err := web.NewSessionManager(cfg.Session.Secret, cfg.Session.CookieName, cfg.Session.CookieDomain,
		cfg.Session.SecureCookie, cfg.Session.IdleTTL)
	if err != nil {
		logger.Error().Err(err).Msg("session manager")
		return 1
	}
	srv, err := web.NewServer(outfitUC, chatUC, sessionUC, sm, tr, reporter, web.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	}, logger)
	if err != nil {
		logger.Error().Err(err).Msg("web server")
		return 1
	}

	// Write timeout stays unset: image generation can take longer than any sane fixed limit.
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	// ---- Session sweeper ----
	sweeper := sched.NewSessionSweeper(cfg.Session.SweepInterval, sessionUC, logger)
	go func() { _ = sweeper.Run(ctx) }()

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// ---- Graceful shutdown ----
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case err := <-errc:
		logger.Error().Err(err).Msg("http server error")
		return 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
		return 1
	}
	return 0
}
