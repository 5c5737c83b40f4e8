package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"grasshopper/internal/infra/i18n"
	"grasshopper/internal/infra/metrics"
	"grasshopper/internal/infra/reporting"
	"grasshopper/internal/usecase"
)

type Options struct {
	AllowedOrigins []string
	MetricsEnabled bool
	MetricsPath    string
}

type Server struct {
	outfitUC  usecase.OutfitUseCase
	chatUC    usecase.ChatUseCase
	sessionUC usecase.SessionUseCase

	sessions *SessionManager
	tr       *i18n.Translator
	reporter reporting.Reporter
	pages    pageSet
	opts     Options
	log      *zerolog.Logger
}

func NewServer(
	outfitUC usecase.OutfitUseCase,
	chatUC usecase.ChatUseCase,
	sessionUC usecase.SessionUseCase,
	sessions *SessionManager,
	tr *i18n.Translator,
	reporter reporting.Reporter,
	opts Options,
	logger *zerolog.Logger,
) (*Server, error) {
	pages, err := loadPages(tr)
	if err != nil {
		return nil, err
	}
	if reporter == nil {
		reporter = reporting.Nop()
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	return &Server{
		outfitUC:  outfitUC,
		chatUC:    chatUC,
		sessionUC: sessionUC,
		sessions:  sessions,
		tr:        tr,
		reporter:  reporter,
		pages:     pages,
		opts:      opts,
		log:       logger,
	}, nil
}

// Router builds the full route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{sessionTokenHeader, traceHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(middleware.RealIP)
	r.Use(TraceID())
	r.Use(Recover(s.log, s.reporter))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if s.opts.MetricsEnabled {
		r.Handle(s.opts.MetricsPath, metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(Sessions(s.sessions, s.sessionUC))
		r.Use(RequestLog(s.log))

		r.Get("/", s.homePage)
		r.Post("/outfits", s.outfitForm)
		r.Post("/chat", s.chatForm)
		r.Get("/wardrobe", s.wardrobePage)
		r.Get("/about", s.aboutPage)
		r.Post("/session/reset", s.resetForm)

		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/outfits", s.apiGenerateOutfit)
			r.Post("/chat", s.apiChat)
			r.Get("/wardrobe", s.apiWardrobe)
			r.Get("/history", s.apiHistory)
			r.Delete("/session", s.apiEndSession)
		})
	})

	return r
}
