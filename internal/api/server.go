package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/clustertemplates/internal/api/handler"
	mw "github.com/edvin/clustertemplates/internal/api/middleware"
	"github.com/edvin/clustertemplates/internal/config"
	"github.com/edvin/clustertemplates/internal/metrics"
	"github.com/edvin/clustertemplates/internal/platform"
)

type Server struct {
	router    chi.Router
	logger    zerolog.Logger
	templates handler.Generator
	updater   handler.Updater
	output    zerolog.Logger
	cfg       *config.Config
}

// NewServer wires the form, template API and webhook handlers. Update
// command output is written to output, one record per line.
func NewServer(logger zerolog.Logger, templates handler.Generator, updater handler.Updater, output zerolog.Logger, cfg *config.Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger,
		templates: templates,
		updater:   updater,
		output:    output,
		cfg:       cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint, unless a dedicated metrics listener
	// serves it.
	if s.cfg.MetricsListenAddr == "" {
		s.router.Handle("/metrics", promhttp.Handler())
	}

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", metrics.ReadyHandler(ReadinessChecks(s.cfg)))

	template := handler.NewTemplate(s.templates)
	s.router.Get("/", template.Index)
	s.router.Post("/", template.Index)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/templates", template.Create)
	})

	hook := handler.NewWebhook(s.cfg.WebhookSecret, s.updater, s.output)
	s.router.Post("/webhook", hook.Handle)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ReadinessChecks are the checks behind /readyz on both the API and the
// metrics listener.
func ReadinessChecks(cfg *config.Config) map[string]metrics.Check {
	return map[string]metrics.Check{
		"deploy_dir": func() error { return platform.CheckDir(cfg.DeployDir) },
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
