package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Playground/internal/config"
	"github.com/MikeSquared-Agency/Playground/internal/hermes"
	"github.com/MikeSquared-Agency/Playground/internal/rankings"
	"github.com/MikeSquared-Agency/Playground/internal/web"
)

func NewRouter(rc rankings.Client, h hermes.Client, renderer *web.Renderer, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimitPerMinute))

	runner := NewRunner(rc, h, logger)
	pages := NewPagesHandler(runner, renderer, logger)
	rankingsAPI := NewRankingsHandler(runner)

	r.Get("/", pages.Show)
	r.Post("/", pages.Submit)
	r.Handle("/static/*", http.StripPrefix("/static/", web.Static()))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(TokenAuthMiddleware(cfg.Server.APIToken))
		r.Post("/power_rankings", rankingsAPI.PowerRankings)
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
