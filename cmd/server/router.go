package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insurang/lead-funnel/internal/config"
	"github.com/insurang/lead-funnel/internal/handler"
	"github.com/insurang/lead-funnel/internal/middleware"
)

func setupRouter(h *handler.Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", h.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/leads", h.SubmitLead)
		r.Post("/track", h.Track)
		r.Get("/offers", h.GetOffer)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.BasicAuth(cfg.Admin.Username, cfg.Admin.Password))

			r.Get("/leads", h.ListLeads)
			r.Get("/sequences/logs", h.ListSequenceLogs)
			r.Post("/sequences/logs", h.ResetSequenceLog)
			r.Get("/settings", h.GetSettings)
			r.Post("/settings", h.UpdateSettings)
			r.Get("/stats", h.GetStats)
			r.Post("/test", h.TestNotifiers)
		})
	})

	return r
}
