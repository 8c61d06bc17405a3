package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/paywall-reader/internal/delivery/http/handler"
	"github.com/user/paywall-reader/internal/delivery/http/middleware"
	"go.uber.org/zap"
)

func New(h *handler.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Get("/methods", h.HandleListMethods)
		r.Post("/read", h.HandleReadArticle)
		r.Get("/article/archived", h.HandleGetArchived)
	})

	return r
}
