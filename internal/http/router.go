package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Nunes-ND/msg-scheduler/internal/http/handler"
)

// RouterOptions toggles optional middleware.
type RouterOptions struct {
	// LogRequests enables per-request access logs.
	LogRequests bool
}

// NewRouter wires HTTP routes.
func NewRouter(health *handler.HealthHandler, message *handler.MessageHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.LogRequests {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Get("/", health.Live)
	r.Get("/healthz", health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/schedules", func(r chi.Router) {
		r.Post("/", message.Create)
		r.Get("/{id}", message.ShowStatus)
		r.Put("/{id}", message.ChangeStatus)
		r.Delete("/{id}", message.Delete)
	})

	return r
}
