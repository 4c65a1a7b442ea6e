package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes mounts every endpoint on r.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/submit-form", h.SubmitForm)
		r.Post("/subscribe", h.Subscribe)
		r.Get("/courses", h.Courses)
	})
}

// Router returns a chi.Mux with Routes mounted and no middleware.
func (h *Handlers) Router() *chi.Mux {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}
