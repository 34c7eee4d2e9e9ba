// Package httpapi exposes the download accounting API over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/chippom/ChipsGIFs/internal/logging"
	"github.com/chippom/ChipsGIFs/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	AllowedOrigin  string
	RequestTimeout time.Duration
}

func NewRouter(h *Handlers, opts RouterOptions, log logging.Logger) http.Handler {
	origin := opts.AllowedOrigin
	if origin == "" {
		origin = "*"
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(tracing)
	r.Use(accessLog(log))
	r.Use(recoverer(log))
	r.Use(headers(origin))
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, msgNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/deliver", h.Deliver)
		r.Head("/deliver", h.Deliver)
		r.Get("/count", h.Count)
		r.Post("/log", h.Log)
		r.Post("/update", h.Update)
	})

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", metrics.Handler())

	return r
}
