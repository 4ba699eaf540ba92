// Package server exposes the intake endpoints over HTTP.
package server

import (
	"net/http"

	commonhttp "bitable-intake/internal/common/http"
	"bitable-intake/internal/common/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configure the router.
type Options struct {
	AllowOrigin string
	Submit      http.Handler
	Metrics     http.Handler
	Logger      logger.Logger
}

// NewRouter wires middleware and routes. CORS runs before routing so
// OPTIONS is answered on any path.
func NewRouter(opts Options) *chi.Mux {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	metricsHandler := opts.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RealIP)
	mux.Use(requestIDMiddleware)
	mux.Use(corsMiddleware(opts.AllowOrigin))
	mux.Use(accessLogMiddleware(log))
	mux.Use(recoverMiddleware(log))

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		commonhttp.WriteError(w, http.StatusNotFound, "Not Found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		commonhttp.WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	mux.Method(http.MethodPost, "/submit", opts.Submit)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		commonhttp.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	mux.Method(http.MethodGet, "/metrics", metricsHandler)

	return mux
}
