// Package api serves the avoidance controller over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pthm-cable/avoid/fuzzy"
	"github.com/pthm-cable/avoid/policy"
	"github.com/pthm-cable/avoid/telemetry"
)

// Options configures the router.
type Options struct {
	System     *fuzzy.System
	Controller policy.Options
	Metrics    *telemetry.Metrics // nil disables /metrics and request counting
	Logger     *slog.Logger
	RateLimit  float64 // requests per second per client; <= 0 disables
	Burst      int
}

// NewRouter wires the middleware chain and routes.
func NewRouter(opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var observeReq func(string, int)
	if opts.Metrics != nil {
		observeReq = opts.Metrics.ObserveRequest
	}

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logging(logger, observeReq))
	r.Use(middleware.Recoverer)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		r.Use(NewRateLimiter(opts.RateLimit, burst).Middleware)
	}

	r.Get("/healthz", healthHandler)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	avoid := newAvoidHandler(opts.System, opts.Controller, opts.Metrics.ObserveInference)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/avoid", avoid.Avoid)
		r.Get("/rules", rulesHandler(opts.System))
	})

	return r
}
