package routes

import (
	"github.com/go-chi/chi/v5"

	"logitrack/tracker/internal/api"
	"logitrack/tracker/internal/metrics"
	"logitrack/tracker/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, metricsReg *metrics.MetricsRegistry, cfg RouterConfig) {
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.InFlightMiddleware(metricsReg, "api_v1"))

		// Admin: import runs one at a time and may stream for minutes
		v1.Group(func(admin chi.Router) {
			admin.Use(middleware.AdminTokenMiddleware(cfg.AdminToken))
			admin.Post("/import", handlers.Import())
		})

		// Public read endpoints
		v1.Group(func(read chi.Router) {
			read.Use(limiter.Middleware)
			read.Get("/search", handlers.Search())
			read.Get("/detail/{shipment_id}", handlers.Detail())
			read.Get("/shipments/{id}/timeline", handlers.Timeline())
		})
	})
}
