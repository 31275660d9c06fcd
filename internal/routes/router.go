package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"logitrack/tracker/internal/api"
	"logitrack/tracker/internal/constants"
	"logitrack/tracker/internal/logging"
	"logitrack/tracker/internal/middleware"
)

// RouterConfig carries the HTTP-level settings.
type RouterConfig struct {
	AdminToken     string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	UpSince        time.Time
	Ping           api.Pinger
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
}

func RegisterRoutes(deps *api.Dependencies, cfg RouterConfig) http.Handler {
	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	r.Use(middleware.Logging)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", constants.AdminTokenHeader},
		ExposedHeaders:   []string{constants.ImportRunHeader, constants.SearchTierHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthCheck", api.HealthCheckHandler(cfg.Ping, cfg.UpSince))

	RegisterAPIRoutes(r, api.NewHandlers(deps), deps.Metrics, cfg)

	logging.Info("Router initialized with metrics and logging middleware")
	return r
}
