package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/gridironsim/playoff-odds/internal/api/handler"
	"github.com/gridironsim/playoff-odds/internal/cache"
	"github.com/gridironsim/playoff-odds/internal/config"
	"github.com/gridironsim/playoff-odds/internal/sim"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(
	schedule handler.ScheduleSource,
	overrides handler.OverrideWriter,
	dbHealth handler.DBHealth,
	jobs *sim.Manager,
	appCache *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "Link", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(schedule, overrides, dbHealth, jobs, appCache, cfg, logger)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Derived league state
		r.Get("/standings", h.GetStandings)
		r.Get("/seeds", h.GetSeeds)

		// Manual overrides
		r.Put("/matchups/{id}/override", h.SetOverride)
		r.Delete("/matchups/{id}/override", h.ClearOverride)

		// Simulation jobs
		r.Post("/simulations", h.StartSimulation)
		r.Get("/simulations", h.ListSimulations)
		r.Get("/simulations/{id}", h.GetSimulation)
		r.Delete("/simulations/{id}", h.CancelSimulation)
		r.Get("/simulations/{id}/ws", h.WatchSimulation)
	})

	return r
}
