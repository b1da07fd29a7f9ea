// Package handler provides HTTP handlers for all API endpoints. The
// transport layer is deliberately thin: it loads schedule snapshots,
// hands them to the engine, and marshals results.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gridironsim/playoff-odds/internal/api/respond"
	"github.com/gridironsim/playoff-odds/internal/cache"
	"github.com/gridironsim/playoff-odds/internal/config"
	"github.com/gridironsim/playoff-odds/internal/league"
	"github.com/gridironsim/playoff-odds/internal/sim"
	"github.com/gridironsim/playoff-odds/internal/store"
)

// ScheduleSource loads the read-only schedule snapshot the engine runs on.
type ScheduleSource interface {
	Entrants(ctx context.Context) ([]league.Entrant, error)
	Matchups(ctx context.Context, season int) ([]league.Matchup, error)
}

// OverrideWriter persists manual score/odds overrides.
type OverrideWriter interface {
	SetOverride(ctx context.Context, matchupID string, o store.Override) error
	ClearOverride(ctx context.Context, matchupID string) error
}

// DBHealth verifies database connectivity.
type DBHealth interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	schedule  ScheduleSource
	overrides OverrideWriter
	dbHealth  DBHealth
	jobs      *sim.Manager
	cache     *cache.Cache
	cfg       *config.Config
	logger    *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(schedule ScheduleSource, overrides OverrideWriter, dbHealth DBHealth, jobs *sim.Manager, c *cache.Cache, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		schedule:  schedule,
		overrides: overrides,
		dbHealth:  dbHealth,
		jobs:      jobs,
		cache:     c,
		cfg:       cfg,
		logger:    logger,
	}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Playoff Odds API",
		"version": "1.0.0",
		"status":  "running",
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.dbHealth.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// season resolves the requested season, defaulting to the configured one.
func (h *Handler) season(r *http.Request) int {
	if q := r.URL.Query().Get("season"); q != "" {
		if season, err := strconv.Atoi(q); err == nil && season > 0 {
			return season
		}
	}
	return h.cfg.Season
}
