package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gridironsim/playoff-odds/internal/api/respond"
	"github.com/gridironsim/playoff-odds/internal/odds"
	"github.com/gridironsim/playoff-odds/internal/store"
)

// overrideRequest is the PUT body for a manual override. Scores are
// required; moneylines are optional and replace the provider quotes for
// probability purposes.
type overrideRequest struct {
	HomeScore     *int `json:"home_score"`
	AwayScore     *int `json:"away_score"`
	HomeMoneyline int  `json:"home_moneyline"`
	AwayMoneyline int  `json:"away_moneyline"`
}

// SetOverride applies a manual result to one matchup. Overridden values
// win over provider data in standings and simulations until cleared.
func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON")
		return
	}
	if req.HomeScore == nil || req.AwayScore == nil {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_SCORES", "home_score and away_score are required")
		return
	}
	if *req.HomeScore < 0 || *req.AwayScore < 0 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SCORES", "Scores must be non-negative")
		return
	}
	if !odds.ValidateOdds(req.HomeMoneyline, req.AwayMoneyline) {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ODDS",
			"Moneylines must both be absent or form a valid favorite/underdog pair")
		return
	}

	o := store.Override{
		HomeScore:     *req.HomeScore,
		AwayScore:     *req.AwayScore,
		HomeMoneyline: req.HomeMoneyline,
		AwayMoneyline: req.AwayMoneyline,
	}
	if err := h.overrides.SetOverride(r.Context(), id, o); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "MATCHUP_NOT_FOUND", "No matchup with that id")
			return
		}
		h.logger.Error("set override failed", "matchup_id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "OVERRIDE_FAILED", "Failed to store override")
		return
	}

	h.invalidateDerived()
	h.logger.Info("override applied", "matchup_id", id,
		"home_score", *req.HomeScore, "away_score", *req.AwayScore)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"matchup_id": id,
		"override":   o,
	})
}

// ClearOverride removes a manual override, restoring provider data.
func (h *Handler) ClearOverride(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.overrides.ClearOverride(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "MATCHUP_NOT_FOUND", "No matchup with that id")
			return
		}
		h.logger.Error("clear override failed", "matchup_id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "OVERRIDE_FAILED", "Failed to clear override")
		return
	}

	h.invalidateDerived()
	h.logger.Info("override cleared", "matchup_id", id)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"matchup_id": id,
		"cleared":    true,
	})
}

// invalidateDerived drops cached standings and seeds after a schedule
// mutation. The matchup's season is not known here, so the configured
// season and its neighbors are dropped.
func (h *Handler) invalidateDerived() {
	for _, season := range []int{h.cfg.Season - 1, h.cfg.Season, h.cfg.Season + 1} {
		h.cache.Invalidate(fmt.Sprintf("standings:%d", season))
		h.cache.Invalidate(fmt.Sprintf("seeds:%d", season))
	}
}
