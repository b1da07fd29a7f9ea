package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gridironsim/playoff-odds/internal/api/respond"
	"github.com/gridironsim/playoff-odds/internal/sim"
)

// simulationRequest is the POST body for starting a run. All fields are
// optional; zero values fall back to configured defaults.
type simulationRequest struct {
	Trials         int     `json:"trials"`
	Seed           *int64  `json:"seed"`
	WeightedByOdds *bool   `json:"weighted_by_odds"`
	RemoveVig      *bool   `json:"remove_vig"`
	ScoreMean      float64 `json:"score_mean"`
	Season         int     `json:"season"`
}

// StartSimulation launches a Monte Carlo run over the remaining schedule.
// Only one run may be active at a time; a second request gets 409.
func (h *Handler) StartSimulation(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body is not valid JSON")
			return
		}
	}

	trials := req.Trials
	if trials <= 0 {
		trials = h.cfg.SimDefaultTrials
	}
	if trials > h.cfg.SimMaxTrials {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "TRIALS_TOO_LARGE",
			"Requested trial count exceeds the configured maximum",
			"max_trials")
		return
	}

	season := req.Season
	if season == 0 {
		season = h.cfg.Season
	}

	entrants, matchups, ok := h.loadSchedule(w, r, season)
	if !ok {
		return
	}

	opts := sim.Options{
		Trials:         trials,
		Seed:           req.Seed,
		WeightedByOdds: h.cfg.SimWeightedByOdds,
		RemoveVig:      h.cfg.SimRemoveVig,
		ScoreMean:      h.cfg.SimScoreMean,
		Logger:         h.logger,
	}
	if req.WeightedByOdds != nil {
		opts.WeightedByOdds = *req.WeightedByOdds
	}
	if req.RemoveVig != nil {
		opts.RemoveVig = *req.RemoveVig
	}
	if req.ScoreMean > 0 {
		opts.ScoreMean = req.ScoreMean
	}

	// The run outlives the request, so it gets its own context rather
	// than r.Context().
	job, err := h.jobs.Start(context.Background(), matchups, entrants, opts)
	if err != nil {
		if errors.Is(err, sim.ErrRunActive) {
			respond.WriteError(w, http.StatusConflict, "RUN_ACTIVE", "Another simulation is already running")
			return
		}
		h.logger.Error("start simulation failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "START_FAILED", "Failed to start simulation")
		return
	}

	respond.WriteJSONObject(w, http.StatusAccepted, job.Snapshot())
}

// GetSimulation returns the state of one job, including the aggregated
// result once it has completed.
func (h *Handler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.jobs.Get(id)
	if err != nil {
		respond.WriteError(w, http.StatusNotFound, "JOB_NOT_FOUND", "No simulation job with that id")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, job.Snapshot())
}

// ListSimulations returns all retained jobs, newest first.
func (h *Handler) ListSimulations(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"jobs": h.jobs.List(),
	})
}

// CancelSimulation requests cooperative cancellation of a running job.
// Cancelling a finished job is a no-op.
func (h *Handler) CancelSimulation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.jobs.Cancel(id); err != nil {
		respond.WriteError(w, http.StatusNotFound, "JOB_NOT_FOUND", "No simulation job with that id")
		return
	}
	job, err := h.jobs.Get(id)
	if err != nil {
		respond.WriteError(w, http.StatusNotFound, "JOB_NOT_FOUND", "No simulation job with that id")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, job.Snapshot())
}
