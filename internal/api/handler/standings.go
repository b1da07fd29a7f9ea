package handler

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sort"

	"github.com/gridironsim/playoff-odds/internal/api/respond"
	"github.com/gridironsim/playoff-odds/internal/cache"
	"github.com/gridironsim/playoff-odds/internal/league"
	"github.com/gridironsim/playoff-odds/internal/seeding"
	"github.com/gridironsim/playoff-odds/internal/tiebreak"
)

// standingRow is one entrant's line in the standings response.
type standingRow struct {
	EntrantID          league.EntrantID `json:"entrant_id"`
	Abbreviation       string           `json:"abbreviation"`
	Name               string           `json:"name"`
	Conference         string           `json:"conference"`
	Division           string           `json:"division"`
	Record             league.Record    `json:"record"`
	WinPercentage      float64          `json:"win_percentage"`
	DivisionRecord     league.Record    `json:"division_record"`
	ConferenceRecord   league.Record    `json:"conference_record"`
	PointsFor          int              `json:"points_for"`
	PointsAgainst      int              `json:"points_against"`
	NetPoints          int              `json:"net_points"`
	StrengthOfVictory  float64          `json:"strength_of_victory"`
	StrengthOfSchedule float64          `json:"strength_of_schedule"`
}

// GetStandings computes current standings over the stored schedule.
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	season := h.season(r)
	key := fmt.Sprintf("standings:%d", season)

	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLStandings, true)
		return
	}

	entrants, matchups, ok := h.loadSchedule(w, r, season)
	if !ok {
		return
	}

	standings := league.ComputeStandings(matchups, entrants)

	rows := make([]standingRow, 0, len(entrants))
	for _, e := range entrants {
		s := standings[e.ID]
		rows = append(rows, standingRow{
			EntrantID:          e.ID,
			Abbreviation:       e.Abbreviation,
			Name:               e.Name,
			Conference:         string(e.Conference),
			Division:           e.Division,
			Record:             s.Overall,
			WinPercentage:      s.WinPercentage(),
			DivisionRecord:     s.Divisional,
			ConferenceRecord:   s.Conference,
			PointsFor:          s.PointsFor,
			PointsAgainst:      s.PointsAgainst,
			NetPoints:          s.NetPoints(),
			StrengthOfVictory:  s.StrengthOfVictory,
			StrengthOfSchedule: s.StrengthOfSchedule,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Conference != rows[j].Conference {
			return rows[i].Conference < rows[j].Conference
		}
		if rows[i].Division != rows[j].Division {
			return rows[i].Division < rows[j].Division
		}
		return rows[i].WinPercentage > rows[j].WinPercentage
	})

	data, err := json.Marshal(map[string]interface{}{
		"season":    season,
		"standings": rows,
	})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", "Failed to encode standings")
		return
	}
	etag := h.cache.Set(key, data, cache.TTLStandings)
	respond.WriteJSON(w, data, etag, cache.TTLStandings, false)
}

// GetSeeds computes the current playoff picture: division winners, wild
// cards, and the 1..7 seed order per conference. Coin tosses use a fixed
// source so repeated requests agree.
func (h *Handler) GetSeeds(w http.ResponseWriter, r *http.Request) {
	season := h.season(r)
	key := fmt.Sprintf("seeds:%d", season)

	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLSeeds, true)
		return
	}

	entrants, matchups, ok := h.loadSchedule(w, r, season)
	if !ok {
		return
	}

	standings := league.ComputeStandings(matchups, entrants)
	resolver := tiebreak.NewResolver(rand.New(rand.NewSource(0)), h.logger)
	engine := seeding.NewEngine(resolver, h.logger)

	winners, err := engine.DivisionWinners(entrants, standings, matchups)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusUnprocessableEntity, "SEEDING_FAILED",
			"Failed to determine division winners", err.Error())
		return
	}
	wildCards, err := engine.WildCards(entrants, standings, matchups, winners)
	if err != nil {
		respond.WriteErrorDetail(w, http.StatusUnprocessableEntity, "SEEDING_FAILED",
			"Failed to determine wild cards", err.Error())
		return
	}

	conferences := make(map[string]interface{}, len(league.Conferences))
	for _, conf := range league.Conferences {
		seeds, err := engine.SeedConference(entrants, standings, matchups, conf, winners, wildCards[conf])
		if err != nil {
			respond.WriteErrorDetail(w, http.StatusUnprocessableEntity, "SEEDING_FAILED",
				fmt.Sprintf("Failed to seed conference %s", conf), err.Error())
			return
		}
		conferences[string(conf)] = map[string]interface{}{
			"seeds":      seeds,
			"wild_cards": wildCards[conf],
		}
	}

	data, err := json.Marshal(map[string]interface{}{
		"season":           season,
		"division_winners": winners,
		"conferences":      conferences,
	})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", "Failed to encode seeds")
		return
	}
	etag := h.cache.Set(key, data, cache.TTLSeeds)
	respond.WriteJSON(w, data, etag, cache.TTLSeeds, false)
}

// loadSchedule fetches the entrant and matchup snapshot, writing the error
// response itself on failure.
func (h *Handler) loadSchedule(w http.ResponseWriter, r *http.Request, season int) ([]league.Entrant, []league.Matchup, bool) {
	entrants, err := h.schedule.Entrants(r.Context())
	if err != nil {
		h.logger.Error("load entrants failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "SCHEDULE_LOAD_FAILED", "Failed to load entrants")
		return nil, nil, false
	}
	if len(entrants) == 0 {
		respond.WriteError(w, http.StatusNotFound, "NO_ENTRANTS", "No entrants loaded; seed the league first")
		return nil, nil, false
	}
	matchups, err := h.schedule.Matchups(r.Context(), season)
	if err != nil {
		h.logger.Error("load matchups failed", "season", season, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "SCHEDULE_LOAD_FAILED", "Failed to load matchups")
		return nil, nil, false
	}
	return entrants, matchups, true
}
