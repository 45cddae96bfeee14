package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/edvart/fighter-roulette/internal/battle"
	"github.com/edvart/fighter-roulette/internal/coordinator"
	"github.com/edvart/fighter-roulette/internal/ranking"
	"github.com/edvart/fighter-roulette/internal/roster"
	"github.com/edvart/fighter-roulette/internal/settings"
	"github.com/edvart/fighter-roulette/internal/store"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

const (
	handlerTimeout = 10 * time.Second

	defaultHistory = 20
	maxHistory     = 100
)

var errTimeout = errors.New("request timed out")

// waitForResponse waits for a response with a timeout.
func waitForResponse(resp <-chan error) error {
	select {
	case err := <-resp:
		return err
	case <-time.After(handlerTimeout):
		return errTimeout
	}
}

type errorBody struct {
	Error   string `json:"error"`
	TierSum *int   `json:"tierSum,omitempty"`
	BumpSum *int   `json:"bumpSum,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}
	var we *settings.WeightError
	if errors.As(err, &we) {
		body.TierSum = &we.TierSum
		body.BumpSum = &we.BumpSum
	}
	writeJSON(w, statusFor(err), body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, coordinator.ErrMatchupNotFound),
		errors.Is(err, roster.ErrFighterNotFound):
		return http.StatusNotFound
	case errors.Is(err, battle.ErrGenerationExhausted),
		errors.Is(err, battle.ErrNoWinner):
		return http.StatusConflict
	case errors.Is(err, errTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

// intParam parses an optional integer query parameter.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

func (s *Server) handleGenerateBattle(w http.ResponseWriter, r *http.Request) {
	players, err := intParam(r, "players", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make(chan coordinator.GenerateResult, 1)
	s.coordinator.Send(coordinator.GenerateBattle{Players: players, Response: resp})

	var res coordinator.GenerateResult
	select {
	case res = <-resp:
	case <-time.After(handlerTimeout):
		res.Err = errTimeout
	}
	if res.Err != nil {
		writeError(w, res.Err)
		return
	}

	writeJSON(w, http.StatusCreated, res.Matchup)
}

func (s *Server) handleRecentBattles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.coordinator.Recent())
}

func (s *Server) handleGetBattle(w http.ResponseWriter, r *http.Request) {
	view, err := s.coordinator.GetMatchup(chi.URLParam(r, "matchupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAssignWinner(w http.ResponseWriter, r *http.Request) {
	matchupID := chi.URLParam(r, "matchupID")
	player, err := strconv.Atoi(chi.URLParam(r, "player"))
	if err != nil {
		writeError(w, fmt.Errorf("invalid player %q", chi.URLParam(r, "player")))
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.AssignWinner{
		MatchupID: matchupID,
		Player:    player,
		Response:  resp,
	})

	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearWinner(w http.ResponseWriter, r *http.Request) {
	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.ClearWinner{
		MatchupID: chi.URLParam(r, "matchupID"),
		Response:  resp,
	})

	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetFighter(w http.ResponseWriter, r *http.Request) {
	stats, err := s.coordinator.GetFighter(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	player := ranking.Aggregate
	if raw := r.URL.Query().Get("player"); raw != "" && raw != "all" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, fmt.Errorf("invalid player %q", raw))
			return
		}
		player = p
	}

	by, err := ranking.ParseBy(r.URL.Query().Get("by"))
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := s.coordinator.Rankings(player, by)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking.Top(entries, limit))
}

type historySlot struct {
	Player   int         `json:"player"`
	Fighter  string      `json:"fighter"`
	Tier     roster.Tier `json:"tier"`
	TierName string      `json:"tierName"`
}

type historyEntry struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Winner    *int          `json:"winner,omitempty"`
	Slots     []historySlot `json:"slots"`
}

func toHistoryEntry(m store.Matchup) historyEntry {
	e := historyEntry{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Winner:    m.Winner,
		Slots:     make([]historySlot, len(m.Slots)),
	}
	for i, slot := range m.Slots {
		e.Slots[i] = historySlot{
			Player:   slot.Player,
			Fighter:  slot.Fighter,
			Tier:     slot.Tier,
			TierName: slot.Tier.String(),
		}
	}
	return e
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultHistory)
	if err != nil {
		writeError(w, err)
		return
	}
	if limit <= 0 || limit > maxHistory {
		limit = defaultHistory
	}

	matchups, err := s.store.ListMatchups(r.Context(), limit)
	if err != nil {
		log.Errorf("Failed to list matchups: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to load history"})
		return
	}

	out := make([]historyEntry, len(matchups))
	for i, m := range matchups {
		out[i] = toHistoryEntry(m)
	}
	writeJSON(w, http.StatusOK, out)
}
