package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/edvart/fighter-roulette/internal/cooldown"
	"github.com/edvart/fighter-roulette/internal/coordinator"
	"github.com/edvart/fighter-roulette/internal/roster"
	"github.com/edvart/fighter-roulette/internal/settings"
)

type weightsRequest struct {
	Weights []int `json:"weights"`
}

type lowestTierRequest struct {
	Tier *roster.Tier `json:"tier"` // null lifts the restriction
}

func decodeWeights(r *http.Request, want int) ([]int, error) {
	var req weightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if len(req.Weights) != want {
		return nil, fmt.Errorf("expected %d weights, got %d", want, len(req.Weights))
	}
	return req.Weights, nil
}

// handleGetSettings returns the active and staged settings.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.coordinator.GetSettings())
}

// handleStageTierWeights stages tier weights for the next commit.
func (s *Server) handleStageTierWeights(w http.ResponseWriter, r *http.Request) {
	values, err := decodeWeights(r, roster.NumClasses)
	if err != nil {
		writeError(w, err)
		return
	}
	var weights settings.TierWeights
	copy(weights[:], values)

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.StageTierWeights{Weights: weights, Response: resp})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleStageBumpWeights stages bump weights for the next commit.
func (s *Server) handleStageBumpWeights(w http.ResponseWriter, r *http.Request) {
	values, err := decodeWeights(r, roster.SubTiersPerClass)
	if err != nil {
		writeError(w, err)
		return
	}
	var weights settings.BumpWeights
	copy(weights[:], values)

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.StageBumpWeights{Weights: weights, Response: resp})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleCommitSettings validates and applies the staged weights.
func (s *Server) handleCommitSettings(w http.ResponseWriter, r *http.Request) {
	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.CommitSettings{Response: resp})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.coordinator.GetSettings())
}

// handleSetCooldown applies a cooldown configuration immediately.
func (s *Server) handleSetCooldown(w http.ResponseWriter, r *http.Request) {
	var cfg cooldown.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.SetCooldown{Config: cfg, Response: resp})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleSetLowestTier sets or lifts the low-tier restriction.
func (s *Server) handleSetLowestTier(w http.ResponseWriter, r *http.Request) {
	var req lowestTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.SetLowestTier{Tier: req.Tier, Response: resp})
	if err := waitForResponse(resp); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
