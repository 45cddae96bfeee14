// Package battle generates matchups: it draws a shared base tier from the
// tier weights, jitters and bumps it per player, and picks a fighter for each
// player from what the pool and cooldowns still allow.
package battle

import (
	"errors"
	"fmt"

	"github.com/edvart/fighter-roulette/internal/cooldown"
	"github.com/edvart/fighter-roulette/internal/roster"
	"github.com/edvart/fighter-roulette/internal/settings"
	"github.com/google/uuid"
)

// MaxAttempts bounds how many independent draws Generate makes.
const MaxAttempts = 25

var ErrGenerationExhausted = errors.New("could not generate a battle")

// ExhaustedError is returned when every attempt left some player without
// a candidate.
type ExhaustedError struct {
	Attempts int
	// LastEmpty is the player whose candidate list was empty on the final attempt.
	LastEmpty int
	LastTier  roster.Tier
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%v: %d attempts failed (last: player %d had no candidates in %s)",
		ErrGenerationExhausted, e.Attempts, e.LastEmpty, e.LastTier)
}

func (e *ExhaustedError) Unwrap() error {
	return ErrGenerationExhausted
}

// Request describes one battle to generate.
type Request struct {
	Players int
	// LowestTier, if set, is the lowest-ranked sub-tier any player may get.
	LowestTier *roster.Tier
}

// Generator draws matchups from a pool. It is not safe for concurrent use;
// callers serialize access to it together with the state it reads.
type Generator struct {
	pool     *roster.Pool
	tracker  *cooldown.Tracker
	settings *settings.Settings
	rng      Source
	newID    func() string
}

// NewGenerator creates a generator over shared state. rng must not be
// shared with other goroutines.
func NewGenerator(pool *roster.Pool, tracker *cooldown.Tracker, s *settings.Settings, rng Source) *Generator {
	return &Generator{
		pool:     pool,
		tracker:  tracker,
		settings: s,
		rng:      rng,
		newID:    func() string { return uuid.New().String() },
	}
}

// Generate produces a matchup and records its fighters in the cooldown
// queues. When all MaxAttempts draws fail it returns an *ExhaustedError and
// leaves the cooldown queues untouched.
func (g *Generator) Generate(req Request) (*Matchup, error) {
	if req.Players < roster.MinPlayers || req.Players > roster.MaxPlayers {
		return nil, fmt.Errorf("%w: %d players (want %d-%d)",
			roster.ErrPlayerOutOfRange, req.Players, roster.MinPlayers, roster.MaxPlayers)
	}
	lowest := roster.Tier(roster.NumTiers - 1)
	if req.LowestTier != nil {
		if err := roster.CheckTier(*req.LowestTier); err != nil {
			return nil, err
		}
		lowest = *req.LowestTier
	}

	weights := g.settings.Active()
	exhausted := &ExhaustedError{Attempts: MaxAttempts}
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		base, slots, empty := g.attempt(req.Players, lowest, weights)
		if slots == nil {
			exhausted.LastEmpty = empty.Player
			exhausted.LastTier = empty.Tier
			continue
		}

		round := make([]cooldown.Entry, len(slots))
		for i, s := range slots {
			round[i] = cooldown.Entry{Fighter: s.Fighter.Name, Tier: s.Tier}
		}
		if err := g.tracker.RecordRound(round); err != nil {
			return nil, err
		}
		return newMatchup(g.newID(), slots, base, attempt), nil
	}
	return nil, exhausted
}

// attempt runs one independent draw. It returns nil slots and the slot that
// had no candidates on failure.
func (g *Generator) attempt(players int, lowest roster.Tier, weights settings.Values) (roster.Tier, []Slot, Slot) {
	class := Draw(g.rng, weights.Tier[:])
	if class < 0 {
		return 0, nil, Slot{}
	}
	base := roster.MiddleOf(class) + roster.Tier(g.rng.IntN(3)-1)

	slots := make([]Slot, 0, players)
	taken := make(map[string]bool, players)
	for p := 0; p < players; p++ {
		tier := g.playerTier(base, lowest, weights)

		candidates, err := g.pool.Candidates(p, []roster.Tier{tier}, g.tracker)
		if err != nil {
			return base, nil, Slot{Player: p, Tier: tier}
		}
		available := candidates[:0]
		for _, f := range candidates {
			if !taken[f.Key()] {
				available = append(available, f)
			}
		}
		if len(available) == 0 {
			return base, nil, Slot{Player: p, Tier: tier}
		}

		f := available[g.rng.IntN(len(available))]
		taken[f.Key()] = true
		slots = append(slots, Slot{Player: p, Fighter: f, Tier: tier})
	}
	return base, slots, Slot{}
}

// playerTier applies one player's bump to the shared base sub-tier.
func (g *Generator) playerTier(base, lowest roster.Tier, weights settings.Values) roster.Tier {
	shift := Draw(g.rng, weights.Bump[:])
	if shift < 0 {
		shift = 0
	}
	tier := base - roster.Tier(shift)
	if tier < 0 {
		tier = 0
	}
	if tier > lowest {
		tier = lowest
	}
	return enabledTier(tier, weights.Tier)
}

// enabledTier walks down from tier to the first sub-tier whose class has
// weight, falling back to walking up when nothing below is enabled.
func enabledTier(tier roster.Tier, w settings.TierWeights) roster.Tier {
	for t := tier; t < roster.NumTiers; t++ {
		if w.Enabled(t.Class()) {
			return t
		}
	}
	for t := tier - 1; t >= 0; t-- {
		if w.Enabled(t.Class()) {
			return t
		}
	}
	return tier
}
