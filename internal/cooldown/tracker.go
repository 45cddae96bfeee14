// Package cooldown keeps the "cannot get" queues: recently obtained fighters
// that may not be handed out again for a while.
package cooldown

import (
	"fmt"

	"github.com/edvart/fighter-roulette/internal/roster"
)

// MaxCapacity is the largest per-player cooldown length.
const MaxCapacity = 15

// Entry is one obtained fighter together with the sub-tier it was drawn from.
type Entry struct {
	Fighter string      `json:"fighter"`
	Tier    roster.Tier `json:"tier"`
}

type queue []Entry

func (q queue) contains(name string) bool {
	key := roster.Key(name)
	for _, e := range q {
		if roster.Key(e.Fighter) == key {
			return true
		}
	}
	return false
}

// Favorites reports fighters exempt from a player's individual queue.
type Favorites interface {
	IsFavorite(player int, name string) bool
}

// Config controls queue sizes and which broad tiers enter the global queue.
type Config struct {
	Capacity int  `json:"capacity"`
	AllowSS  bool `json:"allowSS"`
	AllowS   bool `json:"allowS"`
}

// Validate checks the capacity bound.
func (c Config) Validate() error {
	if c.Capacity < 0 || c.Capacity > MaxCapacity {
		return fmt.Errorf("cooldown capacity %d out of range (want 0-%d)", c.Capacity, MaxCapacity)
	}
	return nil
}

// Tracker holds one global queue sized Capacity*players and one queue per
// player sized Capacity. Both evict oldest first.
type Tracker struct {
	cfg       Config
	favorites Favorites
	global    queue
	players   [roster.MaxPlayers]queue
	round     int // player count of the most recent record
}

// New creates an empty tracker. favorites may be nil.
func New(cfg Config, favorites Favorites) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tracker{cfg: cfg, favorites: favorites}, nil
}

func (t *Tracker) Config() Config {
	return t.cfg
}

// Configure applies a new config, trimming queues that are now too long.
func (t *Tracker) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	t.cfg = cfg
	for p := range t.players {
		t.players[p] = trimFront(t.players[p], len(t.players[p])-cfg.Capacity)
	}
	if t.round > 0 {
		t.global = trimFront(t.global, len(t.global)-cfg.Capacity*t.round)
	} else if cfg.Capacity == 0 {
		t.global = nil
	}
	return nil
}

// Record notes that player obtained fighter from tier in a matchup of the
// given size.
func (t *Tracker) Record(fighter string, tier roster.Tier, player, players int) error {
	if err := t.check(tier, player, players); err != nil {
		return err
	}
	t.record(Entry{Fighter: fighter, Tier: tier}, player, players)
	return nil
}

// RecordRound records a whole matchup, where round[i] is player i's fighter.
// Nothing is recorded unless every entry is valid.
func (t *Tracker) RecordRound(round []Entry) error {
	for i, e := range round {
		if err := t.check(e.Tier, i, len(round)); err != nil {
			return err
		}
	}
	for i, e := range round {
		t.record(e, i, len(round))
	}
	return nil
}

func (t *Tracker) check(tier roster.Tier, player, players int) error {
	if players < 1 || players > roster.MaxPlayers {
		return fmt.Errorf("%w: %d players", roster.ErrPlayerOutOfRange, players)
	}
	if err := roster.CheckPlayer(player, players); err != nil {
		return err
	}
	return roster.CheckTier(tier)
}

func (t *Tracker) record(e Entry, player, players int) {
	if t.cfg.Capacity == 0 {
		return
	}
	t.round = players

	if t.favorites == nil || !t.favorites.IsFavorite(player, e.Fighter) {
		q := append(t.players[player], e)
		t.players[player] = trimFront(q, len(q)-t.cfg.Capacity)
	}

	if !t.globalAllowed(e.Tier) {
		return
	}
	limit := t.cfg.Capacity * players
	for len(t.global) >= limit {
		t.global = trimFront(t.global, players)
	}
	t.global = append(t.global, e)
}

func (t *Tracker) globalAllowed(tier roster.Tier) bool {
	switch tier.Class() {
	case 0:
		return t.cfg.AllowSS
	case 1:
		return t.cfg.AllowS
	default:
		return true
	}
}

// Blocked reports whether name is in the global queue or in player's queue.
func (t *Tracker) Blocked(player int, name string) bool {
	if t.global.contains(name) {
		return true
	}
	if player < 0 || player >= roster.MaxPlayers {
		return false
	}
	return t.players[player].contains(name)
}

func (t *Tracker) InGlobal(name string) bool {
	return t.global.contains(name)
}

func (t *Tracker) InPlayer(player int, name string) bool {
	if player < 0 || player >= roster.MaxPlayers {
		return false
	}
	return t.players[player].contains(name)
}

// Global returns a copy of the global queue, oldest first.
func (t *Tracker) Global() []Entry {
	return append([]Entry(nil), t.global...)
}

// Player returns a copy of a player's queue, oldest first.
func (t *Tracker) Player(player int) ([]Entry, error) {
	if err := roster.CheckPlayer(player, roster.MaxPlayers); err != nil {
		return nil, err
	}
	return append([]Entry(nil), t.players[player]...), nil
}

// Clear empties every queue.
func (t *Tracker) Clear() {
	t.global = nil
	for p := range t.players {
		t.players[p] = nil
	}
}

func trimFront(q queue, n int) queue {
	if n <= 0 {
		return q
	}
	if n >= len(q) {
		return nil
	}
	out := make(queue, len(q)-n)
	copy(out, q[n:])
	return out
}
