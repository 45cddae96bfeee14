package roster

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFighterNotFound  = errors.New("fighter not found")
	ErrDuplicateFighter = errors.New("fighter already exists")
	ErrEmptyName        = errors.New("fighter name is empty")
)

// Record is one player slot's counters for a fighter. Wins never exceeds Battles.
type Record struct {
	Wins    int `json:"wins"`
	Battles int `json:"battles"`
}

// WinRate returns wins/battles, or ok=false when no battles have been played.
func (r Record) WinRate() (rate float64, ok bool) {
	if r.Battles == 0 {
		return 0, false
	}
	return float64(r.Wins) / float64(r.Battles), true
}

// Fighter is a selectable character with per-player win/battle counters.
type Fighter struct {
	Name    string
	Tier    Tier
	Records [MaxPlayers]Record
}

// Key returns the case-insensitive identity of a fighter name.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (f *Fighter) Key() string {
	return Key(f.Name)
}

// Record returns the counters for one player slot.
func (f *Fighter) Record(player int) (Record, error) {
	if err := CheckPlayer(player, MaxPlayers); err != nil {
		return Record{}, err
	}
	return f.Records[player], nil
}

// Total sums the counters of every player slot.
func (f *Fighter) Total() Record {
	var total Record
	for _, r := range f.Records {
		total.Wins += r.Wins
		total.Battles += r.Battles
	}
	return total
}

// Credit counts one battle for the player slot, and a win if won is set.
func (f *Fighter) Credit(player int, won bool) error {
	if err := CheckPlayer(player, MaxPlayers); err != nil {
		return err
	}
	f.Records[player].Battles++
	if won {
		f.Records[player].Wins++
	}
	return nil
}

// Revert undoes a previous Credit with the same arguments.
func (f *Fighter) Revert(player int, won bool) error {
	if err := CheckPlayer(player, MaxPlayers); err != nil {
		return err
	}
	r := &f.Records[player]
	if (won && r.Wins == 0) || (!won && r.Battles == r.Wins) {
		return fmt.Errorf("revert %s slot %d: no credit to revert", f.Name, player)
	}
	r.Battles--
	if won {
		r.Wins--
	}
	return nil
}

// Stats is a copy of a fighter's counters safe to hand to other goroutines.
type Stats struct {
	Name    string             `json:"name"`
	Tier    Tier               `json:"tier"`
	Records [MaxPlayers]Record `json:"records"`
}

// Total sums the counters of every player slot.
func (s Stats) Total() Record {
	var total Record
	for _, r := range s.Records {
		total.Wins += r.Wins
		total.Battles += r.Battles
	}
	return total
}

func (f *Fighter) Stats() Stats {
	return Stats{Name: f.Name, Tier: f.Tier, Records: f.Records}
}

// Registry indexes fighters by case-insensitive name, preserving insertion order.
type Registry struct {
	byKey map[string]*Fighter
	order []*Fighter
}

func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]*Fighter)}
}

// Add creates a fighter. It fails if the name is already registered.
func (r *Registry) Add(name string, tier Tier) (*Fighter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := CheckTier(tier); err != nil {
		return nil, err
	}
	if _, ok := r.byKey[Key(name)]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateFighter, name)
	}
	f := &Fighter{Name: name, Tier: tier}
	r.byKey[f.Key()] = f
	r.order = append(r.order, f)
	return f, nil
}

// Ensure returns the named fighter, creating it in tier if it does not exist yet.
func (r *Registry) Ensure(name string, tier Tier) (*Fighter, error) {
	if f, ok := r.byKey[Key(name)]; ok {
		return f, nil
	}
	return r.Add(name, tier)
}

// Lookup finds a fighter by name, ignoring case.
func (r *Registry) Lookup(name string) (*Fighter, error) {
	f, ok := r.byKey[Key(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFighterNotFound, name)
	}
	return f, nil
}

// All returns every fighter in registration order.
func (r *Registry) All() []*Fighter {
	out := make([]*Fighter, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Len() int {
	return len(r.order)
}
