package coordinator

import (
	"errors"

	"github.com/edvart/fighter-roulette/internal/battle"
	"github.com/edvart/fighter-roulette/internal/cooldown"
	"github.com/edvart/fighter-roulette/internal/roster"
	"github.com/edvart/fighter-roulette/internal/settings"
)

// MatchupHistory is how many recent matchups stay available for winner
// (re)assignment.
const MatchupHistory = 32

var ErrMatchupNotFound = errors.New("matchup not found")

// State is everything the coordinator owns. It is only touched from the
// coordinator goroutine once Run has started.
type State struct {
	Registry  *roster.Registry
	Pool      *roster.Pool
	Tracker   *cooldown.Tracker
	Settings  *settings.Settings
	Generator *battle.Generator

	Matchups map[string]*battle.Matchup // Recent matchups keyed by ID
	recent   []string                   // Matchup IDs, oldest first

	Players    int          // Player count used when a request does not name one
	LowestTier *roster.Tier // Low-tier restriction, nil when off
}

// NewState wires the core components over pool, starting from initial settings.
func NewState(pool *roster.Pool, initial settings.Values, rng battle.Source) (*State, error) {
	s, err := settings.New(initial)
	if err != nil {
		return nil, err
	}
	tracker, err := cooldown.New(initial.Cooldown, pool)
	if err != nil {
		return nil, err
	}
	return &State{
		Registry:  pool.Registry(),
		Pool:      pool,
		Tracker:   tracker,
		Settings:  s,
		Generator: battle.NewGenerator(pool, tracker, s, rng),
		Matchups:  make(map[string]*battle.Matchup),
		Players:   roster.MinPlayers,
	}, nil
}

func (s *State) GetMatchup(id string) (*battle.Matchup, error) {
	m, ok := s.Matchups[id]
	if !ok {
		return nil, ErrMatchupNotFound
	}
	return m, nil
}

// remember stores m, forgetting the oldest matchup beyond MatchupHistory.
func (s *State) remember(m *battle.Matchup) {
	s.Matchups[m.ID] = m
	s.recent = append(s.recent, m.ID)
	for len(s.recent) > MatchupHistory {
		delete(s.Matchups, s.recent[0])
		s.recent = s.recent[1:]
	}
}

// Recent returns remembered matchups, newest first.
func (s *State) Recent() []*battle.Matchup {
	out := make([]*battle.Matchup, 0, len(s.recent))
	for i := len(s.recent) - 1; i >= 0; i-- {
		out = append(out, s.Matchups[s.recent[i]])
	}
	return out
}

// Stats copies every registered fighter's counters.
func (s *State) Stats() []roster.Stats {
	all := s.Registry.All()
	out := make([]roster.Stats, len(all))
	for i, f := range all {
		out[i] = f.Stats()
	}
	return out
}
