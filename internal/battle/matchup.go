package battle

import (
	"errors"
	"fmt"
	"time"

	"github.com/edvart/fighter-roulette/internal/roster"
)

var ErrNoWinner = errors.New("matchup has no winner")

// Slot is one player's assignment in a matchup.
type Slot struct {
	Player  int
	Fighter *roster.Fighter
	Tier    roster.Tier
}

// Matchup is one generated battle: one fighter per player, and optionally a
// winner whose result has been credited to the fighters' counters.
type Matchup struct {
	ID        string
	CreatedAt time.Time
	Slots     []Slot
	BaseTier  roster.Tier
	Attempts  int
	winner    int
}

func newMatchup(id string, slots []Slot, base roster.Tier, attempts int) *Matchup {
	return &Matchup{
		ID:        id,
		CreatedAt: time.Now(),
		Slots:     slots,
		BaseTier:  base,
		Attempts:  attempts,
		winner:    -1,
	}
}

// Players returns the number of slots.
func (m *Matchup) Players() int {
	return len(m.Slots)
}

// Winner returns the winning player slot, if one has been assigned.
func (m *Matchup) Winner() (int, bool) {
	return m.winner, m.winner >= 0
}

// AssignWinner credits a win to player and a battle to every slot. A previous
// assignment is rolled back first, so reassigning the same player leaves the
// counters unchanged.
func (m *Matchup) AssignWinner(player int) error {
	if err := roster.CheckPlayer(player, len(m.Slots)); err != nil {
		return err
	}
	if err := m.rollback(); err != nil {
		return err
	}
	for _, s := range m.Slots {
		if err := s.Fighter.Credit(s.Player, s.Player == player); err != nil {
			return fmt.Errorf("credit slot %d: %w", s.Player, err)
		}
	}
	m.winner = player
	return nil
}

// ClearWinner rolls back the current winner, if any.
func (m *Matchup) ClearWinner() error {
	if m.winner < 0 {
		return ErrNoWinner
	}
	return m.rollback()
}

func (m *Matchup) rollback() error {
	if m.winner < 0 {
		return nil
	}
	for _, s := range m.Slots {
		if err := s.Fighter.Revert(s.Player, s.Player == m.winner); err != nil {
			return fmt.Errorf("roll back slot %d: %w", s.Player, err)
		}
	}
	m.winner = -1
	return nil
}

// Equal reports whether two matchups hold the same fighters, in any order.
func (m *Matchup) Equal(other *Matchup) bool {
	if other == nil || len(m.Slots) != len(other.Slots) {
		return false
	}
	counts := make(map[string]int, len(m.Slots))
	for _, s := range m.Slots {
		counts[s.Fighter.Key()]++
	}
	for _, s := range other.Slots {
		k := s.Fighter.Key()
		if counts[k] == 0 {
			return false
		}
		counts[k]--
	}
	return true
}

// SlotView is a copy of one slot, safe to share outside the owning goroutine.
type SlotView struct {
	Player   int           `json:"player"`
	Fighter  string        `json:"fighter"`
	Tier     roster.Tier   `json:"tier"`
	TierName string        `json:"tierName"`
	Record   roster.Record `json:"record"`
}

// View is a copy of a matchup and its fighters' counters.
type View struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	Slots     []SlotView `json:"slots"`
	Winner    *int       `json:"winner,omitempty"`
	Attempts  int        `json:"attempts"`
}

func (m *Matchup) View() View {
	v := View{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		Slots:     make([]SlotView, len(m.Slots)),
		Attempts:  m.Attempts,
	}
	for i, s := range m.Slots {
		v.Slots[i] = SlotView{
			Player:   s.Player,
			Fighter:  s.Fighter.Name,
			Tier:     s.Tier,
			TierName: s.Tier.String(),
			Record:   s.Fighter.Records[s.Player],
		}
	}
	if w, ok := m.Winner(); ok {
		v.Winner = &w
	}
	return v
}
