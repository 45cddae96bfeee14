package coordinator

import (
	"github.com/edvart/fighter-roulette/internal/battle"
	"github.com/edvart/fighter-roulette/internal/cooldown"
	"github.com/edvart/fighter-roulette/internal/roster"
	"github.com/edvart/fighter-roulette/internal/settings"
)

type Event interface {
	event() // marker method
}

type BattleGenerated struct {
	Matchup battle.View `json:"matchup"`
}

func (BattleGenerated) event() {}

type GenerationFailed struct {
	Players  int    `json:"players"`
	Attempts int    `json:"attempts"`
	Reason   string `json:"reason"`
}

func (GenerationFailed) event() {}

// WinnerAssigned carries the matchup and the updated counters of its fighters.
type WinnerAssigned struct {
	Matchup  battle.View    `json:"matchup"`
	Previous *int           `json:"previous,omitempty"` // Earlier winner that was rolled back, if any
	Fighters []roster.Stats `json:"fighters"`
}

func (WinnerAssigned) event() {}

type WinnerCleared struct {
	Matchup  battle.View    `json:"matchup"`
	Fighters []roster.Stats `json:"fighters"`
}

func (WinnerCleared) event() {}

type SettingsCommitted struct {
	Settings settings.Values `json:"settings"`
}

func (SettingsCommitted) event() {}

type SettingsRejected struct {
	TierSum int    `json:"tierSum"`
	BumpSum int    `json:"bumpSum"`
	Reason  string `json:"reason"`
}

func (SettingsRejected) event() {}

type CooldownUpdated struct {
	Config cooldown.Config `json:"config"`
}

func (CooldownUpdated) event() {}
