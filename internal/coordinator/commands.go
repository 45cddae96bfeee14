package coordinator

import (
	"github.com/edvart/fighter-roulette/internal/battle"
	"github.com/edvart/fighter-roulette/internal/cooldown"
	"github.com/edvart/fighter-roulette/internal/roster"
	"github.com/edvart/fighter-roulette/internal/settings"
)

// Command is the interface for all commands sent to the coordinator.
type Command interface {
	command() // marker method
}

// GenerateResult is the reply to GenerateBattle.
type GenerateResult struct {
	Matchup battle.View
	Err     error
}

// GenerateBattle requests a new matchup. Players 0 reuses the previous count.
type GenerateBattle struct {
	Players  int
	Response chan GenerateResult
}

func (GenerateBattle) command() {}

// AssignWinner reports the winning player slot of a matchup.
type AssignWinner struct {
	MatchupID string
	Player    int
	Response  chan error
}

func (AssignWinner) command() {}

// ClearWinner undoes a reported result.
type ClearWinner struct {
	MatchupID string
	Response  chan error
}

func (ClearWinner) command() {}

// StageTierWeights sets tentative tier weights; CommitSettings applies them.
type StageTierWeights struct {
	Weights  settings.TierWeights
	Response chan error
}

func (StageTierWeights) command() {}

// StageBumpWeights sets tentative bump weights; CommitSettings applies them.
type StageBumpWeights struct {
	Weights  settings.BumpWeights
	Response chan error
}

func (StageBumpWeights) command() {}

// CommitSettings validates and applies staged weights.
type CommitSettings struct {
	Response chan error
}

func (CommitSettings) command() {}

// SetCooldown changes cooldown capacity and S/SS gating immediately.
type SetCooldown struct {
	Config   cooldown.Config
	Response chan error
}

func (SetCooldown) command() {}

// SetLowestTier turns the low-tier restriction on, or off when Tier is nil.
type SetLowestTier struct {
	Tier     *roster.Tier
	Response chan error
}

func (SetLowestTier) command() {}
