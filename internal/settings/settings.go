// Package settings holds the probability weights that drive battle
// generation. Weight edits are staged and only become active once both
// vectors validate together.
package settings

import (
	"fmt"
	"strings"

	"github.com/edvart/fighter-roulette/internal/cooldown"
	"github.com/edvart/fighter-roulette/internal/roster"
)

// WeightTotal is the sum every weight vector must reach.
const WeightTotal = 100

// TierWeights are the percentage chances of each broad class, SS first.
type TierWeights [roster.NumClasses]int

// BumpWeights are the percentage chances of moving a player 0, 1 or 2
// sub-tiers up from the shared base tier.
type BumpWeights [3]int

func (w TierWeights) Sum() int { return sum(w[:]) }

func (w BumpWeights) Sum() int { return sum(w[:]) }

// Enabled reports whether a class has a non-zero weight.
func (w TierWeights) Enabled(class int) bool {
	return class >= 0 && class < len(w) && w[class] > 0
}

func sum(ws []int) int {
	total := 0
	for _, w := range ws {
		total += w
	}
	return total
}

func valid(ws []int) bool {
	for _, w := range ws {
		if w < 0 {
			return false
		}
	}
	return sum(ws) == WeightTotal
}

// Values is one complete set of generation settings.
type Values struct {
	Tier     TierWeights     `json:"tierWeights"`
	Bump     BumpWeights     `json:"bumpWeights"`
	Cooldown cooldown.Config `json:"cooldown"`
}

// Default returns the settings used when nothing else is configured.
func Default() Values {
	return Values{
		Tier:     TierWeights{5, 10, 15, 20, 20, 15, 10, 5},
		Bump:     BumpWeights{70, 20, 10},
		Cooldown: cooldown.Config{Capacity: 0, AllowSS: true, AllowS: true},
	}
}

// Validate checks both weight vectors and the cooldown bounds.
func (v Values) Validate() error {
	if err := checkWeights(v.Tier, v.Bump); err != nil {
		return err
	}
	return v.Cooldown.Validate()
}

// WeightError reports which weight vectors failed validation and their sums.
type WeightError struct {
	TierSum     int
	BumpSum     int
	TierInvalid bool
	BumpInvalid bool
}

func (e *WeightError) Error() string {
	var parts []string
	if e.TierInvalid {
		parts = append(parts, fmt.Sprintf("tier weights sum to %d, want %d", e.TierSum, WeightTotal))
	}
	if e.BumpInvalid {
		parts = append(parts, fmt.Sprintf("bump weights sum to %d, want %d", e.BumpSum, WeightTotal))
	}
	return "invalid weights: " + strings.Join(parts, "; ")
}

func checkWeights(tier TierWeights, bump BumpWeights) error {
	e := &WeightError{
		TierSum:     tier.Sum(),
		BumpSum:     bump.Sum(),
		TierInvalid: !valid(tier[:]),
		BumpInvalid: !valid(bump[:]),
	}
	if e.TierInvalid || e.BumpInvalid {
		return e
	}
	return nil
}

// Settings keeps the active values alongside tentative weight edits.
type Settings struct {
	active Values
	staged Values
}

// New creates settings with initial as both the active and staged values.
func New(initial Values) (*Settings, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &Settings{active: initial, staged: initial}, nil
}

// Active returns the values generation currently uses.
func (s *Settings) Active() Values {
	return s.active
}

// Staged returns the tentative values.
func (s *Settings) Staged() Values {
	return s.staged
}

func (s *Settings) StageTierWeights(w TierWeights) {
	s.staged.Tier = w
}

func (s *Settings) StageBumpWeights(w BumpWeights) {
	s.staged.Bump = w
}

// Commit makes the staged weights active if both vectors sum to 100. On
// failure the staged weights are reset to the active ones and a
// *WeightError is returned.
func (s *Settings) Commit() error {
	if err := checkWeights(s.staged.Tier, s.staged.Bump); err != nil {
		s.staged.Tier = s.active.Tier
		s.staged.Bump = s.active.Bump
		return err
	}
	s.active.Tier = s.staged.Tier
	s.active.Bump = s.staged.Bump
	return nil
}

// SetCooldown applies cooldown settings immediately.
func (s *Settings) SetCooldown(cfg cooldown.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.active.Cooldown = cfg
	s.staged.Cooldown = cfg
	return nil
}
