package roster

import (
	"errors"
	"fmt"
)

const (
	// NumTiers is the number of sub-tiers (Upper/Mid/Lower for each class).
	NumTiers = 24
	// NumClasses is the number of broad tier classes, SS through F.
	NumClasses = 8
	// SubTiersPerClass is how many sub-tiers each class is split into.
	SubTiersPerClass = 3
	// MaxPlayers is the number of player slots tracked per fighter.
	MaxPlayers = 8
	// MinPlayers is the smallest matchup size.
	MinPlayers = 2
)

var (
	ErrTierOutOfRange   = errors.New("tier out of range")
	ErrPlayerOutOfRange = errors.New("player out of range")
)

var classNames = [NumClasses]string{"SS", "S", "A", "B", "C", "D", "E", "F"}

var positionNames = [SubTiersPerClass]string{"Upper", "Mid", "Lower"}

// Tier is a sub-tier index, 0 (Upper SS) through 23 (Lower F).
type Tier int

// Class returns the broad class index, 0 (SS) through 7 (F).
func (t Tier) Class() int {
	return int(t) / SubTiersPerClass
}

// Valid reports whether t is a known sub-tier.
func (t Tier) Valid() bool {
	return t >= 0 && t < NumTiers
}

func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return positionNames[int(t)%SubTiersPerClass] + " " + classNames[t.Class()]
}

// MiddleOf returns the Mid sub-tier of a class.
func MiddleOf(class int) Tier {
	return Tier(class*SubTiersPerClass + 1)
}

// ClassName returns the short name of a class, e.g. "SS".
func ClassName(class int) string {
	if class < 0 || class >= NumClasses {
		return fmt.Sprintf("Class(%d)", class)
	}
	return classNames[class]
}

// CheckTier returns ErrTierOutOfRange if t is not a valid sub-tier.
func CheckTier(t Tier) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %d (want 0-%d)", ErrTierOutOfRange, int(t), NumTiers-1)
	}
	return nil
}

// CheckPlayer returns ErrPlayerOutOfRange if player is not in [0, players).
func CheckPlayer(player, players int) error {
	if player < 0 || player >= players {
		return fmt.Errorf("%w: %d (want 0-%d)", ErrPlayerOutOfRange, player, players-1)
	}
	return nil
}
