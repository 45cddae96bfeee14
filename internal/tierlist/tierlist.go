// Package tierlist loads the tier list file: fighters per sub-tier, each
// player's exclusions and favorites, and the initial generation settings.
//
// The file is INI:
//
//	[tiers]
//	upper_ss = Fox, Falco
//	mid_ss   = Marth
//	...
//	[exclusions]
//	player1 = Kirby
//	[favorites]
//	player2 = Pikachu
//	[settings]
//	tier_weights = 5, 10, 15, 20, 20, 15, 10, 5
//	bump_weights = 70, 20, 10
//	cooldown     = 2
//	allow_ss     = false
//	allow_s      = true
package tierlist

import (
	"fmt"
	"strings"

	"github.com/edvart/fighter-roulette/internal/roster"
	"github.com/edvart/fighter-roulette/internal/settings"
	"gopkg.in/ini.v1"
)

const (
	sectionTiers      = "tiers"
	sectionExclusions = "exclusions"
	sectionFavorites  = "favorites"
	sectionSettings   = "settings"
)

// Data is the parsed contents of a tier list file.
type Data struct {
	Tiers      [roster.NumTiers][]string
	Exclusions [roster.MaxPlayers][]string
	Favorites  [roster.MaxPlayers][]string
	Settings   settings.Values
}

// TierKey returns the INI key for a sub-tier, e.g. "upper_ss".
func TierKey(t roster.Tier) string {
	return strings.ToLower(strings.ReplaceAll(t.String(), " ", "_"))
}

// PlayerKey returns the INI key for a player slot, counting from player1.
func PlayerKey(player int) string {
	return fmt.Sprintf("player%d", player+1)
}

// Load parses a tier list from a file path or raw []byte.
func Load(source interface{}) (*Data, error) {
	f, err := ini.Load(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read tier list: %w", err)
	}
	return parse(f)
}

func parse(f *ini.File) (*Data, error) {
	d := &Data{Settings: settings.Default()}

	tiers := f.Section(sectionTiers)
	seen := make(map[string]roster.Tier)
	for t := roster.Tier(0); t < roster.NumTiers; t++ {
		names := list(tiers.Key(TierKey(t)))
		for _, n := range names {
			if prev, ok := seen[roster.Key(n)]; ok {
				return nil, fmt.Errorf("%w: %s listed in both %s and %s", roster.ErrDuplicateFighter, n, prev, t)
			}
			seen[roster.Key(n)] = t
		}
		d.Tiers[t] = names
	}

	excl := f.Section(sectionExclusions)
	favs := f.Section(sectionFavorites)
	for p := 0; p < roster.MaxPlayers; p++ {
		d.Exclusions[p] = list(excl.Key(PlayerKey(p)))
		d.Favorites[p] = list(favs.Key(PlayerKey(p)))
	}

	if err := parseSettings(f.Section(sectionSettings), &d.Settings); err != nil {
		return nil, err
	}
	return d, nil
}

func parseSettings(sec *ini.Section, v *settings.Values) error {
	if sec.HasKey("tier_weights") {
		ws, err := sec.Key("tier_weights").StrictInts(",")
		if err != nil {
			return fmt.Errorf("tier_weights: %w", err)
		}
		if len(ws) != len(v.Tier) {
			return fmt.Errorf("tier_weights: got %d values, want %d", len(ws), len(v.Tier))
		}
		copy(v.Tier[:], ws)
	}
	if sec.HasKey("bump_weights") {
		ws, err := sec.Key("bump_weights").StrictInts(",")
		if err != nil {
			return fmt.Errorf("bump_weights: %w", err)
		}
		if len(ws) != len(v.Bump) {
			return fmt.Errorf("bump_weights: got %d values, want %d", len(ws), len(v.Bump))
		}
		copy(v.Bump[:], ws)
	}
	if sec.HasKey("cooldown") {
		n, err := sec.Key("cooldown").Int()
		if err != nil {
			return fmt.Errorf("cooldown: %w", err)
		}
		v.Cooldown.Capacity = n
	}
	v.Cooldown.AllowSS = sec.Key("allow_ss").MustBool(v.Cooldown.AllowSS)
	v.Cooldown.AllowS = sec.Key("allow_s").MustBool(v.Cooldown.AllowS)

	if err := v.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

func list(k *ini.Key) []string {
	var out []string
	for _, s := range k.Strings(",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Pool places every listed fighter into a new pool backed by registry and
// applies the exclusion and favorite lists.
func (d *Data) Pool(registry *roster.Registry) (*roster.Pool, error) {
	pool := roster.NewPool(registry)
	for t, names := range d.Tiers {
		for _, n := range names {
			if _, err := pool.Add(n, roster.Tier(t)); err != nil {
				return nil, err
			}
		}
	}
	for p := 0; p < roster.MaxPlayers; p++ {
		if err := pool.SetExclusions(p, d.Exclusions[p]); err != nil {
			return nil, err
		}
		if err := pool.SetFavorites(p, d.Favorites[p]); err != nil {
			return nil, err
		}
	}
	return pool, nil
}
