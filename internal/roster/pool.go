package roster

import "fmt"

// Blocker reports fighters that are temporarily unavailable to a player.
type Blocker interface {
	Blocked(player int, name string) bool
}

// Pool groups registered fighters into the 24 sub-tier buckets and carries
// each player's exclusion and favorite lists.
type Pool struct {
	registry   *Registry
	buckets    [NumTiers][]*Fighter
	exclusions [MaxPlayers]map[string]bool
	favorites  [MaxPlayers]map[string]bool
}

// NewPool creates an empty pool backed by registry.
func NewPool(registry *Registry) *Pool {
	p := &Pool{registry: registry}
	for i := range p.exclusions {
		p.exclusions[i] = make(map[string]bool)
		p.favorites[i] = make(map[string]bool)
	}
	return p
}

func (p *Pool) Registry() *Registry {
	return p.registry
}

// Add places a fighter in a sub-tier, registering it if needed. A fighter
// already placed in the pool cannot be added again.
func (p *Pool) Add(name string, tier Tier) (*Fighter, error) {
	if err := CheckTier(tier); err != nil {
		return nil, err
	}
	if f, err := p.registry.Lookup(name); err == nil && p.contains(f) {
		return nil, fmt.Errorf("%w: %s is already in %s", ErrDuplicateFighter, f.Name, f.Tier)
	}
	f, err := p.registry.Ensure(name, tier)
	if err != nil {
		return nil, err
	}
	// Fighters first seen in the stats store take the tier the tier list gives them.
	f.Tier = tier
	p.buckets[tier] = append(p.buckets[tier], f)
	return f, nil
}

func (p *Pool) contains(f *Fighter) bool {
	if !f.Tier.Valid() {
		return false
	}
	for _, other := range p.buckets[f.Tier] {
		if other == f {
			return true
		}
	}
	return false
}

// InTier returns the fighters placed in a sub-tier, in insertion order.
func (p *Pool) InTier(tier Tier) ([]*Fighter, error) {
	if err := CheckTier(tier); err != nil {
		return nil, err
	}
	out := make([]*Fighter, len(p.buckets[tier]))
	copy(out, p.buckets[tier])
	return out, nil
}

// Size returns the number of fighters placed in the pool.
func (p *Pool) Size() int {
	n := 0
	for _, b := range p.buckets {
		n += len(b)
	}
	return n
}

// SetExclusions replaces the names a player can never be given.
func (p *Pool) SetExclusions(player int, names []string) error {
	if err := CheckPlayer(player, MaxPlayers); err != nil {
		return err
	}
	p.exclusions[player] = toSet(names)
	return nil
}

// SetFavorites replaces a player's favorite names.
func (p *Pool) SetFavorites(player int, names []string) error {
	if err := CheckPlayer(player, MaxPlayers); err != nil {
		return err
	}
	p.favorites[player] = toSet(names)
	return nil
}

func (p *Pool) IsExcluded(player int, name string) bool {
	if player < 0 || player >= MaxPlayers {
		return false
	}
	return p.exclusions[player][Key(name)]
}

func (p *Pool) IsFavorite(player int, name string) bool {
	if player < 0 || player >= MaxPlayers {
		return false
	}
	return p.favorites[player][Key(name)]
}

// Candidates returns the fighters in tiers that player may receive: not
// excluded for that player and not blocked by blocked (which may be nil).
func (p *Pool) Candidates(player int, tiers []Tier, blocked Blocker) ([]*Fighter, error) {
	if err := CheckPlayer(player, MaxPlayers); err != nil {
		return nil, err
	}
	var out []*Fighter
	for _, t := range tiers {
		if err := CheckTier(t); err != nil {
			return nil, err
		}
		for _, f := range p.buckets[t] {
			if p.exclusions[player][f.Key()] {
				continue
			}
			if blocked != nil && blocked.Blocked(player, f.Name) {
				continue
			}
			out = append(out, f)
		}
	}
	return out, nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		if k := Key(n); k != "" {
			set[k] = true
		}
	}
	return set
}
