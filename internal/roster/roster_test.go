package roster

import (
	"errors"
	"testing"
)

type blockList map[string]bool

func (b blockList) Blocked(_ int, name string) bool {
	return b[Key(name)]
}

func TestTierString(t *testing.T) {
	cases := []struct {
		tier Tier
		want string
	}{
		{0, "Upper SS"},
		{1, "Mid SS"},
		{5, "Lower S"},
		{22, "Mid F"},
		{24, "Tier(24)"},
	}
	for _, c := range cases {
		if got := c.tier.String(); got != c.want {
			t.Errorf("Tier(%d).String() = %q; want %q", int(c.tier), got, c.want)
		}
	}
	if MiddleOf(7) != 22 || Tier(22).Class() != 7 {
		t.Fatalf("unexpected class mapping")
	}
}

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Add("Captain Falcon", 4); err != nil {
		t.Fatalf("add: %v", err)
	}
	f, err := r.Lookup("captain FALCON")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if f.Name != "Captain Falcon" {
		t.Fatalf("expected original name, got %q", f.Name)
	}
	if _, err := r.Add("CAPTAIN falcon", 9); !errors.Is(err, ErrDuplicateFighter) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := r.Lookup("Ganondorf"); !errors.Is(err, ErrFighterNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRegistryRejectsBadInput(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Add("  ", 0); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected empty name error, got %v", err)
	}
	if _, err := r.Add("Kirby", 24); !errors.Is(err, ErrTierOutOfRange) {
		t.Fatalf("expected tier range error, got %v", err)
	}
}

func TestCreditAndRevert(t *testing.T) {
	f := &Fighter{Name: "Marth", Tier: 1}
	if err := f.Credit(0, true); err != nil {
		t.Fatal(err)
	}
	if err := f.Credit(0, false); err != nil {
		t.Fatal(err)
	}
	if got := f.Records[0]; got != (Record{Wins: 1, Battles: 2}) {
		t.Fatalf("unexpected record %+v", got)
	}
	if err := f.Revert(0, true); err != nil {
		t.Fatal(err)
	}
	if got := f.Records[0]; got != (Record{Wins: 0, Battles: 1}) {
		t.Fatalf("unexpected record after revert %+v", got)
	}
	if err := f.Revert(0, true); err == nil {
		t.Fatalf("expected error reverting a win that was never credited")
	}
	if err := f.Credit(8, true); !errors.Is(err, ErrPlayerOutOfRange) {
		t.Fatalf("expected player range error, got %v", err)
	}
}

func TestWinRateNoData(t *testing.T) {
	if _, ok := (Record{}).WinRate(); ok {
		t.Fatalf("expected no data for zero battles")
	}
	rate, ok := Record{Wins: 1, Battles: 4}.WinRate()
	if !ok || rate != 0.25 {
		t.Fatalf("expected 0.25, got %v (%v)", rate, ok)
	}
}

func TestPoolFighterInOneTier(t *testing.T) {
	p := NewPool(NewRegistry())
	if _, err := p.Add("Fox", 0); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Add("fox", 3); !errors.Is(err, ErrDuplicateFighter) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	fs, err := p.InTier(0)
	if err != nil || len(fs) != 1 {
		t.Fatalf("expected one fighter in tier 0, got %v (%v)", fs, err)
	}
	if _, err := p.InTier(-1); !errors.Is(err, ErrTierOutOfRange) {
		t.Fatalf("expected tier range error, got %v", err)
	}
}

func TestPoolAdoptsFighterFromStats(t *testing.T) {
	reg := NewRegistry()
	f, _ := reg.Add("Peach", 10)
	f.Records[1] = Record{Wins: 2, Battles: 3}

	p := NewPool(reg)
	got, err := p.Add("PEACH", 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != f || got.Tier != 2 || got.Records[1].Wins != 2 {
		t.Fatalf("expected existing fighter moved to tier 2, got %+v", got)
	}
}

func TestPoolCandidates(t *testing.T) {
	p := NewPool(NewRegistry())
	for _, n := range []string{"Fox", "Falco", "Sheik"} {
		p.Add(n, 0)
	}
	p.Add("Puff", 1)
	if err := p.SetExclusions(1, []string{"falco"}); err != nil {
		t.Fatal(err)
	}

	got, err := p.Candidates(1, []Tier{0, 1}, blockList{"sheik": true})
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, len(got))
	for i, f := range got {
		names[i] = f.Name
	}
	if len(names) != 2 || names[0] != "Fox" || names[1] != "Puff" {
		t.Fatalf("unexpected candidates %v", names)
	}

	// player 0 has no exclusions
	got, _ = p.Candidates(0, []Tier{0}, nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}

	if _, err := p.Candidates(8, []Tier{0}, nil); !errors.Is(err, ErrPlayerOutOfRange) {
		t.Fatalf("expected player range error, got %v", err)
	}
}

func TestPoolFavorites(t *testing.T) {
	p := NewPool(NewRegistry())
	p.SetFavorites(2, []string{" Link "})
	if !p.IsFavorite(2, "LINK") {
		t.Fatalf("expected Link to be a favorite")
	}
	if p.IsFavorite(1, "Link") || p.IsFavorite(9, "Link") {
		t.Fatalf("favorites leaked to other players")
	}
	if err := p.SetFavorites(-1, nil); !errors.Is(err, ErrPlayerOutOfRange) {
		t.Fatalf("expected range error, got %v", err)
	}
}
