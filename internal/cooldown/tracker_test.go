package cooldown

import (
	"errors"
	"fmt"
	"testing"

	"github.com/edvart/fighter-roulette/internal/roster"
)

type favs map[int]string

func (f favs) IsFavorite(player int, name string) bool {
	return roster.Key(f[player]) == roster.Key(name)
}

func newTracker(t *testing.T, cfg Config, f Favorites) *Tracker {
	t.Helper()
	tr, err := New(cfg, f)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	return tr
}

func TestConfigValidate(t *testing.T) {
	for _, c := range []int{-1, 16} {
		if _, err := New(Config{Capacity: c}, nil); err == nil {
			t.Errorf("capacity %d: expected error", c)
		}
	}
	if _, err := New(Config{Capacity: 15}, nil); err != nil {
		t.Fatalf("capacity 15: %v", err)
	}
}

func TestPlayerQueueEvictsOldest(t *testing.T) {
	tr := newTracker(t, Config{Capacity: 2, AllowSS: true, AllowS: true}, nil)
	for i, name := range []string{"A", "B", "C"} {
		if err := tr.Record(name, 12, 0, 2); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	q, _ := tr.Player(0)
	if len(q) != 2 || q[0].Fighter != "B" || q[1].Fighter != "C" {
		t.Fatalf("unexpected player queue %+v", q)
	}
	if tr.InPlayer(0, "a") {
		t.Fatalf("A should have been evicted")
	}
	if !tr.Blocked(0, "c") {
		t.Fatalf("C should be blocked")
	}
}

func TestFavoritesSkipPlayerQueue(t *testing.T) {
	tr := newTracker(t, Config{Capacity: 3, AllowSS: true, AllowS: true}, favs{1: "Pikachu"})
	if err := tr.Record("Pikachu", 9, 1, 2); err != nil {
		t.Fatal(err)
	}
	if tr.InPlayer(1, "Pikachu") {
		t.Fatalf("favorite entered player queue")
	}
	if !tr.InGlobal("Pikachu") {
		t.Fatalf("favorite should still enter global queue")
	}
}

func TestGlobalGates(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		tier    roster.Tier
		wantHit bool
	}{
		{"ss blocked", Config{Capacity: 1, AllowSS: false, AllowS: true}, 2, false},
		{"ss allowed", Config{Capacity: 1, AllowSS: true}, 0, true},
		{"s blocked", Config{Capacity: 1, AllowSS: true, AllowS: false}, 3, false},
		{"s allowed", Config{Capacity: 1, AllowS: true}, 5, true},
		{"a always", Config{Capacity: 1}, 6, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tr := newTracker(t, c.cfg, nil)
			tr.Record("X", c.tier, 0, 2)
			if got := tr.InGlobal("X"); got != c.wantHit {
				t.Errorf("InGlobal = %v; want %v", got, c.wantHit)
			}
			if !tr.InPlayer(0, "X") {
				t.Errorf("player queue should ignore tier gates")
			}
		})
	}
}

func TestGlobalEvictsWholeRounds(t *testing.T) {
	const players = 3
	tr := newTracker(t, Config{Capacity: 2, AllowSS: true, AllowS: true}, nil)
	limit := 2 * players

	prev := 0
	for r := 0; r < 10; r++ {
		round := make([]Entry, players)
		for p := range round {
			round[p] = Entry{Fighter: fmt.Sprintf("f%d-%d", r, p), Tier: 10}
		}
		for p, e := range round {
			before := len(tr.Global())
			if err := tr.Record(e.Fighter, e.Tier, p, players); err != nil {
				t.Fatal(err)
			}
			after := len(tr.Global())
			if after > limit {
				t.Fatalf("global queue length %d exceeds %d", after, limit)
			}
			if evicted := before + 1 - after; evicted != 0 && evicted != players {
				t.Fatalf("evicted %d entries; want 0 or %d", evicted, players)
			}
		}
		for p := 0; p < players; p++ {
			q, _ := tr.Player(p)
			if len(q) > 2 {
				t.Fatalf("player %d queue length %d exceeds 2", p, len(q))
			}
		}
		prev = len(tr.Global())
	}
	if prev%players != 0 {
		t.Fatalf("global length %d not a multiple of round size", prev)
	}
	g := tr.Global()
	if g[0].Fighter != "f8-0" {
		t.Fatalf("expected oldest surviving entry f8-0, got %s", g[0].Fighter)
	}
}

func TestRecordRoundIsAllOrNothing(t *testing.T) {
	tr := newTracker(t, Config{Capacity: 2, AllowSS: true, AllowS: true}, nil)
	err := tr.RecordRound([]Entry{{"A", 3}, {"B", 30}})
	if !errors.Is(err, roster.ErrTierOutOfRange) {
		t.Fatalf("expected tier range error, got %v", err)
	}
	if len(tr.Global()) != 0 || tr.InPlayer(0, "A") {
		t.Fatalf("partial round recorded")
	}
	if err := tr.RecordRound([]Entry{{"A", 3}, {"B", 4}}); err != nil {
		t.Fatal(err)
	}
	if !tr.InPlayer(1, "B") || !tr.InGlobal("A") {
		t.Fatalf("round not recorded")
	}
}

func TestRecordRejectsBadPlayer(t *testing.T) {
	tr := newTracker(t, Config{Capacity: 2}, nil)
	if err := tr.Record("A", 10, 2, 2); !errors.Is(err, roster.ErrPlayerOutOfRange) {
		t.Fatalf("expected player range error, got %v", err)
	}
}

func TestZeroCapacityRecordsNothing(t *testing.T) {
	tr := newTracker(t, Config{Capacity: 0, AllowSS: true, AllowS: true}, nil)
	tr.Record("A", 10, 0, 2)
	if tr.Blocked(0, "A") {
		t.Fatalf("zero capacity should disable cooldowns")
	}
}

func TestConfigureShrinksQueues(t *testing.T) {
	tr := newTracker(t, Config{Capacity: 3, AllowSS: true, AllowS: true}, nil)
	for r := 0; r < 3; r++ {
		tr.RecordRound([]Entry{{fmt.Sprintf("a%d", r), 10}, {fmt.Sprintf("b%d", r), 10}})
	}
	if err := tr.Configure(Config{Capacity: 1, AllowSS: true, AllowS: true}); err != nil {
		t.Fatal(err)
	}
	if got := len(tr.Global()); got != 2 {
		t.Fatalf("expected global length 2, got %d", got)
	}
	q, _ := tr.Player(0)
	if len(q) != 1 || q[0].Fighter != "a2" {
		t.Fatalf("unexpected player queue %+v", q)
	}
	if err := tr.Configure(Config{Capacity: 20}); err == nil {
		t.Fatalf("expected range error")
	}
}
