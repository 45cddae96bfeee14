package web

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/edvart/fighter-roulette/internal/auth"
	"github.com/edvart/fighter-roulette/internal/battle"
	"github.com/edvart/fighter-roulette/internal/coordinator"
	"github.com/edvart/fighter-roulette/internal/ranking"
	"github.com/edvart/fighter-roulette/internal/roster"
	"github.com/edvart/fighter-roulette/internal/settings"
	"github.com/edvart/fighter-roulette/internal/store"
)

func newTestServer(t *testing.T, v settings.Values) (*Server, *store.SQLiteStore) {
	return newTestServerWithAdmin(t, v, nil)
}

func newTestServerWithAdmin(t *testing.T, v settings.Values, admin *auth.AdminConfig) (*Server, *store.SQLiteStore) {
	t.Helper()
	pool := roster.NewPool(roster.NewRegistry())
	for tier := roster.Tier(0); tier < roster.NumTiers; tier++ {
		for i := 0; i < 3; i++ {
			if _, err := pool.Add(fmt.Sprintf("T%d-%d", tier, i), tier); err != nil {
				t.Fatal(err)
			}
		}
	}
	state, err := coordinator.NewState(pool, v, rand.New(rand.NewPCG(7, 7)))
	if err != nil {
		t.Fatal(err)
	}
	coord := coordinator.New(state)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go coord.Run(ctx)

	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return NewServer(coord, db, admin), db
}

func ssOnly() settings.Values {
	v := settings.Default()
	v.Tier = settings.TierWeights{100}
	return v
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestBattleLifecycle(t *testing.T) {
	s, _ := newTestServer(t, ssOnly())

	rec := do(t, s, http.MethodPost, "/battles?players=2", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate: status %d: %s", rec.Code, rec.Body.String())
	}
	var view battle.View
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	if len(view.Slots) != 2 || view.ID == "" {
		t.Fatalf("unexpected matchup %+v", view)
	}

	if rec := do(t, s, http.MethodGet, "/battles/"+view.ID, ""); rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/battles/"+view.ID+"/winner/1", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("assign: status %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, s, http.MethodPost, "/battles/"+view.ID+"/winner/5", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("out of range winner: status %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/battles/"+view.ID+"/winner/x", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad winner: status %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/fighters/"+view.Slots[1].Fighter, "")
	var stats roster.Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.Records[1] != (roster.Record{Wins: 1, Battles: 1}) {
		t.Fatalf("unexpected record %+v", stats.Records[1])
	}

	if rec := do(t, s, http.MethodDelete, "/battles/"+view.ID+"/winner", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("clear: status %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/battles/"+view.ID+"/winner", ""); rec.Code != http.StatusConflict {
		t.Fatalf("clear twice: status %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/battles", "")
	var recent []battle.View
	if err := json.NewDecoder(rec.Body).Decode(&recent); err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].ID != view.ID {
		t.Fatalf("unexpected recent battles %+v", recent)
	}
}

func TestBattleErrors(t *testing.T) {
	v := ssOnly()
	v.Bump = settings.BumpWeights{100, 0, 0}
	s, _ := newTestServer(t, v)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"unknown matchup", http.MethodGet, "/battles/missing", http.StatusNotFound},
		{"too many players", http.MethodPost, "/battles?players=9", http.StatusBadRequest},
		{"bad player count", http.MethodPost, "/battles?players=two", http.StatusBadRequest},
		{"exhausted", http.MethodPost, "/battles?players=4", http.StatusConflict},
		{"unknown fighter", http.MethodGet, "/fighters/Nobody", http.StatusNotFound},
		{"bad sort key", http.MethodGet, "/rankings?by=elo", http.StatusBadRequest},
		{"bad ranking player", http.MethodGet, "/rankings?player=8", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, s, tt.method, tt.path, ""); rec.Code != tt.want {
				t.Fatalf("status %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestSettingsEndpoints(t *testing.T) {
	s, _ := newTestServer(t, settings.Default())

	if rec := do(t, s, http.MethodPut, "/settings/tier-weights", `{"weights":[50,50,0,0,0,0,0,0]}`); rec.Code != http.StatusNoContent {
		t.Fatalf("stage tier: status %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, "/settings/tier-weights", `{"weights":[100]}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("short tier weights: status %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, "/settings/bump-weights", `{"weights":[10,10,10]}`); rec.Code != http.StatusNoContent {
		t.Fatalf("stage bump: status %d", rec.Code)
	}

	rec := do(t, s, http.MethodPost, "/settings/commit", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("commit: status %d", rec.Code)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.BumpSum == nil || *body.BumpSum != 30 || body.TierSum == nil || *body.TierSum != 100 {
		t.Fatalf("unexpected error body %+v", body)
	}

	do(t, s, http.MethodPut, "/settings/tier-weights", `{"weights":[50,50,0,0,0,0,0,0]}`)
	rec = do(t, s, http.MethodPost, "/settings/commit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("commit: status %d: %s", rec.Code, rec.Body.String())
	}
	var snap coordinator.SettingsSnapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Active.Tier != (settings.TierWeights{50, 50}) {
		t.Fatalf("weights not committed: %+v", snap.Active.Tier)
	}

	if rec := do(t, s, http.MethodPut, "/settings/cooldown", `{"capacity":3,"allowSS":true}`); rec.Code != http.StatusNoContent {
		t.Fatalf("cooldown: status %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, "/settings/cooldown", `{"capacity":16}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("cooldown out of range: status %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, "/settings/lowest-tier", `{"tier":9}`); rec.Code != http.StatusNoContent {
		t.Fatalf("lowest tier: status %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPut, "/settings/lowest-tier", `{"tier":24}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("lowest tier out of range: status %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/settings", "")
	snap = coordinator.SettingsSnapshot{}
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Active.Cooldown.Capacity != 3 || snap.LowestTier == nil || *snap.LowestTier != 9 {
		t.Fatalf("unexpected settings %+v", snap)
	}
}

func TestSettingsRequireAdminToken(t *testing.T) {
	s, _ := newTestServerWithAdmin(t, settings.Default(), auth.NewAdminConfig("secret"))

	if rec := do(t, s, http.MethodGet, "/settings", ""); rec.Code != http.StatusOK {
		t.Fatalf("read settings: status %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/settings/commit", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("commit without token: status %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/settings/commit", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("commit with token: status %d", rec.Code)
	}
}

func TestRankingsLimit(t *testing.T) {
	s, _ := newTestServer(t, ssOnly())

	rec := do(t, s, http.MethodGet, "/rankings?player=all&by=name&limit=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var entries []ranking.Entry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 || entries[0].Rank != 1 {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestHistory(t *testing.T) {
	s, db := newTestServer(t, ssOnly())
	winner := 0
	err := db.SaveMatchup(context.Background(), &store.Matchup{
		ID:        "m1",
		CreatedAt: time.Now(),
		Winner:    &winner,
		Slots: []store.MatchupSlot{
			{Player: 0, Fighter: "Ryu", Tier: 0},
			{Player: 1, Fighter: "Ken", Tier: 2},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := do(t, s, http.MethodGet, "/history?limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var entries []historyEntry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Slots[1].TierName != "Lower SS" {
		t.Fatalf("unexpected history %+v", entries)
	}
}

func TestEventStream(t *testing.T) {
	s, _ := newTestServer(t, ssOnly())
	events := make(chan coordinator.Event, 1)
	s.StartEvents(events)
	defer close(events)

	ts := httptest.NewServer(s)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.events.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	events <- coordinator.GenerationFailed{Players: 4, Attempts: battle.MaxAttempts, Reason: "exhausted"}

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	var got []string
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed early, got %v", got)
			}
			if strings.HasPrefix(line, "event:") || strings.HasPrefix(line, "data:") {
				got = append(got, line)
			}
		case <-timeout:
			t.Fatalf("timed out, got %v", got)
		}
	}
	if got[0] != "event: generation-failed" {
		t.Fatalf("unexpected event line %q", got[0])
	}
	if !strings.Contains(got[1], `"attempts":25`) {
		t.Fatalf("unexpected data line %q", got[1])
	}
}
