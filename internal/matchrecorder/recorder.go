package matchrecorder

import (
	"context"
	"time"

	"github.com/edvart/fighter-roulette/internal/battle"
	"github.com/edvart/fighter-roulette/internal/coordinator"
	"github.com/edvart/fighter-roulette/internal/roster"
	"github.com/edvart/fighter-roulette/internal/store"
	log "github.com/sirupsen/logrus"
)

// Recorder saves generated matchups and fighter counters to the database.
type Recorder struct {
	store store.Store
}

// New creates a new match recorder.
func New(s store.Store) *Recorder {
	return &Recorder{store: s}
}

// Run listens for coordinator events and records them.
func (r *Recorder) Run(ctx context.Context, events <-chan coordinator.Event) {
	log.Println("Match recorder started")
	for {
		select {
		case <-ctx.Done():
			log.Println("Match recorder shutting down")
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			r.handleEvent(ctx, event)
		}
	}
}

func (r *Recorder) handleEvent(ctx context.Context, event coordinator.Event) {
	switch e := event.(type) {
	case coordinator.BattleGenerated:
		r.recordMatchup(ctx, e.Matchup)
	case coordinator.WinnerAssigned:
		if r.recordMatchup(ctx, e.Matchup) {
			r.recordStats(ctx, e.Matchup.ID, e.Fighters)
		}
	case coordinator.WinnerCleared:
		if r.recordMatchup(ctx, e.Matchup) {
			r.recordStats(ctx, e.Matchup.ID, e.Fighters)
		}
	}
}

func (r *Recorder) recordMatchup(ctx context.Context, v battle.View) bool {
	m := &store.Matchup{
		ID:        v.ID,
		CreatedAt: v.CreatedAt,
		UpdatedAt: time.Now(),
		Winner:    v.Winner,
		Slots:     make([]store.MatchupSlot, len(v.Slots)),
	}
	for i, s := range v.Slots {
		m.Slots[i] = store.MatchupSlot{Player: s.Player, Fighter: s.Fighter, Tier: s.Tier}
	}

	if err := r.store.SaveMatchup(ctx, m); err != nil {
		log.Errorf("Match recorder: failed to save matchup %s: %v", v.ID, err)
		return false
	}
	log.Debugf("Match recorder: saved matchup %s", v.ID)
	return true
}

func (r *Recorder) recordStats(ctx context.Context, id string, fighters []roster.Stats) {
	if err := r.store.SaveFighterStats(ctx, fighters...); err != nil {
		log.Errorf("Match recorder: failed to save fighter stats for matchup %s: %v", id, err)
		return
	}
	log.Printf("Match recorder: recorded result of matchup %s", id)
}
