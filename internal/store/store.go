package store

import (
	"context"
	"time"

	"github.com/edvart/fighter-roulette/internal/roster"
)

type Matchup struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Winner    *int // Winning player slot, nil while unreported
	Slots     []MatchupSlot
}

type MatchupSlot struct {
	Player  int
	Fighter string
	Tier    roster.Tier
}

type Store interface {
	// SaveFighterStats writes absolute counters for each fighter in one transaction.
	SaveFighterStats(ctx context.Context, stats ...roster.Stats) error
	LoadFighterStats(ctx context.Context) ([]roster.Stats, error)
	GetFighterStats(ctx context.Context, name string) (*roster.Stats, error)

	SaveMatchup(ctx context.Context, m *Matchup) error
	GetMatchup(ctx context.Context, id string) (*Matchup, error)
	ListMatchups(ctx context.Context, limit int) ([]Matchup, error)

	Close() error
}
