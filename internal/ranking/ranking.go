// Package ranking sorts fighter statistics for display.
package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/edvart/fighter-roulette/internal/roster"
)

// Aggregate selects the sum over every player slot instead of a single player.
const Aggregate = -1

// By is a sort key.
type By string

const (
	ByWinRate By = "winrate"
	ByWins    By = "wins"
	ByBattles By = "battles"
	ByName    By = "name"
)

// ParseBy parses a sort key, defaulting to win rate for "".
func ParseBy(s string) (By, error) {
	switch By(strings.ToLower(s)) {
	case "", ByWinRate:
		return ByWinRate, nil
	case ByWins:
		return ByWins, nil
	case ByBattles:
		return ByBattles, nil
	case ByName:
		return ByName, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// Entry is one ranked fighter.
type Entry struct {
	Rank    int           `json:"rank"`
	Name    string        `json:"name"`
	Tier    roster.Tier   `json:"tier"`
	Record  roster.Record `json:"record"`
	WinRate *float64      `json:"winRate,omitempty"` // nil when no battles
}

// Rank orders fighters by key for one player slot, or for Aggregate.
// Fighters without battles sort after every fighter with data when ranking
// by win rate. Ties fall back to name.
func Rank(stats []roster.Stats, player int, by By) ([]Entry, error) {
	if player != Aggregate {
		if err := roster.CheckPlayer(player, roster.MaxPlayers); err != nil {
			return nil, err
		}
	}
	if _, err := ParseBy(string(by)); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(stats))
	for _, s := range stats {
		rec := s.Total()
		if player != Aggregate {
			rec = s.Records[player]
		}
		e := Entry{Name: s.Name, Tier: s.Tier, Record: rec}
		if rate, ok := rec.WinRate(); ok {
			e.WinRate = &rate
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch by {
		case ByWinRate, "":
			if (a.WinRate == nil) != (b.WinRate == nil) {
				return a.WinRate != nil
			}
			if a.WinRate != nil && *a.WinRate != *b.WinRate {
				return *a.WinRate > *b.WinRate
			}
			if a.Record.Battles != b.Record.Battles {
				return a.Record.Battles > b.Record.Battles
			}
		case ByWins:
			if a.Record.Wins != b.Record.Wins {
				return a.Record.Wins > b.Record.Wins
			}
		case ByBattles:
			if a.Record.Battles != b.Record.Battles {
				return a.Record.Battles > b.Record.Battles
			}
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Top returns at most n entries; n <= 0 returns all.
func Top(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}

// Find returns the entry for name, ignoring case.
func Find(entries []Entry, name string) (Entry, error) {
	key := roster.Key(name)
	for _, e := range entries {
		if roster.Key(e.Name) == key {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %s", roster.ErrFighterNotFound, name)
}
