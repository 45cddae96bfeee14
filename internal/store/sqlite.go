package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/edvart/fighter-roulette/internal/roster"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS fighters (
			key TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			tier INTEGER NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS fighter_stats (
			fighter_key TEXT NOT NULL REFERENCES fighters(key),
			player INTEGER NOT NULL,
			wins INTEGER NOT NULL DEFAULT 0,
			battles INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (fighter_key, player),
			CHECK (wins <= battles)
		)`,
		`CREATE TABLE IF NOT EXISTS matchups (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			winner INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS matchup_slots (
			matchup_id TEXT NOT NULL REFERENCES matchups(id),
			player INTEGER NOT NULL,
			fighter TEXT NOT NULL,
			tier INTEGER NOT NULL,
			PRIMARY KEY (matchup_id, player)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matchups_created ON matchups(created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveFighterStats upserts fighters and their per-player counters.
func (s *SQLiteStore) SaveFighterStats(ctx context.Context, stats ...roster.Stats) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, st := range stats {
		key := roster.Key(st.Name)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fighters (key, name, tier, updated_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET
			 	name = excluded.name,
			 	tier = excluded.tier,
			 	updated_at = excluded.updated_at`,
			key, st.Name, int(st.Tier), now,
		); err != nil {
			return fmt.Errorf("save fighter %s: %w", st.Name, err)
		}

		for player, rec := range st.Records {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO fighter_stats (fighter_key, player, wins, battles)
				 VALUES (?, ?, ?, ?)
				 ON CONFLICT(fighter_key, player) DO UPDATE SET
				 	wins = excluded.wins,
				 	battles = excluded.battles`,
				key, player, rec.Wins, rec.Battles,
			); err != nil {
				return fmt.Errorf("save stats %s slot %d: %w", st.Name, player, err)
			}
		}
	}

	return tx.Commit()
}

// LoadFighterStats returns every stored fighter in insertion order.
func (s *SQLiteStore) LoadFighterStats(ctx context.Context) ([]roster.Stats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.key, f.name, f.tier, s.player, s.wins, s.battles
		 FROM fighters f
		 LEFT JOIN fighter_stats s ON s.fighter_key = f.key
		 ORDER BY f.rowid, s.player`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []roster.Stats
	index := make(map[string]int)
	for rows.Next() {
		var key, name string
		var tier int
		var player, wins, battles sql.NullInt64
		if err := rows.Scan(&key, &name, &tier, &player, &wins, &battles); err != nil {
			return nil, err
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, roster.Stats{Name: name, Tier: roster.Tier(tier)})
		}
		if player.Valid && player.Int64 >= 0 && player.Int64 < roster.MaxPlayers {
			out[i].Records[player.Int64] = roster.Record{Wins: int(wins.Int64), Battles: int(battles.Int64)}
		}
	}
	return out, rows.Err()
}

// GetFighterStats retrieves one fighter by name, ignoring case.
func (s *SQLiteStore) GetFighterStats(ctx context.Context, name string) (*roster.Stats, error) {
	var st roster.Stats
	var tier int
	err := s.db.QueryRowContext(ctx,
		`SELECT name, tier FROM fighters WHERE key = ?`, roster.Key(name)).Scan(&st.Name, &tier)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	st.Tier = roster.Tier(tier)

	rows, err := s.db.QueryContext(ctx,
		`SELECT player, wins, battles FROM fighter_stats WHERE fighter_key = ?`, roster.Key(name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var player int
		var rec roster.Record
		if err := rows.Scan(&player, &rec.Wins, &rec.Battles); err != nil {
			return nil, err
		}
		if player >= 0 && player < roster.MaxPlayers {
			st.Records[player] = rec
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &st, nil
}

// SaveMatchup creates a matchup or updates its winner.
func (s *SQLiteStore) SaveMatchup(ctx context.Context, m *Matchup) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO matchups (id, created_at, updated_at, winner)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		 	updated_at = excluded.updated_at,
		 	winner = excluded.winner`,
		m.ID, m.CreatedAt, m.UpdatedAt, m.Winner,
	); err != nil {
		return fmt.Errorf("save matchup: %w", err)
	}

	for _, slot := range m.Slots {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO matchup_slots (matchup_id, player, fighter, tier)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(matchup_id, player) DO NOTHING`,
			m.ID, slot.Player, slot.Fighter, int(slot.Tier),
		); err != nil {
			return fmt.Errorf("save matchup slot %d: %w", slot.Player, err)
		}
	}

	return tx.Commit()
}

// GetMatchup retrieves a matchup by ID.
func (s *SQLiteStore) GetMatchup(ctx context.Context, id string) (*Matchup, error) {
	var m Matchup
	var winner sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at, winner FROM matchups WHERE id = ?`, id).Scan(
		&m.ID, &m.CreatedAt, &m.UpdatedAt, &winner,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if winner.Valid {
		w := int(winner.Int64)
		m.Winner = &w
	}

	slots, err := s.matchupSlots(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Slots = slots
	return &m, nil
}

func (s *SQLiteStore) matchupSlots(ctx context.Context, id string) ([]MatchupSlot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player, fighter, tier FROM matchup_slots WHERE matchup_id = ? ORDER BY player`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []MatchupSlot
	for rows.Next() {
		var slot MatchupSlot
		var tier int
		if err := rows.Scan(&slot.Player, &slot.Fighter, &tier); err != nil {
			return nil, err
		}
		slot.Tier = roster.Tier(tier)
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// ListMatchups retrieves the most recent matchups with their slots.
func (s *SQLiteStore) ListMatchups(ctx context.Context, limit int) ([]Matchup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, updated_at, winner
		 FROM matchups
		 ORDER BY created_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	var matchups []Matchup
	for rows.Next() {
		var m Matchup
		var winner sql.NullInt64
		if err := rows.Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt, &winner); err != nil {
			rows.Close()
			return nil, err
		}
		if winner.Valid {
			w := int(winner.Int64)
			m.Winner = &w
		}
		matchups = append(matchups, m)
	}
	// Slots are read after the cursor is closed; the pool has one connection.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range matchups {
		slots, err := s.matchupSlots(ctx, matchups[i].ID)
		if err != nil {
			return nil, err
		}
		matchups[i].Slots = slots
	}
	return matchups, nil
}
