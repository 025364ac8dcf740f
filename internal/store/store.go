// Package store keeps device-local state in SQLite: the settings record and
// a history of finished games.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store owns the SQLite handle shared by the settings and history stores.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}
	s := &Store{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewFromDB wraps an existing sql.DB. Call Migrate before use.
func NewFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			data TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			played_at INTEGER NOT NULL,
			mode TEXT NOT NULL,
			rounds INTEGER NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			standings_json TEXT NOT NULL,
			winners_json TEXT NOT NULL,
			challenges_json TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_games_played_at ON games(played_at)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Settings() *SettingsStore {
	return &SettingsStore{db: s.db}
}

func (s *Store) History() *HistoryStore {
	return &HistoryStore{db: s.db}
}
