package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"buttonblitz/internal/domain"
	"buttonblitz/internal/ports"
)

// SettingsStore persists the single settings record.
type SettingsStore struct {
	db *sql.DB
}

// Get returns the saved settings, or nil when nothing was saved. Fields
// missing from an older record keep their defaults.
func (s *SettingsStore) Get(ctx context.Context) (*domain.Settings, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM settings WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get settings: %w", err)
	}
	settings := domain.DefaultSettings()
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return nil, fmt.Errorf("store: decode settings: %w", err)
	}
	return &settings, nil
}

// Set validates and replaces the settings record.
func (s *SettingsStore) Set(ctx context.Context, settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("store: encode settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (id, data, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(data), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("store: set settings: %w", err)
	}
	return nil
}

var _ ports.SettingsStore = (*SettingsStore)(nil)
