package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"buttonblitz/internal/app"
	"buttonblitz/internal/challenge"
	"buttonblitz/internal/domain"

	"github.com/google/uuid"
)

// DefaultHistoryLimit bounds List when no limit is given.
const DefaultHistoryLimit = 20

// ChallengeStat counts outcomes for one challenge kind within a game.
type ChallengeStat struct {
	Kind      challenge.Kind `json:"kind"`
	Attempts  int            `json:"attempts"`
	Successes int            `json:"successes"`
}

// GameRecord is one finished local game.
type GameRecord struct {
	ID         string             `json:"id"`
	PlayedAt   time.Time          `json:"played_at"`
	Mode       domain.Mode        `json:"mode"`
	Rounds     int                `json:"rounds"`
	Reason     string             `json:"reason"`
	Standings  []app.PlayerResult `json:"standings"`
	Winners    []string           `json:"winners"`
	Challenges []ChallengeStat    `json:"challenges"`
}

// HistoryStore records finished games.
type HistoryStore struct {
	db *sql.DB
}

// Record inserts rec, assigning ID and PlayedAt when empty.
func (h *HistoryStore) Record(ctx context.Context, rec *GameRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.PlayedAt.IsZero() {
		rec.PlayedAt = time.Now().UTC()
	}
	standings, err := json.Marshal(rec.Standings)
	if err != nil {
		return "", fmt.Errorf("store: encode standings: %w", err)
	}
	winners, err := json.Marshal(rec.Winners)
	if err != nil {
		return "", fmt.Errorf("store: encode winners: %w", err)
	}
	challenges, err := json.Marshal(rec.Challenges)
	if err != nil {
		return "", fmt.Errorf("store: encode challenges: %w", err)
	}
	_, err = h.db.ExecContext(ctx,
		`INSERT INTO games (id, played_at, mode, rounds, reason, standings_json, winners_json, challenges_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.PlayedAt.UnixNano(), string(rec.Mode), rec.Rounds, rec.Reason,
		string(standings), string(winners), string(challenges),
	)
	if err != nil {
		return "", fmt.Errorf("store: record game: %w", err)
	}
	return rec.ID, nil
}

// List returns the most recent games first.
func (h *HistoryStore) List(ctx context.Context, limit int) ([]GameRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, played_at, mode, rounds, reason, standings_json, winners_json, challenges_json
		 FROM games ORDER BY played_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list games: %w", err)
	}
	defer rows.Close()

	var out []GameRecord
	for rows.Next() {
		var (
			rec                            GameRecord
			playedAt                       int64
			mode                           string
			standings, winners, challenges string
		)
		if err := rows.Scan(&rec.ID, &playedAt, &mode, &rec.Rounds, &rec.Reason, &standings, &winners, &challenges); err != nil {
			return nil, fmt.Errorf("store: scan game: %w", err)
		}
		rec.PlayedAt = time.Unix(0, playedAt).UTC()
		rec.Mode = domain.Mode(mode)
		if err := json.Unmarshal([]byte(standings), &rec.Standings); err != nil {
			return nil, fmt.Errorf("store: decode standings: %w", err)
		}
		if err := json.Unmarshal([]byte(winners), &rec.Winners); err != nil {
			return nil, fmt.Errorf("store: decode winners: %w", err)
		}
		if err := json.Unmarshal([]byte(challenges), &rec.Challenges); err != nil {
			return nil, fmt.Errorf("store: decode challenges: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
