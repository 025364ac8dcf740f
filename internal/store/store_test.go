package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"buttonblitz/internal/app"
	"buttonblitz/internal/challenge"
	"buttonblitz/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "buttonblitz.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	settings := testStore(t).Settings()

	got, err := settings.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil before first save, got %+v", got)
	}

	want := domain.DefaultSettings()
	want.GameMode = domain.ModeExtreme
	want.TotalRounds = domain.EndlessRounds
	want.ShowHints = false
	if err := settings.Set(ctx, want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	want.Theme = "light"
	if err := settings.Set(ctx, want); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err = settings.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || *got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSettingsRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	settings := testStore(t).Settings()

	bad := domain.DefaultSettings()
	bad.MasterVolume = 1.5
	if err := settings.Set(ctx, bad); !errors.Is(err, domain.ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
	if got, _ := settings.Get(ctx); got != nil {
		t.Fatalf("invalid settings were stored")
	}
}

func TestSettingsFillsMissingFields(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	if _, err := s.db.Exec(`INSERT INTO settings (id, data, updated_at) VALUES (1, '{"gameMode":"chill"}', 0)`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := s.Settings().Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.GameMode != domain.ModeChill || got.TotalRounds != 10 || got.Theme != "dark" {
		t.Fatalf("unexpected settings %+v", got)
	}
}

func TestHistoryRecordAndList(t *testing.T) {
	ctx := context.Background()
	history := testStore(t).History()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		rec := &GameRecord{
			PlayedAt: base.Add(time.Duration(i) * time.Hour),
			Mode:     domain.ModeParty,
			Rounds:   i + 1,
			Reason:   "rounds_complete",
			Standings: []app.PlayerResult{
				{ID: "bot-a", DisplayName: "Blinky", Score: 300 + i},
				{ID: "bot-b", DisplayName: "Turbo", Score: 100},
			},
			Winners:    []string{"bot-a"},
			Challenges: []ChallengeStat{{Kind: challenge.TapFast, Attempts: 2, Successes: 1}},
		}
		id, err := history.Record(ctx, rec)
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
		if id == "" || rec.ID != id {
			t.Fatalf("expected assigned id, got %q", id)
		}
	}

	got, err := history.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Rounds != 3 || got[1].Rounds != 2 {
		t.Fatalf("not newest first: %d, %d", got[0].Rounds, got[1].Rounds)
	}
	if !got[0].PlayedAt.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("played_at = %v", got[0].PlayedAt)
	}
	if got[0].Standings[0].Score != 302 || got[0].Winners[0] != "bot-a" || got[0].Challenges[0].Successes != 1 {
		t.Fatalf("unexpected record %+v", got[0])
	}
}
