package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"buttonblitz/internal/domain"
	"buttonblitz/internal/store"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newCmd(&Config{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestSettingsCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	if err := execute(t, "settings", "set", "--db", db, "--mode", "extreme", "--hints=false"); err != nil {
		t.Fatalf("settings set: %v", err)
	}
	st, err := store.Open(db)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, err := st.Settings().Get(context.Background())
	st.Close()
	if err != nil || got == nil {
		t.Fatalf("get: %v %v", got, err)
	}
	if got.GameMode != domain.ModeExtreme || got.ShowHints || got.TotalRounds != 10 {
		t.Fatalf("unexpected settings %+v", got)
	}

	if err := execute(t, "settings", "set", "--db", db); err == nil {
		t.Fatalf("expected error when no flag is given")
	}
	if err := execute(t, "settings", "set", "--db", db, "--master-volume", "2"); err == nil {
		t.Fatalf("expected validation error")
	}
	if err := execute(t, "settings", "reset", "--db", db); err != nil {
		t.Fatalf("settings reset: %v", err)
	}
}

func TestSimulateRecordsHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	args := []string{"simulate", "--db", db, "--games", "2", "--players", "2", "--rounds", "1", "--level", "god",
		"--game-config", filepath.Join(t.TempDir(), "missing.json"), "--bot-identities", "../../data/bot_identities.json"}
	if err := execute(t, args...); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	st, err := store.Open(db)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()
	games, err := st.History().List(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 recorded games, got %d", len(games))
	}

	if err := execute(t, "simulate", "--db", db, "--level", "expert"); err == nil {
		t.Fatalf("expected bad level error")
	}
}

func TestInviteWritesQR(t *testing.T) {
	out := filepath.Join(t.TempDir(), "invite.png")
	if err := execute(t, "invite", "ab12", "--out", out); err != nil {
		t.Fatalf("invite: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		t.Fatalf("qr not written: %v", err)
	}
	if err := execute(t, "invite", "nope!"); err == nil {
		t.Fatalf("expected invalid code error")
	}
}
