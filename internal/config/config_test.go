package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game_config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestReadMissingFileUsesDefaults(t *testing.T) {
	c, err := Read(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if c != Default() {
		t.Fatalf("expected defaults, got %+v", c)
	}
	if c.PollInterval() != 3*time.Second || c.LivenessTimeout() != 20*time.Second {
		t.Fatalf("unexpected durations: %v %v", c.PollInterval(), c.LivenessTimeout())
	}
	if c.TickInterval() != 50*time.Millisecond {
		t.Fatalf("tick interval = %v, want 50ms", c.TickInterval())
	}
}

func TestReadFillsZeroFields(t *testing.T) {
	path := writeConfig(t, `{"max_room_players": 6, "tick_rate": 0}`)
	c, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if c.MaxRoomPlayers != 6 {
		t.Errorf("MaxRoomPlayers = %d, want 6", c.MaxRoomPlayers)
	}
	if c.TickRate != 20 || c.FeedbackDelayMs != 1500 {
		t.Errorf("defaults not filled: %+v", c)
	}
}

func TestReadRejectsBadJSON(t *testing.T) {
	path := writeConfig(t, `{"tick_rate": `)
	if _, err := Read(path); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestWithEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		liveness int
		tick     int
	}{
		{"empty", map[string]string{}, 20, 20},
		{"override", map[string]string{EnvLivenessTimeoutSec: "45", EnvTickRate: "30"}, 45, 30},
		{"garbage", map[string]string{EnvLivenessTimeoutSec: "soon", EnvTickRate: "-3"}, 20, 20},
		{"tick too fast", map[string]string{EnvTickRate: "240"}, 20, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default().WithEnv(tt.env)
			if c.LivenessTimeoutSec != tt.liveness || c.TickRate != tt.tick {
				t.Fatalf("got liveness=%d tick=%d, want %d %d", c.LivenessTimeoutSec, c.TickRate, tt.liveness, tt.tick)
			}
		})
	}
}

func TestGetGameConfigBeforeLoad(t *testing.T) {
	if cfg != nil {
		t.Skip("config already loaded by another test")
	}
	if GetGameConfig() != Default() {
		t.Fatal("expected defaults before load")
	}
}
