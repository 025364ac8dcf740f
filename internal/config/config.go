package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Env keys read from the Nakama runtime environment.
const (
	EnvLivenessTimeoutSec = "buttonblitz_liveness_timeout_sec"
	EnvTickRate           = "buttonblitz_tick_rate"
)

type GameConfig struct {
	PollIntervalMs     int `json:"poll_interval_ms"`
	LivenessTimeoutSec int `json:"liveness_timeout_sec"`
	MaxRoomPlayers     int `json:"max_room_players"`
	FeedbackDelayMs    int `json:"feedback_delay_ms"`
	// TickRate is the authoritative match loop frequency in Hz.
	TickRate int `json:"tick_rate"`
	// SnapshotEveryTicks controls how often the match broadcasts a full snapshot.
	SnapshotEveryTicks int `json:"snapshot_every_ticks"`
	// AvatarMaxBytes caps upload_avatar payloads.
	AvatarMaxBytes int `json:"avatar_max_bytes"`
}

// Default returns the configuration used when no file is present.
func Default() GameConfig {
	return GameConfig{
		PollIntervalMs:     3000,
		LivenessTimeoutSec: 20,
		MaxRoomPlayers:     8,
		FeedbackDelayMs:    1500,
		TickRate:           20,
		SnapshotEveryTicks: 10,
		AvatarMaxBytes:     512 * 1024,
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path. A missing
// file is not an error; defaults are used instead.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c, err := Read(path)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// Read parses a config file on top of the defaults.
func Read(path string) (GameConfig, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("failed to read game config: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	c.fill()
	return c, nil
}

func (c *GameConfig) fill() {
	d := Default()
	if c.PollIntervalMs <= 0 {
		c.PollIntervalMs = d.PollIntervalMs
	}
	if c.LivenessTimeoutSec <= 0 {
		c.LivenessTimeoutSec = d.LivenessTimeoutSec
	}
	if c.MaxRoomPlayers < 2 {
		c.MaxRoomPlayers = d.MaxRoomPlayers
	}
	if c.FeedbackDelayMs <= 0 {
		c.FeedbackDelayMs = d.FeedbackDelayMs
	}
	if c.TickRate <= 0 || c.TickRate > 60 {
		c.TickRate = d.TickRate
	}
	if c.SnapshotEveryTicks <= 0 {
		c.SnapshotEveryTicks = d.SnapshotEveryTicks
	}
	if c.AvatarMaxBytes <= 0 {
		c.AvatarMaxBytes = d.AvatarMaxBytes
	}
}

// GetGameConfig returns the global game configuration, or the defaults when
// nothing was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Default()
	}
	return *cfg
}

// WithEnv applies runtime environment overrides. Unparsable values are ignored.
func (c GameConfig) WithEnv(env map[string]string) GameConfig {
	if v, err := strconv.Atoi(env[EnvLivenessTimeoutSec]); err == nil && v > 0 {
		c.LivenessTimeoutSec = v
	}
	if v, err := strconv.Atoi(env[EnvTickRate]); err == nil && v > 0 && v <= 60 {
		c.TickRate = v
	}
	return c
}

func (c GameConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c GameConfig) LivenessTimeout() time.Duration {
	return time.Duration(c.LivenessTimeoutSec) * time.Second
}

func (c GameConfig) FeedbackDelay() time.Duration {
	return time.Duration(c.FeedbackDelayMs) * time.Millisecond
}

// TickInterval is the simulated time covered by one match loop tick.
func (c GameConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}
