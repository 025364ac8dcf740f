package domain

import (
	"errors"
	"fmt"
	"time"
)

// Mode selects the difficulty profile of a game.
type Mode string

const (
	ModeChill   Mode = "chill"
	ModeParty   Mode = "party"
	ModeExtreme Mode = "extreme"
)

// Multiplier is the speed factor applied on top of round progression.
func (m Mode) Multiplier() float64 {
	switch m {
	case ModeExtreme:
		return 1.3
	case ModeChill:
		return 0.8
	default:
		return 1.0
	}
}

// BaseDuration is the challenge time window before speed scaling.
func (m Mode) BaseDuration() time.Duration {
	switch m {
	case ModeExtreme:
		return 2000 * time.Millisecond
	case ModeParty:
		return 3000 * time.Millisecond
	default:
		return 5000 * time.Millisecond
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeChill, ModeParty, ModeExtreme:
		return true
	}
	return false
}

// Settings is the per-device preference record.
type Settings struct {
	GameMode         Mode    `json:"gameMode"`
	TotalRounds      int     `json:"totalRounds"`
	MasterVolume     float64 `json:"masterVolume"`
	MusicVolume      float64 `json:"musicVolume"`
	SfxVolume        float64 `json:"sfxVolume"`
	VibrationEnabled bool    `json:"vibrationEnabled"`
	ShowHints        bool    `json:"showHints"`
	Theme            string  `json:"theme"`
	Graphics         string  `json:"graphics"`
}

// DefaultSettings returns the settings a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		GameMode:         ModeParty,
		TotalRounds:      10,
		MasterVolume:     0.7,
		MusicVolume:      0.6,
		SfxVolume:        0.8,
		VibrationEnabled: true,
		ShowHints:        true,
		Theme:            "dark",
		Graphics:         "high",
	}
}

var ErrInvalidSettings = errors.New("invalid settings")

// Validate checks ranges; it does not fill defaults.
func (s Settings) Validate() error {
	if !s.GameMode.Valid() {
		return fmt.Errorf("%w: unknown game mode %q", ErrInvalidSettings, s.GameMode)
	}
	if s.TotalRounds != EndlessRounds && s.TotalRounds < 1 {
		return fmt.Errorf("%w: total rounds must be positive or %d", ErrInvalidSettings, EndlessRounds)
	}
	for name, v := range map[string]float64{"master": s.MasterVolume, "music": s.MusicVolume, "sfx": s.SfxVolume} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s volume %.2f out of range", ErrInvalidSettings, name, v)
		}
	}
	return nil
}

// EffectVolume is the gain applied to sound effects.
func (s Settings) EffectVolume() float64 {
	return s.MasterVolume * s.SfxVolume
}
