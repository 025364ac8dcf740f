package challenge

import (
	"math"
	"time"

	"buttonblitz/internal/domain"
)

const (
	// MinDuration floors the challenge window however fast the game gets.
	MinDuration = 1000 * time.Millisecond
	rampRounds  = 15.0
	rampBonus   = 0.4
)

// SpeedMultiplier grows linearly with the round until rampRounds, then holds,
// and is scaled by the mode.
func SpeedMultiplier(round int, mode domain.Mode) float64 {
	progress := math.Min(float64(round)/rampRounds, 1)
	if progress < 0 {
		progress = 0
	}
	return (1 + progress*rampBonus) * mode.Multiplier()
}

// RoundDuration is the challenge window for a round.
func RoundDuration(round int, mode domain.Mode) time.Duration {
	d := time.Duration(float64(mode.BaseDuration()) / SpeedMultiplier(round, mode))
	if d < MinDuration {
		return MinDuration
	}
	return d
}

// RoundContext carries the difficulty inputs a challenge is set up with.
type RoundContext struct {
	Round    int
	Mode     domain.Mode
	Speed    float64
	Duration time.Duration
}

// NewRoundContext derives speed and duration for round in mode.
func NewRoundContext(round int, mode domain.Mode) RoundContext {
	return RoundContext{
		Round:    round,
		Mode:     mode,
		Speed:    SpeedMultiplier(round, mode),
		Duration: RoundDuration(round, mode),
	}
}

func scaled(base time.Duration, speed float64) time.Duration {
	if speed <= 0 {
		return base
	}
	return time.Duration(float64(base) / speed)
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
