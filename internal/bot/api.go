package bot

import (
	"fmt"
	"strings"
	"time"

	"buttonblitz/internal/challenge"
	"buttonblitz/internal/input"
)

// Level selects how well a bot plays.
type Level int

const (
	LevelGood Level = iota + 1
	LevelSmart
	LevelGod
)

func (l Level) String() string {
	switch l {
	case LevelGood:
		return "good"
	case LevelSmart:
		return "smart"
	case LevelGod:
		return "god"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel accepts the names printed by String.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "good", "easy":
		return LevelGood, nil
	case "smart", "medium":
		return LevelSmart, nil
	case "god", "hard":
		return LevelGod, nil
	}
	return 0, fmt.Errorf("unknown bot level: %q", s)
}

// Brain is the interface every bot strategy implements.
type Brain interface {
	// Next is called once per tick with the challenge on screen and the
	// session clock. It returns the raw pointer events to feed in now.
	Next(v challenge.View, now time.Duration) []input.PointerEvent
}
