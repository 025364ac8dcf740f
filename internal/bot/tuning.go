package bot

import "time"

// Skill is the set of human-like limits a scripted brain plays under.
type Skill struct {
	// Reaction is the delay between seeing a cue and acting on it.
	Reaction time.Duration
	// Aim is the per-axis spread of tap and drag positions, in button units.
	Aim float64
	// Timing is the spread applied to timed releases and beats.
	Timing time.Duration
	// Fumble is the chance a bot sits a challenge out entirely.
	Fumble float64
	// TapEvery is the fastest the bot repeats taps.
	TapEvery time.Duration
}

// DefaultTuning maps each level to its skill.
var DefaultTuning = map[Level]Skill{
	LevelGood: {
		Reaction: 350 * time.Millisecond,
		Aim:      15,
		Timing:   250 * time.Millisecond,
		Fumble:   0.2,
		TapEvery: 150 * time.Millisecond,
	},
	LevelSmart: {
		Reaction: 200 * time.Millisecond,
		Aim:      8,
		Timing:   120 * time.Millisecond,
		Fumble:   0.08,
		TapEvery: 100 * time.Millisecond,
	},
	LevelGod: {
		TapEvery: 50 * time.Millisecond,
	},
}
