package bot

import (
	"fmt"
	"math/rand"
	"time"
)

// NewBrain creates a new scripted brain for the specified level.
func NewBrain(level Level, rng *rand.Rand) (Brain, error) {
	skill, ok := DefaultTuning[level]
	if !ok {
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
	return NewBrainWithSkill(skill, rng), nil
}

// NewBrainWithSkill creates a scripted brain with custom limits.
func NewBrainWithSkill(skill Skill, rng *rand.Rand) Brain {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if skill.TapEvery <= 0 {
		skill.TapEvery = 50 * time.Millisecond
	}
	return &scripted{skill: skill, rng: rng}
}

// NewAgent builds an agent for a seat.
func NewAgent(id, name string, level Level, rng *rand.Rand) (*Agent, error) {
	brain, err := NewBrain(level, rng)
	if err != nil {
		return nil, err
	}
	return &Agent{ID: id, Name: name, Level: level, Brain: brain}, nil
}
