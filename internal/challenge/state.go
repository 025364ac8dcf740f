package challenge

import (
	"fmt"
	"math/rand"
	"time"

	"buttonblitz/internal/audio"
	"buttonblitz/internal/input"
)

// Outcome is the terminal result of a challenge. Failures score zero.
type Outcome struct {
	Success bool `json:"success"`
	Points  int  `json:"points"`
}

func success(points int) *Outcome {
	if points < 0 {
		points = 0
	}
	return &Outcome{Success: true, Points: points}
}

func failure() *Outcome {
	return &Outcome{}
}

// State is the per-kind variant of a running challenge. The set of
// implementations is closed: only this package can satisfy it.
type State interface {
	Kind() Kind
	Label() string

	// input reacts to a gesture while awaiting input.
	input(fx *effects, g input.Gesture) *Outcome
	// tick advances the variant's own schedule (reveal, physics, beats).
	tick(fx *effects, elapsed time.Duration) *Outcome
	// expire is consulted on every tick once the round timer is at zero.
	// A nil result defers the decision to a later tick or input.
	expire(fx *effects) *Outcome
	view(v *View)
}

// revealer is implemented by kinds whose timer starts after a reveal.
type revealer interface {
	revealing() bool
}

// effects is the side-effect surface handed to variant handlers.
type effects struct {
	rng *rand.Rand
	out audio.Feedback
}

func (fx *effects) play(c audio.Cue) {
	fx.out.Play(c)
}

// base supplies the defaults most variants share: no schedule, fail on expiry.
type base struct{}

func (base) tick(*effects, time.Duration) *Outcome { return nil }
func (base) expire(*effects) *Outcome              { return failure() }
func (base) view(*View)                            {}

func newState(k Kind, rc RoundContext, fx *effects) (State, error) {
	switch k {
	case TapFast, ButtonMash:
		return newTapCounter(k), nil
	case HoldRelease:
		return newHoldRelease(fx), nil
	case AvoidRed:
		return newAvoidRed(rc), nil
	case SimonSays:
		return newSimonSays(fx), nil
	case CountDown:
		return newCountDown(rc, fx), nil
	case StopTheSpinner:
		return newSpinner(rc, fx), nil
	case DragBall:
		return newDragBall(fx), nil
	case SequenceMemory, ColorSequence:
		return newSequence(k, rc, fx), nil
	case TapTheDots:
		return newTapDots(fx), nil
	case SwipeDirection:
		return newSwipe(fx), nil
	case ColorFlash:
		return newColorFlash(rc, fx), nil
	case ReactionTest, SpeedTap:
		return newStimulus(k, rc, fx), nil
	case FollowLeader:
		return newFollowLeader(rc, fx), nil
	case MemoryCards:
		return newMemoryCards(rc, fx), nil
	case RhythmTap:
		return newRhythm(rc), nil
	case ShapeMatch:
		return newShapeMatch(rc, fx), nil
	case BalanceChallenge:
		return newBalance(rc, fx), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
}

// View is a render and automation snapshot of the running challenge.
// Fields a kind does not use stay at their zero value.
type View struct {
	Kind        Kind          `json:"kind"`
	Instruction string        `json:"instruction"`
	Hint        string        `json:"hint,omitempty"`
	Label       string        `json:"label"`
	Phase       Phase         `json:"phase"`
	Generation  uint64        `json:"generation"`
	Remaining   time.Duration `json:"remaining"`
	Total       time.Duration `json:"total"`

	Color     string        `json:"color,omitempty"`
	Lit       bool          `json:"lit,omitempty"`
	Text      string        `json:"text,omitempty"`
	Count     int           `json:"count,omitempty"`
	Goal      int           `json:"goal,omitempty"`
	Angle     float64       `json:"angle,omitempty"`
	Target    float64       `json:"target,omitempty"`
	Points    []input.Point `json:"points,omitempty"`
	Radii     []float64     `json:"radii,omitempty"`
	Pointer   input.Point   `json:"pointer"`
	Highlight int           `json:"highlight"`
	Step      int           `json:"step"`
	Cards     []CardView    `json:"cards,omitempty"`
	NextBeat  time.Duration `json:"next_beat,omitempty"`
}

// CardView is one memory card as a player may see it.
type CardView struct {
	Symbol  string      `json:"symbol,omitempty"`
	FaceUp  bool        `json:"face_up"`
	Matched bool        `json:"matched"`
	Center  input.Point `json:"center"`
}

// Button colours shared by several kinds.
const (
	ColorIdle    = "#3B82F6"
	ColorDanger  = "#EF4444"
	ColorGo      = "#22C55E"
	ColorNeutral = "#64748B"
)

// Palette is the four-colour set used by colour and sequence kinds.
var Palette = []string{"#EF4444", "#10B981", "#3B82F6", "#F59E0B"}
