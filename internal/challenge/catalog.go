// Package challenge holds the per-round task engine: the catalog of
// challenge kinds, difficulty scaling, the round timer and the runtime that
// drives one challenge instance from setup to a single outcome.
package challenge

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"buttonblitz/internal/input"
)

// Kind identifies a challenge.
type Kind string

const (
	TapFast          Kind = "tap_fast"
	HoldRelease      Kind = "hold_release"
	AvoidRed         Kind = "avoid_red"
	SimonSays        Kind = "simon_says"
	CountDown        Kind = "count_down"
	StopTheSpinner   Kind = "stop_the_spinner"
	DragBall         Kind = "drag_ball"
	SequenceMemory   Kind = "sequence_memory"
	TapTheDots       Kind = "tap_the_dots"
	ColorSequence    Kind = "color_sequence"
	SwipeDirection   Kind = "swipe_direction"
	ButtonMash       Kind = "button_mash"
	ColorFlash       Kind = "color_flash"
	ReactionTest     Kind = "reaction_test"
	FollowLeader     Kind = "follow_leader"
	MemoryCards      Kind = "memory_cards"
	RhythmTap        Kind = "rhythm_tap"
	ShapeMatch       Kind = "shape_match"
	SpeedTap         Kind = "speed_tap"
	BalanceChallenge Kind = "balance_challenge"
)

// Spec is the immutable description of a challenge kind.
type Spec struct {
	Kind        Kind       `json:"kind"`
	Instruction string     `json:"instruction"`
	Hint        string     `json:"hint"`
	Reveal      bool       `json:"reveal"` // timer starts after a non-interactive reveal
	Input       input.Mode `json:"-"`
}

var builtin = []Spec{
	{Kind: TapFast, Instruction: "TAP FAST!", Hint: "More taps = more points!", Input: input.ModePress},
	{Kind: HoldRelease, Instruction: "HOLD & RELEASE!", Hint: "Release at the right time!", Input: input.ModeHold},
	{Kind: AvoidRed, Instruction: "DON'T TAP RED!", Hint: "Only tap when the button is blue"},
	{Kind: SimonSays, Instruction: "SIMON SAYS...", Hint: "Only tap when Simon says to!"},
	{Kind: CountDown, Instruction: "TAP AT ZERO!", Hint: "Wait for the countdown!"},
	{Kind: StopTheSpinner, Instruction: "STOP IN GREEN!", Hint: "Tap when the spinner is in the green area"},
	{Kind: DragBall, Instruction: "CENTER THE BALL!", Hint: "Drag the ball to the center", Input: input.ModeDrag},
	{Kind: SequenceMemory, Instruction: "REPEAT SEQUENCE!", Hint: "Remember and repeat the pattern", Reveal: true},
	{Kind: TapTheDots, Instruction: "TAP ALL DOTS!", Hint: "Clear them before they disappear"},
	{Kind: ColorSequence, Instruction: "TAP COLORS IN ORDER!", Hint: "Remember the color order", Reveal: true},
	{Kind: SwipeDirection, Instruction: "SWIPE!", Hint: "Swipe in the correct direction", Input: input.ModeSwipe},
	{Kind: ButtonMash, Instruction: "MASH NOW!", Hint: "Tap as fast as possible!", Input: input.ModePress},
	{Kind: ColorFlash, Instruction: "WHAT COLOR?", Hint: "Remember the flashed color"},
	{Kind: ReactionTest, Instruction: "WAIT FOR GREEN!", Hint: "Tap when screen turns green"},
	{Kind: FollowLeader, Instruction: "COPY SEQUENCE!", Hint: "Repeat the taps shown", Reveal: true},
	{Kind: MemoryCards, Instruction: "MATCH PAIRS!", Hint: "Find matching cards", Reveal: true},
	{Kind: RhythmTap, Instruction: "TAP THE RHYTHM!", Hint: "Follow the beat pattern"},
	{Kind: ShapeMatch, Instruction: "ALIGN SHAPES!", Hint: "Tap when shapes line up"},
	{Kind: SpeedTap, Instruction: "PRECISE TIMING!", Hint: "Tap at the exact moment"},
	{Kind: BalanceChallenge, Instruction: "GATHER ORBS!", Hint: "Drag all orbs to the center", Input: input.ModeDrag},
}

var (
	ErrEmptyCatalog = errors.New("challenge catalog is empty")
	ErrUnknownKind  = errors.New("unknown challenge kind")
	ErrDuplicate    = errors.New("duplicate challenge kind")
)

// Builtin returns a copy of every shipped challenge.
func Builtin() []Spec {
	return append([]Spec(nil), builtin...)
}

// LookupBuiltin returns the shipped spec for k.
func LookupBuiltin(k Kind) (Spec, bool) {
	for _, s := range builtin {
		if s.Kind == k {
			return s, true
		}
	}
	return Spec{}, false
}

// Subset returns the shipped specs for kinds, in the order given.
func Subset(kinds ...Kind) ([]Spec, error) {
	out := make([]Spec, 0, len(kinds))
	for _, k := range kinds {
		s, ok := LookupBuiltin(k)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
		}
		out = append(out, s)
	}
	return out, nil
}

// Catalog picks challenges uniformly, never repeating the previous kind
// when it has more than one entry.
type Catalog struct {
	specs []Spec
	index map[Kind]int
	rng   *rand.Rand
}

// NewCatalog builds a catalog over specs, or over every builtin challenge
// when specs is nil. rng may be nil to use a time-seeded default.
func NewCatalog(rng *rand.Rand, specs ...Spec) (*Catalog, error) {
	if specs == nil {
		specs = Builtin()
	}
	if len(specs) == 0 {
		return nil, ErrEmptyCatalog
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c := &Catalog{
		specs: append([]Spec(nil), specs...),
		index: make(map[Kind]int, len(specs)),
		rng:   rng,
	}
	for i, s := range c.specs {
		if _, dup := c.index[s.Kind]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, s.Kind)
		}
		c.index[s.Kind] = i
	}
	return c, nil
}

// Pick returns a uniformly chosen spec other than exclude. The exclusion is
// ignored when the catalog has a single entry.
func (c *Catalog) Pick(exclude Kind) Spec {
	n := len(c.specs)
	if n == 1 {
		return c.specs[0]
	}
	skip, ok := c.index[exclude]
	if !ok {
		return c.specs[c.rng.Intn(n)]
	}
	i := c.rng.Intn(n - 1)
	if i >= skip {
		i++
	}
	return c.specs[i]
}

// Lookup returns the spec for k if the catalog holds it.
func (c *Catalog) Lookup(k Kind) (Spec, bool) {
	i, ok := c.index[k]
	if !ok {
		return Spec{}, false
	}
	return c.specs[i], true
}

// Specs returns a copy of the catalog entries.
func (c *Catalog) Specs() []Spec {
	return append([]Spec(nil), c.specs...)
}

// Len returns the number of kinds.
func (c *Catalog) Len() int {
	return len(c.specs)
}
