package bot

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"buttonblitz/internal/challenge"
	"buttonblitz/internal/input"
)

type planned struct {
	at time.Duration
	ev input.PointerEvent
}

// scripted plays every catalog kind from what the view shows. It remembers
// reveals the way a player would and acts through raw pointer events, so
// it exercises the same input path as a human.
type scripted struct {
	skill Skill
	rng   *rand.Rand

	gen     uint64
	fumble  bool
	plan    []planned
	acted   bool
	down    bool
	lastTap time.Duration
	beat    int
	seq     map[int]int
	spots   map[int]input.Point
	symbols map[int]string
}

var origin = input.Point{}

func (b *scripted) reset(gen uint64, now time.Duration) {
	b.gen = gen
	b.fumble = b.skill.Fumble > 0 && b.rng.Float64() < b.skill.Fumble
	b.plan = nil
	b.acted, b.down = false, false
	b.lastTap = now - b.skill.TapEvery + b.skill.Reaction
	b.beat = 0
	b.seq = map[int]int{}
	b.spots = map[int]input.Point{}
	b.symbols = map[int]string{}
}

func (b *scripted) Next(v challenge.View, now time.Duration) []input.PointerEvent {
	if v.Generation != b.gen || b.seq == nil {
		b.reset(v.Generation, now)
	}
	if v.Phase == challenge.PhaseResolved {
		b.plan = nil
		return nil
	}
	b.observe(v)
	out := b.due(now)
	if len(b.plan) == 0 && !b.fumble {
		b.decide(v, now)
		out = append(out, b.due(now)...)
	}
	return out
}

// observe memorizes what reveals show.
func (b *scripted) observe(v challenge.View) {
	switch v.Kind {
	case challenge.SequenceMemory, challenge.ColorSequence:
		if v.Phase == challenge.PhaseSetup && v.Highlight >= 0 {
			b.seq[v.Step] = v.Highlight
		}
	case challenge.FollowLeader:
		if v.Phase == challenge.PhaseSetup && v.Highlight >= 0 && len(v.Points) > 0 {
			b.spots[v.Step] = v.Points[0]
		}
	case challenge.MemoryCards:
		for i, c := range v.Cards {
			if c.Symbol != "" {
				b.symbols[i] = c.Symbol
			}
		}
	}
}

func (b *scripted) due(now time.Duration) []input.PointerEvent {
	var out []input.PointerEvent
	rest := b.plan[:0]
	for _, p := range b.plan {
		if p.at <= now {
			out = append(out, p.ev)
		} else {
			rest = append(rest, p)
		}
	}
	b.plan = rest
	return out
}

func (b *scripted) schedule(at time.Duration, phase input.PointerPhase, p input.Point) {
	b.plan = append(b.plan, planned{at: at, ev: input.PointerEvent{Phase: phase, Point: p}})
	sort.SliceStable(b.plan, func(i, j int) bool { return b.plan[i].at < b.plan[j].at })
}

func (b *scripted) tap(at time.Duration, p input.Point) {
	b.schedule(at, input.PointerDown, p)
	b.schedule(at, input.PointerUp, p)
	b.lastTap = at
}

// react taps after the reaction delay.
func (b *scripted) react(now time.Duration, p input.Point) {
	b.tap(now+b.skill.Reaction, p)
}

func (b *scripted) ready(now time.Duration) bool {
	return now-b.lastTap >= b.skill.TapEvery
}

func (b *scripted) aim(p input.Point) input.Point {
	if b.skill.Aim <= 0 {
		return p
	}
	return input.Point{
		X: p.X + (b.rng.Float64()*2-1)*b.skill.Aim,
		Y: p.Y + (b.rng.Float64()*2-1)*b.skill.Aim,
	}
}

func (b *scripted) timing(d time.Duration) time.Duration {
	if b.skill.Timing <= 0 {
		return d
	}
	d += time.Duration((b.rng.Float64()*2 - 1) * float64(b.skill.Timing))
	if d < 0 {
		return 0
	}
	return d
}

func (b *scripted) decide(v challenge.View, now time.Duration) {
	if v.Phase != challenge.PhaseAwaitingInput {
		return
	}
	switch v.Kind {
	case challenge.TapFast, challenge.ButtonMash:
		if b.ready(now) {
			b.tap(now, origin)
		}
	case challenge.AvoidRed:
		if !v.Lit && b.ready(now) {
			b.react(now, origin)
		}
	case challenge.SimonSays, challenge.CountDown, challenge.ReactionTest,
		challenge.SpeedTap, challenge.ShapeMatch:
		if v.Lit {
			b.react(now, origin)
		}
	case challenge.ColorFlash:
		if v.Color == challenge.ColorNeutral {
			b.react(now, origin)
		}
	case challenge.StopTheSpinner:
		ahead := math.Mod(v.Angle+v.Target*b.skill.Reaction.Seconds(), 360)
		if challenge.InGreen(ahead) {
			b.react(now, origin)
		}
	case challenge.HoldRelease:
		if !b.acted {
			b.acted = true
			start := now + b.skill.Reaction
			held := b.timing(time.Duration(v.Target * float64(time.Second)))
			b.schedule(start, input.PointerDown, origin)
			b.schedule(start+held, input.PointerUp, origin)
		}
	case challenge.DragBall:
		if !b.acted && len(v.Points) > 0 {
			b.acted = true
			start := now + b.skill.Reaction
			ball := v.Points[0]
			b.schedule(start, input.PointerDown, ball)
			b.schedule(start+100*time.Millisecond, input.PointerMove, input.Point{X: ball.X / 2, Y: ball.Y / 2})
			b.schedule(start+200*time.Millisecond, input.PointerUp, b.aim(origin))
		}
	case challenge.SwipeDirection:
		if !b.acted {
			b.acted = true
			start := now + b.skill.Reaction
			b.schedule(start, input.PointerDown, origin)
			b.schedule(start+100*time.Millisecond, input.PointerUp, swipeEnd(v.Text))
		}
	case challenge.SequenceMemory, challenge.ColorSequence:
		if q, ok := b.seq[v.Count]; ok && b.ready(now) {
			b.react(now, b.aim(challenge.QuadrantCenter(q)))
		}
	case challenge.FollowLeader:
		if p, ok := b.spots[v.Count]; ok && b.ready(now) {
			b.react(now, b.aim(p))
		}
	case challenge.TapTheDots:
		if len(v.Points) > 0 && b.ready(now) {
			b.react(now, b.aim(v.Points[0]))
		}
	case challenge.MemoryCards:
		if i := b.nextCard(v); i >= 0 && b.ready(now) {
			b.react(now, v.Cards[i].Center)
		}
	case challenge.RhythmTap:
		if v.Step+1 > b.beat && v.NextBeat > 0 {
			b.beat = v.Step + 1
			b.tap(now+b.timing(v.NextBeat), origin)
		}
	case challenge.BalanceChallenge:
		b.gather(v, now)
	}
}

func swipeEnd(dir string) input.Point {
	const reach = 2 * challenge.MinSwipe
	switch dir {
	case challenge.SwipeUp:
		return input.Point{Y: -reach}
	case challenge.SwipeDown:
		return input.Point{Y: reach}
	case challenge.SwipeLeft:
		return input.Point{X: -reach}
	}
	return input.Point{X: reach}
}

// nextCard picks the card to flip: the partner of an open card when its
// symbol is remembered, otherwise the first face-down card.
func (b *scripted) nextCard(v challenge.View) int {
	open, openCount := -1, 0
	for i, c := range v.Cards {
		if c.FaceUp && !c.Matched {
			open = i
			openCount++
		}
	}
	if openCount >= 2 {
		return -1
	}
	if open >= 0 {
		if sym, ok := b.symbols[open]; ok {
			for i, c := range v.Cards {
				if i != open && !c.Matched && b.symbols[i] == sym {
					return i
				}
			}
		}
	}
	for i, c := range v.Cards {
		if i != open && !c.Matched && !c.FaceUp {
			return i
		}
	}
	return -1
}

// gather holds the magnet on the nearest orb until all are collected.
func (b *scripted) gather(v challenge.View, now time.Duration) {
	if len(v.Points) == 0 {
		return
	}
	from := v.Pointer
	best := v.Points[0]
	for _, p := range v.Points[1:] {
		if p.Dist(from) < best.Dist(from) {
			best = p
		}
	}
	if !b.down {
		b.down = true
		b.schedule(now+b.skill.Reaction, input.PointerDown, best)
		return
	}
	b.schedule(now, input.PointerMove, b.aim(best))
}
