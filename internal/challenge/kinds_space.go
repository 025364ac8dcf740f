package challenge

import (
	"fmt"
	"math"
	"time"

	"buttonblitz/internal/audio"
	"buttonblitz/internal/input"
)

// DragTarget is the release radius around the centre that wins drag_ball.
const DragTarget = 25.0

// dragBall follows the pointer; releasing near the centre wins.
type dragBall struct {
	base
	ball input.Point
}

func newDragBall(fx *effects) *dragBall {
	angle := fx.rng.Float64() * 2 * math.Pi
	r := 60 + fx.rng.Float64()*40
	return &dragBall{ball: input.Point{X: r * math.Cos(angle), Y: r * math.Sin(angle)}}
}

func (s *dragBall) Kind() Kind { return DragBall }

func (s *dragBall) Label() string { return "DRAG TO CENTER!" }

func (s *dragBall) input(fx *effects, g input.Gesture) *Outcome {
	switch g.Kind {
	case input.DragMove:
		s.ball = g.Point
	case input.DragEnd:
		s.ball = g.Point
		if s.ball.Len() < DragTarget {
			return success(150)
		}
		return failure()
	}
	return nil
}

func (s *dragBall) view(v *View) {
	v.Points = []input.Point{s.ball}
	v.Radii = []float64{DragTarget}
}

type dot struct {
	at     input.Point
	radius float64
}

// tapDots wins when every dot has been tapped before time runs out.
type tapDots struct {
	base
	dots []dot
	orig int
}

func newTapDots(fx *effects) *tapDots {
	n := fx.rng.Intn(3) + 3
	s := &tapDots{orig: n}
	for i := 0; i < n; i++ {
		s.dots = append(s.dots, dot{
			at:     input.Point{X: fx.rng.Float64()*150 - 75, Y: fx.rng.Float64()*150 - 75},
			radius: fx.rng.Float64()*10 + 20,
		})
	}
	return s
}

func (s *tapDots) Kind() Kind { return TapTheDots }

func (s *tapDots) Label() string { return fmt.Sprintf("DOTS LEFT: %d", len(s.dots)) }

func (s *tapDots) input(fx *effects, g input.Gesture) *Outcome {
	if g.Kind != input.Tap {
		return nil
	}
	for i, d := range s.dots {
		if g.Point.Dist(d.at) < d.radius {
			s.dots = append(s.dots[:i], s.dots[i+1:]...)
			fx.play(audio.CuePositiveTap)
			if len(s.dots) == 0 {
				return success(100 + s.orig*10)
			}
			return nil
		}
	}
	fx.play(audio.CueNegativeTap)
	return nil
}

func (s *tapDots) view(v *View) {
	v.Count = len(s.dots)
	v.Goal = s.orig
	for _, d := range s.dots {
		v.Points = append(v.Points, d.at)
		v.Radii = append(v.Radii, d.radius)
	}
}

// Swipe directions.
const (
	SwipeUp    = "UP"
	SwipeDown  = "DOWN"
	SwipeLeft  = "LEFT"
	SwipeRight = "RIGHT"
)

// MinSwipe is the displacement the dominant axis must exceed.
const MinSwipe = 50.0

var directions = []string{SwipeUp, SwipeDown, SwipeLeft, SwipeRight}

// SwipeOf classifies a displacement, returning "" when no axis dominates
// beyond MinSwipe.
func SwipeOf(d input.Point) string {
	ax, ay := math.Abs(d.X), math.Abs(d.Y)
	switch {
	case ax > ay && ax > MinSwipe:
		if d.X > 0 {
			return SwipeRight
		}
		return SwipeLeft
	case ay > ax && ay > MinSwipe:
		if d.Y > 0 {
			return SwipeDown
		}
		return SwipeUp
	}
	return ""
}

type swipe struct {
	base
	want string
}

func newSwipe(fx *effects) *swipe {
	return &swipe{want: directions[fx.rng.Intn(len(directions))]}
}

func (s *swipe) Kind() Kind { return SwipeDirection }

func (s *swipe) Label() string { return "SWIPE " + s.want }

func (s *swipe) input(fx *effects, g input.Gesture) *Outcome {
	if g.Kind != input.SwipeEnd {
		return nil
	}
	if SwipeOf(g.Delta) == s.want {
		return success(130)
	}
	return failure()
}

func (s *swipe) view(v *View) { v.Text = s.want }

// Orb physics constants, applied once per TickInterval.
const (
	orbAttraction = 0.05
	orbRepulsion  = 0.5
	orbRepelRange = 40.0
	orbDrag       = 0.98
	orbBoundary   = 120.0
	orbCollect    = 20.0
	orbDeadZone   = 5.0
)

type orb struct {
	pos, vel  input.Point
	collected bool
}

// balance pulls orbs toward the pointer while it is held; orbs that reach
// it are collected.
type balance struct {
	base
	orbs      []orb
	magnet    input.Point
	pulling   bool
	collected int
	acc       time.Duration
}

func newBalance(rc RoundContext, fx *effects) *balance {
	n := min(3+rc.Round/4, 6)
	s := &balance{}
	for i := 0; i < n; i++ {
		s.orbs = append(s.orbs, orb{
			pos: input.Point{X: fx.rng.Float64()*150 - 75, Y: fx.rng.Float64()*150 - 75},
			vel: input.Point{X: (fx.rng.Float64() - 0.5) * 4, Y: (fx.rng.Float64() - 0.5) * 4},
		})
	}
	return s
}

func (s *balance) Kind() Kind { return BalanceChallenge }

func (s *balance) Label() string {
	return fmt.Sprintf("ORBS: %d/%d", s.collected, len(s.orbs))
}

func (s *balance) input(fx *effects, g input.Gesture) *Outcome {
	switch g.Kind {
	case input.DragMove:
		s.magnet = g.Point
		s.pulling = true
	case input.DragEnd:
		s.magnet = g.Point
		s.pulling = false
	}
	return nil
}

func (s *balance) tick(fx *effects, elapsed time.Duration) *Outcome {
	s.acc += elapsed
	for s.acc >= TickInterval {
		s.acc -= TickInterval
		s.step(fx)
		if s.collected == len(s.orbs) {
			return success(100 + s.collected*20)
		}
	}
	return nil
}

func (s *balance) step(fx *effects) {
	prev := append([]orb(nil), s.orbs...)
	for i := range s.orbs {
		o := &s.orbs[i]
		if o.collected {
			continue
		}
		toMagnet := s.magnet.Sub(o.pos)
		dist := toMagnet.Len()
		if s.pulling && dist > orbDeadZone {
			o.vel.X += toMagnet.X * orbAttraction
			o.vel.Y += toMagnet.Y * orbAttraction
		}
		for j, other := range prev {
			if i == j || other.collected {
				continue
			}
			d := prev[i].pos.Sub(other.pos)
			dd := d.Len()
			if dd > 0 && dd < orbRepelRange {
				o.vel.X += d.X / dd * orbRepulsion
				o.vel.Y += d.Y / dd * orbRepulsion
			}
		}
		o.vel.X *= orbDrag
		o.vel.Y *= orbDrag

		if s.pulling && dist < orbCollect {
			o.collected = true
			s.collected++
			fx.play(audio.CuePop)
			continue
		}

		o.pos.X += o.vel.X
		o.pos.Y += o.vel.Y
		bounce(&o.pos.X, &o.vel.X)
		bounce(&o.pos.Y, &o.vel.Y)
	}
}

func bounce(p, v *float64) {
	if *p > orbBoundary {
		*p = orbBoundary
		*v = -math.Abs(*v)
	}
	if *p < -orbBoundary {
		*p = -orbBoundary
		*v = math.Abs(*v)
	}
}

func (s *balance) view(v *View) {
	v.Count = s.collected
	v.Goal = len(s.orbs)
	v.Pointer = s.magnet
	v.Lit = s.pulling
	for _, o := range s.orbs {
		if !o.collected {
			v.Points = append(v.Points, o.pos)
		}
	}
}
