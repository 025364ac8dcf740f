package challenge

import (
	"fmt"
	"math"
	"time"

	"buttonblitz/internal/audio"
	"buttonblitz/internal/input"
)

// tapCounter backs tap_fast and button_mash: every tap counts, time decides.
type tapCounter struct {
	base
	kind Kind
	taps int
}

func newTapCounter(k Kind) *tapCounter {
	return &tapCounter{kind: k}
}

func (s *tapCounter) Kind() Kind { return s.kind }

func (s *tapCounter) Label() string { return fmt.Sprintf("TAPS: %d", s.taps) }

func (s *tapCounter) input(fx *effects, g input.Gesture) *Outcome {
	if g.Kind != input.Tap {
		return nil
	}
	s.taps++
	fx.play(audio.CueTap)
	return nil
}

func (s *tapCounter) expire(*effects) *Outcome {
	return success(max(10, s.taps*3))
}

func (s *tapCounter) view(v *View) { v.Count = s.taps }

// avoidRed flips between blue and red; any red tap loses, surviving wins.
type avoidRed struct {
	base
	red     bool
	correct int
	every   time.Duration
	acc     time.Duration
}

func newAvoidRed(rc RoundContext) *avoidRed {
	return &avoidRed{every: maxDuration(400*time.Millisecond, scaled(800*time.Millisecond, rc.Speed))}
}

func (s *avoidRed) Kind() Kind { return AvoidRed }

func (s *avoidRed) Label() string {
	if s.red {
		return "DON'T TAP!"
	}
	return "SAFE TO TAP!"
}

func (s *avoidRed) tick(fx *effects, elapsed time.Duration) *Outcome {
	s.acc += elapsed
	for s.acc >= s.every {
		s.acc -= s.every
		s.red = fx.rng.Float64() > 0.6
	}
	return nil
}

func (s *avoidRed) input(fx *effects, g input.Gesture) *Outcome {
	if g.Kind != input.Tap {
		return nil
	}
	if s.red {
		fx.play(audio.CueNegativeTap)
		return failure()
	}
	s.correct++
	fx.play(audio.CuePositiveTap)
	return nil
}

func (s *avoidRed) expire(*effects) *Outcome {
	return success(max(50, s.correct*15))
}

func (s *avoidRed) view(v *View) {
	v.Color = ColorIdle
	if s.red {
		v.Color = ColorDanger
	}
	v.Lit = s.red
	v.Count = s.correct
}

var (
	simonActions   = []string{"TAP!", "PRESS!", "HIT!", "TOUCH!", "CLICK!"}
	noSimonActions = []string{"WAIT!", "DON'T MOVE!", "STOP!", "FREEZE!"}
)

// simonSays wins on a tap when the action word is a tap word. Tapping on
// any other word fails at once.
type simonSays struct {
	base
	says   bool
	action string
}

func newSimonSays(fx *effects) *simonSays {
	s := &simonSays{says: fx.rng.Float64() > 0.3}
	if s.says {
		s.action = simonActions[fx.rng.Intn(len(simonActions))]
	} else {
		s.action = noSimonActions[fx.rng.Intn(len(noSimonActions))]
	}
	return s
}

func (s *simonSays) Kind() Kind { return SimonSays }

func (s *simonSays) Label() string { return "SIMON SAYS " + s.action }

func (s *simonSays) input(fx *effects, g input.Gesture) *Outcome {
	if g.Kind != input.Tap {
		return nil
	}
	if s.says {
		return success(100)
	}
	return failure()
}

func (s *simonSays) view(v *View) {
	v.Text = s.action
	v.Lit = s.says
}

// countDown ticks a counter to zero; only a tap at zero wins.
type countDown struct {
	base
	count int
	start int
	step  time.Duration
	acc   time.Duration
}

func newCountDown(rc RoundContext, fx *effects) *countDown {
	start := fx.rng.Intn(4) + 3
	step := maxDuration(300*time.Millisecond, scaled(time.Duration(fx.rng.Float64()*500+600)*time.Millisecond, rc.Speed))
	// Zero must be reachable with time left to tap.
	if limit := rc.Duration * 3 / 4 / time.Duration(start); limit > 0 {
		step = minDuration(step, limit)
	}
	return &countDown{count: start, start: start, step: step}
}

func (s *countDown) Kind() Kind { return CountDown }

func (s *countDown) Label() string {
	if s.count > 0 {
		return fmt.Sprintf("%d", s.count)
	}
	return "TAP NOW!"
}

func (s *countDown) tick(fx *effects, elapsed time.Duration) *Outcome {
	if s.count <= 0 {
		return nil
	}
	s.acc += elapsed
	for s.acc >= s.step && s.count > 0 {
		s.acc -= s.step
		s.count--
		fx.play(audio.CueCountdownTick)
	}
	return nil
}

func (s *countDown) input(fx *effects, g input.Gesture) *Outcome {
	if g.Kind != input.Tap {
		return nil
	}
	if s.count <= 0 {
		return success(120)
	}
	return failure()
}

func (s *countDown) view(v *View) {
	v.Count = s.count
	v.Goal = s.start
	v.Lit = s.count <= 0
}

// stimulus backs reaction_test and speed_tap: wait for a signal, then tap.
type stimulus struct {
	base
	kind   Kind
	delay  time.Duration
	clock  time.Duration
	shown  bool
	points int
}

func newStimulus(k Kind, rc RoundContext, fx *effects) *stimulus {
	s := &stimulus{kind: k}
	switch k {
	case SpeedTap:
		s.delay = time.Duration((fx.rng.Float64()*2 + 2) * float64(time.Second))
		s.points = 160
	default:
		s.delay = time.Duration((fx.rng.Float64()*3000 + 1000) * float64(time.Millisecond))
		s.points = 130
	}
	// Leave at least 40% of the window to react.
	s.delay = minDuration(s.delay, rc.Duration*3/5)
	return s
}

func (s *stimulus) Kind() Kind { return s.kind }

func (s *stimulus) Label() string {
	switch {
	case s.shown:
		return "TAP NOW!"
	case s.kind == SpeedTap:
		return "WAIT..."
	default:
		return "WAIT FOR GREEN..."
	}
}

func (s *stimulus) tick(fx *effects, elapsed time.Duration) *Outcome {
	s.clock += elapsed
	if !s.shown && s.clock >= s.delay {
		s.shown = true
		fx.play(audio.CueDing)
	}
	return nil
}

func (s *stimulus) input(fx *effects, g input.Gesture) *Outcome {
	if g.Kind != input.Tap {
		return nil
	}
	if s.shown {
		return success(s.points)
	}
	return failure()
}

func (s *stimulus) view(v *View) {
	v.Lit = s.shown
	v.Color = ColorIdle
	if s.shown {
		v.Color = ColorGo
	}
}

// colorFlash shows a colour briefly; tapping while it is visible loses.
type colorFlash struct {
	base
	color  string
	clock  time.Duration
	showAt time.Duration
	hideAt time.Duration
	dinged bool
}

func newColorFlash(rc RoundContext, fx *effects) *colorFlash {
	return &colorFlash{
		color:  Palette[fx.rng.Intn(len(Palette))],
		showAt: minDuration(500*time.Millisecond, rc.Duration/4),
		hideAt: minDuration(1000*time.Millisecond, rc.Duration/2),
	}
}

func (s *colorFlash) Kind() Kind { return ColorFlash }

func (s *colorFlash) watching() bool { return s.clock < s.hideAt }

func (s *colorFlash) Label() string {
	if s.watching() {
		return "WATCH!"
	}
	return "WHAT COLOR?"
}

func (s *colorFlash) tick(fx *effects, elapsed time.Duration) *Outcome {
	s.clock += elapsed
	if !s.dinged && s.clock >= s.showAt {
		s.dinged = true
		fx.play(audio.CueDing)
	}
	return nil
}

func (s *colorFlash) input(fx *effects, g input.Gesture) *Outcome {
	if g.Kind != input.Tap {
		return nil
	}
	if s.watching() {
		return failure()
	}
	return success(140)
}

func (s *colorFlash) view(v *View) {
	v.Color = ColorIdle
	switch {
	case s.clock >= s.showAt && s.clock < s.hideAt:
		v.Color = s.color
		v.Lit = true
	case s.clock >= s.hideAt:
		v.Color = ColorNeutral
	}
}

var shapes = []string{"●", "■", "▲", "♦"}

// shapeMatch cycles shapes; tapping when the current one equals the target wins.
type shapeMatch struct {
	base
	target int
	index  int
	every  time.Duration
	acc    time.Duration
}

func newShapeMatch(rc RoundContext, fx *effects) *shapeMatch {
	return &shapeMatch{
		target: fx.rng.Intn(len(shapes)),
		// A full cycle has to fit in the window.
		every: minDuration(800*time.Millisecond, rc.Duration/time.Duration(len(shapes))),
	}
}

func (s *shapeMatch) Kind() Kind { return ShapeMatch }

func (s *shapeMatch) aligned() bool { return s.index == s.target }

func (s *shapeMatch) Label() string {
	return fmt.Sprintf("TARGET: %s | NOW: %s", shapes[s.target], shapes[s.index])
}

func (s *shapeMatch) tick(fx *effects, elapsed time.Duration) *Outcome {
	if s.every <= 0 {
		return nil
	}
	s.acc += elapsed
	for s.acc >= s.every {
		s.acc -= s.every
		s.index = (s.index + 1) % len(shapes)
	}
	return nil
}

func (s *shapeMatch) input(fx *effects, g input.Gesture) *Outcome {
	if g.Kind != input.Tap {
		return nil
	}
	if s.aligned() {
		return success(120)
	}
	return failure()
}

func (s *shapeMatch) view(v *View) {
	v.Text = shapes[s.target] + shapes[s.index]
	v.Lit = s.aligned()
	v.Step = s.index
	v.Highlight = s.target
}

// spinner rotates at a fixed angular speed; the green arc is 330°..30°.
type spinner struct {
	base
	rotation    float64
	degPerFrame float64
	stopped     bool
}

const spinnerFrame = time.Second / 60

func newSpinner(rc RoundContext, fx *effects) *spinner {
	return &spinner{
		// Start outside the green arc so a blind tap cannot win.
		rotation:    60 + fx.rng.Float64()*240,
		degPerFrame: math.Max(3, 12/rc.Speed),
	}
}

func (s *spinner) Kind() Kind { return StopTheSpinner }

// InGreen reports whether an angle in degrees lies in the winning arc.
func InGreen(deg float64) bool {
	return deg >= 330 || deg <= 30
}

func (s *spinner) Label() string {
	if s.stopped {
		return "STOPPED!"
	}
	return "STOP IN GREEN!"
}

func (s *spinner) tick(fx *effects, elapsed time.Duration) *Outcome {
	if s.stopped {
		return nil
	}
	frames := float64(elapsed) / float64(spinnerFrame)
	s.rotation = math.Mod(s.rotation+s.degPerFrame*frames, 360)
	return nil
}

func (s *spinner) input(fx *effects, g input.Gesture) *Outcome {
	if g.Kind != input.Tap {
		return nil
	}
	s.stopped = true
	if InGreen(s.rotation) {
		return success(150)
	}
	return failure()
}

func (s *spinner) view(v *View) {
	v.Angle = s.rotation
	v.Target = s.degPerFrame * 60
	v.Lit = InGreen(s.rotation)
}
