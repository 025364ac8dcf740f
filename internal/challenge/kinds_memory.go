package challenge

import (
	"time"

	"buttonblitz/internal/audio"
	"buttonblitz/internal/input"
)

// reveal is the fixed, non-interactive show-then-replay schedule shared by
// the memory kinds.
type reveal struct {
	clock  time.Duration
	steps  int
	every  time.Duration
	litFor time.Duration
	cued   int
}

func (r *reveal) advance(fx *effects, elapsed time.Duration, cue audio.Cue) {
	if !r.active() {
		return
	}
	r.clock += elapsed
	for r.cued < r.steps && time.Duration(r.cued)*r.every <= r.clock && r.clock < r.end() {
		r.cued++
		fx.play(cue)
	}
}

func (r *reveal) end() time.Duration {
	return time.Duration(r.steps) * r.every
}

func (r *reveal) active() bool {
	return r.clock < r.end()
}

// lit returns the step currently shown, or -1 between steps.
func (r *reveal) lit() int {
	if !r.active() {
		return -1
	}
	i := int(r.clock / r.every)
	if r.clock-time.Duration(i)*r.every < r.litFor {
		return i
	}
	return -1
}

// Quadrant maps a button-local point to 0 top-left, 1 top-right,
// 2 bottom-left, 3 bottom-right.
func Quadrant(p input.Point) int {
	q := 0
	if p.X >= 0 {
		q++
	}
	if p.Y >= 0 {
		q += 2
	}
	return q
}

// QuadrantCenter is a representative point inside quadrant q.
func QuadrantCenter(q int) input.Point {
	p := input.Point{X: -50, Y: -50}
	if q%2 == 1 {
		p.X = 50
	}
	if q >= 2 {
		p.Y = 50
	}
	return p
}

// sequence backs sequence_memory and color_sequence: watch coloured
// quadrants light up, then tap them back in order.
type sequence struct {
	base
	kind      Kind
	values    []int
	progress  int
	show      reveal
	cue       audio.Cue
	basePts   int
	perStep   int
	watchText string
}

func newSequence(k Kind, rc RoundContext, fx *effects) *sequence {
	s := &sequence{kind: k}
	var n int
	switch k {
	case ColorSequence:
		n = min(3+rc.Round/4, 5)
		s.show = reveal{every: 800 * time.Millisecond, litFor: 500 * time.Millisecond}
		s.cue = audio.CuePositiveTap
		s.basePts, s.perStep = 120, 25
		s.watchText = "WATCH COLORS!"
	default:
		n = min(3+rc.Round/3, 6)
		s.show = reveal{every: 700 * time.Millisecond, litFor: 400 * time.Millisecond}
		s.cue = audio.CueDing
		s.basePts, s.perStep = 100, 20
		s.watchText = "WATCH!"
	}
	s.show.steps = n
	for i := 0; i < n; i++ {
		s.values = append(s.values, fx.rng.Intn(len(Palette)))
	}
	return s
}

func (s *sequence) Kind() Kind { return s.kind }

func (s *sequence) revealing() bool { return s.show.active() }

func (s *sequence) Label() string {
	switch {
	case s.revealing():
		return s.watchText
	case s.kind == ColorSequence:
		return "COPY SEQUENCE!"
	default:
		return "COPY IT!"
	}
}

func (s *sequence) tick(fx *effects, elapsed time.Duration) *Outcome {
	s.show.advance(fx, elapsed, s.cue)
	return nil
}

func (s *sequence) input(fx *effects, g input.Gesture) *Outcome {
	if g.Kind != input.Tap || s.revealing() {
		return nil
	}
	if Quadrant(g.Point) != s.values[s.progress] {
		return failure()
	}
	s.progress++
	fx.play(audio.CuePositiveTap)
	if s.progress == len(s.values) {
		return success(s.basePts + len(s.values)*s.perStep)
	}
	return nil
}

func (s *sequence) view(v *View) {
	v.Goal = len(s.values)
	v.Count = s.progress
	v.Highlight = -1
	v.Color = ColorIdle
	if i := s.show.lit(); i >= 0 {
		v.Step = i
		v.Highlight = s.values[i]
		v.Color = Palette[s.values[i]]
	}
}

// LeaderTolerance is how close a replayed tap must land to the shown spot.
const LeaderTolerance = 50.0

// followLeader shows taps at positions, then expects them replayed.
type followLeader struct {
	base
	spots    []input.Point
	progress int
	show     reveal
}

func newFollowLeader(rc RoundContext, fx *effects) *followLeader {
	n := min(3+rc.Round/5, 5)
	s := &followLeader{show: reveal{steps: n, every: 700 * time.Millisecond, litFor: 500 * time.Millisecond}}
	for i := 0; i < n; i++ {
		s.spots = append(s.spots, input.Point{X: fx.rng.Float64()*100 - 50, Y: fx.rng.Float64()*100 - 50})
	}
	return s
}

func (s *followLeader) Kind() Kind { return FollowLeader }

func (s *followLeader) revealing() bool { return s.show.active() }

func (s *followLeader) Label() string {
	if s.revealing() {
		return "WATCH!"
	}
	return "COPY IT!"
}

func (s *followLeader) tick(fx *effects, elapsed time.Duration) *Outcome {
	s.show.advance(fx, elapsed, audio.CuePositiveTap)
	return nil
}

func (s *followLeader) input(fx *effects, g input.Gesture) *Outcome {
	if g.Kind != input.Tap || s.revealing() {
		return nil
	}
	if g.Point.Dist(s.spots[s.progress]) >= LeaderTolerance {
		return failure()
	}
	s.progress++
	fx.play(audio.CuePositiveTap)
	if s.progress == len(s.spots) {
		return success(110 + len(s.spots)*15)
	}
	return nil
}

func (s *followLeader) view(v *View) {
	v.Goal = len(s.spots)
	v.Count = s.progress
	v.Highlight = -1
	if i := s.show.lit(); i >= 0 {
		v.Step = i
		v.Highlight = i
		v.Points = []input.Point{s.spots[i]}
	}
}

var cardSymbols = []string{"⭐", "❤️", "🔥", "💎", "🍀", "💡"}

const (
	cardCell         = 60.0
	cardShowFor      = 2000 * time.Millisecond
	cardMismatchHold = 1000 * time.Millisecond
)

type card struct {
	symbol  int
	faceUp  bool
	matched bool
}

// memoryCards shows every card, hides them, then expects pairs found by
// flipping two at a time.
type memoryCards struct {
	base
	cards    []card
	pairs    int
	matches  int
	first    int
	second   int
	mismatch time.Duration
	clock    time.Duration
}

func newMemoryCards(rc RoundContext, fx *effects) *memoryCards {
	pairs := min(2+rc.Round/6, 4)
	s := &memoryCards{pairs: pairs, first: -1, second: -1}
	for i := 0; i < pairs; i++ {
		s.cards = append(s.cards, card{symbol: i}, card{symbol: i})
	}
	for i := len(s.cards) - 1; i > 0; i-- {
		j := fx.rng.Intn(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
	return s
}

func (s *memoryCards) Kind() Kind { return MemoryCards }

func (s *memoryCards) revealing() bool { return s.clock < cardShowFor }

func (s *memoryCards) Label() string {
	if s.revealing() {
		return "MEMORIZE!"
	}
	return "MATCH PAIRS!"
}

// CardCenter returns the button-local centre of card i in a layout of n cards
// arranged in two rows.
func CardCenter(i, n int) input.Point {
	cols := (n + 1) / 2
	col, row := i%cols, i/cols
	return input.Point{
		X: (float64(col) - float64(cols-1)/2) * cardCell,
		Y: (float64(row) - 0.5) * cardCell,
	}
}

func (s *memoryCards) cardAt(p input.Point) int {
	for i := range s.cards {
		c := CardCenter(i, len(s.cards))
		if abs(p.X-c.X) < cardCell/2 && abs(p.Y-c.Y) < cardCell/2 {
			return i
		}
	}
	return -1
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func (s *memoryCards) tick(fx *effects, elapsed time.Duration) *Outcome {
	if s.revealing() {
		s.clock += elapsed
		return nil
	}
	if s.mismatch > 0 {
		s.mismatch -= elapsed
		if s.mismatch <= 0 {
			s.mismatch = 0
			s.cards[s.first].faceUp = false
			s.cards[s.second].faceUp = false
			s.first, s.second = -1, -1
		}
	}
	return nil
}

func (s *memoryCards) input(fx *effects, g input.Gesture) *Outcome {
	if g.Kind != input.Tap || s.revealing() || s.mismatch > 0 {
		return nil
	}
	i := s.cardAt(g.Point)
	if i < 0 || s.cards[i].matched || s.cards[i].faceUp {
		return nil
	}
	s.cards[i].faceUp = true
	fx.play(audio.CueTap)
	if s.first < 0 {
		s.first = i
		return nil
	}
	a, b := &s.cards[s.first], &s.cards[i]
	if a.symbol == b.symbol {
		a.matched, b.matched = true, true
		s.first = -1
		s.matches++
		fx.play(audio.CueSuccess)
		if s.matches == s.pairs {
			return success(150 + s.pairs*30)
		}
		return nil
	}
	fx.play(audio.CueFail)
	s.second = i
	s.mismatch = cardMismatchHold
	return nil
}

func (s *memoryCards) view(v *View) {
	v.Goal = s.pairs
	v.Count = s.matches
	v.Highlight = -1
	showAll := s.revealing()
	for i, c := range s.cards {
		cv := CardView{
			FaceUp:  showAll || c.faceUp || c.matched,
			Matched: c.matched,
			Center:  CardCenter(i, len(s.cards)),
		}
		if cv.FaceUp {
			cv.Symbol = cardSymbols[c.symbol]
		}
		v.Cards = append(v.Cards, cv)
	}
}
