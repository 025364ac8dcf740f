package challenge

import (
	"fmt"
	"math"
	"time"

	"buttonblitz/internal/audio"
	"buttonblitz/internal/input"
)

// HoldTolerance is the largest |held-target| in seconds that still wins.
const HoldTolerance = 0.4

// holdRelease wins when the press lasts close to a target time.
type holdRelease struct {
	base
	target  float64 // seconds, one decimal
	holding bool
	held    time.Duration
}

func newHoldRelease(fx *effects) *holdRelease {
	return &holdRelease{target: math.Round((fx.rng.Float64()*3+1.5)*10) / 10}
}

func (s *holdRelease) Kind() Kind { return HoldRelease }

func (s *holdRelease) Label() string {
	if s.holding {
		return fmt.Sprintf("HOLDING... %.1fs", s.held.Seconds())
	}
	return fmt.Sprintf("HOLD FOR %.1fs", s.target)
}

func (s *holdRelease) tick(fx *effects, elapsed time.Duration) *Outcome {
	if s.holding {
		s.held += elapsed
	}
	return nil
}

func (s *holdRelease) input(fx *effects, g input.Gesture) *Outcome {
	switch g.Kind {
	case input.HoldStart:
		if !s.holding {
			s.holding = true
			s.held = 0
		}
	case input.HoldEnd:
		if !s.holding {
			return nil
		}
		s.holding = false
		return judgeHold(g.HeldSeconds(), s.target)
	}
	return nil
}

func judgeHold(held, target float64) *Outcome {
	diff := math.Abs(held - target)
	if diff < HoldTolerance {
		return success(150 - int(math.Round(diff*100)))
	}
	return failure()
}

// expire waits for a hold in progress to finish, unless it already
// overshot the tolerance.
func (s *holdRelease) expire(*effects) *Outcome {
	if !s.holding {
		return failure()
	}
	if s.held.Seconds() > s.target+HoldTolerance {
		return failure()
	}
	return nil
}

func (s *holdRelease) view(v *View) {
	v.Target = s.target
	v.Lit = s.holding
	if s.holding {
		v.Count = int(s.held / time.Millisecond)
	}
}

const rhythmBeats = 8

// rhythm credits taps landing within a quarter interval of a beat.
type rhythm struct {
	base
	bpm      int
	interval time.Duration
	clock    time.Duration
	beat     int // beats sounded so far
	correct  int
	credited [rhythmBeats + 1]bool
}

func newRhythm(rc RoundContext) *rhythm {
	bpm := max(80, 120-rc.Round/2)
	return &rhythm{bpm: bpm, interval: time.Minute / time.Duration(bpm)}
}

func (s *rhythm) Kind() Kind { return RhythmTap }

func (s *rhythm) Label() string {
	return fmt.Sprintf("RHYTHM: %d/%d", s.correct, rhythmBeats)
}

func (s *rhythm) score() *Outcome {
	return success(max(20, s.correct*15))
}

func (s *rhythm) tick(fx *effects, elapsed time.Duration) *Outcome {
	s.clock += elapsed
	for s.beat < rhythmBeats && s.clock >= time.Duration(s.beat+1)*s.interval {
		s.beat++
		fx.play(audio.CueBeep)
	}
	// The last beat's window has closed.
	if s.clock >= time.Duration(rhythmBeats)*s.interval+s.interval/4 {
		return s.score()
	}
	return nil
}

func (s *rhythm) input(fx *effects, g input.Gesture) *Outcome {
	if g.Kind != input.Tap {
		return nil
	}
	n := int(math.Round(float64(s.clock) / float64(s.interval)))
	if n < 1 {
		n = 1
	}
	if n > rhythmBeats {
		n = rhythmBeats
	}
	off := s.clock - time.Duration(n)*s.interval
	if off < 0 {
		off = -off
	}
	if off < s.interval/4 && !s.credited[n] {
		s.credited[n] = true
		s.correct++
		fx.play(audio.CuePositiveTap)
		return nil
	}
	fx.play(audio.CueNegativeTap)
	return nil
}

// expire never settles; the pattern always plays out to the last beat.
func (s *rhythm) expire(*effects) *Outcome { return nil }

func (s *rhythm) view(v *View) {
	v.Count = s.correct
	v.Goal = rhythmBeats
	v.Step = s.beat
	if s.beat < rhythmBeats {
		v.NextBeat = time.Duration(s.beat+1)*s.interval - s.clock
	}
	v.Target = float64(s.bpm)
}
