package challenge

import (
	"math/rand"
	"testing"
	"time"

	"buttonblitz/internal/audio"
	"buttonblitz/internal/domain"
	"buttonblitz/internal/input"
)

func testRuntime(t *testing.T, seed int64) (*Runtime, *audio.Recorder) {
	t.Helper()
	rec := audio.NewRecorder()
	ctx := audio.NewContext(rec.Factory(), domain.DefaultSettings())
	return NewRuntime(rand.New(rand.NewSource(seed)), ctx), rec
}

func begin(t *testing.T, r *Runtime, k Kind, round int) *Instance {
	t.Helper()
	spec, ok := LookupBuiltin(k)
	if !ok {
		t.Fatalf("no builtin %s", k)
	}
	inst, err := r.Begin(spec, NewRoundContext(round, domain.ModeParty))
	if err != nil {
		t.Fatalf("Begin(%s): %v", k, err)
	}
	return inst
}

// tickFor advances r in TickInterval steps and returns the first outcome.
func tickFor(r *Runtime, d time.Duration) (Outcome, bool) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += TickInterval {
		if o, ok := r.Tick(TickInterval); ok {
			return o, true
		}
	}
	return Outcome{}, false
}

// tickUntilAwaiting finishes any reveal.
func tickUntilAwaiting(t *testing.T, r *Runtime) {
	t.Helper()
	for i := 0; i < 400 && r.Current().Phase() == PhaseSetup; i++ {
		r.Tick(TickInterval)
	}
	if r.Current().Phase() != PhaseAwaitingInput {
		t.Fatalf("phase = %s after reveal, want %s", r.Current().Phase(), PhaseAwaitingInput)
	}
}

func tap(x, y float64) input.Gesture {
	return input.Gesture{Kind: input.Tap, Point: input.Point{X: x, Y: y}}
}

func tapAt(p input.Point) input.Gesture {
	return input.Gesture{Kind: input.Tap, Point: p}
}

func testEffects(seed int64) *effects {
	return &effects{rng: rand.New(rand.NewSource(seed)), out: audio.Silent{}}
}

func countCue(cues []audio.Cue, want audio.Cue) int {
	n := 0
	for _, c := range cues {
		if c == want {
			n++
		}
	}
	return n
}
