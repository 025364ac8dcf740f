package challenge

import (
	"testing"
	"time"

	"buttonblitz/internal/audio"
	"buttonblitz/internal/domain"
	"buttonblitz/internal/input"
)

func TestRuntimeResolvesExactlyOnce(t *testing.T) {
	r, rec := testRuntime(t, 1)
	inst := begin(t, r, TapTheDots, 1)
	inst.state = &tapDots{orig: 1, dots: []dot{{at: input.Point{}, radius: 25}}}

	o, ok := r.Input(tap(0, 0))
	if !ok || !o.Success || o.Points != 110 {
		t.Fatalf("first resolution = %+v ok=%v, want success 110", o, ok)
	}

	if _, ok := r.Input(tap(0, 0)); ok {
		t.Fatalf("second input resolved again")
	}
	if _, ok := tickFor(r, 10*time.Second); ok {
		t.Fatalf("expiry resolved an already resolved instance")
	}
	if r.Resolve(inst.Generation, Outcome{}) {
		t.Fatalf("external Resolve succeeded after resolution")
	}
	got, _ := inst.Outcome()
	if !got.Success || got.Points != 110 {
		t.Fatalf("stored outcome changed to %+v", got)
	}
	if n := countCue(rec.Cues(), audio.CueSuccess); n != 1 {
		t.Fatalf("success cue played %d times, want 1", n)
	}
}

func TestRuntimeStaleGenerationIsNoop(t *testing.T) {
	r, _ := testRuntime(t, 2)
	old := begin(t, r, TapFast, 1)
	next := begin(t, r, SimonSays, 1)

	if next.Generation != old.Generation+1 {
		t.Fatalf("generation = %d, want %d", next.Generation, old.Generation+1)
	}
	if r.Resolve(old.Generation, Outcome{Success: true, Points: 999}) {
		t.Fatalf("stale generation resolved the new instance")
	}
	if next.Phase() == PhaseResolved {
		t.Fatalf("new instance resolved by stale callback")
	}
	if !r.Resolve(next.Generation, Outcome{}) {
		t.Fatalf("current generation could not be resolved")
	}
}

func TestRuntimeFailureOnTimeout(t *testing.T) {
	r, rec := testRuntime(t, 3)
	inst := begin(t, r, DragBall, 1)

	o, ok := tickFor(r, inst.Round.Duration+time.Second)
	if !ok || o.Success {
		t.Fatalf("timeout outcome = %+v ok=%v, want failure", o, ok)
	}
	if n := countCue(rec.Cues(), audio.CueCountdownTick); n != 1 {
		t.Fatalf("countdown cue played %d times, want 1", n)
	}
}

func TestRuntimeRevealStartsTimerLate(t *testing.T) {
	r, _ := testRuntime(t, 4)
	inst := begin(t, r, SequenceMemory, 1)

	if inst.Phase() != PhaseSetup {
		t.Fatalf("phase = %s, want setup", inst.Phase())
	}
	if _, ok := r.Input(tap(-50, -50)); ok {
		t.Fatalf("input during reveal resolved the challenge")
	}
	r.Tick(TickInterval)
	if inst.Remaining() != 0 {
		t.Fatalf("timer running during reveal: %v", inst.Remaining())
	}

	tickUntilAwaiting(t, r)
	if inst.Remaining() != inst.Round.Duration {
		t.Fatalf("remaining after reveal = %v, want full %v", inst.Remaining(), inst.Round.Duration)
	}
}

func TestRuntimeTeardown(t *testing.T) {
	r, _ := testRuntime(t, 5)
	inst := begin(t, r, ButtonMash, 1)
	r.Teardown()
	r.Teardown()

	if r.Current() != nil {
		t.Fatalf("current instance survived teardown")
	}
	if _, ok := r.Input(tap(0, 0)); ok {
		t.Fatalf("input after teardown resolved")
	}
	if _, ok := tickFor(r, 10*time.Second); ok {
		t.Fatalf("tick after teardown resolved")
	}
	if r.Resolve(inst.Generation, Outcome{}) {
		t.Fatalf("resolve after teardown succeeded")
	}
}

func TestRuntimeFailureScoresZero(t *testing.T) {
	r, _ := testRuntime(t, 6)
	inst := begin(t, r, TapFast, 1)
	if !r.Resolve(inst.Generation, Outcome{Success: false, Points: 50}) {
		t.Fatalf("Resolve failed")
	}
	if o, _ := inst.Outcome(); o.Points != 0 {
		t.Fatalf("failure points = %d, want 0", o.Points)
	}
}

func TestRuntimeInputMode(t *testing.T) {
	r, _ := testRuntime(t, 7)
	if r.InputMode() != input.ModeTap {
		t.Fatalf("idle mode = %v, want tap", r.InputMode())
	}
	begin(t, r, HoldRelease, 1)
	if r.InputMode() != input.ModeHold {
		t.Fatalf("hold_release mode = %v, want hold", r.InputMode())
	}
	begin(t, r, BalanceChallenge, 1)
	if r.InputMode() != input.ModeDrag {
		t.Fatalf("balance mode = %v, want drag", r.InputMode())
	}
}

func TestEveryKindResolvesByTimeout(t *testing.T) {
	for _, spec := range Builtin() {
		t.Run(string(spec.Kind), func(t *testing.T) {
			r, _ := testRuntime(t, 11)
			inst := begin(t, r, spec.Kind, 3)
			v := inst.View()
			if v.Label == "" || v.Kind != spec.Kind {
				t.Fatalf("bad view %+v", v)
			}
			if _, ok := tickFor(r, 30*time.Second); !ok {
				t.Fatalf("%s never resolved without input", spec.Kind)
			}
			if inst.Phase() != PhaseResolved {
				t.Fatalf("phase = %s, want resolved", inst.Phase())
			}
		})
	}
}

func TestRuntimeRhythmPlaysEveryBeat(t *testing.T) {
	for _, mode := range []domain.Mode{domain.ModeParty, domain.ModeExtreme} {
		t.Run(string(mode), func(t *testing.T) {
			r, rec := testRuntime(t, 5)
			spec, _ := LookupBuiltin(RhythmTap)
			inst, err := r.Begin(spec, NewRoundContext(1, mode))
			if err != nil {
				t.Fatalf("Begin: %v", err)
			}
			rh := inst.state.(*rhythm)
			if full := time.Duration(rhythmBeats) * rh.interval; inst.Round.Duration >= full {
				t.Fatalf("round duration %v already covers %v", inst.Round.Duration, full)
			}

			o, ok := tickFor(r, 10*time.Second)
			if !ok {
				t.Fatalf("rhythm never resolved")
			}
			if rh.beat != rhythmBeats {
				t.Fatalf("resolved after %d beats, want %d", rh.beat, rhythmBeats)
			}
			if !o.Success || o.Points != 20 {
				t.Fatalf("outcome = %+v, want minimum success", o)
			}
			if n := countCue(rec.Cues(), audio.CueBeep); n != rhythmBeats {
				t.Fatalf("beep played %d times, want %d", n, rhythmBeats)
			}
		})
	}
}

func TestRuntimeSimonSaysTimeoutFails(t *testing.T) {
	r, _ := testRuntime(t, 1)
	inst := begin(t, r, SimonSays, 1)
	inst.state.(*simonSays).says = false

	o, ok := tickFor(r, inst.Round.Duration+time.Second)
	if !ok || o.Success || o.Points != 0 {
		t.Fatalf("timeout outcome = %+v ok=%v, want failure", o, ok)
	}
}
