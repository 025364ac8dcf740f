package challenge

import (
	"math/rand"
	"time"

	"buttonblitz/internal/audio"
	"buttonblitz/internal/input"
)

// Phase is the lifecycle of a challenge instance.
type Phase string

const (
	PhaseSetup         Phase = "setup"
	PhaseAwaitingInput Phase = "awaiting_input"
	PhaseResolved      Phase = "resolved"
)

// Instance is the single running challenge.
type Instance struct {
	Spec       Spec
	Round      RoundContext
	Generation uint64
	StartedAt  time.Duration

	phase   Phase
	state   State
	timer   Timer
	outcome *Outcome
}

// Phase returns the instance phase.
func (i *Instance) Phase() Phase { return i.phase }

// State returns the variant state.
func (i *Instance) State() State { return i.state }

// Outcome returns the resolution, if any.
func (i *Instance) Outcome() (Outcome, bool) {
	if i.outcome == nil {
		return Outcome{}, false
	}
	return *i.outcome, true
}

// Remaining returns time left on the round timer.
func (i *Instance) Remaining() time.Duration { return i.timer.Remaining() }

// View snapshots the instance for rendering or automation.
func (i *Instance) View() View {
	v := View{
		Kind:        i.Spec.Kind,
		Instruction: i.Spec.Instruction,
		Hint:        i.Spec.Hint,
		Label:       i.state.Label(),
		Phase:       i.phase,
		Generation:  i.Generation,
		Remaining:   i.timer.Remaining(),
		Total:       i.Round.Duration,
	}
	i.state.view(&v)
	return v
}

// Runtime drives one challenge at a time on a caller-supplied clock. All of
// an instance's timers live inside it and advance only through Tick, so
// pausing is not ticking and teardown is dropping the instance. A generation
// counter lets callers holding a stale reference detect that it is gone.
type Runtime struct {
	fx    effects
	gen   uint64
	clock time.Duration
	cur   *Instance
}

// NewRuntime creates a runtime. rng may be nil for a time-seeded default;
// out may be nil for silence.
func NewRuntime(rng *rand.Rand, out audio.Feedback) *Runtime {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if out == nil {
		out = audio.Silent{}
	}
	return &Runtime{fx: effects{rng: rng, out: out}}
}

// Begin tears down any current instance and starts spec.
func (r *Runtime) Begin(spec Spec, rc RoundContext) (*Instance, error) {
	r.Teardown()
	st, err := newState(spec.Kind, rc, &r.fx)
	if err != nil {
		return nil, err
	}
	r.gen++
	inst := &Instance{
		Spec:       spec,
		Round:      rc,
		Generation: r.gen,
		StartedAt:  r.clock,
		phase:      PhaseAwaitingInput,
		state:      st,
	}
	if rv, ok := st.(revealer); ok && rv.revealing() {
		inst.phase = PhaseSetup
	} else {
		inst.timer.Start(rc.Duration)
	}
	r.cur = inst
	r.fx.play(audio.CueStart)
	return inst, nil
}

// Current returns the live instance, or nil.
func (r *Runtime) Current() *Instance { return r.cur }

// Generation returns the generation of the most recent Begin.
func (r *Runtime) Generation() uint64 { return r.gen }

// InputMode returns the gesture mode the current challenge expects.
func (r *Runtime) InputMode() input.Mode {
	if r.cur == nil {
		return input.ModeTap
	}
	return r.cur.Spec.Input
}

// Input routes a gesture to the current challenge. It reports the outcome
// when this gesture resolved the challenge.
func (r *Runtime) Input(g input.Gesture) (Outcome, bool) {
	inst := r.cur
	if inst == nil || inst.phase != PhaseAwaitingInput {
		return Outcome{}, false
	}
	if g.Kind == input.Tap {
		r.fx.out.Vibrate(audio.TapVibration)
	}
	if o := inst.state.input(&r.fx, g); o != nil {
		return r.settle(inst, *o)
	}
	return Outcome{}, false
}

// Tick advances the current challenge by elapsed.
func (r *Runtime) Tick(elapsed time.Duration) (Outcome, bool) {
	if elapsed <= 0 {
		return Outcome{}, false
	}
	r.clock += elapsed
	inst := r.cur
	if inst == nil || inst.phase == PhaseResolved {
		return Outcome{}, false
	}

	if inst.phase == PhaseSetup {
		inst.state.tick(&r.fx, elapsed)
		if rv, ok := inst.state.(revealer); !ok || !rv.revealing() {
			inst.phase = PhaseAwaitingInput
			inst.timer.Start(inst.Round.Duration)
		}
		return Outcome{}, false
	}

	if o := inst.state.tick(&r.fx, elapsed); o != nil {
		return r.settle(inst, *o)
	}
	if _, warn := inst.timer.Tick(elapsed); warn {
		r.fx.play(audio.CueCountdownTick)
	}
	if inst.timer.Expired() {
		if o := inst.state.expire(&r.fx); o != nil {
			return r.settle(inst, *o)
		}
	}
	return Outcome{}, false
}

// Resolve settles the challenge of generation gen from outside, for example
// a forfeit. It is a no-op for stale generations or resolved instances.
func (r *Runtime) Resolve(gen uint64, o Outcome) bool {
	inst := r.cur
	if inst == nil || inst.Generation != gen {
		return false
	}
	_, ok := r.settle(inst, o)
	return ok
}

func (r *Runtime) settle(inst *Instance, o Outcome) (Outcome, bool) {
	if inst.phase == PhaseResolved || inst != r.cur {
		return Outcome{}, false
	}
	if !o.Success {
		o.Points = 0
	}
	inst.outcome = &o
	inst.phase = PhaseResolved
	inst.timer.Cancel()
	if o.Success {
		r.fx.play(audio.CueSuccess)
	} else {
		r.fx.play(audio.CueFail)
	}
	return o, true
}

// Teardown drops the current instance and everything scheduled inside it.
func (r *Runtime) Teardown() {
	if r.cur != nil {
		r.cur.timer.Cancel()
		r.cur = nil
	}
}
