package audio

import "time"

// Emission is one recorded output request.
type Emission struct {
	Cue     Cue
	Gain    float64
	Vibrate time.Duration
}

// Recorder is a Sink that buffers emissions so a server can forward them to
// clients instead of playing them.
type Recorder struct {
	pending []Emission
	closed  bool
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Factory returns a Factory that always hands out this recorder.
func (r *Recorder) Factory() Factory {
	return func() (Sink, error) {
		r.closed = false
		return r, nil
	}
}

func (r *Recorder) Play(cue Cue, gain float64) error {
	r.pending = append(r.pending, Emission{Cue: cue, Gain: gain})
	return nil
}

func (r *Recorder) Vibrate(d time.Duration) error {
	r.pending = append(r.pending, Emission{Vibrate: d})
	return nil
}

func (r *Recorder) Close() error {
	r.closed = true
	return nil
}

// Closed reports whether the owning context released the recorder.
func (r *Recorder) Closed() bool {
	return r.closed
}

// Drain returns and clears buffered emissions.
func (r *Recorder) Drain() []Emission {
	out := r.pending
	r.pending = nil
	return out
}

// Cues returns buffered cue names without draining, skipping vibrations.
func (r *Recorder) Cues() []Cue {
	var out []Cue
	for _, e := range r.pending {
		if e.Cue != "" {
			out = append(out, e.Cue)
		}
	}
	return out
}
