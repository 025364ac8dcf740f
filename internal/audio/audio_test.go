package audio

import (
	"errors"
	"testing"
	"time"

	"buttonblitz/internal/domain"
)

type flakySink struct {
	plays  int
	fails  bool
	closed bool
}

func (f *flakySink) Play(Cue, float64) error {
	f.plays++
	if f.fails {
		return errors.New("device lost")
	}
	return nil
}
func (f *flakySink) Vibrate(time.Duration) error { return nil }
func (f *flakySink) Close() error                { f.closed = true; return nil }

func TestContextOpensLazily(t *testing.T) {
	opened := 0
	sink := &flakySink{}
	ctx := NewContext(func() (Sink, error) {
		opened++
		return sink, nil
	}, domain.DefaultSettings())

	if opened != 0 {
		t.Fatalf("device opened before first cue")
	}
	ctx.Play(CueStart)
	ctx.Play(CueTap)
	if opened != 1 {
		t.Fatalf("opened = %d, want 1", opened)
	}
	if sink.plays != 2 {
		t.Fatalf("plays = %d, want 2", sink.plays)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !sink.closed {
		t.Fatalf("sink not closed on teardown")
	}
	ctx.Play(CueWin)
	if sink.plays != 2 {
		t.Fatalf("cue played after Close")
	}
}

func TestContextDegradesSilently(t *testing.T) {
	t.Run("FactoryError", func(t *testing.T) {
		ctx := NewContext(func() (Sink, error) { return nil, errors.New("no audio") }, domain.DefaultSettings())
		ctx.Play(CueStart)
		ctx.Vibrate(TapVibration)
		if ctx.Available() {
			t.Fatalf("context should be unavailable")
		}
	})

	t.Run("SinkError", func(t *testing.T) {
		sink := &flakySink{fails: true}
		ctx := NewContext(func() (Sink, error) { return sink, nil }, domain.DefaultSettings())
		ctx.Play(CueStart)
		ctx.Play(CueTap)
		if sink.plays != 1 {
			t.Fatalf("plays = %d, want 1 after failure", sink.plays)
		}
		if !sink.closed {
			t.Fatalf("failed sink should be released")
		}
	})

	t.Run("NilFactory", func(t *testing.T) {
		ctx := NewContext(nil, domain.DefaultSettings())
		ctx.Play(CueStart)
		if ctx.Available() {
			t.Fatalf("nil factory should be unavailable")
		}
	})
}

func TestContextRespectsSettings(t *testing.T) {
	rec := NewRecorder()
	s := domain.DefaultSettings()
	s.VibrationEnabled = false
	s.SfxVolume = 0.5
	ctx := NewContext(rec.Factory(), s)

	ctx.Vibrate(TapVibration)
	ctx.Play(CueDing)
	got := rec.Drain()
	if len(got) != 1 || got[0].Cue != CueDing {
		t.Fatalf("emissions = %+v, want one ding", got)
	}
	if want := 0.7 * 0.5; got[0].Gain != want {
		t.Fatalf("gain = %v, want %v", got[0].Gain, want)
	}

	s.MasterVolume = 0
	ctx.Apply(s)
	ctx.Play(CueDing)
	if n := len(rec.Drain()); n != 0 {
		t.Fatalf("muted context emitted %d cues", n)
	}
}
