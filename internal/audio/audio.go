// Package audio owns the sound and haptics output of a session. A Context is
// created per session, opens its device lazily and is closed on teardown.
// Output failures never reach game logic: a device that cannot be opened or
// that errors turns the context into a silent no-op.
package audio

import (
	"time"

	"buttonblitz/internal/domain"
)

// Cue names a sound effect.
type Cue string

const (
	CueStart         Cue = "start"
	CueSuccess       Cue = "success"
	CueFail          Cue = "fail"
	CueCountdownTick Cue = "countdown_tick"
	CueDing          Cue = "ding"
	CuePop           Cue = "pop"
	CueBeep          Cue = "beep"
	CueTap           Cue = "tap"
	CuePositiveTap   Cue = "positive_tap"
	CueNegativeTap   Cue = "negative_tap"
	CueWin           Cue = "win"
	CueButtonClick   Cue = "button_click"
)

// TapVibration is the haptic pulse used for taps.
const TapVibration = 50 * time.Millisecond

// Feedback is what game code talks to.
type Feedback interface {
	Play(cue Cue)
	Vibrate(d time.Duration)
}

// Sink is a concrete output device.
type Sink interface {
	Play(cue Cue, gain float64) error
	Vibrate(d time.Duration) error
	Close() error
}

// Factory opens a Sink on first use.
type Factory func() (Sink, error)

// Context is an owned, lazily opened output. Not safe for concurrent use.
type Context struct {
	factory     Factory
	sink        Sink
	unavailable bool
	closed      bool
	gain        float64
	vibration   bool
}

// NewContext creates a context; the device is not opened until the first cue.
// A nil factory yields a permanently silent context.
func NewContext(factory Factory, settings domain.Settings) *Context {
	c := &Context{factory: factory}
	c.Apply(settings)
	return c
}

// Apply updates volume and vibration preferences.
func (c *Context) Apply(settings domain.Settings) {
	c.gain = settings.EffectVolume()
	c.vibration = settings.VibrationEnabled
}

func (c *Context) device() Sink {
	if c.closed || c.unavailable {
		return nil
	}
	if c.sink == nil {
		if c.factory == nil {
			c.unavailable = true
			return nil
		}
		sink, err := c.factory()
		if err != nil || sink == nil {
			c.unavailable = true
			return nil
		}
		c.sink = sink
	}
	return c.sink
}

// Play emits a cue at the configured effect volume.
func (c *Context) Play(cue Cue) {
	if c.gain <= 0 {
		return
	}
	sink := c.device()
	if sink == nil {
		return
	}
	if err := sink.Play(cue, c.gain); err != nil {
		c.fail()
	}
}

// Vibrate pulses the haptic motor when enabled.
func (c *Context) Vibrate(d time.Duration) {
	if !c.vibration || d <= 0 {
		return
	}
	sink := c.device()
	if sink == nil {
		return
	}
	if err := sink.Vibrate(d); err != nil {
		c.fail()
	}
}

// Available reports whether output is still being attempted.
func (c *Context) Available() bool {
	return !c.closed && !c.unavailable
}

func (c *Context) fail() {
	c.unavailable = true
	if c.sink != nil {
		_ = c.sink.Close()
		c.sink = nil
	}
}

// Close releases the device. Further cues are dropped.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.sink == nil {
		return nil
	}
	err := c.sink.Close()
	c.sink = nil
	return err
}

// Silent is a Feedback that discards everything.
type Silent struct{}

func (Silent) Play(Cue)              {}
func (Silent) Vibrate(time.Duration) {}

var (
	_ Feedback = (*Context)(nil)
	_ Feedback = Silent{}
)
