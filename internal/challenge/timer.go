package challenge

import "time"

const (
	// TickInterval is the cadence the round timer and physics advance at.
	TickInterval = 50 * time.Millisecond
	// WarningThreshold is when the last-second cue fires.
	WarningThreshold = 1000 * time.Millisecond
)

// Timer is the countdown a challenge runs against. It only moves when ticked,
// so pausing is simply not ticking it.
type Timer struct {
	total     time.Duration
	remaining time.Duration
	running   bool
	warned    bool
}

// Start arms the timer for total.
func (t *Timer) Start(total time.Duration) {
	if total < 0 {
		total = 0
	}
	*t = Timer{total: total, remaining: total, running: true}
}

// Tick advances the timer. warn is true exactly once, on the tick where the
// remaining time first drops below WarningThreshold.
func (t *Timer) Tick(elapsed time.Duration) (remaining time.Duration, warn bool) {
	if !t.running || elapsed <= 0 {
		return t.remaining, false
	}
	t.remaining -= elapsed
	if t.remaining < 0 {
		t.remaining = 0
	}
	if !t.warned && t.remaining > 0 && t.remaining < WarningThreshold {
		t.warned = true
		warn = true
	}
	return t.remaining, warn
}

// Cancel stops the timer. Safe to call repeatedly.
func (t *Timer) Cancel() {
	t.running = false
}

// Running reports whether the timer is armed.
func (t *Timer) Running() bool { return t.running }

// Expired reports whether an armed timer reached zero.
func (t *Timer) Expired() bool { return t.running && t.remaining == 0 }

// Remaining returns the time left.
func (t *Timer) Remaining() time.Duration { return t.remaining }

// Total returns the armed duration.
func (t *Timer) Total() time.Duration { return t.total }
