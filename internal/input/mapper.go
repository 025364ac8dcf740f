package input

import "time"

// Mode tells the mapper which gestures the current challenge understands.
type Mode int

const (
	// ModeTap emits a Tap on release unless the pointer wandered.
	ModeTap Mode = iota
	// ModePress emits a Tap as soon as the pointer goes down.
	ModePress
	// ModeHold emits HoldStart/HoldEnd around a press.
	ModeHold
	// ModeDrag emits DragMove while down and DragEnd on release.
	ModeDrag
	// ModeSwipe emits SwipeEnd with the total displacement on release.
	ModeSwipe
)

func (m Mode) String() string {
	switch m {
	case ModePress:
		return "press"
	case ModeHold:
		return "hold"
	case ModeDrag:
		return "drag"
	case ModeSwipe:
		return "swipe"
	}
	return "tap"
}

// DragSlop is how far the pointer may move before a press stops being a tap.
const DragSlop = 10.0

// Mapper is a small state machine over one pointer. It is not safe for
// concurrent use; the owning session serializes calls.
type Mapper struct {
	mode     Mode
	down     bool
	dragging bool
	holding  bool
	start    Point
	startAt  time.Duration
}

// NewMapper creates a mapper in the given mode.
func NewMapper(mode Mode) *Mapper {
	return &Mapper{mode: mode}
}

// Mode returns the current mode.
func (m *Mapper) Mode() Mode {
	return m.mode
}

// Reset switches mode and forgets any pointer in flight.
func (m *Mapper) Reset(mode Mode) {
	*m = Mapper{mode: mode}
}

// Holding reports whether a hold is in progress.
func (m *Mapper) Holding() bool {
	return m.holding
}

// Handle consumes one raw event and returns the gestures it produced.
func (m *Mapper) Handle(ev PointerEvent) []Gesture {
	switch ev.Phase {
	case PointerDown:
		return m.pointerDown(ev)
	case PointerMove:
		return m.pointerMove(ev)
	case PointerUp:
		return m.pointerUp(ev)
	}
	return nil
}

func (m *Mapper) pointerDown(ev PointerEvent) []Gesture {
	if m.down {
		// A second down without an up means the up was lost; start over.
		m.dragging, m.holding = false, false
	}
	m.down = true
	m.start = ev.Point
	m.startAt = ev.At

	switch m.mode {
	case ModePress:
		return []Gesture{{Kind: Tap, Point: ev.Point}}
	case ModeHold:
		m.holding = true
		return []Gesture{{Kind: HoldStart, Point: ev.Point}}
	case ModeDrag:
		return []Gesture{{Kind: DragMove, Point: ev.Point}}
	}
	return nil
}

func (m *Mapper) pointerMove(ev PointerEvent) []Gesture {
	if !m.down {
		return nil
	}
	if ev.Point.Dist(m.start) > DragSlop {
		m.dragging = true
	}
	if m.mode == ModeDrag {
		return []Gesture{{Kind: DragMove, Point: ev.Point}}
	}
	return nil
}

func (m *Mapper) pointerUp(ev PointerEvent) []Gesture {
	if !m.down {
		return nil
	}
	dragging, holding := m.dragging, m.holding
	m.down, m.dragging, m.holding = false, false, false

	switch m.mode {
	case ModeTap:
		if dragging || holding || ev.Point.Dist(m.start) > DragSlop {
			return nil
		}
		return []Gesture{{Kind: Tap, Point: ev.Point}}
	case ModeHold:
		held := ev.At - m.startAt
		if held < 0 {
			held = 0
		}
		return []Gesture{{Kind: HoldEnd, Point: ev.Point, Held: held}}
	case ModeDrag:
		return []Gesture{{Kind: DragEnd, Point: ev.Point}}
	case ModeSwipe:
		return []Gesture{{Kind: SwipeEnd, Point: ev.Point, Delta: ev.Point.Sub(m.start)}}
	}
	return nil
}
