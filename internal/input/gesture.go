// Package input turns raw pointer events into the gestures challenges react to.
package input

import (
	"math"
	"time"
)

// Point is a position in button-local coordinates: the origin is the
// button centre, x grows right and y grows down.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Len returns the distance from the origin.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// GestureKind identifies a recognised gesture.
type GestureKind int

const (
	Tap GestureKind = iota + 1
	HoldStart
	HoldEnd
	DragMove
	DragEnd
	SwipeEnd
)

func (k GestureKind) String() string {
	switch k {
	case Tap:
		return "tap"
	case HoldStart:
		return "hold_start"
	case HoldEnd:
		return "hold_end"
	case DragMove:
		return "drag_move"
	case DragEnd:
		return "drag_end"
	case SwipeEnd:
		return "swipe_end"
	}
	return "unknown"
}

// Gesture is a recognised user action.
type Gesture struct {
	Kind  GestureKind
	Point Point         // Tap, DragMove, DragEnd
	Held  time.Duration // HoldEnd
	Delta Point         // SwipeEnd
}

// HeldSeconds returns Held in seconds.
func (g Gesture) HeldSeconds() float64 {
	return g.Held.Seconds()
}

// PointerPhase is the raw pointer lifecycle.
type PointerPhase int

const (
	PointerDown PointerPhase = iota + 1
	PointerMove
	PointerUp
)

// PointerEvent is a raw pointer sample. Point is in button-local coordinates;
// At is the session clock when the event was observed.
type PointerEvent struct {
	Phase PointerPhase
	Point Point
	At    time.Duration
}
