package controller

import (
	"fmt"

	"autodrive/geometry"
)

type EventKind int

const (
	// EventTransition is emitted on every hazard state change.
	EventTransition EventKind = iota
	// EventAvoidanceSkipped means a hazard was found but there was no room to go around it,
	// so the vehicle drives through.
	EventAvoidanceSkipped
	// EventPositionRejected means the vehicle's position could not be read this tick.
	EventPositionRejected
	// EventDeadEnd is emitted once each time the vehicle enters a dead end.
	EventDeadEnd
)

func (k EventKind) String() string {
	switch k {
	case EventTransition:
		return "transition"
	case EventAvoidanceSkipped:
		return "avoidance-skipped"
	case EventPositionRejected:
		return "position-rejected"
	case EventDeadEnd:
		return "dead-end"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event reports something observable the controller did during a tick. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind     EventKind
	Tick     int
	Position geometry.Position
	From, To HazardState
	// RoadWidth and RightHazard explain a skipped avoidance.
	RoadWidth   int
	RightHazard bool
	Err         error
}

func (e Event) String() string {
	switch e.Kind {
	case EventTransition:
		return fmt.Sprintf("tick %d %s: %s -> %s", e.Tick, e.Position, e.From, e.To)
	case EventAvoidanceSkipped:
		return fmt.Sprintf("tick %d %s: avoidance skipped (road width %d, right hazard %t)", e.Tick, e.Position, e.RoadWidth, e.RightHazard)
	case EventPositionRejected:
		return fmt.Sprintf("tick %d: position rejected: %v", e.Tick, e.Err)
	}
	return fmt.Sprintf("tick %d %s: %s", e.Tick, e.Position, e.Kind)
}

type Option func(*Controller)

// WithObserver registers fn to receive every event, synchronously inside Update.
func WithObserver(fn func(Event)) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, fn)
	}
}

// WithLogger replaces the controller's logger, e.g. with monitoring.Tagged(name).
func WithLogger(logf func(format string, v ...interface{})) Option {
	return func(c *Controller) {
		c.logf = logf
	}
}

func (c *Controller) emit(ev Event) {
	ev.Tick = c.ticks
	for _, fn := range c.observers {
		fn(ev)
	}
}
