package controller

import (
	"fmt"

	"autodrive/geometry"
	"autodrive/sensor"
)

// FollowerState is the wall follower's steering phase.
type FollowerState int

const (
	// ACQUIRING drives north until a wall is found, then turns east to put it on the left.
	ACQUIRING FollowerState = iota
	TRACKING_STRAIGHT
	TRACKING_TURN_LEFT
	TRACKING_TURN_RIGHT
)

func (s FollowerState) String() string {
	switch s {
	case ACQUIRING:
		return "ACQUIRING"
	case TRACKING_STRAIGHT:
		return "TRACKING_STRAIGHT"
	case TRACKING_TURN_LEFT:
		return "TRACKING_TURN_LEFT"
	case TRACKING_TURN_RIGHT:
		return "TRACKING_TURN_RIGHT"
	}
	return fmt.Sprintf("FollowerState(%d)", int(s))
}

// WallFollower keeps a wall on the vehicle's left. It is the baseline behavior whenever
// no hazard is being handled.
type WallFollower struct {
	cfg   Config
	state FollowerState

	// The direction of the most recent turn; turned is false until the first one.
	lastTurn geometry.RelativeDirection
	turned   bool

	previous    geometry.Orientation
	hasPrevious bool
}

func NewWallFollower(cfg Config) *WallFollower {
	return &WallFollower{
		cfg:   cfg,
		state: ACQUIRING,
	}
}

func (f *WallFollower) State() FollowerState {
	return f.state
}

// Following reports whether a wall has been acquired.
func (f *WallFollower) Following() bool {
	return f.state != ACQUIRING
}

func (f *WallFollower) turning() bool {
	return f.state == TRACKING_TURN_LEFT || f.state == TRACKING_TURN_RIGHT
}

func (f *WallFollower) setLastTurn(rel geometry.RelativeDirection) {
	f.lastTurn = rel
	f.turned = true
}

// checkStateChange must run every tick, whatever the hazard state, so that a turn completed
// while avoiding a hazard does not leave the follower mid-turn.
func (f *WallFollower) checkStateChange(o geometry.Orientation) {
	if f.hasPrevious && o != f.previous && f.turning() {
		f.state = TRACKING_STRAIGHT
	}
	f.previous = o
	f.hasPrevious = true
}

// Update issues this tick's steering commands.
func (f *WallFollower) Update(v Vehicle, s *sensor.Sensor, delta float64) {
	if f.state == ACQUIRING {
		f.acquire(v, s, delta)
		return
	}

	f.realign(v, delta)

	switch f.state {
	case TRACKING_TURN_RIGHT:
		v.TurnRight(delta)
	case TRACKING_TURN_LEFT:
		if s.WallOnSide(geometry.LEFT) {
			f.state = TRACKING_STRAIGHT
		} else {
			v.TurnLeft(delta)
		}
	case TRACKING_STRAIGHT:
		if !s.WallOnSide(geometry.LEFT) {
			f.setLastTurn(geometry.LEFT)
			f.state = TRACKING_TURN_LEFT
			return
		}
		if v.Velocity() < f.cfg.CruiseSpeed/2 {
			v.AccelerateForward()
		}
		if s.WallAhead() {
			f.setLastTurn(geometry.RIGHT)
			f.state = TRACKING_TURN_RIGHT
		}
	}
}

// acquire drives north to find a wall, then turns right until the wall is on the left.
func (f *WallFollower) acquire(v Vehicle, s *sensor.Sensor, delta float64) {
	if v.Velocity() < f.cfg.CruiseSpeed/2 {
		v.AccelerateForward()
	}

	facing := s.Facing()
	if s.WallInDirection(geometry.NORTH) {
		if facing == geometry.EAST {
			f.state = TRACKING_STRAIGHT
			return
		}
		f.setLastTurn(geometry.RIGHT)
		v.TurnRight(delta)
		return
	}
	if facing != geometry.NORTH {
		f.setLastTurn(geometry.LEFT)
		v.TurnLeft(delta)
	}
}

// realign nudges the heading back toward the cardinal angle once it drifts past the dead-band
// in the direction of the last turn.
func (f *WallFollower) realign(v Vehicle, delta float64) {
	if f.turning() || !f.turned {
		return
	}

	drift := geometry.AngleDelta(v.Angle(), geometry.Degrees(v.Orientation()))
	switch f.lastTurn {
	case geometry.LEFT:
		if drift > f.cfg.RealignThreshold {
			v.TurnRight(delta)
		}
	case geometry.RIGHT:
		if drift < -f.cfg.RealignThreshold {
			v.TurnLeft(delta)
		}
	}
}
