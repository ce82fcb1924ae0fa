// controller drives a vehicle around a tile track: a wall follower steers by default and a hazard
// avoidance state machine takes over whenever a hazard shows up ahead.
package controller

import (
	"errors"

	"autodrive/geometry"
	"autodrive/monitoring"
	"autodrive/sensor"
)

var ErrNilVehicle error = errors.New("controller needs a vehicle")

// Controller is the per-vehicle decision logic. It is not safe for concurrent use; each vehicle
// owns its own controller and calls Update once per simulation tick.
type Controller struct {
	vehicle  Vehicle
	cfg      Config
	follower *WallFollower

	state  HazardState
	best   BestGap
	target geometry.Orientation

	ticks int
	// Last position the vehicle reported without error.
	last    geometry.Point
	hasLast bool

	inDeadEnd bool

	observers []func(Event)
	logf      func(format string, v ...interface{})
}

func New(v Vehicle, cfg Config, opts ...Option) (*Controller, error) {
	if v == nil {
		return nil, ErrNilVehicle
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		vehicle:  v,
		cfg:      cfg,
		follower: NewWallFollower(cfg),
		state:    IDLE,
		logf:     monitoring.Logf,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Update runs one tick: read the vehicle, then let the hazard state machine act, and only if it
// is idle let the wall follower steer. delta is the elapsed simulated time since the last tick.
func (c *Controller) Update(delta float64) {
	c.ticks++

	point, err := c.vehicle.Position()
	if err != nil {
		c.emit(Event{Kind: EventPositionRejected, Err: err})
		c.logf("tick %d: rejected vehicle position: %v", c.ticks, err)
		if !c.hasLast {
			return
		}
		point = c.last
	} else {
		c.last = point
		c.hasLast = true
	}

	facing := c.vehicle.Orientation()
	cell := geometry.ToCell(point)
	t := &tick{
		sensor:   sensor.New(c.vehicle.View(), cell, facing, c.cfg.sensorConfig()),
		point:    point,
		cell:     cell,
		facing:   facing,
		velocity: c.vehicle.Velocity(),
		delta:    delta,
	}

	c.follower.checkStateChange(facing)

	if !c.avoid(t) {
		return
	}

	c.checkDeadEnd(t)
	c.follower.Update(c.vehicle, t.sensor, delta)
}

// checkDeadEnd reports entering a dead end once. Escaping is not supported, so wall following
// carries on regardless.
func (c *Controller) checkDeadEnd(t *tick) {
	deadEnd := t.sensor.DeadEnd()
	if deadEnd && !c.inDeadEnd {
		c.emit(Event{Kind: EventDeadEnd, Position: t.cell})
		if err := c.EscapeDeadEnd(t.delta); err != nil {
			c.logf("tick %d %s: dead end: %v", c.ticks, t.cell, err)
		}
	}
	c.inDeadEnd = deadEnd
}

func (c *Controller) debugf(format string, v ...interface{}) {
	if monitoring.Debugging() {
		c.logf(format, v...)
	}
}

// State returns the current hazard state.
func (c *Controller) State() HazardState {
	return c.state
}

func (c *Controller) FollowerState() FollowerState {
	return c.follower.State()
}

// Following reports whether the wall follower has acquired a wall.
func (c *Controller) Following() bool {
	return c.follower.Following()
}

// BestGap returns the best crossing point of the current (or last) avoidance episode.
func (c *Controller) BestGap() BestGap {
	return c.best
}

// Ticks returns the number of Update calls so far.
func (c *Controller) Ticks() int {
	return c.ticks
}

func (c *Controller) Config() Config {
	return c.cfg
}
