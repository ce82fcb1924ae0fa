package controller

import (
	"fmt"
	"math"

	"autodrive/geometry"
	"autodrive/sensor"
)

// HazardState is the phase of a hazard avoidance episode.
type HazardState int

const (
	IDLE HazardState = iota
	TURN_AWAY
	SEARCH_GAP
	RETREAT
	HALT
	TURN_BACK
	TRAVERSE
	RECOVER
)

var hazardStateNames = [...]string{
	IDLE:       "IDLE",
	TURN_AWAY:  "TURN_AWAY",
	SEARCH_GAP: "SEARCH_GAP",
	RETREAT:    "RETREAT",
	HALT:       "HALT",
	TURN_BACK:  "TURN_BACK",
	TRAVERSE:   "TRAVERSE",
	RECOVER:    "RECOVER",
}

func (s HazardState) String() string {
	if s < 0 || int(s) >= len(hazardStateNames) {
		return fmt.Sprintf("HazardState(%d)", int(s))
	}
	return hazardStateNames[s]
}

// BestGap is the least hazardous crossing point seen while searching. Lower scores are better.
type BestGap struct {
	Position geometry.Position
	Score    int
}

// tick is the per-tick input shared by the FSM handlers.
type tick struct {
	sensor   *sensor.Sensor
	point    geometry.Point
	cell     geometry.Position
	facing   geometry.Orientation
	velocity float64
	delta    float64
}

// avoid advances the hazard FSM by one tick. It reports whether the wall follower may run.
// Apart from hazard detection, a transition takes effect on the tick it is decided and the
// new state acts from the next tick on.
func (c *Controller) avoid(t *tick) (idle bool) {
	cruise := c.cfg.CruiseSpeed
	v := c.vehicle

	switch c.state {
	case IDLE:
		if !t.sensor.HazardAhead(c.cfg.DetectRadius) {
			return true
		}
		c.transition(t, TURN_AWAY)
		c.enterTurnAway(t)

	case TURN_AWAY:
		if t.facing == c.target {
			c.transition(t, SEARCH_GAP)
			return
		}
		if t.velocity < cruise/3 {
			v.AccelerateForward()
		}
		v.TurnRight(t.delta)

	case SEARCH_GAP:
		if t.velocity < cruise/3 {
			v.AccelerateForward()
		}
		score := t.sensor.HazardScore(geometry.LEFT, c.cfg.ScoreLength)
		if score < c.best.Score {
			c.best = BestGap{Position: t.cell, Score: score}
		}
		if score == 0 {
			c.target = geometry.Rotate(t.facing, geometry.LEFT)
			c.transition(t, TURN_BACK)
			return
		}
		if t.sensor.Blocked(c.cfg.ProbeRadius) {
			c.transition(t, RETREAT)
		}

	case RETREAT:
		if c.reachedGap(t) {
			c.transition(t, HALT)
			return
		}
		if t.velocity > -cruise/3 {
			v.AccelerateReverse()
		}

	case HALT:
		if t.velocity == 0 {
			c.target = geometry.Rotate(t.facing, geometry.LEFT)
			c.transition(t, TURN_BACK)
			return
		}
		v.Brake()

	case TURN_BACK:
		if t.facing == c.target {
			c.transition(t, TRAVERSE)
			return
		}
		if t.velocity < cruise/2 {
			v.AccelerateForward()
		}
		v.TurnLeft(t.delta)

	case TRAVERSE:
		if t.velocity >= cruise/1.3 {
			c.transition(t, RECOVER)
			return
		}
		v.AccelerateForward()

	case RECOVER:
		if t.velocity <= cruise/2 {
			c.transition(t, IDLE)
			return
		}
		v.Brake()
	}
	return false
}

// enterTurnAway decides, on the tick the hazard is detected, whether there is room to go around it.
// A one-cell road or a hazard immediately to the right means driving straight through instead.
func (c *Controller) enterTurnAway(t *tick) {
	width := t.sensor.RoadWidth()
	right, _ := t.sensor.Adjacent(geometry.RIGHT)
	if width == 1 || right == sensor.HAZARD {
		c.emit(Event{
			Kind:        EventAvoidanceSkipped,
			Position:    t.cell,
			RoadWidth:   width,
			RightHazard: right == sensor.HAZARD,
		})
		c.logf("tick %d %s: no room to avoid hazard (road width %d, right hazard %t), driving through",
			c.ticks, t.cell, width, right == sensor.HAZARD)
		c.transition(t, TRAVERSE)
		return
	}

	c.best = BestGap{
		Position: t.cell,
		Score:    t.sensor.HazardScore(geometry.LEFT, c.cfg.ScoreLength),
	}
	c.target = geometry.Rotate(t.facing, geometry.RIGHT)
}

// reachedGap reports that the vehicle has backed up to the best gap, or is close enough that
// braking now stops it there.
func (c *Controller) reachedGap(t *tick) bool {
	remaining := geometry.AxisDistance(t.point, c.best.Position, geometry.Rotate(t.facing, geometry.BACK))
	if remaining <= 0 {
		return true
	}
	return geometry.CloseTo(t.cell, c.best.Position, t.facing) &&
		remaining <= geometry.BrakingDistance(math.Abs(t.velocity), c.cfg.BrakeDecel)
}

func (c *Controller) transition(t *tick, to HazardState) {
	from := c.state
	c.state = to
	c.emit(Event{
		Kind:     EventTransition,
		Position: t.cell,
		From:     from,
		To:       to,
	})
	c.debugf("tick %d %s: %s -> %s", c.ticks, t.cell, from, to)
}
