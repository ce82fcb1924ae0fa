// simulation is a small kinematic harness that moves a car over a grid_world track, so that
// controllers can be exercised without a game engine.
package simulation

import (
	"errors"
	"fmt"
	"math"

	"autodrive/geometry"
	"autodrive/grid_world"
	"autodrive/sensor"
)

var ErrBlockedStart error = errors.New("start position is inside a wall")

// Angles within this of a cardinal count as on it.
const angleEpsilon = 1e-6

// Car is a point vehicle. Commands change velocity and heading immediately; Step moves it.
// Turning sweeps the heading at the physics turn rate and snaps onto a cardinal angle when
// the sweep reaches one, which is the only moment the reported orientation changes.
type Car struct {
	track   *grid_world.Track
	physics Physics

	point       geometry.Point
	angle       float64
	orientation geometry.Orientation
	velocity    float64
	// dt is the length of the current tick, used by the throttle and brake commands.
	dt float64

	ticks       int
	collisions  int
	hazardTicks int
	finished    bool
}

func NewCar(
	track *grid_world.Track,
	start geometry.Point,
	heading geometry.Orientation,
	physics Physics,
) (*Car, error) {
	if err := physics.Validate(); err != nil {
		return nil, err
	}
	if !heading.Valid() {
		return nil, fmt.Errorf("invalid heading %d", int(heading))
	}
	if track.At(geometry.ToCell(start)) == grid_world.WALL {
		return nil, fmt.Errorf("%w: %s", ErrBlockedStart, start)
	}

	return &Car{
		track:       track,
		physics:     physics,
		point:       start,
		angle:       geometry.Degrees(heading),
		orientation: heading,
		dt:          physics.Tick,
	}, nil
}

// SetVelocity places the car in motion, e.g. to start a scenario at speed.
func (c *Car) SetVelocity(v float64) {
	c.velocity = math.Max(-c.physics.MaxReverse, math.Min(v, c.physics.MaxSpeed))
}

func (c *Car) View() sensor.View {
	return c.track.View(geometry.ToCell(c.point), c.physics.ViewRadius)
}

func (c *Car) Position() (geometry.Point, error) {
	return c.point, nil
}

func (c *Car) Orientation() geometry.Orientation {
	return c.orientation
}

func (c *Car) Velocity() float64 {
	return c.velocity
}

func (c *Car) Angle() float64 {
	return c.angle
}

func (c *Car) AccelerateForward() {
	c.velocity = math.Min(c.velocity+c.physics.Acceleration*c.dt, c.physics.MaxSpeed)
}

func (c *Car) AccelerateReverse() {
	c.velocity = math.Max(c.velocity-c.physics.Acceleration*c.dt, -c.physics.MaxReverse)
}

// Brake slows the car toward standstill from either direction, never past it.
func (c *Car) Brake() {
	decel := c.physics.BrakeDecel * c.dt
	if c.velocity > 0 {
		c.velocity = math.Max(0, c.velocity-decel)
	} else {
		c.velocity = math.Min(0, c.velocity+decel)
	}
}

func (c *Car) TurnLeft(delta float64) {
	c.turn(c.physics.TurnRate * delta)
}

func (c *Car) TurnRight(delta float64) {
	c.turn(-c.physics.TurnRate * delta)
}

// turn sweeps the heading by sweep degrees, counter-clockwise when positive, stopping at the
// next cardinal in that direction.
func (c *Car) turn(sweep float64) {
	if sweep == 0 {
		return
	}

	var cardinal float64
	next := c.angle + sweep
	if sweep > 0 {
		cardinal = (math.Floor(c.angle/90+angleEpsilon) + 1) * 90
		if next < cardinal-angleEpsilon {
			c.angle = next
			return
		}
	} else {
		cardinal = (math.Ceil(c.angle/90-angleEpsilon) - 1) * 90
		if next > cardinal+angleEpsilon {
			c.angle = geometry.NormalizeDegrees(next)
			return
		}
	}

	c.angle = geometry.NormalizeDegrees(cardinal)
	c.orientation = cardinalOf(c.angle)
}

func cardinalOf(angle float64) geometry.Orientation {
	switch int(math.Round(angle/90)) % 4 {
	case 1:
		return geometry.NORTH
	case 2:
		return geometry.WEST
	case 3:
		return geometry.SOUTH
	}
	return geometry.EAST
}

// Step advances the car along its heading. Driving into a wall leaves it in place and stops it.
func (c *Car) Step(dt float64) {
	c.dt = dt
	c.ticks++

	rad := c.angle * math.Pi / 180
	next := geometry.Point{
		X: c.point.X + c.velocity*math.Cos(rad)*dt,
		Y: c.point.Y + c.velocity*math.Sin(rad)*dt,
	}

	switch c.track.At(geometry.ToCell(next)) {
	case grid_world.WALL:
		c.velocity = 0
		c.collisions++
		return
	case grid_world.HAZARD:
		c.hazardTicks++
	case grid_world.FINISH:
		c.finished = true
	}
	c.point = next
}

// Cell is the grid cell the car is in.
func (c *Car) Cell() geometry.Position {
	return geometry.ToCell(c.point)
}

func (c *Car) Ticks() int {
	return c.ticks
}

func (c *Car) Collisions() int {
	return c.collisions
}

// HazardTicks counts the steps that ended on a hazard cell.
func (c *Car) HazardTicks() int {
	return c.hazardTicks
}

func (c *Car) Finished() bool {
	return c.finished
}
