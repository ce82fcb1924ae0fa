// geometry holds the grid and heading arithmetic shared by the sensors and the controller.
// The coordinate system matches the track: (0,0) is the bottom/left cell, +x is east and
// +y is north, so a positive velocity along some axis yields a larger index on that axis.
package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Position is an integer grid cell. Continuous positions are rounded into one of these;
// two points inside the same cell are the same Position, so it is safe as a map key.
type Position struct {
	X, Y int
}

// Point is a raw, continuous coordinate pair as reported by the vehicle.
type Point struct {
	X, Y float64
}

func (p Position) String() string {
	return strconv.Itoa(p.X) + "," + strconv.Itoa(p.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
}

// Add returns the cell displaced by other.
func (p Position) Add(other Position) Position {
	return Position{X: p.X + other.X, Y: p.Y + other.Y}
}

// Offset returns the cell n steps away in the passed direction.
func (p Position) Offset(o Orientation, n int) Position {
	step := Step(o)
	return Position{X: p.X + n*step.X, Y: p.Y + n*step.Y}
}

// Center returns the continuous coordinate of the middle of the cell.
func (p Position) Center() Point {
	return Point{X: float64(p.X), Y: float64(p.Y)}
}

// ToCell rounds each axis to the nearest integer.
func ToCell(p Point) Position {
	return Position{
		X: int(math.Round(p.X)),
		Y: int(math.Round(p.Y)),
	}
}

// Orientation is the compass heading of the vehicle.
type Orientation int

const (
	NORTH Orientation = iota
	EAST
	SOUTH
	WEST
)

// Orientations lists the headings clockwise from north.
var Orientations = [...]Orientation{NORTH, EAST, SOUTH, WEST}

func (o Orientation) String() string {
	switch o {
	case NORTH:
		return "NORTH"
	case EAST:
		return "EAST"
	case SOUTH:
		return "SOUTH"
	case WEST:
		return "WEST"
	}
	return "Orientation(" + strconv.Itoa(int(o)) + ")"
}

// Valid reports whether o is one of the four headings.
func (o Orientation) Valid() bool {
	return o >= NORTH && o <= WEST
}

// ParseOrientation accepts the heading names case-insensitively, e.g. for config files.
func ParseOrientation(s string) (Orientation, error) {
	for _, o := range Orientations {
		if strings.EqualFold(strings.TrimSpace(s), o.String()) {
			return o, nil
		}
	}
	return NORTH, &ParseError{Input: s, Err: fmt.Errorf("unknown orientation")}
}

// RelativeDirection is a direction relative to the current heading.
type RelativeDirection int

const (
	FRONT RelativeDirection = iota
	RIGHT
	BACK
	LEFT
)

func (r RelativeDirection) String() string {
	switch r {
	case FRONT:
		return "FRONT"
	case RIGHT:
		return "RIGHT"
	case BACK:
		return "BACK"
	case LEFT:
		return "LEFT"
	}
	return "RelativeDirection(" + strconv.Itoa(int(r)) + ")"
}

// Opposite returns the mirror direction: FRONT<->BACK, LEFT<->RIGHT.
func (r RelativeDirection) Opposite() RelativeDirection {
	return opposites[r]
}

var opposites = [4]RelativeDirection{
	FRONT: BACK,
	RIGHT: LEFT,
	BACK:  FRONT,
	LEFT:  RIGHT,
}

// rotations is indexed [heading][relative] and is the only place relative directions are resolved.
// LEFT is a counter-clockwise quarter turn, e.g. facing EAST, LEFT is NORTH and RIGHT is SOUTH.
var rotations = [4][4]Orientation{
	NORTH: {FRONT: NORTH, RIGHT: EAST, BACK: SOUTH, LEFT: WEST},
	EAST:  {FRONT: EAST, RIGHT: SOUTH, BACK: WEST, LEFT: NORTH},
	SOUTH: {FRONT: SOUTH, RIGHT: WEST, BACK: NORTH, LEFT: EAST},
	WEST:  {FRONT: WEST, RIGHT: NORTH, BACK: EAST, LEFT: SOUTH},
}

// Rotate resolves a relative direction to an absolute heading.
func Rotate(o Orientation, r RelativeDirection) Orientation {
	return rotations[o][r]
}

// unit step per heading, in grid coordinates (+y is north).
var steps = [4]Position{
	NORTH: {X: 0, Y: 1},
	EAST:  {X: 1, Y: 0},
	SOUTH: {X: 0, Y: -1},
	WEST:  {X: -1, Y: 0},
}

// Step returns the unit cell displacement of one move along o.
func Step(o Orientation) Position {
	return steps[o]
}

// Cardinal angles in degrees, measured counter-clockwise from +x.
const (
	EAST_DEGREE  = 0.0
	NORTH_DEGREE = 90.0
	WEST_DEGREE  = 180.0
	SOUTH_DEGREE = 270.0
)

var degrees = [4]float64{
	NORTH: NORTH_DEGREE,
	EAST:  EAST_DEGREE,
	SOUTH: SOUTH_DEGREE,
	WEST:  WEST_DEGREE,
}

// Degrees returns the cardinal angle of o.
func Degrees(o Orientation) float64 {
	return degrees[o]
}

// NormalizeDegrees maps any angle into [0, 360).
func NormalizeDegrees(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// AngleDelta returns the signed difference angle-reference in (-180, 180].
// Positive values mean angle lies counter-clockwise (to the left) of reference.
func AngleDelta(angle, reference float64) float64 {
	d := NormalizeDegrees(angle - reference)
	if d > 180 {
		d -= 360
	}
	return d
}

// BrakingDistance is the distance covered while decelerating from v to rest:
// v*t - decel*t^2/2, for t = v/decel. Used to start braking early enough to stop on a
// target cell instead of overshooting it.
func BrakingDistance(v, decel float64) float64 {
	if v <= 0 {
		return 0
	}
	if decel <= 0 {
		return math.Inf(1)
	}
	t := v / decel
	return v*t - 0.5*decel*t*t
}

// CloseTo reports whether a and b are within one unit along the axis of travel: the x axis
// for EAST/WEST and the y axis for NORTH/SOUTH. The cross axis is intentionally ignored; this is
// a "close enough, stop now" check and not an equality.
func CloseTo(a, b Position, o Orientation) bool {
	switch o {
	case EAST, WEST:
		return absInt(a.X-b.X) < 1
	default:
		return absInt(a.Y-b.Y) < 1
	}
}

// AxisDistance is the signed distance from p to the center of cell to, measured along o.
// A positive value means the target still lies ahead when moving in direction o.
func AxisDistance(p Point, to Position, o Orientation) float64 {
	step := Step(o)
	return (float64(to.X)-p.X)*float64(step.X) + (float64(to.Y)-p.Y)*float64(step.Y)
}

func absInt(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
