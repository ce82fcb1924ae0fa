package sensor

import (
	"autodrive/geometry"
)

// Scoring penalties for ranking candidate bypass positions. A wall is weighted so heavily
// that a wall-adjacent candidate is never preferred over one with only hazards on it.
const (
	HAZARD_PENALTY = 1
	WALL_PENALTY   = 100
)

// DEFAULT_WALL_SENSITIVITY is how many cells out a wall counts as "there".
const DEFAULT_WALL_SENSITIVITY = 2

// Config holds the scan parameters.
type Config struct {
	WallSensitivity int `yaml:"wallsensitivity"`
}

// Sensor answers directional questions about one tick's view from the vehicle's cell and heading.
// Rays start one cell out from the vehicle and stop at the first unobservable cell, which
// counts as neither wall nor hazard.
type Sensor struct {
	view   View
	at     geometry.Position
	facing geometry.Orientation
	cfg    Config
}

// New builds the sensor for this tick.
func New(
	view View,
	at geometry.Position,
	facing geometry.Orientation,
	cfg Config,
) *Sensor {
	if cfg.WallSensitivity <= 0 {
		cfg.WallSensitivity = DEFAULT_WALL_SENSITIVITY
	}
	return &Sensor{
		view:   view,
		at:     at,
		facing: facing,
		cfg:    cfg,
	}
}

// At returns the cell the sensor was built for.
func (s *Sensor) At() geometry.Position {
	return s.at
}

// Facing returns the heading the sensor was built for.
func (s *Sensor) Facing() geometry.Orientation {
	return s.facing
}

// scan walks up to n cells along absolute heading o, calling visit per observable tile
// until visit returns false.
func (s *Sensor) scan(o geometry.Orientation, n int, visit func(i int, kind TileKind) bool) {
	for i := 1; i <= n; i++ {
		kind, ok := s.view.Lookup(s.at.Offset(o, i))
		if !ok || !visit(i, kind) {
			return
		}
	}
}

// WallInDirection reports a wall within WallSensitivity cells along an absolute heading.
func (s *Sensor) WallInDirection(o geometry.Orientation) (found bool) {
	s.scan(o, s.cfg.WallSensitivity, func(_ int, kind TileKind) bool {
		found = kind == WALL
		return !found
	})
	return
}

// WallAhead reports a wall in front of the vehicle.
func (s *Sensor) WallAhead() bool {
	return s.WallInDirection(s.facing)
}

// WallOnSide reports a wall on a side relative to the heading. The wall being followed is
// always the one on the LEFT.
func (s *Sensor) WallOnSide(rel geometry.RelativeDirection) bool {
	return s.WallInDirection(geometry.Rotate(s.facing, rel))
}

// RayTiles returns the tiles 1..length cells out on a relative side, nearest first.
// The ray is cut short at the window edge.
func (s *Sensor) RayTiles(rel geometry.RelativeDirection, length int) (tiles []TileKind) {
	s.scan(geometry.Rotate(s.facing, rel), length, func(_ int, kind TileKind) bool {
		tiles = append(tiles, kind)
		return true
	})
	return
}

// HazardAhead reports a hazard within radius cells in front. A hazard hidden behind a wall
// does not count: the scan ends at the first wall with a negative answer.
func (s *Sensor) HazardAhead(radius int) (found bool) {
	s.scan(s.facing, radius, func(_ int, kind TileKind) bool {
		switch kind {
		case HAZARD:
			found = true
			return false
		case WALL:
			return false
		}
		return true
	})
	return
}

// Blocked is the narrow "can I keep going" check: unlike HazardAhead, a wall also stops progress.
func (s *Sensor) Blocked(radius int) (blocked bool) {
	s.scan(s.facing, radius, func(_ int, kind TileKind) bool {
		blocked = kind == WALL || kind == HAZARD
		return !blocked
	})
	return
}

// distanceToWall counts cells to the first wall along o. If the window edge comes first, the
// distance to the edge is returned, so the result is always bounded by the window.
func (s *Sensor) distanceToWall(o geometry.Orientation) int {
	for i := 1; ; i++ {
		kind, ok := s.view.Lookup(s.at.Offset(o, i))
		if !ok || kind == WALL {
			return i
		}
	}
}

// RoadWidth estimates the lane width across the vehicle's row or column: the distance to the
// wall on the left plus the distance to the wall on the right, minus one for the cell counted twice.
// A one-cell corridor has width 1.
func (s *Sensor) RoadWidth() int {
	left := s.distanceToWall(geometry.Rotate(s.facing, geometry.LEFT))
	right := s.distanceToWall(geometry.Rotate(s.facing, geometry.RIGHT))
	return left + right - 1
}

// HazardScore sums the penalties of the tiles on a relative side; lower is safer.
// This only ranks candidate crossing points, it is not used for detection.
func (s *Sensor) HazardScore(rel geometry.RelativeDirection, length int) (score int) {
	for _, kind := range s.RayTiles(rel, length) {
		score += Penalty(kind)
	}
	return
}

// Penalty is the score contribution of a single tile.
func Penalty(kind TileKind) int {
	switch kind {
	case HAZARD:
		return HAZARD_PENALTY
	case WALL:
		return WALL_PENALTY
	}
	return 0
}

// Adjacent returns the immediate neighbour on a relative side.
func (s *Sensor) Adjacent(rel geometry.RelativeDirection) (TileKind, bool) {
	return s.view.Lookup(s.at.Offset(geometry.Rotate(s.facing, rel), 1))
}

// DeadEnd reports that at most one of the four compass directions is free of walls.
func (s *Sensor) DeadEnd() bool {
	wayOut := len(geometry.Orientations)
	for _, o := range geometry.Orientations {
		if s.WallInDirection(o) {
			wayOut--
		}
	}
	return wayOut <= 1
}
