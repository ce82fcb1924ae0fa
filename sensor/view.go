// sensor converts the raw tile window around the vehicle into directional queries.
// Everything here is a pure function of one tick's inputs; nothing is retained between ticks.
package sensor

import (
	"autodrive/geometry"
)

// TileKind classifies one map cell.
type TileKind int

const (
	EMPTY TileKind = iota
	WALL
	HAZARD
)

func (k TileKind) String() string {
	switch k {
	case EMPTY:
		return "EMPTY"
	case WALL:
		return "WALL"
	case HAZARD:
		return "HAZARD"
	}
	return "TileKind(?)"
}

// View is the bounded window of tiles centered on the vehicle for the current tick.
// A cell missing from the map is outside the window, i.e. currently unobservable.
type View map[geometry.Position]TileKind

// Lookup returns the tile at p, and false if p is not currently observable.
// Never index the map directly: a missing key reads as EMPTY, which is a lie.
func (v View) Lookup(p geometry.Position) (kind TileKind, ok bool) {
	kind, ok = v[p]
	return
}
