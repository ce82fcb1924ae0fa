package grid_world

import (
	"errors"
	"fmt"

	"autodrive/geometry"
	"autodrive/sensor"
)

const (
	// Track cell types
	WALL   = 'W'
	TRACK  = 'o'
	START  = '-'
	FINISH = '+'
	HAZARD = 'x'
)

var (
	ErrEmptyTrack  error = errors.New("track has no rows")
	ErrRaggedTrack error = errors.New("track rows differ in length")
	ErrUnknownCell error = errors.New("unknown cell type")
	ErrUnknownName error = errors.New("unknown track name")
)

// The classical track, a smaller debug track for development, and a hazard field for avoidance trials.
// Finish lines are two cells deep so a car can cross into them before the wall behind them turns it.
var (
	DebugTrack []string = []string{
		"WWWWWWWW",
		"Woooo++W",
		"Wooxo++W",
		"WooWWWWW",
		"WooWWWWW",
		"WxoWWWWW",
		"WooWWWWW",
		"W--WWWWW",
	}

	FullTrack []string = []string{
		"WWWWWWWWWWWWWWWWWWWW",
		"WWWWooooooooooooo++W",
		"WWWoooooooxoooooo++W",
		"WWWoooooooxxooooo++W",
		"WWooooooooooooooo++W",
		"Woooooooooooooooo++W",
		"Woooooooooooooooo++W",
		"WooooooooooWWWWWWWWW",
		"WoooooooooWWWWWWWWWW",
		"WoooooooooWWWWWWWWWW",
		"WoooooooooWWWWWWWWWW",
		"WoooxxooooWWWWWWWWWW",
		"WoooxoooooWWWWWWWWWW",
		"WoooooooooWWWWWWWWWW",
		"WoooooooooWWWWWWWWWW",
		"WWooooooooWWWWWWWWWW",
		"WWooooooooWWWWWWWWWW",
		"WWooooooooWWWWWWWWWW",
		"WWoooooxooWWWWWWWWWW",
		"WWoooooxooWWWWWWWWWW",
		"WWooooooooWWWWWWWWWW",
		"WWooooooooWWWWWWWWWW",
		"WWooooooooWWWWWWWWWW",
		"WWWoooooooWWWWWWWWWW",
		"WWWoooooooWWWWWWWWWW",
		"WWWoooxxooWWWWWWWWWW",
		"WWWoooooooWWWWWWWWWW",
		"WWWoooooooWWWWWWWWWW",
		"WWWoooooooWWWWWWWWWW",
		"WWWoooooooWWWWWWWWWW",
		"WWWWooooooWWWWWWWWWW",
		"WWWWooooooWWWWWWWWWW",
		"WWWW------WWWWWWWWWW",
	}

	// BypassTrack is a four lane road blocked by a staggered hazard field. No lane is clear,
	// the lane two rows right of the top row is the least obstructed one.
	BypassTrack []string = []string{
		"WWWWWWWWWWWWWW",
		"W-oooooxxooo+W",
		"W-ooooxxoooo+W",
		"W-oooooxoooo+W",
		"W-ooooxxxooo+W",
		"WWWWWWWWWWWWWW",
	}
)

// Tracks maps the names usable in trial configs to the built in tracks.
var Tracks = map[string][]string{
	"debug":  DebugTrack,
	"full":   FullTrack,
	"bypass": BypassTrack,
}

// Track is a converted track whose cells are indexed [x][y].
type Track struct {
	Width, Height int
	cells         [][]rune
}

// Named converts one of the built in tracks.
func Named(name string) (*Track, error) {
	rows, ok := Tracks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	return Convert(rows)
}

// Converts a track input string array to a grid of cells.
// The orientation is such that the bottom/left most position of the track (when printed in a console) is (0,0).
// This gives awkward reverse-iteration displaying, but makes sense for the problem dynamics: moving north
// is +1 in y, moving east is +1 in x.
func Convert(rows []string) (*Track, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyTrack
	}

	width := len(rows[0])
	height := len(rows)

	cells := make([][]rune, 0, width)
	// Build cells from left to right...
	for x := 0; x < width; x++ {
		cells = append(cells, make([]rune, 0, height))
		// And bottom to top...
		for y := 0; y < height; y++ {
			row := rows[height-y-1]
			if len(row) != width {
				return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrRaggedTrack, height-y-1, len(row), width)
			}
			cell := rune(row[x])
			if !isCell(cell) {
				return nil, fmt.Errorf("%w: %q at %d,%d", ErrUnknownCell, cell, x, y)
			}
			cells[x] = append(cells[x], cell)
		}
	}

	return &Track{
		Width:  width,
		Height: height,
		cells:  cells,
	}, nil
}

func isCell(c rune) bool {
	switch c {
	case WALL, TRACK, START, FINISH, HAZARD:
		return true
	}
	return false
}

// Contains reports whether p is on the map.
func (t *Track) Contains(p geometry.Position) bool {
	return p.X >= 0 && p.X < t.Width && p.Y >= 0 && p.Y < t.Height
}

// At returns the cell type at p. Everything off the map reads as wall.
func (t *Track) At(p geometry.Position) rune {
	if !t.Contains(p) {
		return WALL
	}
	return t.cells[p.X][p.Y]
}

// Kind classifies the cell at p for the sensor. Start and finish cells are driveable road.
func (t *Track) Kind(p geometry.Position) sensor.TileKind {
	switch t.At(p) {
	case WALL:
		return sensor.WALL
	case HAZARD:
		return sensor.HAZARD
	}
	return sensor.EMPTY
}

// View builds the (2*radius+1)^2 window of tiles centered on center.
func (t *Track) View(center geometry.Position, radius int) sensor.View {
	view := make(sensor.View, (2*radius+1)*(2*radius+1))
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			p := geometry.Position{X: center.X + dx, Y: center.Y + dy}
			view[p] = t.Kind(p)
		}
	}
	return view
}

// StartCells returns the start positions, left to right and bottom up.
func (t *Track) StartCells() []geometry.Position {
	return t.cellsOf(START)
}

// FinishCells returns the finish positions.
func (t *Track) FinishCells() []geometry.Position {
	return t.cellsOf(FINISH)
}

// HazardCells returns the hazard positions.
func (t *Track) HazardCells() []geometry.Position {
	return t.cellsOf(HAZARD)
}

func (t *Track) cellsOf(cellType rune) (positions []geometry.Position) {
	t.Visit(func(p geometry.Position, c rune) {
		if c == cellType {
			positions = append(positions, p)
		}
	})
	return
}

// Visits every cell using the passed function
func (t *Track) Visit(fn func(p geometry.Position, c rune)) {
	for x := range t.cells {
		for y := range t.cells[x] {
			fn(geometry.Position{X: x, Y: y}, t.cells[x][y])
		}
	}
}

// Show the track, for visual reference.
func (t *Track) ShowGrid() {
	for _, y := range Rev(t.Height) {
		for x := 0; x < t.Width; x++ {
			fmt.Printf("%c ", t.cells[x][y])
		}
		fmt.Println("")
	}
}

// Returns reversed indices of a slice, e.g. for ranging over.
func Rev(length int) []int {
	indices := make([]int, length)
	for i := 0; i < length; i++ {
		indices[i] = length - i - 1
	}
	return indices
}
