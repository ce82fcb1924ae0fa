// cell_views contains views derived from the Cell view-model.
package cell_views

import (
	"autodrive/geometry"
	"autodrive/grid_world"
	"autodrive/trials"
)

// Cell flattens one track cell and its heatmap counts into immediately usable view parameters.
// Cells are indexed [x][y] in track coordinates, but Y holds the svg row, where 0 is the
// top of the picture as the track would be printed in the console.
type Cell struct {
	X, Y   int
	Visits float64
	// Share is Visits relative to the busiest cell, in [0,1].
	Share float64
	// HeadingRotation rotates an upward arrow onto the most common heading, in svg degrees.
	HeadingRotation int
	Visited         bool
	Fill            string
}

// Convert reads the trial's heatmap into cells. Heatmap reads are atomic, so this is safe while
// the trial is running.
func Convert(trial *trials.Trial) (cells [][]Cell) {
	track := trial.Track
	peak := trial.Heatmap.Peak()

	cells = make([][]Cell, track.Width)
	for x := range cells {
		cells[x] = make([]Cell, track.Height)
	}

	track.Visit(func(p geometry.Position, cellType rune) {
		visits := trial.Heatmap.Visits(p)
		heading, visited := trial.Heatmap.Dominant(p)
		share := 0.0
		if peak > 0 {
			share = visits / peak
		}
		// flip the y indices for displaying in svg coordinate system
		cells[p.X][p.Y] = Cell{
			X:               p.X,
			Y:               track.Height - p.Y - 1,
			Visits:          visits,
			Share:           share,
			HeadingRotation: getDegrees(heading),
			Visited:         visited,
			Fill:            getFill(cellType),
		}
	})
	return
}

// getDegrees converts a heading into the degrees passed to svg's rotate() for an upward arrow.
// svg rotates clockwise, so EAST is a quarter turn.
func getDegrees(o geometry.Orientation) int {
	return int(90 - geometry.Degrees(o) + 360) % 360
}

func getFill(cellType rune) (fill string) {
	switch cellType {
	case grid_world.WALL:
		fill = "lightgreen"
	case grid_world.TRACK:
		fill = "lightgray"
	case grid_world.START:
		fill = "lightblue"
	case grid_world.FINISH:
		fill = "lightyellow"
	case grid_world.HAZARD:
		fill = "salmon"
	}
	return
}
