// trace_plot renders finished episodes to png for offline review: the driven path over the
// track, and the speed profile with the avoidance states shaded in.
package trace_plot

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"autodrive/controller"
	"autodrive/geometry"
	"autodrive/grid_world"
	"autodrive/trials"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	wallColor    = color.RGBA{R: 90, G: 140, B: 90, A: 255}
	hazardColor  = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	pathColor    = color.RGBA{R: 40, G: 80, B: 220, A: 255}
	avoidColor   = color.RGBA{R: 240, G: 160, B: 0, A: 255}
	plotWidth    = 10 * vg.Inch
	plotHeight   = 6 * vg.Inch
	cellGlyphPts = vg.Points(6)
)

func cellPoints(cells []geometry.Position) plotter.XYs {
	pts := make(plotter.XYs, 0, len(cells))
	for _, c := range cells {
		pts = append(pts, plotter.XY{X: float64(c.X), Y: float64(c.Y)})
	}
	return pts
}

func walls(track *grid_world.Track) (cells []geometry.Position) {
	track.Visit(func(p geometry.Position, c rune) {
		if c == grid_world.WALL {
			cells = append(cells, p)
		}
	})
	return
}

// Trace plots the episode's path over the track's walls and hazards, marking where avoidance began.
func Trace(track *grid_world.Track, episode *trials.Episode) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("episode %s", episode.ID)
	p.X.Label.Text = "x (east)"
	p.Y.Label.Text = "y (north)"
	p.X.Min, p.X.Max = -1, float64(track.Width)
	p.Y.Min, p.Y.Max = -1, float64(track.Height)

	wallScatter, err := plotter.NewScatter(cellPoints(walls(track)))
	if err != nil {
		return nil, err
	}
	wallScatter.GlyphStyle = draw.GlyphStyle{Color: wallColor, Radius: cellGlyphPts, Shape: draw.BoxGlyph{}}
	p.Add(wallScatter)

	if hazards := track.HazardCells(); len(hazards) > 0 {
		hazardScatter, err := plotter.NewScatter(cellPoints(hazards))
		if err != nil {
			return nil, err
		}
		hazardScatter.GlyphStyle = draw.GlyphStyle{Color: hazardColor, Radius: cellGlyphPts, Shape: draw.CrossGlyph{}}
		p.Add(hazardScatter)
		p.Legend.Add("hazard", hazardScatter)
	}

	if len(episode.Steps) > 0 {
		path := make(plotter.XYs, 0, len(episode.Steps)+1)
		path = append(path, plotter.XY{X: episode.Start.Point.X, Y: episode.Start.Point.Y})
		for _, step := range episode.Steps {
			path = append(path, plotter.XY{X: step.Point.X, Y: step.Point.Y})
		}
		line, err := plotter.NewLine(path)
		if err != nil {
			return nil, err
		}
		line.Color = pathColor
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("path", line)
	}

	avoidances := []geometry.Position{}
	for _, ev := range episode.Events {
		if ev.Kind == controller.EventTransition && ev.To == controller.TURN_AWAY {
			avoidances = append(avoidances, ev.Position)
		}
	}
	if len(avoidances) > 0 {
		avoidScatter, err := plotter.NewScatter(cellPoints(avoidances))
		if err != nil {
			return nil, err
		}
		avoidScatter.GlyphStyle = draw.GlyphStyle{Color: avoidColor, Radius: cellGlyphPts, Shape: draw.RingGlyph{}}
		p.Add(avoidScatter)
		p.Legend.Add("avoidance", avoidScatter)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// Speed plots velocity per tick, with the ticks spent outside IDLE drawn as a second series.
func Speed(episode *trials.Episode) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("episode %s speed", episode.ID)
	p.X.Label.Text = "tick"
	p.Y.Label.Text = "velocity (cells/s)"

	speed := make(plotter.XYs, 0, len(episode.Steps))
	avoiding := plotter.XYs{}
	for _, step := range episode.Steps {
		pt := plotter.XY{X: float64(step.Tick), Y: step.Velocity}
		speed = append(speed, pt)
		if step.State != controller.IDLE {
			avoiding = append(avoiding, pt)
		}
	}
	if len(speed) == 0 {
		return p, nil
	}

	line, err := plotter.NewLine(speed)
	if err != nil {
		return nil, err
	}
	line.Color = pathColor
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("velocity", line)

	if len(avoiding) > 0 {
		scatter, err := plotter.NewScatter(avoiding)
		if err != nil {
			return nil, err
		}
		scatter.GlyphStyle = draw.GlyphStyle{Color: avoidColor, Radius: vg.Points(2), Shape: draw.CircleGlyph{}}
		p.Add(scatter)
		p.Legend.Add("avoiding", scatter)
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

// Save writes the trace and speed plots of the episode into dir and returns the file paths.
func Save(track *grid_world.Track, episode *trials.Episode, dir string) (files []string, err error) {
	if err = os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create plot directory: %w", err)
	}

	var trace, speed *plot.Plot
	if trace, err = Trace(track, episode); err != nil {
		return
	}
	if speed, err = Speed(episode); err != nil {
		return
	}

	for suffix, p := range map[string]*plot.Plot{"trace": trace, "speed": speed} {
		file := filepath.Join(dir, fmt.Sprintf("%s_%s.png", episode.ID, suffix))
		if err = p.Save(plotWidth, plotHeight, file); err != nil {
			return nil, fmt.Errorf("failed to save %s plot: %w", suffix, err)
		}
		files = append(files, file)
	}
	return
}
