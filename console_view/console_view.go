// console_view draws a running trial in the terminal: the track, a visit heatmap, and the most
// recently finished episode's vehicle with its avoidance state.
package console_view

import (
	"context"
	"fmt"
	"time"

	"autodrive/controller"
	"autodrive/geometry"
	"autodrive/grid_world"
	"autodrive/trials"

	"github.com/gdamore/tcell/v2"
	channerics "github.com/niceyeti/channerics/channels"
)

const refreshRate = 100 * time.Millisecond

var (
	wallStyle   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	roadStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	hazardStyle = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	endStyle    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

var headingRunes = [4]rune{
	geometry.NORTH: '^',
	geometry.EAST:  '>',
	geometry.SOUTH: 'v',
	geometry.WEST:  '<',
}

// Marker is a vehicle drawn over the track.
type Marker struct {
	Cell    geometry.Position
	Heading geometry.Orientation
	State   controller.HazardState
}

// Console renders onto a tcell screen. Each track cell takes two columns, like Track.ShowGrid.
type Console struct {
	screen tcell.Screen
	track  *grid_world.Track
}

func NewConsole(screen tcell.Screen, track *grid_world.Track) *Console {
	return &Console{
		screen: screen,
		track:  track,
	}
}

// ScreenPos maps a track cell to its screen column and row; north is up.
func (c *Console) ScreenPos(p geometry.Position) (col, row int) {
	return 2 * p.X, c.track.Height - p.Y - 1
}

func (c *Console) cellStyle(cellType rune) tcell.Style {
	switch cellType {
	case grid_world.WALL:
		return wallStyle
	case grid_world.HAZARD:
		return hazardStyle
	case grid_world.START, grid_world.FINISH:
		return endStyle
	}
	return roadStyle
}

// heat shades visited cells from black toward blue, relative to the busiest cell.
func heat(visits, peak float64) tcell.Color {
	if peak <= 0 || visits <= 0 {
		return tcell.ColorBlack
	}
	intensity := int32(40 + 180*visits/peak)
	return tcell.NewRGBColor(0, 0, intensity)
}

// Draw renders one frame. heatmap may be nil.
func (c *Console) Draw(heatmap *trials.Heatmap, markers []Marker, status string) {
	c.screen.Clear()

	peak := 0.0
	if heatmap != nil {
		peak = heatmap.Peak()
	}
	c.track.Visit(func(p geometry.Position, cellType rune) {
		style := c.cellStyle(cellType)
		if heatmap != nil && cellType != grid_world.WALL {
			style = style.Background(heat(heatmap.Visits(p), peak))
		}
		col, row := c.ScreenPos(p)
		c.screen.SetContent(col, row, cellType, nil, style)
	})

	for _, m := range markers {
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
		if m.State != controller.IDLE {
			style = style.Foreground(tcell.ColorOrange).Reverse(true)
		}
		r := '?'
		if m.Heading.Valid() {
			r = headingRunes[m.Heading]
		}
		col, row := c.ScreenPos(m.Cell)
		c.screen.SetContent(col, row, r, nil, style)
	}

	for i, r := range status {
		c.screen.SetContent(i, c.track.Height+1, r, nil, statusStyle)
	}
	c.screen.Show()
}

// Frame builds the markers and status line for the trial's current results.
func Frame(trial *trials.Trial) ([]Marker, string) {
	summary := trial.Summary()
	status := fmt.Sprintf("episodes %d  avoidances %d  skips %d  collisions %d  finish %.0f%%",
		summary.Episodes, summary.Avoidances, summary.Skips, summary.Collisions, 100*summary.FinishRate)

	latest := trial.Latest()
	if latest == nil || len(latest.Steps) == 0 {
		return nil, status
	}
	last := latest.Steps[len(latest.Steps)-1]
	return []Marker{{
		Cell:    geometry.ToCell(last.Point),
		Heading: last.Orientation,
		State:   last.State,
	}}, status
}

// Run redraws the trial until ctx is cancelled or the user quits with Escape, Ctrl-C or q.
// The caller owns the screen and must Fini it afterward.
func (c *Console) Run(ctx context.Context, trial *trials.Trial) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := channerics.NewTicker(ctx.Done(), refreshRate)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if quit(ev) {
				return nil
			}
			if _, ok := ev.(*tcell.EventResize); ok {
				c.screen.Sync()
			}
		case _, ok := <-ticker:
			if !ok {
				return nil
			}
			markers, status := Frame(trial)
			c.Draw(trial.Heatmap, markers, status)
		}
	}
}

func quit(ev tcell.Event) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return false
	}
	return key.Key() == tcell.KeyEscape ||
		key.Key() == tcell.KeyCtrlC ||
		(key.Key() == tcell.KeyRune && key.Rune() == 'q')
}
