package cell_views

import (
	"bytes"
	"html/template"
	"testing"

	"autodrive/geometry"
	"autodrive/grid_world"
	"autodrive/trials"

	. "github.com/smartystreets/goconvey/convey"
)

var funcs = template.FuncMap{
	"add":  func(i, j int) int { return i + j },
	"sub":  func(i, j int) int { return i - j },
	"mult": func(i, j int) int { return i * j },
	"div":  func(i, j int) int { return i / j },
}

func testTrial() *trials.Trial {
	track, err := grid_world.Convert([]string{
		"WWWW",
		"W-x+",
		"Wooo",
	})
	So(err, ShouldBeNil)
	trial := &trials.Trial{
		Track:   track,
		Heatmap: trials.NewHeatmap(track.Width, track.Height),
	}
	trial.Heatmap.Visit(geometry.Position{X: 1, Y: 1}, geometry.EAST)
	trial.Heatmap.Visit(geometry.Position{X: 1, Y: 1}, geometry.EAST)
	trial.Heatmap.Visit(geometry.Position{X: 1, Y: 0}, geometry.NORTH)
	return trial
}

func execute(name string, parse func(*template.Template) (string, error), data interface{}) string {
	t := template.New("test").Funcs(funcs)
	tname, err := parse(t)
	So(err, ShouldBeNil)
	So(tname, ShouldEqual, name)
	var out bytes.Buffer
	So(t.ExecuteTemplate(&out, tname, data), ShouldBeNil)
	return out.String()
}

func TestConvert(t *testing.T) {
	Convey("When converting a trial into cells", t, func() {
		cells := Convert(testTrial())
		So(cells, ShouldHaveLength, 4)
		So(cells[0], ShouldHaveLength, 3)

		Convey("Rows are flipped for svg", func() {
			So(cells[1][1].X, ShouldEqual, 1)
			So(cells[1][1].Y, ShouldEqual, 1)
			So(cells[1][0].Y, ShouldEqual, 2)
			So(cells[0][2].Y, ShouldEqual, 0)
		})

		Convey("Counts are relative to the busiest cell", func() {
			So(cells[1][1].Visits, ShouldEqual, 2)
			So(cells[1][1].Share, ShouldEqual, 1)
			So(cells[1][0].Share, ShouldEqual, 0.5)
			So(cells[3][0].Share, ShouldEqual, 0)
			So(cells[3][0].Visited, ShouldBeFalse)
		})

		Convey("Arrows point along the most common heading", func() {
			So(cells[1][1].HeadingRotation, ShouldEqual, 90)
			So(cells[1][0].HeadingRotation, ShouldEqual, 0)
			So(getDegrees(geometry.SOUTH), ShouldEqual, 180)
			So(getDegrees(geometry.WEST), ShouldEqual, 270)
		})

		Convey("Fills follow the cell type", func() {
			So(cells[0][0].Fill, ShouldEqual, "lightgreen")
			So(cells[1][1].Fill, ShouldEqual, "lightblue")
			So(cells[2][1].Fill, ShouldEqual, "salmon")
			So(cells[3][1].Fill, ShouldEqual, "lightyellow")
			So(cells[2][0].Fill, ShouldEqual, "lightgray")
		})
	})
}

func TestHeatmapGrid(t *testing.T) {
	Convey("Given a heatmap grid", t, func() {
		cells := Convert(testTrial())
		grid := NewHeatmapGrid(nil, make(chan [][]Cell))

		Convey("Each cell gets text, heat, and arrow updates", func() {
			ops := grid.onUpdate(cells)
			So(ops, ShouldHaveLength, 3*4*3)
			So(ops[0].EleId, ShouldEqual, "0-2-visits-text")
		})

		Convey("The template renders every cell's elements", func() {
			html := execute("heatmapgrid", grid.Parse, cells)
			So(html, ShouldContainSubstring, `id="1-1-visits-text"`)
			So(html, ShouldContainSubstring, `id="1-1-heat-rect"`)
			So(html, ShouldContainSubstring, `id="3-2-heading-arrow"`)
			So(html, ShouldContainSubstring, "salmon")
		})
	})
}

func TestVisitsSurface(t *testing.T) {
	Convey("Given a visits surface", t, func() {
		cells := Convert(testTrial())
		surface := NewVisitsSurface(nil, make(chan [][]Cell), 4, 3)

		Convey("There is one polygon per interior corner plus the group transform", func() {
			ops := surface.onUpdate(cells)
			So(ops, ShouldHaveLength, 3*2+1)
			So(ops[len(ops)-1].EleId, ShouldEqual, "visitssurface-group")
		})

		Convey("Degenerate grids produce nothing", func() {
			So(surface.onUpdate([][]Cell{{{}}}), ShouldBeEmpty)
		})

		Convey("The template renders the polygons", func() {
			html := execute("visitssurface", surface.Parse, cells)
			So(html, ShouldContainSubstring, `id="0-2-visits-polygon"`)
			So(html, ShouldContainSubstring, `id="visitssurface-group"`)
		})

		Convey("Fills run from blue to red", func() {
			So(getRGBFill(0), ShouldEqual, "rgb(0%,0%,100%)")
			So(getRGBFill(1), ShouldEqual, "rgb(100%,0%,0%)")
			So(getRGBFill(7), ShouldEqual, "rgb(100%,0%,0%)")
		})
	})
}
