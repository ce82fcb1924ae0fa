package cell_views

import (
	"fmt"
	"html/template"
	"math"

	"autodrive/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

const (
	cellDim = 40.0 // Cell height/width size in pixels
	// Angle of the x, y axes in the isometric projection.
	ang = math.Pi / 6
	// Height in pixels of the busiest cell; counts are scaled relative to the peak.
	peakHeight = cellDim * 3
)

var sinAng, cosAng = math.Sin(ang), math.Cos(ang)

// VisitsSurface plots visit counts as an isometric surface (x, y, share of the peak count),
// so the lanes vehicles actually use stand out as ridges.
type VisitsSurface struct {
	id            string
	width, height float64 // canvas size in pixels
	updates       <-chan []fastview.EleUpdate
}

// NewVisitsSurface sizes its canvas for a track of xCells by yCells.
func NewVisitsSurface(
	done <-chan struct{},
	cells <-chan [][]Cell,
	xCells, yCells int,
) (vs *VisitsSurface) {
	vs = &VisitsSurface{
		id:     "visitssurface",
		width:  float64(xCells) * cellDim,
		height: float64(yCells) * cellDim,
	}
	vs.updates = channerics.Convert(done, cells, vs.onUpdate)
	return
}

func (vs *VisitsSurface) Updates() <-chan []fastview.EleUpdate {
	return vs.updates
}

// project applies an isometric projection to the passed point.
func project(x, y, z float64) (float64, float64) {
	sx := (x - y) * cosAng * cellDim
	sy := (x+y)*sinAng*cellDim - z*peakHeight
	return sx, sy
}

// Cell-A is bottom left, Cell-B is top left, Cell-C is top right, and Cell-D is bottom right.
func getPolyPoints(
	cellA Cell,
	cellB Cell,
	cellC Cell,
	cellD Cell,
) string {
	return makeSurfacePolygon("", cellA, cellB, cellC, cellD).String()
}

// Returns an svg polygon describing these four adjacent cells, projected into 2d.
func makeSurfacePolygon(
	id string,
	cellA Cell,
	cellB Cell,
	cellC Cell,
	cellD Cell,
) (sp *surfacePolygon) {
	sp = &surfacePolygon{
		Id: id,
	}
	sp.ax, sp.ay = project(float64(cellA.X), float64(cellA.Y), cellA.Share)
	sp.bx, sp.by = project(float64(cellB.X), float64(cellB.Y), cellB.Share)
	sp.cx, sp.cy = project(float64(cellC.X), float64(cellC.Y), cellC.Share)
	sp.dx, sp.dy = project(float64(cellD.X), float64(cellD.Y), cellD.Share)
	return
}

type surfacePolygon struct {
	Id     string
	ax, ay float64
	bx, by float64
	cx, cy float64
	dx, dy float64
}

// String returns a string suitable for the svg-polygon 'points' attribute.
// The values are truncated to ints.
func (sp *surfacePolygon) String() string {
	return fmt.Sprintf("%d,%d %d,%d %d,%d %d,%d",
		int(sp.ax), int(sp.ay),
		int(sp.bx), int(sp.by),
		int(sp.cx), int(sp.cy),
		int(sp.dx), int(sp.dy),
	)
}

func (sp *surfacePolygon) MinX() float64 {
	return math.Min(math.Min(sp.ax, sp.bx), math.Min(sp.cx, sp.dx))
}

func (sp *surfacePolygon) MinY() float64 {
	return math.Min(math.Min(sp.ay, sp.by), math.Min(sp.cy, sp.dy))
}

func (sp *surfacePolygon) MaxX() float64 {
	return math.Max(math.Max(sp.ax, sp.bx), math.Max(sp.cx, sp.dx))
}

func (sp *surfacePolygon) MaxY() float64 {
	return math.Max(math.Max(sp.ay, sp.by), math.Max(sp.cy, sp.dy))
}

func avg(f ...float64) float64 {
	n, sum := 0.0, 0.0
	for _, fn := range f {
		sum += fn
		n++
	}
	return sum / n
}

// Returns the set of view updates needed for the view to reflect current counts.
func (vs *VisitsSurface) onUpdate(
	cells [][]Cell,
) (ops []fastview.EleUpdate) {
	if len(cells) < 2 || len(cells[0]) < 2 {
		return
	}

	// First build up the polygons, so we can later center their svg coordinates within the view.
	xmin, ymin := math.MaxFloat64, math.MaxFloat64
	xmax, ymax := -math.MaxFloat64, -math.MaxFloat64
	for ri, row := range cells[:len(cells)-1] {
		for ci, cell := range row[:len(row)-1] {
			cellA := cells[ri+1][ci]
			cellB := cells[ri][ci]
			cellC := cells[ri][ci+1]
			cellD := cells[ri+1][ci+1]
			polygon := makeSurfacePolygon(
				fmt.Sprintf("%d-%d-visits-polygon", cell.X, cell.Y),
				cellA, cellB, cellC, cellD,
			)

			xmin = math.Min(xmin, polygon.MinX())
			xmax = math.Max(xmax, polygon.MaxX())
			ymin = math.Min(ymin, polygon.MinY())
			ymax = math.Max(ymax, polygon.MaxY())

			ops = append(ops, fastview.EleUpdate{
				EleId: polygon.Id,
				Ops: []fastview.Op{
					{
						Key:   "points",
						Value: polygon.String(),
					},
					{
						Key:   "fill",
						Value: getRGBFill(avg(cellA.Share, cellB.Share, cellC.Share, cellD.Share)),
					},
				},
			})
		}
	}

	// Shift by the min x and y to center the view, and scale down to fit only if needed.
	scaler := math.Min(
		math.Min(
			math.Abs(2*vs.width/(xmax-xmin)),
			math.Abs(2*vs.height/(ymax-ymin)),
		),
		1.0,
	)

	ops = append(ops, fastview.EleUpdate{
		EleId: vs.id + "-group",
		Ops: []fastview.Op{
			{
				Key:   "transform",
				Value: fmt.Sprintf("scale(%f) translate(%d %d)", scaler, int(-xmin), int(-ymin)),
			},
		},
	})

	return
}

// Returns an RGB value from blue (unused) to red (busiest) by the share of the peak count.
func getRGBFill(share float64) string {
	redPct := int(100.0 * math.Max(0, math.Min(share, 1)))
	return fmt.Sprintf("rgb(%d%%,0%%,%d%%)", redPct, 100-redPct)
}

// Parse returns an svg of polygons plotting the visits surface as a 2D projection.
func (vs *VisitsSurface) Parse(
	t *template.Template,
) (name string, err error) {
	name = vs.id
	addedMap := template.FuncMap{
		"getPolyPoints": getPolyPoints,
	}
	// The order of polygon creation obscures prior polygons, which forms the visual surface.
	_, err = t.Funcs(addedMap).Parse(
		`{{ define "` + name + `" }}
		<div style="padding:40px;">
			{{ $x_cells := len . }}
			{{ $y_cells := len (index . 0) }}
			{{ $num_x_polys := sub $x_cells 1 }}
			{{ $num_y_polys := sub $y_cells 1 }}
			<svg id="` + vs.id + `" xmlns='http://www.w3.org/2000/svg'
				width="` + fmt.Sprintf("%d", int(2*vs.width)) + `px"
				height="` + fmt.Sprintf("%d", int(2*vs.height)) + `px"
				style="shape-rendering: crispEdges; stroke: lightgrey; stroke-opacity: 1.0; stroke-width: 2;">
				<g id="` + vs.id + "-group" + `" transform="translate(0 0)">
				{{ $cells := . }}
				{{ range $ri, $row := $cells }}
					{{ if lt $ri $num_x_polys }}
						{{ range $j, $unused := $row }}
							{{ $ci := sub (sub (len $row) $j) 1 }}
							{{ $cell := index $row $ci }}
							{{ if lt $ci $num_y_polys }}
								<polygon id="{{$cell.X}}-{{$cell.Y}}-visits-polygon"
									fill="black" fill-opacity="1.0"
									{{ $cell_a := index $cells (add $ri 1) $ci }}
									{{ $cell_b := index $cells $ri $ci }}
									{{ $cell_c := index $cells $ri (add $ci 1) }}
									{{ $cell_d := index $cells (add $ri 1) (add $ci 1) }}
									points="{{ getPolyPoints $cell_a $cell_b $cell_c $cell_d }}" />
							{{ end }}
						{{ end }}
					{{ end }}
				{{ end }}
				</g>
			</svg>
		</div>
		{{ end }}`)
	return
}
