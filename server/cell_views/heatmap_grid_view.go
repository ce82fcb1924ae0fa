package cell_views

import (
	"fmt"
	"html/template"

	"autodrive/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// HeatmapGrid shows the track as a grid of cells, each with its visit count, a heat overlay,
// and an arrow for the most common heading through it.
type HeatmapGrid struct {
	id      string
	updates <-chan []fastview.EleUpdate
}

func NewHeatmapGrid(
	done <-chan struct{},
	cells <-chan [][]Cell,
) (hg *HeatmapGrid) {
	hg = &HeatmapGrid{id: "heatmapgrid"}
	hg.updates = channerics.Convert(done, cells, hg.onUpdate)
	return
}

func (hg *HeatmapGrid) Updates() <-chan []fastview.EleUpdate {
	return hg.updates
}

func formatVisits(visits float64) string {
	return fmt.Sprintf("%.0f", visits)
}

// Returns the set of view updates needed for the view to reflect the current counts.
func (hg *HeatmapGrid) onUpdate(cells [][]Cell) (ops []fastview.EleUpdate) {
	for _, row := range cells {
		for _, cell := range row {
			ops = append(ops, fastview.EleUpdate{
				EleId: fmt.Sprintf("%d-%d-visits-text", cell.X, cell.Y),
				Ops: []fastview.Op{
					{Key: "textContent", Value: formatVisits(cell.Visits)},
				},
			})
			ops = append(ops, fastview.EleUpdate{
				EleId: fmt.Sprintf("%d-%d-heat-rect", cell.X, cell.Y),
				Ops: []fastview.Op{
					{Key: "fill-opacity", Value: fmt.Sprintf("%.2f", cell.Share)},
				},
			})
			ops = append(ops, fastview.EleUpdate{
				EleId: fmt.Sprintf("%d-%d-heading-arrow", cell.X, cell.Y),
				Ops: []fastview.Op{
					{Key: "transform", Value: fmt.Sprintf("rotate(%d)", cell.HeadingRotation)},
					{Key: "visibility", Value: visibility(cell.Visited)},
				},
			})
		}
	}
	return
}

func visibility(visible bool) string {
	if visible {
		return "visible"
	}
	return "hidden"
}

// Parse defines the grid's svg template, executed with the initial [][]Cell.
func (hg *HeatmapGrid) Parse(
	t *template.Template,
) (name string, err error) {
	name = hg.id
	addedMap := template.FuncMap{
		"formatVisits": formatVisits,
		"visibility":   visibility,
	}
	_, err = t.Funcs(addedMap).Parse(
		`{{ define "` + name + `" }}
		<div id="` + hg.id + `-container">
			{{ $x_cells := len . }}
			{{ $y_cells := len (index . 0) }}
			{{ $cell_width := 40 }}
			{{ $cell_height := $cell_width }}
			{{ $width := mult $cell_width $x_cells }}
			{{ $height := mult $cell_height $y_cells }}
			{{ $half_height := div $cell_height 2 }}
			{{ $half_width := div $cell_width 2 }}
			<svg id="` + hg.id + `"
				width="{{ add $width 1 }}px"
				height="{{ add $height 1 }}px"
				style="shape-rendering: crispEdges;">
				{{ range $row := . }}
					{{ range $cell := $row }}
					<g>
						<rect
							x="{{ mult $cell.X $cell_width }}"
							y="{{ mult $cell.Y $cell_height }}"
							width="{{ $cell_width }}"
							height="{{ $cell_height }}"
							fill="{{ $cell.Fill }}"
							stroke="black"
							stroke-width="1"/>
						<rect id="{{$cell.X}}-{{$cell.Y}}-heat-rect"
							x="{{ mult $cell.X $cell_width }}"
							y="{{ mult $cell.Y $cell_height }}"
							width="{{ $cell_width }}"
							height="{{ $cell_height }}"
							fill="blue"
							fill-opacity="{{ printf "%.2f" $cell.Share }}"/>
						<text id="{{$cell.X}}-{{$cell.Y}}-visits-text"
							x="{{ add (mult $cell.X $cell_width) $half_width }}"
							y="{{ add (mult $cell.Y $cell_height) (sub $half_height 6) }}"
							font-size="10"
							dominant-baseline="text-top" text-anchor="middle"
							>{{ formatVisits $cell.Visits }}</text>
						<g transform="translate({{ add (mult $cell.X $cell_width) $half_width }}, {{ add (mult $cell.Y $cell_height) (add $half_height 8) }})">
							<text id="{{$cell.X}}-{{$cell.Y}}-heading-arrow"
							stroke="black" stroke-width="1"
							dominant-baseline="central" text-anchor="middle"
							visibility="{{ visibility $cell.Visited }}"
							transform="rotate({{ $cell.HeadingRotation }})"
							>&uarr;</text>
						</g>
					</g>
					{{ end }}
				{{ end }}
			</svg>
		</div>
		{{ end }}`)
	return
}
