package trials

import (
	"autodrive/atomic_float"
	"autodrive/geometry"
)

// HeatCell counts the ticks vehicles spent in one cell, in total and per heading.
type HeatCell struct {
	Visits   atomic_float.AtomicFloat64
	Headings [4]atomic_float.AtomicFloat64
}

// Heatmap is a per-cell visit count shared by the aggregator (writer) and the views (readers).
type Heatmap struct {
	Width, Height int
	cells         [][]HeatCell
	peak          atomic_float.AtomicFloat64
}

func NewHeatmap(width, height int) *Heatmap {
	cells := make([][]HeatCell, width)
	for x := range cells {
		cells[x] = make([]HeatCell, height)
	}
	return &Heatmap{
		Width:  width,
		Height: height,
		cells:  cells,
	}
}

func (h *Heatmap) contains(p geometry.Position) bool {
	return p.X >= 0 && p.X < h.Width && p.Y >= 0 && p.Y < h.Height
}

// Visit records one tick at p heading o. Positions off the map are ignored.
func (h *Heatmap) Visit(p geometry.Position, o geometry.Orientation) {
	if !h.contains(p) || !o.Valid() {
		return
	}
	cell := &h.cells[p.X][p.Y]
	h.peak.AtomicMax(cell.Visits.AtomicAccumulate(1))
	cell.Headings[o].AtomicAccumulate(1)
}

func (h *Heatmap) Visits(p geometry.Position) float64 {
	if !h.contains(p) {
		return 0
	}
	return h.cells[p.X][p.Y].Visits.AtomicRead()
}

// Dominant returns the heading most often seen at p, and false if p was never visited.
func (h *Heatmap) Dominant(p geometry.Position) (dominant geometry.Orientation, ok bool) {
	if !h.contains(p) {
		return
	}
	best := 0.0
	for _, o := range geometry.Orientations {
		if n := h.cells[p.X][p.Y].Headings[o].AtomicRead(); n > best {
			best = n
			dominant = o
			ok = true
		}
	}
	return
}

// Peak is the largest visit count of any cell, for normalizing.
func (h *Heatmap) Peak() float64 {
	return h.peak.AtomicRead()
}
