// Package series holds the backing data for a chart and the slicing and
// downsampling machinery that turns an arbitrarily large point sequence
// into a bounded render payload.
package series

import "math"

// Point is one datum in a series. Size is an optional magnitude (bubble
// radius, sample weight); it only carries meaning when HasSize is set.
type Point struct {
	X, Y    float64
	Size    float64
	HasSize bool
}

// Series represents one data set in a visualization. The chart treats
// Points as a borrowed, read-only view: it never mutates or copies the
// slice, only derives bounded render payloads from it.
type Series struct {
	Name   string
	Points []Point
}

// NewSeries returns an empty named series.
func NewSeries(name string) *Series {
	return &Series{Name: name}
}

// Insert appends a point to the series.
func (s *Series) Insert(p Point) {
	s.Points = append(s.Points, p)
}

// Len returns the number of points in the series.
func (s *Series) Len() int {
	return len(s.Points)
}

// Domain returns the extent of the series along x. Unlike sortedness,
// domain bounds cannot assume ordering, so this is a full scan. The ok
// return is false for an empty series.
func (s *Series) Domain() (min, max float64, ok bool) {
	if len(s.Points) == 0 {
		return 0, 0, false
	}
	min = s.Points[0].X
	max = s.Points[0].X
	for _, p := range s.Points[1:] {
		if p.X < min {
			min = p.X
		}
		if p.X > max {
			max = p.X
		}
	}
	return min, max, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
