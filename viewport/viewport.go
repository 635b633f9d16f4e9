// Package viewport tracks the visible window of a chart as a percentage
// range over the full data domain. A State is owned by exactly one chart
// and is only ever touched from that chart's frame loop, so it carries no
// locking of its own.
package viewport

import "math"

const (
	// Min and Max bound every range a State will ever hold.
	Min = 0.0
	Max = 100.0

	// DefaultMinSpan is the narrowest window a State permits unless
	// configured otherwise. Zooming tighter than this stops being useful
	// and starts amplifying float noise in the percent->domain mapping.
	DefaultMinSpan = 0.5
)

// Range is a snapshot of the visible window. Both bounds are percentages
// of the full domain in [Min, Max] with Start <= End.
type Range struct {
	Start, End float64
}

// Span returns the width of the range in percent.
func (r Range) Span() float64 {
	return r.End - r.Start
}

type subscriber struct {
	id int
	fn func(Range)
}

// State is the canonical source of truth for a chart's visible window.
// All reads are value snapshots; consumers can never observe a
// half-updated range.
type State struct {
	current Range
	minSpan float64
	subs    []subscriber
	nextID  int
}

// New returns a State showing the full domain with the default minimum
// span.
func New() *State {
	return NewWithMinSpan(DefaultMinSpan)
}

// NewWithMinSpan returns a State showing the full domain whose windows
// may never be narrower than minSpan percent. Nonsensical minimum spans
// fall back to the default.
func NewWithMinSpan(minSpan float64) *State {
	if !isFinite(minSpan) || minSpan <= 0 || minSpan > Max-Min {
		minSpan = DefaultMinSpan
	}
	return &State{
		current: Range{Start: Min, End: Max},
		minSpan: minSpan,
	}
}

// Range returns a consistent snapshot of the current window.
func (s *State) Range() Range {
	return s.current
}

// MinSpan returns the narrowest window this State permits.
func (s *State) MinSpan() float64 {
	return s.minSpan
}

// SetRange moves the window to [start, end]. Bounds are clamped into
// [Min, Max] and reordered if reversed. Requests narrower than the
// minimum span are expanded symmetrically around the requested center;
// if that expansion would run past an edge, the window is shifted inward
// instead of shrunk, so the result is exactly the minimum span wide.
// Non-finite input leaves the window untouched. Subscribers are only
// notified when the resulting range differs from the current one.
func (s *State) SetRange(start, end float64) {
	if !isFinite(start) || !isFinite(end) {
		return
	}
	if start > end {
		start, end = end, start
	}
	start = clamp(start, Min, Max)
	end = clamp(end, Min, Max)
	if end-start < s.minSpan {
		center := (start + end) / 2
		start = center - s.minSpan/2
		end = center + s.minSpan/2
		if start < Min {
			start = Min
			end = Min + s.minSpan
		} else if end > Max {
			end = Max
			start = Max - s.minSpan
		}
	}
	s.commit(Range{Start: start, End: end})
}

// Pan shifts the window by delta percent. If the shifted window would
// run off either edge of the domain it is translated back inside rather
// than clamped-and-shrunk, so panning never changes the span.
func (s *State) Pan(delta float64) {
	if !isFinite(delta) {
		return
	}
	start := s.current.Start + delta
	end := s.current.End + delta
	if start < Min {
		end += Min - start
		start = Min
	} else if end > Max {
		start -= end - Max
		end = Max
	}
	s.commit(Range{Start: start, End: end})
}

// ZoomIn narrows the span by factor around center. The center need not
// lie within the current window; its position relative to the window is
// preserved. Factors that are non-finite or not greater than zero are
// ignored.
func (s *State) ZoomIn(center, factor float64) {
	s.zoom(center, 1/factor)
}

// ZoomOut widens the span by factor around center, subject to the same
// rules as ZoomIn.
func (s *State) ZoomOut(center, factor float64) {
	s.zoom(center, factor)
}

// zoom rescales the current span by scale, holding center's relative
// position fixed, then applies the SetRange clamping rules.
func (s *State) zoom(center, scale float64) {
	if !isFinite(center) || !isFinite(scale) || scale <= 0 {
		return
	}
	start := center - (center-s.current.Start)*scale
	end := center + (s.current.End-center)*scale
	s.SetRange(start, end)
}

// OnChange registers fn to run synchronously whenever the window
// changes, in subscription order, within the mutating call. The returned
// function removes exactly the registration it was returned for and is
// safe to call more than once.
func (s *State) OnChange(fn func(Range)) (unsubscribe func()) {
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		for i := range s.subs {
			if s.subs[i].id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *State) commit(r Range) {
	if r == s.current {
		return
	}
	s.current = r
	// Dispatch over a snapshot so a callback unsubscribing mid-notify
	// cannot shift later subscribers out of this round.
	subs := append([]subscriber(nil), s.subs...)
	for _, sub := range subs {
		sub.fn(r)
	}
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
