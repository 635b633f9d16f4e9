package series

import "sort"

// View is the portion of a series covered by a domain window. For
// verified-sorted series it is the half-open index range [Start, End);
// for unsorted series it is an explicit index list instead, since the
// matching points need not be contiguous.
type View struct {
	Start, End int
	Indices    []int
	Contiguous bool
}

// Empty reports whether the view covers no points.
func (v View) Empty() bool {
	if v.Contiguous {
		return v.End <= v.Start
	}
	return len(v.Indices) == 0
}

// Len returns the number of points the view covers.
func (v View) Len() int {
	if v.Contiguous {
		return v.End - v.Start
	}
	return len(v.Indices)
}

// Points materializes the view against its series. Contiguous views
// return a subslice of the backing data without copying.
func (v View) Points(s *Series) []Point {
	if v.Contiguous {
		return s.Points[v.Start:v.End]
	}
	if len(v.Indices) == 0 {
		return nil
	}
	pts := make([]Point, 0, len(v.Indices))
	for _, i := range v.Indices {
		pts = append(pts, s.Points[i])
	}
	return pts
}

// SortCache memoizes whether a series is non-decreasing in x, keyed by
// series identity. A replaced series is a new object with a fresh cache
// entry, so entries for dead series are dropped through Forget rather
// than content comparison.
type SortCache struct {
	verdicts map[*Series]bool
}

// NewSortCache returns an empty cache.
func NewSortCache() *SortCache {
	return &SortCache{verdicts: make(map[*Series]bool)}
}

// Sorted reports whether s is non-decreasing in x, scanning it once on
// the first query and answering from the cache afterwards.
func (c *SortCache) Sorted(s *Series) bool {
	if verdict, ok := c.verdicts[s]; ok {
		return verdict
	}
	verdict := true
	for i := 1; i < len(s.Points); i++ {
		if s.Points[i].X < s.Points[i-1].X {
			verdict = false
			break
		}
	}
	c.verdicts[s] = verdict
	return verdict
}

// Forget drops the cached verdict for s. Callers invoke this whenever
// they mutate a series they previously sliced; replacing a series
// wholesale needs no call because the new object misses the cache
// anyway.
func (c *SortCache) Forget(s *Series) {
	delete(c.verdicts, s)
}

// Visible returns the view of s covering the domain window [min, max].
// Sorted series are located with binary search in O(log n); equal x
// values at the window edges are all included via lower/upper bound
// semantics. Unsorted series fall back to a linear scan producing an
// index list. An empty window or series yields an empty view, never an
// error.
func (c *SortCache) Visible(s *Series, min, max float64) View {
	if len(s.Points) == 0 || min > max {
		return View{Contiguous: true}
	}
	if c.Sorted(s) {
		start := sort.Search(len(s.Points), func(i int) bool {
			return s.Points[i].X >= min
		})
		end := sort.Search(len(s.Points), func(i int) bool {
			return s.Points[i].X > max
		})
		return View{Start: start, End: end, Contiguous: true}
	}
	var indices []int
	for i, p := range s.Points {
		if p.X >= min && p.X <= max {
			indices = append(indices, i)
		}
	}
	return View{Indices: indices}
}
