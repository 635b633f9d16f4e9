package zoomchart

import (
	"math"
	"testing"

	"git.sr.ht/~whereswaldon/zoomchart/series"
	"git.sr.ht/~whereswaldon/zoomchart/viewport"
)

func TestRenderBudget(t *testing.T) {
	type testcase struct {
		name     string
		base     int
		span     float64
		expected int
	}
	for _, tc := range []testcase{
		{
			name:     "full zoom out uses the base threshold",
			base:     500,
			span:     100,
			expected: 500,
		},
		{
			name:     "half span doubles the budget",
			base:     500,
			span:     50,
			expected: 1000,
		},
		{
			name:     "narrow span hits the absolute cap",
			base:     1000,
			span:     1,
			expected: maxRenderPoints,
		},
		{
			name:     "small base hits the multiplier cap first",
			base:     100,
			span:     1,
			expected: 1000,
		},
		{
			name:     "zero span stays capped",
			base:     500,
			span:     0,
			expected: maxRenderPoints,
		},
		{
			name:     "zero base falls back to the default",
			base:     0,
			span:     100,
			expected: DefaultBaseThreshold,
		},
		{
			name:     "budget never drops below the endpoints",
			base:     1,
			span:     100,
			expected: minRenderTarget,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := renderBudget(tc.base, tc.span); got != tc.expected {
				t.Errorf("expected budget %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestDomainWindow(t *testing.T) {
	lo, hi := domainWindow(1000, 2000, viewport.Range{Start: 25, End: 75})
	if lo != 1250 || hi != 1750 {
		t.Errorf("expected window [1250,1750], got [%f,%f]", lo, hi)
	}
	lo, hi = domainWindow(1000, 2000, viewport.Range{Start: 0, End: 100})
	if lo != 1000 || hi != 2000 {
		t.Errorf("expected the full viewport to cover the whole domain, got [%f,%f]", lo, hi)
	}
}

func testChart() *Chart {
	return New(func() {})
}

func testSeries(n int) *series.Series {
	s := series.NewSeries("test")
	for i := 0; i < n; i++ {
		s.Insert(series.Point{X: float64(i), Y: float64(i % 7)})
	}
	return s
}

func TestSliceAndDownsampleWindowing(t *testing.T) {
	c := testChart()
	s := testSeries(1000)
	got := c.SliceAndDownsample(s, viewport.Range{Start: 25, End: 50}, 5000, series.LTTB)
	if len(got) == 0 {
		t.Fatal("expected a render payload")
	}
	// X spans 0..999, so the window is [249.75, 499.5].
	if first := got[0].X; first < 249.75 || first > 251 {
		t.Errorf("expected the payload to start at the window edge, first x %f", first)
	}
	if last := got[len(got)-1].X; last > 499.5 || last < 498 {
		t.Errorf("expected the payload to end at the window edge, last x %f", last)
	}
	for _, p := range got {
		if p.X < 249.75 || p.X > 499.5 {
			t.Errorf("payload point x %f outside the visible window", p.X)
		}
	}
}

func TestSliceAndDownsampleHonorsBudget(t *testing.T) {
	c := testChart()
	s := testSeries(10000)
	got := c.SliceAndDownsample(s, viewport.Range{Start: 0, End: 100}, 500, series.LTTB)
	if len(got) != 500 {
		t.Errorf("expected exactly 500 points, got %d", len(got))
	}
}

func TestSliceAndDownsampleInvalidInput(t *testing.T) {
	c := testChart()
	s := testSeries(100)
	full := viewport.Range{Start: 0, End: 100}
	if got := c.SliceAndDownsample(nil, full, 500, series.LTTB); got != nil {
		t.Errorf("expected nil payload for nil series, got %d points", len(got))
	}
	if got := c.SliceAndDownsample(s, full, -1, series.LTTB); got != nil {
		t.Errorf("expected nil payload for negative budget, got %d points", len(got))
	}
	if got := c.SliceAndDownsample(s, viewport.Range{Start: math.NaN(), End: 100}, 500, series.LTTB); got != nil {
		t.Errorf("expected nil payload for non-finite viewport, got %d points", len(got))
	}
	if got := c.SliceAndDownsample(series.NewSeries("empty"), full, 500, series.LTTB); len(got) != 0 {
		t.Errorf("expected empty payload for empty series, got %d points", len(got))
	}
}

func TestViewportChangeCoalescesRecompute(t *testing.T) {
	frames := 0
	c := NewWithMinSpan(func() { frames++ }, viewport.DefaultMinSpan)
	c.SetData(testSeries(5000))
	if frames != 1 {
		t.Fatalf("expected SetData to request one frame, got %d", frames)
	}
	// A burst of viewport changes before the next frame coalesces into
	// the pending request.
	c.SetViewport(10, 90)
	c.SetViewport(20, 80)
	c.SetViewport(30, 70)
	if frames != 1 {
		t.Errorf("expected the burst to coalesce into one frame request, got %d", frames)
	}
	c.coal.Tick()
	if len(c.Rendered()) == 0 {
		t.Fatal("expected a render payload after the coalesced pass")
	}
	// The pass observed the latest viewport, not the first request's.
	lo, hi := c.renderedLo, c.renderedHi
	wantLo, wantHi := domainWindow(0, 4999, viewport.Range{Start: 30, End: 70})
	if lo != wantLo || hi != wantHi {
		t.Errorf("expected the pass to observe window [%f,%f], got [%f,%f]", wantLo, wantHi, lo, hi)
	}
}

func TestStopDropsPendingAndStartResumes(t *testing.T) {
	frames := 0
	c := New(func() { frames++ })
	c.SetData(testSeries(100))
	c.Stop()
	c.coal.Tick()
	if len(c.Rendered()) != 0 {
		t.Error("expected no payload after stop dropped the pending pass")
	}
	c.SetViewport(10, 90)
	if frames != 1 {
		t.Errorf("expected no frame requests while stopped, got %d", frames)
	}
	c.Start()
	c.coal.Tick()
	if len(c.Rendered()) == 0 {
		t.Error("expected a payload after restart")
	}
}

func TestRangeExtentsSkipNonFinite(t *testing.T) {
	c := New(func() {})
	s := series.NewSeries("gaps")
	s.Insert(series.Point{X: 0, Y: 3})
	s.Insert(series.Point{X: 1, Y: math.NaN()})
	s.Insert(series.Point{X: 2, Y: 9})
	s.Insert(series.Point{X: 3, Y: 1})
	c.SetData(s)
	c.coal.Tick()
	lo, hi := c.RangeExtents()
	if lo != 1 || hi != 9 {
		t.Errorf("expected y extents [1,9], got [%f,%f]", lo, hi)
	}
}
