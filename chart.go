// Package zoomchart is an interactive Gio chart that stays responsive
// over data sets far larger than can be drawn point-for-point. It keeps
// a percent-space viewport over the data domain, drives it from pointer
// gestures and scroll wheels, and re-derives a bounded render payload
// from the backing series once per frame in which anything changed.
package zoomchart

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/gesture"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"git.sr.ht/~whereswaldon/zoomchart/frame"
	"git.sr.ht/~whereswaldon/zoomchart/series"
	"git.sr.ht/~whereswaldon/zoomchart/touch"
	"git.sr.ht/~whereswaldon/zoomchart/viewport"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

const (
	// DefaultBaseThreshold is the render point budget at full zoom-out.
	DefaultBaseThreshold = 500
	// minRenderTarget keeps at least the endpoints on screen.
	minRenderTarget = 2
	// maxRenderPoints caps the budget no matter how the other knobs are
	// configured; beyond this the renderer is the bottleneck, not us.
	maxRenderPoints = 5000
	// maxBudgetMultiplier caps how much zooming in can inflate the
	// budget relative to the base threshold.
	maxBudgetMultiplier = 10
)

// renderBudget derives the point budget for the current frame from the
// visible span. Narrow windows earn proportionally more points so zoomed
// detail doesn't degrade, bounded above by both the absolute cap and a
// multiple of the base threshold.
func renderBudget(base int, span float64) int {
	if base <= 0 {
		base = DefaultBaseThreshold
	}
	fraction := span / (viewport.Max - viewport.Min)
	limit := min(maxRenderPoints, base*maxBudgetMultiplier)
	// A non-positive fraction saturates the division, so it earns the
	// full cap rather than the base.
	budget := limit
	if fraction > 0 {
		budget = int(math.Round(float64(base) / fraction))
	}
	return min(max(budget, minRenderTarget), limit)
}

// Chart displays one series under an interactive viewport. All methods
// must be called from the window's frame goroutine; the pipeline relies
// on that cooperative scheduling instead of locks.
type Chart struct {
	// Mode selects the downsampling algorithm for the render payload.
	Mode series.Mode
	// BaseThreshold is the point budget at full zoom-out. Zero means
	// DefaultBaseThreshold.
	BaseThreshold int
	// Color strokes the data line.
	Color color.NRGBA

	data  *series.Series
	vp    *viewport.State
	rec   *touch.Recognizer
	coal  *frame.Coalescer
	cache *series.SortCache

	zoom   gesture.Scroll
	panBar widget.Scrollbar

	plotSize f32.Point

	rendered           []series.Point
	renderedLo         float64
	renderedHi         float64
	rangeMin, rangeMax float64
}

// New returns a Chart wired to the given invalidate function, which
// must request one future frame from the host window (a Gio window's
// Invalidate method). Passing nil is a wiring bug and panics.
func New(invalidate func()) *Chart {
	return NewWithMinSpan(invalidate, viewport.DefaultMinSpan)
}

// NewWithMinSpan is New with a custom narrowest viewport span in
// percent.
func NewWithMinSpan(invalidate func(), minSpan float64) *Chart {
	if invalidate == nil {
		panic("zoomchart: New requires an invalidate function")
	}
	c := &Chart{
		Mode:          series.LTTB,
		BaseThreshold: DefaultBaseThreshold,
		Color:         color.NRGBA{R: 0x2b, G: 0x7f, B: 0xa8, A: 0xff},
		vp:            viewport.NewWithMinSpan(minSpan),
		cache:         series.NewSortCache(),
	}
	c.rec = touch.NewRecognizer(c.vp, func() f32.Point { return c.plotSize })
	c.coal = frame.NewCoalescer(frame.SchedulerFunc(invalidate), c.recompute)
	c.vp.OnChange(func(viewport.Range) { c.coal.Request() })
	return c
}

// SetData replaces the backing series. The old series' sortedness
// verdict is forgotten so the cache only ever holds live series.
func (c *Chart) SetData(s *series.Series) {
	if c.data != nil {
		c.cache.Forget(c.data)
	}
	c.data = s
	c.coal.Request()
}

// DataChanged signals that the current series was mutated in place (for
// example by a streaming append). Its cached sortedness verdict is
// dropped and a recomputation is coalesced into the next frame.
func (c *Chart) DataChanged() {
	if c.data != nil {
		c.cache.Forget(c.data)
	}
	c.coal.Request()
}

// Viewport returns a snapshot of the visible window in percent space.
func (c *Chart) Viewport() viewport.Range {
	return c.vp.Range()
}

// SetViewport moves the visible window, subject to the viewport's
// clamping rules. Used by external controls such as a reset button.
func (c *Chart) SetViewport(start, end float64) {
	c.vp.SetRange(start, end)
}

// OnViewportChange registers fn to observe live viewport changes. The
// returned function unsubscribes it.
func (c *Chart) OnViewportChange(fn func(viewport.Range)) (unsubscribe func()) {
	return c.vp.OnChange(fn)
}

// Stop drops any pending recomputation and ignores further change
// notifications until Start.
func (c *Chart) Stop() {
	c.coal.Stop()
	c.rec.Reset()
}

// Start re-enables a stopped chart and schedules a recomputation.
func (c *Chart) Start() {
	c.coal.Start()
	c.coal.Request()
}

// SliceAndDownsample maps the viewport into domain units, slices the
// visible portion of s, and reduces it to at most budget points. This
// is the single entry point a renderer needs per coalesced frame; it
// never mutates s. Invalid input (nil series, negative budget,
// non-finite viewport) yields nil rather than an error, and degenerate
// data (empty series, zero-width domain) yields an empty payload.
func (c *Chart) SliceAndDownsample(s *series.Series, vp viewport.Range, budget int, mode series.Mode) []series.Point {
	if s == nil || budget < 0 {
		return nil
	}
	if math.IsNaN(vp.Start) || math.IsNaN(vp.End) || math.IsInf(vp.Start, 0) || math.IsInf(vp.End, 0) {
		return nil
	}
	dMin, dMax, ok := s.Domain()
	if !ok {
		return nil
	}
	lo, hi := domainWindow(dMin, dMax, vp)
	view := c.cache.Visible(s, lo, hi)
	return series.Downsample(view.Points(s), budget, mode)
}

// domainWindow converts a percent-space viewport into domain units.
func domainWindow(dMin, dMax float64, vp viewport.Range) (lo, hi float64) {
	width := dMax - dMin
	lo = dMin + width*(vp.Start-viewport.Min)/(viewport.Max-viewport.Min)
	hi = dMin + width*(vp.End-viewport.Min)/(viewport.Max-viewport.Min)
	return lo, hi
}

// recompute is the coalesced per-frame pass: it observes the latest
// viewport state at the moment it runs, never a snapshot from when the
// request was issued.
func (c *Chart) recompute() {
	if c.data == nil {
		c.rendered = nil
		return
	}
	rng := c.vp.Range()
	budget := renderBudget(c.BaseThreshold, rng.Span())
	c.rendered = c.SliceAndDownsample(c.data, rng, budget, c.Mode)
	if dMin, dMax, ok := c.data.Domain(); ok {
		c.renderedLo, c.renderedHi = domainWindow(dMin, dMax, rng)
	}
	c.rangeMin, c.rangeMax = 0, 0
	first := true
	for _, p := range c.rendered {
		if math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			continue
		}
		if first {
			c.rangeMin, c.rangeMax = p.Y, p.Y
			first = false
			continue
		}
		c.rangeMin = min(c.rangeMin, p.Y)
		c.rangeMax = max(c.rangeMax, p.Y)
	}
}

// Rendered returns the current bounded render payload. The slice is
// owned by the chart and only valid until the next recomputation.
func (c *Chart) Rendered() []series.Point {
	return c.rendered
}

// RangeExtents returns the y extents of the current render payload.
func (c *Chart) RangeExtents() (min, max float64) {
	return c.rangeMin, c.rangeMax
}

// Update processes input and runs any coalesced recomputation. It must
// be called once per frame before drawing; Layout calls it itself.
func (c *Chart) Update(gtx C) {
	c.plotSize = f32.Pt(float32(gtx.Constraints.Max.X), float32(gtx.Constraints.Max.Y))
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: c,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel,
		})
		if !ok {
			break
		}
		if ev, ok := ev.(pointer.Event); ok {
			c.rec.Queue(ev)
		}
	}
	if dist := c.zoom.Update(gtx.Metric, gtx.Source, gtx.Now, gesture.Vertical, image.Rect(0, -1e6, 0, 1e6)); dist != 0 {
		rng := c.vp.Range()
		center := rng.Start + rng.Span()/2
		proportion := 1 + math.Abs(float64(dist))/float64(max(gtx.Constraints.Max.Y, 1))
		if dist < 0 {
			c.vp.ZoomIn(center, proportion)
		} else {
			c.vp.ZoomOut(center, proportion)
		}
	}
	if panDist := c.panBar.ScrollDistance(); panDist != 0 {
		c.vp.Pan(float64(panDist) * (viewport.Max - viewport.Min))
	}
	c.coal.Tick()
}

// Layout draws the chart into the available space: the downsampled data
// line over the plot area with a pan scrollbar along the bottom edge
// reflecting the viewport.
func (c *Chart) Layout(gtx C, th *material.Theme) D {
	c.Update(gtx)
	return layout.Stack{Alignment: layout.S}.Layout(gtx,
		layout.Stacked(func(gtx C) D {
			defer clip.Rect{Max: gtx.Constraints.Max}.Push(gtx.Ops).Pop()
			c.zoom.Add(gtx.Ops)
			event.Op(gtx.Ops, c)
			c.layoutLine(gtx)
			return D{Size: gtx.Constraints.Max}
		}),
		layout.Expanded(func(gtx C) D {
			rng := c.vp.Range()
			scrollbar := material.Scrollbar(th, &c.panBar)
			scrollbar.Track.MajorPadding = 0
			scrollbar.Track.MinorPadding = 0
			scrollbar.Indicator.CornerRadius = 0
			scrollbar.Indicator.Color.A = 100
			vpStart := float32((rng.Start - viewport.Min) / (viewport.Max - viewport.Min))
			vpEnd := float32((rng.End - viewport.Min) / (viewport.Max - viewport.Min))
			return scrollbar.Layout(gtx, layout.Horizontal, vpStart, vpEnd)
		}),
	)
}

// layoutLine strokes the rendered payload as a polyline. Points with
// non-finite coordinates split the line rather than being bridged.
func (c *Chart) layoutLine(gtx C) {
	if len(c.rendered) == 0 {
		return
	}
	maxX := float32(gtx.Constraints.Max.X)
	maxY := float32(gtx.Constraints.Max.Y)
	domainInterval := c.renderedHi - c.renderedLo
	if domainInterval == 0 {
		domainInterval = 1
	}
	rangeInterval := c.rangeMax - c.rangeMin
	if rangeInterval == 0 {
		rangeInterval = 1
	}

	var p clip.Path
	p.Begin(gtx.Ops)
	pen := false
	for _, pt := range c.rendered {
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsInf(pt.X, 0) || math.IsInf(pt.Y, 0) {
			pen = false
			continue
		}
		x := float32((pt.X-c.renderedLo)/domainInterval) * maxX
		y := maxY - float32((pt.Y-c.rangeMin)/rangeInterval)*maxY
		if !pen {
			p.MoveTo(f32.Pt(x, y))
			pen = true
		} else {
			p.LineTo(f32.Pt(x, y))
		}
	}
	paint.FillShape(gtx.Ops, c.Color, clip.Stroke{
		Width: float32(gtx.Dp(1)),
		Path:  p.End(),
	}.Op())
}
