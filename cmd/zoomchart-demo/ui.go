package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"strconv"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"git.sr.ht/~whereswaldon/zoomchart"
	"git.sr.ht/~whereswaldon/zoomchart/data"
	"git.sr.ht/~whereswaldon/zoomchart/series"
	"git.sr.ht/~whereswaldon/zoomchart/viewport"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

var pauseIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.AVPause)
	return icon
}()

var playIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.AVPlayArrow)
	return icon
}()

func ceil[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Ceil(float64(a)))
}

func floor[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Floor(float64(a)))
}

// UI is responsible for holding the state of and drawing the top-level UI.
type UI struct {
	source *data.Source
	expl   *explorer.Explorer
	chart  *zoomchart.Chart
	th     *material.Theme

	sessions *stream.Stream[data.Session]
	session  data.Session
	current  *series.Series

	vp      viewport.Range
	loadErr string

	openBtn  widget.Clickable
	resetBtn widget.Clickable
	pauseBtn widget.Clickable
	paused   bool

	keyTable component.GridState
}

func NewUI(win *app.Window, controller *stream.Controller, source *data.Source, expl *explorer.Explorer, cfg Config) *UI {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	ui := &UI{
		source:   source,
		expl:     expl,
		th:       th,
		sessions: stream.New(controller, source.LatestSessionStream),
	}
	ui.chart = zoomchart.NewWithMinSpan(win.Invalidate, cfg.MinSpan)
	ui.chart.BaseThreshold = cfg.BaseThreshold
	mode, err := cfg.downsampleMode()
	if err != nil {
		log.Printf("config: %v", err)
	}
	ui.chart.Mode = mode
	ui.vp = ui.chart.Viewport()
	// The reset control reflects live viewport state through the change
	// notification rather than polling.
	ui.chart.OnViewportChange(func(r viewport.Range) {
		ui.vp = r
	})
	return ui
}

// Update the state of the UI and generate events. Must be called every
// frame prior to drawing.
func (ui *UI) Update(gtx C) {
	ui.sessions.ReadInto(gtx, &ui.session, data.Session{})
	if ui.session.Err != nil {
		ui.loadErr = ui.session.Err.Error()
	}
	if ui.session.Series != ui.current && ui.session.Series != nil {
		ui.current = ui.session.Series
		ui.chart.SetData(ui.current)
	}
	if ui.openBtn.Clicked(gtx) {
		if _, err := ui.source.LoadFromFile(ui.expl); err != nil {
			ui.loadErr = err.Error()
		}
	}
	if ui.resetBtn.Clicked(gtx) {
		ui.chart.SetViewport(viewport.Min, viewport.Max)
	}
	if ui.pauseBtn.Clicked(gtx) {
		ui.paused = !ui.paused
		if ui.paused {
			ui.chart.Stop()
		} else {
			ui.chart.Start()
		}
	}
}

// Layout the UI into the provided context.
func (ui *UI) Layout(gtx C) D {
	ui.Update(gtx)
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(ui.layoutToolbar),
		layout.Rigid(func(gtx C) D {
			if len(ui.loadErr) == 0 {
				return D{}
			}
			l := material.Body1(ui.th, ui.loadErr)
			l.Color = color.NRGBA{R: 150, A: 255}
			return l.Layout(gtx)
		}),
		layout.Flexed(1, func(gtx C) D {
			return ui.chart.Layout(gtx, ui.th)
		}),
		layout.Rigid(ui.layoutAxisLabels),
		layout.Rigid(ui.layoutKeyTable),
	)
}

// layoutKeyTable summarizes the loaded series below the chart: its
// name, total point count, how many points the current frame actually
// draws, and the visible y extents.
func (ui *UI) layoutKeyTable(gtx C) D {
	if ui.current == nil {
		return D{}
	}
	table := component.Table(ui.th, &ui.keyTable)
	table.HScrollbarStyle.Indicator.MinorWidth = 0
	table.HScrollbarStyle.Track.MinorPadding = 0
	table.VScrollbarStyle.Indicator.MinorWidth = 0
	table.VScrollbarStyle.Track.MinorPadding = 0
	statColWidth := gtx.Dp(90)
	nameColWidth := gtx.Constraints.Max.X - 4*statColWidth - gtx.Dp(table.VScrollbarStyle.Width())
	rowHeight := gtx.Sp(20)
	const (
		seriesNameCol = iota
		pointsCol
		drawnCol
		yMinCol
		yMaxCol
		numCols
	)
	heading := func(col int) material.LabelStyle {
		var l material.LabelStyle
		switch col {
		case seriesNameCol:
			l = material.Body1(ui.th, "Series")
		case pointsCol:
			l = material.Body1(ui.th, "Points")
		case drawnCol:
			l = material.Body1(ui.th, "Drawn")
		case yMinCol:
			l = material.Body1(ui.th, "Y Min")
		case yMaxCol:
			l = material.Body1(ui.th, "Y Max")
		}
		if col != seriesNameCol {
			l.Alignment = text.End
		}
		l.Color = ui.th.ContrastFg
		return l
	}
	cell := func(col int) material.LabelStyle {
		rangeMin, rangeMax := ui.chart.RangeExtents()
		var l material.LabelStyle
		switch col {
		case seriesNameCol:
			l = material.Body2(ui.th, ui.current.Name)
		case pointsCol:
			l = material.Body2(ui.th, strconv.Itoa(ui.current.Len()))
		case drawnCol:
			l = material.Body2(ui.th, strconv.Itoa(len(ui.chart.Rendered())))
		case yMinCol:
			l = material.Body2(ui.th, fmt.Sprintf("%.2f", rangeMin))
		case yMaxCol:
			l = material.Body2(ui.th, fmt.Sprintf("%.2f", rangeMax))
		}
		if col != seriesNameCol {
			l.Alignment = text.End
		}
		return l
	}
	return table.Layout(gtx, 1, numCols,
		func(axis layout.Axis, index, constraint int) int {
			if axis == layout.Vertical {
				return min(constraint, rowHeight)
			}
			if index == seriesNameCol {
				return min(nameColWidth, constraint)
			}
			return min(statColWidth, constraint)
		},
		func(gtx C, col int) D {
			return layout.Background{}.Layout(gtx,
				func(gtx C) D {
					paint.FillShape(gtx.Ops, ui.th.ContrastBg, clip.Rect{Max: gtx.Constraints.Max}.Op())
					return D{Size: gtx.Constraints.Min}
				},
				func(gtx C) D {
					return heading(col).Layout(gtx)
				},
			)
		},
		func(gtx C, row, col int) (dims D) {
			defer func() {
				dims.Size = gtx.Constraints.Constrain(dims.Size)
			}()
			return layout.UniformInset(2).Layout(gtx, func(gtx C) D {
				return cell(col).Layout(gtx)
			})
		},
	)
}

func (ui *UI) layoutToolbar(gtx C) D {
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return material.Button(ui.th, &ui.openBtn, "Open CSV").Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: 8}.Layout),
		layout.Rigid(func(gtx C) D {
			if ui.vp == (viewport.Range{Start: viewport.Min, End: viewport.Max}) {
				gtx = gtx.Disabled()
			}
			return material.Button(ui.th, &ui.resetBtn, "Reset View").Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Width: 8}.Layout),
		layout.Rigid(func(gtx C) D {
			icon := pauseIcon
			if ui.paused {
				icon = playIcon
			}
			return material.Clickable(gtx, &ui.pauseBtn, func(gtx C) D {
				side := gtx.Dp(24)
				gtx.Constraints = layout.Exact(image.Pt(side, side))
				return icon.Layout(gtx, ui.th.Fg)
			})
		}),
		layout.Flexed(1, func(gtx C) D {
			rangeMin, rangeMax := ui.chart.RangeExtents()
			l := material.Body2(ui.th, fmt.Sprintf("y in [%d, %d]", int(floor(rangeMin)), int(ceil(rangeMax))))
			l.Alignment = text.End
			l.MaxLines = 1
			return l.Layout(gtx)
		}),
	)
}

func (ui *UI) layoutAxisLabels(gtx C) D {
	minLabel := material.Body1(ui.th, strconv.FormatFloat(ui.vp.Start, 'f', 1, 64)+"%")
	maxLabel := material.Body1(ui.th, strconv.FormatFloat(ui.vp.End, 'f', 1, 64)+"%")
	spanLabel := material.Body2(ui.th, fmt.Sprintf("viewport spans %.1f%% of the domain", ui.vp.Span()))
	spanLabel.Alignment = text.Middle
	spanLabel.MaxLines = 1
	return layout.Flex{Alignment: layout.Baseline}.Layout(gtx,
		layout.Rigid(minLabel.Layout),
		layout.Flexed(1, spanLabel.Layout),
		layout.Rigid(maxLabel.Layout),
	)
}
