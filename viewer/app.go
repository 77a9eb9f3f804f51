// Package viewer is the Gio user interface: the map surface, the basemap
// selector and the attribution overlay.
package viewer

import (
	"context"
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/olablt/gio-basemaps/catalog"
	"github.com/olablt/gio-basemaps/lifecycle"
	"github.com/olablt/gio-basemaps/logger"
	"github.com/olablt/gio-basemaps/render"
	"github.com/olablt/gio-basemaps/selector"
)

type loadResult struct {
	catalog *catalog.Catalog
	err     error
}

// App must be used from the window's event goroutine, except for the
// background catalog load it starts itself.
type App struct {
	src        catalog.Source
	ctl        *lifecycle.Controller
	target     *render.Target
	binding    *selector.Binding
	invalidate func()

	ctx      context.Context
	results  chan loadResult
	loading  bool
	loaded   bool
	loadErr  error
	disposed bool

	enum  widget.Enum
	retry widget.Clickable
}

// New returns an app that loads its catalog from src and mounts maps
// through ctl on target. invalidate wakes the window and may be nil.
func New(src catalog.Source, ctl *lifecycle.Controller, target *render.Target, invalidate func()) *App {
	return &App{
		src:        src,
		ctl:        ctl,
		target:     target,
		binding:    selector.New(ctl),
		invalidate: invalidate,
		ctx:        context.Background(),
		results:    make(chan loadResult, 1),
	}
}

// Start loads the catalog in the background. It does nothing while a load is
// in flight or once a catalog is loaded. After a failed load it starts a new
// one; the retry button shown in that state calls it.
func (a *App) Start(ctx context.Context) {
	if a.disposed || a.loading || a.loaded {
		return
	}
	a.ctx = ctx
	a.loading = true
	a.loadErr = nil
	go func() {
		c, err := catalog.Load(ctx, a.src)
		a.results <- loadResult{catalog: c, err: err}
		if a.invalidate != nil {
			a.invalidate()
		}
	}()
}

// Update applies a finished catalog load, if any. It reports whether the
// app changed.
func (a *App) Update() bool {
	select {
	case res := <-a.results:
		return a.handle(res)
	default:
		return false
	}
}

func (a *App) handle(res loadResult) bool {
	a.loading = false
	if a.disposed {
		logger.L().Debug("catalog_result_ignored", "reason", "disposed")
		return false
	}
	if res.err != nil {
		a.loadErr = res.err
		logger.L().Error("catalog_load_error", "source", a.src.String(), "err", res.err)
		return true
	}
	a.loaded = true
	a.binding.SetCatalog(a.ctx, res.catalog)
	a.enum.Value = a.binding.Selected()
	return true
}

// Loading reports whether a catalog load is in flight.
func (a *App) Loading() bool { return a.loading }

// Err returns the last catalog load error.
func (a *App) Err() error { return a.loadErr }

func (a *App) Binding() *selector.Binding { return a.binding }

// Dispose removes the map. A catalog load still in flight is ignored when
// it finishes.
func (a *App) Dispose() {
	if a.disposed {
		return
	}
	a.disposed = true
	a.ctl.Dispose()
}

func (a *App) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	a.Update()

	if a.retry.Clicked(gtx) {
		a.Start(a.ctx)
	}
	if a.enum.Update(gtx) {
		a.binding.Select(a.ctx, a.enum.Value)
	}
	// Selection failures leave the controller on the previous basemap.
	a.enum.Value = a.binding.Selected()

	return layout.Stack{}.Layout(gtx,
		layout.Stacked(func(gtx layout.Context) layout.Dimensions {
			return a.target.Layout(gtx, th)
		}),
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.NW.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return panel(gtx, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, func(gtx layout.Context) layout.Dimensions {
						return a.layoutSelector(gtx, th)
					})
				})
			})
		}),
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			text := a.binding.Attribution()
			if text == "" {
				return layout.Dimensions{}
			}
			return layout.SE.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return panel(gtx, color.NRGBA{R: 255, G: 255, B: 255, A: 180}, func(gtx layout.Context) layout.Dimensions {
					lbl := material.Caption(th, text)
					lbl.Color = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
					return lbl.Layout(gtx)
				})
			})
		}),
	)
}

func (a *App) layoutSelector(gtx layout.Context, th *material.Theme) layout.Dimensions {
	opts := a.binding.Options()
	if len(opts) == 0 {
		if a.loadErr != nil && !a.loading {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(material.Body2(th, "Basemaps unavailable").Layout),
				layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
				layout.Rigid(material.Button(th, &a.retry, "Retry").Layout),
			)
		}
		msg := "Loading basemaps…"
		if !a.loading {
			msg = "No basemaps"
		}
		return material.Body2(th, msg).Layout(gtx)
	}

	children := make([]layout.FlexChild, 0, len(opts))
	for _, o := range opts {
		children = append(children, layout.Rigid(material.RadioButton(th, &a.enum, o.ID, o.Name).Layout))
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

// panel draws w on a rounded background.
func panel(gtx layout.Context, bg color.NRGBA, w layout.Widget) layout.Dimensions {
	return layout.Background{}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			rr := gtx.Dp(unit.Dp(4))
			defer clip.UniformRRect(image.Rectangle{Max: gtx.Constraints.Min}, rr).Push(gtx.Ops).Pop()
			paint.Fill(gtx.Ops, bg)
			return layout.Dimensions{Size: gtx.Constraints.Min}
		},
		func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(5)).Layout(gtx, w)
		},
	)
}
