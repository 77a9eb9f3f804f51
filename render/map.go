package render

import (
	"sync"

	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/olablt/gio-basemaps/mapview"
	"github.com/olablt/gio-basemaps/tiles"
)

type placedControl struct {
	c   Control
	pos Position
}

// Map is the Gio renderer: a tile map view plus its controls.
type Map struct {
	target *Target
	view   *mapview.MapView
	tiles  *tiles.Manager
	plan   Plan

	mu       sync.Mutex
	controls []placedControl
	removed  bool
}

func newMap(target *Target, primary, fallback tiles.Provider, plan Plan, v View, opts tiles.ManagerOptions) *Map {
	mgr := tiles.NewManager(primary, fallback, opts)
	mgr.SetOnLoadCallback(target.Invalidate)
	return &Map{
		target: target,
		view:   mapview.New(mgr, v.Center, v.Zoom, v.MinZoom, v.MaxZoom),
		tiles:  mgr,
		plan:   plan,
	}
}

func (m *Map) AddControl(c Control, pos Position) {
	m.mu.Lock()
	if m.removed {
		m.mu.Unlock()
		return
	}
	m.controls = append(m.controls, placedControl{c: c, pos: pos})
	m.mu.Unlock()
	c.OnAdd(m)
	m.target.Invalidate()
}

// Controls returns the number of attached controls.
func (m *Map) Controls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.controls)
}

func (m *Map) ZoomIn() {
	m.view.ZoomIn()
	m.target.Invalidate()
}

func (m *Map) ZoomOut() {
	m.view.ZoomOut()
	m.target.Invalidate()
}

// Zoom returns the current zoom level.
func (m *Map) Zoom() int { return m.view.Zoom }

// Plan returns what the renderer was built from.
func (m *Map) Plan() Plan { return m.plan }

func (m *Map) Removed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removed
}

func (m *Map) Remove() {
	m.mu.Lock()
	if m.removed {
		m.mu.Unlock()
		return
	}
	m.removed = true
	m.controls = nil
	m.mu.Unlock()

	m.target.Detach(m)
	m.tiles.Close()
}

func (m *Map) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	m.mu.Lock()
	controls := append([]placedControl(nil), m.controls...)
	m.mu.Unlock()

	children := []layout.StackChild{
		layout.Stacked(m.view.Layout),
	}
	for _, pc := range controls {
		children = append(children, layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return pc.pos.direction().Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return pc.c.Layout(gtx, th)
				})
			})
		}))
	}
	return layout.Stack{}.Layout(gtx, children...)
}
