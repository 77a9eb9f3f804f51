package render

import (
	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

// Position places a control in a corner of the map.
type Position string

const (
	TopLeft     Position = "top-left"
	TopRight    Position = "top-right"
	BottomLeft  Position = "bottom-left"
	BottomRight Position = "bottom-right"
)

func (p Position) direction() layout.Direction {
	switch p {
	case TopLeft:
		return layout.NW
	case BottomLeft:
		return layout.SW
	case BottomRight:
		return layout.SE
	default:
		return layout.NE
	}
}

// Control is an auxiliary widget drawn over the map.
type Control interface {
	// OnAdd is called once when the control is added to m.
	OnAdd(m *Map)
	Layout(gtx layout.Context, th *material.Theme) layout.Dimensions
}

// NavigationControl shows zoom in and zoom out buttons.
type NavigationControl struct {
	zoomIn  widget.Clickable
	zoomOut widget.Clickable
	m       *Map
}

func NewNavigationControl() *NavigationControl {
	return &NavigationControl{}
}

func (c *NavigationControl) OnAdd(m *Map) { c.m = m }

func (c *NavigationControl) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	for c.zoomIn.Clicked(gtx) {
		if c.m != nil {
			c.m.ZoomIn()
		}
	}
	for c.zoomOut.Clicked(gtx) {
		if c.m != nil {
			c.m.ZoomOut()
		}
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(material.Button(th, &c.zoomIn, "+").Layout),
		layout.Rigid(layout.Spacer{Height: unit.Dp(4)}.Layout),
		layout.Rigid(material.Button(th, &c.zoomOut, "−").Layout),
	)
}
