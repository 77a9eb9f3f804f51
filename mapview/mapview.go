// Package mapview is a pannable, zoomable slippy map widget.
package mapview

import (
	"image"
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/olablt/gio-basemaps/tiles"
)

var background = color.NRGBA{R: 0xe8, G: 0xe8, B: 0xe8, A: 0xff}

type MapView struct {
	Tiles   *tiles.Manager
	Center  tiles.LatLng
	Zoom    int
	MinZoom int
	MaxZoom int

	size         image.Point
	visibleTiles []tiles.Tile
	dragging     bool
	lastDragPos  f32.Point
}

// New returns a map view over m at the given initial view.
func New(m *tiles.Manager, center tiles.LatLng, zoom, minZoom, maxZoom int) *MapView {
	mv := &MapView{
		Tiles:   m,
		Center:  center.Clamp(),
		MinZoom: minZoom,
		MaxZoom: maxZoom,
	}
	mv.Zoom = mv.clampZoom(zoom)
	return mv
}

func (mv *MapView) Layout(gtx layout.Context) layout.Dimensions {
	tag := mv

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  tag,
			Kinds:   pointer.Scroll | pointer.Drag | pointer.Press | pointer.Release | pointer.Cancel,
			ScrollY: pointer.ScrollRange{Min: -10, Max: 10},
		})
		if !ok {
			break
		}
		x, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch x.Kind {
		case pointer.Press:
			mv.dragging = true
			mv.lastDragPos = x.Position
		case pointer.Drag:
			if mv.dragging {
				mv.Pan(x.Position.Sub(mv.lastDragPos))
				mv.lastDragPos = x.Position
			}
		case pointer.Scroll:
			switch {
			case x.Scroll.Y < 0:
				mv.zoomAround(mv.Zoom+1, x.Position)
			case x.Scroll.Y > 0:
				mv.zoomAround(mv.Zoom-1, x.Position)
			}
		case pointer.Release, pointer.Cancel:
			mv.dragging = false
		}
	}

	if mv.size != gtx.Constraints.Max {
		mv.size = gtx.Constraints.Max
		mv.updateVisibleTiles()
	}

	defer clip.Rect{Max: mv.size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, tag)
	paint.Fill(gtx.Ops, background)

	centerWorldPx, centerWorldPy := tiles.CalculateWorldCoordinates(mv.Center, float64(mv.Zoom))
	screenCenterX := mv.size.X >> 1
	screenCenterY := mv.size.Y >> 1

	for _, tile := range mv.visibleTiles {
		imageOp, _ := mv.Tiles.Tile(tile)
		if imageOp.Size() == (image.Point{}) {
			continue
		}

		finalX := screenCenterX + int(math.Round(float64(tile.X*tiles.TileSize)-centerWorldPx))
		finalY := screenCenterY + int(math.Round(float64(tile.Y*tiles.TileSize)-centerWorldPy))

		transform := op.Offset(image.Point{X: finalX, Y: finalY}).Push(gtx.Ops)
		// 512px sources are drawn at the 256px grid.
		if sz := imageOp.Size(); sz.X != tiles.TileSize {
			s := float32(tiles.TileSize) / float32(sz.X)
			scale := op.Affine(f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(s, s))).Push(gtx.Ops)
			imageOp.Add(gtx.Ops)
			paint.PaintOp{}.Add(gtx.Ops)
			scale.Pop()
		} else {
			imageOp.Add(gtx.Ops)
			paint.PaintOp{}.Add(gtx.Ops)
		}
		transform.Pop()
	}

	return layout.Dimensions{Size: mv.size}
}

// Pan moves the map by a screen delta in pixels.
func (mv *MapView) Pan(delta f32.Point) {
	if delta == (f32.Point{}) {
		return
	}
	wx, wy := tiles.CalculateWorldCoordinates(mv.Center, float64(mv.Zoom))
	wx -= float64(delta.X)
	wy -= float64(delta.Y)
	mv.Center = tiles.WorldToLatLng(wx, wy, float64(mv.Zoom)).Clamp()
	mv.updateVisibleTiles()
}

func (mv *MapView) ZoomIn()  { mv.SetZoom(mv.Zoom + 1) }
func (mv *MapView) ZoomOut() { mv.SetZoom(mv.Zoom - 1) }

// SetZoom changes the zoom level keeping the center fixed.
func (mv *MapView) SetZoom(z int) {
	mv.Zoom = mv.clampZoom(z)
	mv.updateVisibleTiles()
}

// zoomAround changes the zoom level keeping the point under the cursor fixed.
func (mv *MapView) zoomAround(newZoom int, cursor f32.Point) {
	oldZoom := mv.Zoom
	newZoom = mv.clampZoom(newZoom)
	if newZoom == oldZoom {
		return
	}

	offX := float64(cursor.X) - float64(mv.size.X>>1)
	offY := float64(cursor.Y) - float64(mv.size.Y>>1)

	worldX, worldY := tiles.CalculateWorldCoordinates(mv.Center, float64(oldZoom))
	factor := math.Pow(2, float64(newZoom-oldZoom))
	newCenterX := (worldX+offX)*factor - offX
	newCenterY := (worldY+offY)*factor - offY

	mv.Zoom = newZoom
	mv.Center = tiles.WorldToLatLng(newCenterX, newCenterY, float64(newZoom)).Clamp()
	mv.updateVisibleTiles()
}

func (mv *MapView) clampZoom(z int) int {
	return max(mv.MinZoom, min(z, mv.MaxZoom))
}

func (mv *MapView) updateVisibleTiles() {
	mv.visibleTiles = tiles.CalculateVisibleTiles(mv.Center, mv.Zoom, mv.size)
}
