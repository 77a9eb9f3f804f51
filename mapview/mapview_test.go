package mapview

import (
	"math"
	"testing"

	"gioui.org/f32"

	"github.com/olablt/gio-basemaps/tiles"
)

func TestNewClampsZoom(t *testing.T) {
	mv := New(nil, tiles.LatLng{Lat: 38.2682, Lng: 140.8694}, 30, 1, 19)
	if mv.Zoom != 19 {
		t.Errorf("Expected zoom clamped to 19, got %d", mv.Zoom)
	}
	mv.SetZoom(-3)
	if mv.Zoom != 1 {
		t.Errorf("Expected zoom clamped to 1, got %d", mv.Zoom)
	}
	mv.ZoomIn()
	mv.ZoomIn()
	mv.ZoomOut()
	if mv.Zoom != 2 {
		t.Errorf("Expected zoom 2, got %d", mv.Zoom)
	}
}

func TestPanMovesCenterOppositeToDrag(t *testing.T) {
	start := tiles.LatLng{Lat: 38.2682, Lng: 140.8694}
	mv := New(nil, start, 12, 1, 19)

	// Dragging right and down reveals what lies west and north.
	mv.Pan(f32.Point{X: 256, Y: 256})
	if mv.Center.Lng >= start.Lng || mv.Center.Lat <= start.Lat {
		t.Errorf("Unexpected center after pan: %+v", mv.Center)
	}

	mv.Pan(f32.Point{X: -256, Y: -256})
	if math.Abs(mv.Center.Lat-start.Lat) > 1e-9 || math.Abs(mv.Center.Lng-start.Lng) > 1e-9 {
		t.Errorf("Expected pan to be reversible, got %+v", mv.Center)
	}
}

func TestZoomAroundCenterKeepsCenter(t *testing.T) {
	start := tiles.LatLng{Lat: 38.2682, Lng: 140.8694}
	mv := New(nil, start, 12, 1, 19)
	mv.size.X, mv.size.Y = 800, 600

	mv.zoomAround(13, f32.Point{X: 400, Y: 300})
	if mv.Zoom != 13 {
		t.Fatalf("Expected zoom 13, got %d", mv.Zoom)
	}
	if math.Abs(mv.Center.Lat-start.Lat) > 1e-9 || math.Abs(mv.Center.Lng-start.Lng) > 1e-9 {
		t.Errorf("Zooming at the screen center moved the map: %+v", mv.Center)
	}
}
