package render

import (
	"errors"
	"image/color"
	"sync"

	"gioui.org/layout"
	"gioui.org/op/paint"
	"gioui.org/widget/material"
)

// ErrTargetOccupied is returned when a renderer is attached to a target
// that still holds another one.
var ErrTargetOccupied = errors.New("render: mount target already holds a renderer")

// Widget is anything the target can draw.
type Widget interface {
	Layout(gtx layout.Context, th *material.Theme) layout.Dimensions
}

// Target is the single surface the map is mounted on. It holds at most one
// widget at a time.
type Target struct {
	mu         sync.Mutex
	w          Widget
	invalidate func()
}

// NewTarget returns an empty target. invalidate is called whenever the
// target's content changes and may be nil.
func NewTarget(invalidate func()) *Target {
	return &Target{invalidate: invalidate}
}

// Attach mounts w. It fails with ErrTargetOccupied if another widget is
// mounted.
func (t *Target) Attach(w Widget) error {
	t.mu.Lock()
	if t.w != nil {
		t.mu.Unlock()
		return ErrTargetOccupied
	}
	t.w = w
	t.mu.Unlock()
	t.Invalidate()
	return nil
}

// Detach unmounts w if it is the mounted widget.
func (t *Target) Detach(w Widget) bool {
	t.mu.Lock()
	if t.w != w {
		t.mu.Unlock()
		return false
	}
	t.w = nil
	t.mu.Unlock()
	t.Invalidate()
	return true
}

func (t *Target) Occupied() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w != nil
}

// Invalidate asks the window for a new frame.
func (t *Target) Invalidate() {
	if t.invalidate != nil {
		t.invalidate()
	}
}

// Layout draws the mounted widget, or an empty surface.
func (t *Target) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	t.mu.Lock()
	w := t.w
	t.mu.Unlock()

	if w == nil {
		paint.Fill(gtx.Ops, color.NRGBA{R: 0xf4, G: 0xf4, B: 0xf4, A: 0xff})
		return layout.Dimensions{Size: gtx.Constraints.Max}
	}
	return w.Layout(gtx, th)
}
