// Package lifecycle owns the live map renderer. Every change of basemap
// removes the current renderer and builds a new one; at no point are two
// renderers alive.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/olablt/gio-basemaps/logger"
	"github.com/olablt/gio-basemaps/metrics"
	"github.com/olablt/gio-basemaps/render"
	"github.com/olablt/gio-basemaps/style"
)

// ActiveState is what should currently be on screen.
type ActiveState struct {
	ID          string
	Style       style.Style
	Attribution string
}

func (s ActiveState) Equal(o ActiveState) bool {
	return s.ID == o.ID && s.Attribution == o.Attribution && s.Style.Equal(o.Style)
}

type Phase int

const (
	Uninitialized Phase = iota
	Mounted
	TornDown
)

func (p Phase) String() string {
	switch p {
	case Mounted:
		return "mounted"
	case TornDown:
		return "torn_down"
	default:
		return "uninitialized"
	}
}

// ConstructionError is reported when a renderer cannot be built for a
// state. Stage is "prepare" (nothing was torn down) or "construct" (the
// previous renderer was already removed).
type ConstructionError struct {
	ID    string
	Stage string
	Err   error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("renderer %s for %q: %v", e.Stage, e.ID, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// Controller drives the renderer from SetActiveState. Calls are serialized;
// the read accessors do not wait for a style that is being prepared.
type Controller struct {
	engine   render.Engine
	target   *render.Target
	view     render.View
	controls func() render.Control
	onError  func(error)
	log      *slog.Logger

	// applyMu serializes SetActiveState; mu guards the fields below and is
	// not held while a style is prepared.
	applyMu sync.Mutex
	mu      sync.Mutex
	phase   Phase
	state   *ActiveState
	handle  render.Renderer
	err     error
}

type Option func(*Controller)

// WithErrorHandler receives every renderer construction error.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Controller) { c.onError = fn }
}

// WithNavigationControl replaces the control attached to each new renderer.
func WithNavigationControl(fn func() render.Control) Option {
	return func(c *Controller) { c.controls = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// New returns a controller that mounts renderers built by engine on target
// with the given initial view.
func New(engine render.Engine, target *render.Target, view render.View, opts ...Option) *Controller {
	c := &Controller{
		engine:   engine,
		target:   target,
		view:     view,
		controls: func() render.Control { return render.NewNavigationControl() },
		log:      logger.L(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetActiveState makes st the rendered state. An equal state while mounted
// is a no-op. Otherwise the style is prepared first; if that fails the
// current renderer stays. Then the current renderer is removed and a new one
// is constructed and mounted. Errors go to the error handler.
func (c *Controller) SetActiveState(ctx context.Context, st ActiveState) {
	if err := c.apply(ctx, st); err != nil && c.onError != nil {
		c.onError(err)
	}
}

func (c *Controller) apply(ctx context.Context, st ActiveState) error {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	c.mu.Lock()
	if c.skip(st) {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	// Prepare may fetch over the network; readers such as Snapshot must not
	// wait for it.
	plan, err := c.engine.Prepare(ctx, st.Style)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		return c.fail(&ConstructionError{ID: st.ID, Stage: "prepare", Err: err})
	}
	if c.phase == TornDown {
		c.log.Debug("renderer_disposed_during_prepare", "id", st.ID)
		return nil
	}

	c.teardown()

	r, err := c.engine.New(c.target, plan, c.view)
	if err != nil {
		return c.fail(&ConstructionError{ID: st.ID, Stage: "construct", Err: err})
	}
	r.AddControl(c.controls(), render.TopRight)

	c.handle = r
	c.state = &st
	c.phase = Mounted
	c.err = nil
	metrics.RendererMountsTotal.Inc()
	metrics.RendererLive.Set(1)
	c.log.Info("renderer_mount_ok", "id", st.ID, "style", st.Style.String())
	return nil
}

// skip reports whether st needs no work. c.mu is held.
func (c *Controller) skip(st ActiveState) bool {
	if c.phase == TornDown {
		c.log.Debug("renderer_set_after_dispose", "id", st.ID)
		return true
	}
	if c.phase == Mounted && c.state != nil && c.state.Equal(st) {
		c.log.Debug("renderer_state_unchanged", "id", st.ID)
		return true
	}
	return false
}

// teardown removes the live renderer and clears the handle. c.mu is held.
func (c *Controller) teardown() {
	if c.handle == nil {
		return
	}
	c.handle.Remove()
	c.handle = nil
	c.state = nil
	c.phase = Uninitialized
	metrics.RendererTeardownsTotal.Inc()
	metrics.RendererLive.Set(0)
}

func (c *Controller) fail(err *ConstructionError) error {
	c.err = err
	metrics.RendererErrorsTotal.WithLabelValues(err.Stage).Inc()
	c.log.Error("renderer_error", "id", err.ID, "stage", err.Stage, "err", err.Err)
	return err
}

// Dispose removes the live renderer. The controller ignores later states.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == TornDown {
		return
	}
	c.teardown()
	c.phase = TornDown
	c.log.Debug("renderer_disposed")
}

// ActiveID returns the id of the mounted state, or "".
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return ""
	}
	return c.state.ID
}

// Attribution returns the attribution of the mounted state.
func (c *Controller) Attribution() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return ""
	}
	return c.state.Attribution
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Err returns the last construction error, cleared by a successful mount.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Snapshot is a read-only view of the controller for diagnostics.
type Snapshot struct {
	Phase       string       `json:"phase"`
	ID          string       `json:"id,omitempty"`
	Attribution string       `json:"attribution,omitempty"`
	Style       *style.Style `json:"style,omitempty"`
	Error       string       `json:"error,omitempty"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{Phase: c.phase.String()}
	if c.state != nil {
		st := c.state.Style
		s.ID = c.state.ID
		s.Attribution = c.state.Attribution
		s.Style = &st
	}
	if c.err != nil {
		s.Error = c.err.Error()
	}
	return s
}
