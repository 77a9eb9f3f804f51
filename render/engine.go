// Package render mounts basemap styles on a Gio surface.
package render

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/olablt/gio-basemaps/logger"
	"github.com/olablt/gio-basemaps/style"
	"github.com/olablt/gio-basemaps/tiles"
)

// View is the initial camera of a new renderer.
type View struct {
	Center  tiles.LatLng
	Zoom    int
	MinZoom int
	MaxZoom int
}

// Renderer is one live map instance.
type Renderer interface {
	AddControl(c Control, pos Position)
	// Remove releases everything the renderer holds and detaches it from
	// its target. Calling it again is a no-op.
	Remove()
}

// Plan is a style reduced to what the tile renderer draws.
type Plan struct {
	Style       style.Style
	Tiles       []string
	TileSize    int
	Attribution string
	// Note labels placeholder tiles when the style has no raster source.
	Note string
}

// Engine builds renderers. Prepare does all fallible work that does not
// touch the target, New mounts the result.
type Engine interface {
	Prepare(ctx context.Context, s style.Style) (Plan, error)
	New(target *Target, plan Plan, view View) (Renderer, error)
}

type EngineOptions struct {
	Client       *http.Client
	UserAgent    string
	TileWorkers  int
	TileCache    int
	FetchTimeout time.Duration
}

// GioEngine draws raster tiles with mapview.
type GioEngine struct {
	opts EngineOptions
}

func NewGioEngine(opts EngineOptions) *GioEngine {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.FetchTimeout}
	}
	if opts.TileWorkers <= 0 {
		opts.TileWorkers = 4
	}
	if opts.TileCache <= 0 {
		opts.TileCache = 256
	}
	return &GioEngine{opts: opts}
}

func (e *GioEngine) Prepare(ctx context.Context, s style.Style) (Plan, error) {
	if !s.IsRef() {
		return planFromSpec(s, s.Spec, nil, nil)
	}
	ctx, cancel := context.WithTimeout(ctx, e.opts.FetchTimeout)
	defer cancel()
	return e.planFromRef(ctx, s)
}

func (e *GioEngine) New(target *Target, plan Plan, view View) (Renderer, error) {
	if target == nil {
		return nil, fmt.Errorf("render: nil target")
	}
	if target.Occupied() {
		return nil, ErrTargetOccupied
	}

	var primary tiles.Provider
	fallback := tiles.NewPlaceholderProvider()
	if len(plan.Tiles) > 0 {
		primary = tiles.NewURLProvider(plan.Tiles[0], e.opts.UserAgent, e.opts.Client)
	} else {
		fallback.Label = plan.Note
		primary = fallback
	}

	m := newMap(target, primary, fallback, plan, view, tiles.ManagerOptions{
		Workers:   e.opts.TileWorkers,
		CacheSize: e.opts.TileCache,
	})
	if err := target.Attach(m); err != nil {
		m.tiles.Close()
		return nil, err
	}
	logger.L().Debug("renderer_new", "style", plan.Style.String(), "tiles", len(plan.Tiles), "zoom", view.Zoom)
	return m, nil
}
