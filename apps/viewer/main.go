package main

import (
	"context"
	"net/http"
	"os"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/olablt/gio-basemaps/catalog"
	"github.com/olablt/gio-basemaps/config"
	"github.com/olablt/gio-basemaps/diag"
	"github.com/olablt/gio-basemaps/lifecycle"
	"github.com/olablt/gio-basemaps/logger"
	"github.com/olablt/gio-basemaps/render"
	"github.com/olablt/gio-basemaps/tiles"
	"github.com/olablt/gio-basemaps/viewer"
)

func main() {
	config.LoadDotenv()
	l := logger.Setup()
	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}

	src := catalogSource(cfg)
	l.Info("catalog_source", "source", src.String())

	go func() {
		w := new(app.Window)
		w.Option(
			app.Title("Basemaps"),
			app.Size(unit.Dp(1024), unit.Dp(768)),
		)
		if err := run(w, cfg, src); err != nil {
			l.Error("window_error", "err", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

func catalogSource(cfg config.Config) catalog.Source {
	l := logger.L()
	if cfg.CatalogRedisKey != "" {
		rc := catalog.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(context.Background()).Err(); err != nil {
			l.Error("redis_ping_error", "addr", cfg.RedisAddr, "err", err)
		} else {
			l.Info("redis_ping_ok", "addr", cfg.RedisAddr)
		}
		return catalog.NewRedisSource(rc, cfg.CatalogRedisKey)
	}
	if cfg.CatalogIsRemote() {
		return catalog.NewHTTPSource(cfg.CatalogURL, &http.Client{Timeout: cfg.FetchTimeout})
	}
	return catalog.FileSource{Path: cfg.CatalogURL}
}

func run(w *app.Window, cfg config.Config, src catalog.Source) error {
	l := logger.L()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))

	target := render.NewTarget(w.Invalidate)
	engine := render.NewGioEngine(render.EngineOptions{
		UserAgent:    cfg.UserAgent,
		TileWorkers:  cfg.TileWorkers,
		TileCache:    cfg.TileCacheSize,
		FetchTimeout: cfg.FetchTimeout,
	})
	view := render.View{
		Center:  tiles.LatLng{Lat: cfg.CenterLat, Lng: cfg.CenterLng},
		Zoom:    cfg.Zoom,
		MinZoom: cfg.MinZoom,
		MaxZoom: cfg.MaxZoom,
	}
	ctl := lifecycle.New(engine, target, view,
		lifecycle.WithLogger(l),
		lifecycle.WithErrorHandler(func(err error) {
			l.Warn("basemap_unavailable", "err", err)
		}),
	)

	if cfg.DiagAddr != "" {
		srv := diag.NewServer(cfg.DiagAddr, ctl, l)
		srv.Start()
		defer srv.Close()
	}

	a := viewer.New(src, ctl, target, w.Invalidate)
	defer a.Dispose()
	a.Start(ctx)

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			a.Layout(gtx, th)
			e.Frame(gtx.Ops)
		}
	}
}
