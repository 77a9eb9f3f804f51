package render

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/olablt/gio-basemaps/logger"
	"github.com/olablt/gio-basemaps/style"
)

const maxStyleSize = 8 << 20

// tileJSON is the subset of a TileJSON document a raster source may point
// at through its url field.
type tileJSON struct {
	Tiles       []string `json:"tiles"`
	Attribution string   `json:"attribution"`
	TileSize    int      `json:"tileSize"`
}

func (e *GioEngine) planFromRef(ctx context.Context, s style.Style) (Plan, error) {
	base, err := url.Parse(s.Ref)
	if err != nil {
		return Plan{}, fmt.Errorf("style reference %q: %w", s.Ref, err)
	}

	var spec style.Spec
	if err := e.getJSON(ctx, s.Ref, &spec); err != nil {
		return Plan{}, fmt.Errorf("fetch style %s: %w", s.Ref, err)
	}
	if spec.Version != style.Version {
		return Plan{}, fmt.Errorf("style %s: unsupported version %d", s.Ref, spec.Version)
	}

	return planFromSpec(s, &spec, func(src style.Source) (style.Source, error) {
		if len(src.Tiles) > 0 || src.URL == "" {
			return src, nil
		}
		ref, err := base.Parse(src.URL)
		if err != nil {
			return src, err
		}
		var tj tileJSON
		if err := e.getJSON(ctx, ref.String(), &tj); err != nil {
			return src, fmt.Errorf("fetch tilejson %s: %w", ref, err)
		}
		src.Tiles = tj.Tiles
		if src.Attribution == "" {
			src.Attribution = tj.Attribution
		}
		if src.TileSize == 0 {
			src.TileSize = tj.TileSize
		}
		return src, nil
	}, base)
}

// planFromSpec picks the first raster layer whose source is a raster
// source. expand fills in sources that only reference a TileJSON document.
// Relative tile URLs are resolved against base when it is set.
func planFromSpec(s style.Style, spec *style.Spec, expand func(style.Source) (style.Source, error), base *url.URL) (Plan, error) {
	plan := Plan{Style: s, TileSize: style.TileSize}

	for _, layer := range spec.Layers {
		if layer.Type != "raster" {
			continue
		}
		src, ok := spec.Sources[layer.Source]
		if !ok || src.Type != "raster" {
			continue
		}
		if expand != nil {
			var err error
			if src, err = expand(src); err != nil {
				return Plan{}, err
			}
		}
		if len(src.Tiles) == 0 {
			continue
		}
		for _, t := range src.Tiles {
			plan.Tiles = append(plan.Tiles, resolveTemplate(base, t))
		}
		if src.TileSize > 0 {
			plan.TileSize = src.TileSize
		}
		plan.Attribution = src.Attribution
		return plan, nil
	}

	plan.Note = "no raster layer"
	logger.L().Warn("style_without_raster_layer", "style", s.String())
	return plan, nil
}

var braces = strings.NewReplacer("%7B", "{", "%7D", "}", "%7b", "{", "%7d", "}")

// resolveTemplate resolves a relative tile template against base. Absolute
// templates are returned as written so escaped query values survive.
func resolveTemplate(base *url.URL, t string) string {
	if base == nil {
		return t
	}
	u, err := url.Parse(t)
	if err != nil || u.IsAbs() {
		return t
	}
	// url.URL.String escapes the {z}/{x}/{y} placeholders in the path.
	return braces.Replace(base.ResolveReference(u).String())
}

func (e *GioEngine) getJSON(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if e.opts.UserAgent != "" {
		req.Header.Set("User-Agent", e.opts.UserAgent)
	}
	resp, err := e.opts.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, maxStyleSize)).Decode(v)
}
