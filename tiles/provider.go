package tiles

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olablt/gio-basemaps/logger"
	"github.com/olablt/gio-basemaps/metrics"
)

// Provider loads the image for one tile.
type Provider interface {
	GetTile(ctx context.Context, tile Tile) (image.Image, error)
}

// URLProvider downloads tiles from an XYZ URL template. The template may
// use {z}, {x}, {y} and {-y} (TMS row order).
type URLProvider struct {
	Template  string
	UserAgent string
	client    *http.Client
}

func NewURLProvider(template, userAgent string, client *http.Client) *URLProvider {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &URLProvider{
		Template:  template,
		UserAgent: userAgent,
		client:    client,
	}
}

func (p *URLProvider) GetTile(ctx context.Context, tile Tile) (image.Image, error) {
	url := p.GetTileURL(tile)
	l := logger.L()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}
	req.Header.Set("Accept", "image/png,image/jpeg,*/*;q=0.5")

	resp, err := p.client.Do(req)
	if err != nil {
		metrics.TileFetchTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.TileFetchTotal.WithLabelValues("status").Inc()
		return nil, fmt.Errorf("tile %s: unexpected status code: %d", tile.Key(), resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		metrics.TileFetchTotal.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("decode tile %s: %w", tile.Key(), err)
	}

	metrics.TileFetchTotal.WithLabelValues("ok").Inc()
	metrics.TileFetchDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	l.Debug("tile_fetch_ok", "tile", tile.Key(), "url", url)
	return img, nil
}

// GetTileURL expands the template for tile.
func (p *URLProvider) GetTileURL(tile Tile) string {
	tmsY := (1 << tile.Zoom) - 1 - tile.Y
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(tile.Zoom),
		"{x}", strconv.Itoa(tile.X),
		"{y}", strconv.Itoa(tile.Y),
		"{-y}", strconv.Itoa(tmsY),
	)
	return r.Replace(p.Template)
}
