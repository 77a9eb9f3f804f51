// Package config reads the viewer settings from the environment. A .env
// file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the viewer needs at startup.
type Config struct {
	// CatalogURL is either an http(s) URL or a file path.
	CatalogURL string
	// CatalogRedisKey selects the Redis catalog source when set.
	CatalogRedisKey string

	RedisAddr string
	RedisPass string
	RedisDB   int

	CenterLat float64
	CenterLng float64
	Zoom      int
	MinZoom   int
	MaxZoom   int

	TileWorkers   int
	TileCacheSize int
	UserAgent     string
	FetchTimeout  time.Duration

	// DiagAddr enables the diagnostics HTTP server when non-empty.
	DiagAddr string
}

// Defaults, the initial view is Sendai.
const (
	DefaultCatalogURL    = "basemaps.json"
	DefaultCenterLat     = 38.2682
	DefaultCenterLng     = 140.8694
	DefaultZoom          = 12
	DefaultMinZoom       = 1
	DefaultMaxZoom       = 19
	DefaultTileWorkers   = 8
	DefaultTileCacheSize = 512
	DefaultUserAgent     = "gio-basemaps/1.0 (+https://github.com/olablt/gio-basemaps)"
	DefaultFetchTimeout  = 10 * time.Second
)

// LoadDotenv loads .env and data/env/.env if they exist. Missing files are
// not an error.
func LoadDotenv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
}

// Load builds a Config from the current environment.
func Load() (Config, error) {
	c := Config{
		CatalogURL:      getString("CATALOG_URL", DefaultCatalogURL),
		CatalogRedisKey: os.Getenv("CATALOG_REDIS_KEY"),
		RedisAddr:       getString("REDIS_HOST", "127.0.0.1") + ":" + getString("REDIS_PORT", "6379"),
		RedisPass:       os.Getenv("REDIS_PASS"),
		UserAgent:       getString("TILE_USER_AGENT", DefaultUserAgent),
		DiagAddr:        os.Getenv("DIAG_ADDR"),
	}

	var err error
	if c.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return c, err
	}
	if c.CenterLat, err = getFloat("MAP_CENTER_LAT", DefaultCenterLat); err != nil {
		return c, err
	}
	if c.CenterLng, err = getFloat("MAP_CENTER_LNG", DefaultCenterLng); err != nil {
		return c, err
	}
	if c.Zoom, err = getInt("MAP_ZOOM", DefaultZoom); err != nil {
		return c, err
	}
	if c.MinZoom, err = getInt("MAP_MIN_ZOOM", DefaultMinZoom); err != nil {
		return c, err
	}
	if c.MaxZoom, err = getInt("MAP_MAX_ZOOM", DefaultMaxZoom); err != nil {
		return c, err
	}
	if c.TileWorkers, err = getInt("TILE_WORKERS", DefaultTileWorkers); err != nil {
		return c, err
	}
	if c.TileCacheSize, err = getInt("TILE_CACHE_SIZE", DefaultTileCacheSize); err != nil {
		return c, err
	}
	if c.FetchTimeout, err = getDuration("FETCH_TIMEOUT", DefaultFetchTimeout); err != nil {
		return c, err
	}

	return c, c.validate()
}

func (c Config) validate() error {
	if c.CenterLat < -85.0511 || c.CenterLat > 85.0511 {
		return fmt.Errorf("MAP_CENTER_LAT out of range: %v", c.CenterLat)
	}
	if c.CenterLng < -180 || c.CenterLng > 180 {
		return fmt.Errorf("MAP_CENTER_LNG out of range: %v", c.CenterLng)
	}
	if c.MinZoom < 0 || c.MinZoom > c.MaxZoom {
		return fmt.Errorf("invalid zoom range %d..%d", c.MinZoom, c.MaxZoom)
	}
	if c.Zoom < c.MinZoom || c.Zoom > c.MaxZoom {
		return fmt.Errorf("MAP_ZOOM %d outside %d..%d", c.Zoom, c.MinZoom, c.MaxZoom)
	}
	if c.TileWorkers < 1 {
		return fmt.Errorf("TILE_WORKERS must be positive, got %d", c.TileWorkers)
	}
	if c.TileCacheSize < 1 {
		return fmt.Errorf("TILE_CACHE_SIZE must be positive, got %d", c.TileCacheSize)
	}
	return nil
}

// CatalogIsRemote reports whether CatalogURL points at an HTTP server.
func (c Config) CatalogIsRemote() bool {
	u := strings.ToLower(c.CatalogURL)
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
