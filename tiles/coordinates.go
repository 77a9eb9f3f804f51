package tiles

import (
	"fmt"
	"image"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

const (
	TileSize           = 256
	MaxLatitude        = 85.0511287798
	earthCircumference = 40075016.686 // meters at equator
)

// Tile represents a map tile coordinates
type Tile struct {
	X, Y, Zoom int
}

// Key returns the z/x/y string used for cache keys and URLs.
func (t Tile) Key() string {
	return fmt.Sprintf("%d/%d/%d", t.Zoom, t.X, t.Y)
}

// Valid reports whether the tile exists at its zoom level.
func (t Tile) Valid() bool {
	n := 1 << t.Zoom
	return t.Zoom >= 0 && t.X >= 0 && t.Y >= 0 && t.X < n && t.Y < n
}

func (t Tile) maptile() maptile.Tile {
	return maptile.New(uint32(t.X), uint32(t.Y), maptile.Zoom(t.Zoom))
}

// LatLng represents a geographical point
type LatLng struct {
	Lat, Lng float64
}

// Point converts to an orb point (lon, lat).
func (ll LatLng) Point() orb.Point {
	return orb.Point{ll.Lng, ll.Lat}
}

// Clamp keeps the point inside the web mercator world.
func (ll LatLng) Clamp() LatLng {
	ll.Lat = max(-MaxLatitude, min(ll.Lat, MaxLatitude))
	for ll.Lng < -180 {
		ll.Lng += 360
	}
	for ll.Lng > 180 {
		ll.Lng -= 360
	}
	return ll
}

// LatLngToTile converts geographical coordinates to tile coordinates
func LatLngToTile(ll LatLng, zoom int) Tile {
	t := maptile.At(ll.Point(), maptile.Zoom(zoom))
	return Tile{X: int(t.X), Y: int(t.Y), Zoom: zoom}
}

// TileToLatLng returns the center of the tile.
func TileToLatLng(tile Tile) LatLng {
	c := tile.maptile().Bound().Center()
	return LatLng{Lat: c.Lat(), Lng: c.Lon()}
}

// CalculateWorldCoordinates converts geographical coordinates to world pixel coordinates at given zoom level
func CalculateWorldCoordinates(ll LatLng, zoom float64) (float64, float64) {
	n := math.Pow(2, zoom)
	latRad := ll.Lat * math.Pi / 180.0
	worldX := float64(TileSize) * n * (ll.Lng + 180) / 360
	worldY := float64(TileSize) * n * (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2
	return worldX, worldY
}

// WorldToLatLng converts world pixel coordinates back to geographical coordinates
func WorldToLatLng(worldX, worldY float64, zoom float64) LatLng {
	n := math.Pow(2, zoom)
	lng := (worldX/(float64(TileSize)*n))*360 - 180
	latRad := math.Pi * (1 - 2*worldY/(float64(TileSize)*n))
	lat := 180 / math.Pi * math.Atan(math.Sinh(latRad))
	return LatLng{Lat: lat, Lng: lng}
}

// CalculateMetersPerPixel calculates the meters per pixel at a given latitude and zoom level
func CalculateMetersPerPixel(latitude float64, zoom int) float64 {
	return earthCircumference * math.Cos(latitude*math.Pi/180) / (math.Pow(2, float64(zoom)) * TileSize)
}

// Wrap maps the column into 0..2^zoom-1 so tiles left or right of the
// antimeridian repeat the world.
func (t Tile) Wrap() Tile {
	n := 1 << t.Zoom
	t.X = ((t.X % n) + n) % n
	return t
}

// CalculateVisibleTiles returns the tiles covering a screen of the given
// size centered on center. Columns are not wrapped so callers can place
// them on screen; rows outside the world are skipped.
func CalculateVisibleTiles(center LatLng, zoom int, screenSize image.Point) []Tile {
	n := 1 << zoom
	cx, cy := CalculateWorldCoordinates(center, float64(zoom))

	minX := int(math.Floor((cx - float64(screenSize.X)/2) / TileSize))
	maxX := int(math.Floor((cx + float64(screenSize.X)/2) / TileSize))
	minY := max(int(math.Floor((cy-float64(screenSize.Y)/2)/TileSize)), 0)
	maxY := min(int(math.Floor((cy+float64(screenSize.Y)/2)/TileSize)), n-1)

	var visible []Tile
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			visible = append(visible, Tile{X: x, Y: y, Zoom: zoom})
		}
	}
	return visible
}
