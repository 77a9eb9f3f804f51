// Package style turns a basemap definition into the style description the
// renderer is built from.
package style

import (
	"encoding/json"

	"github.com/olablt/gio-basemaps/catalog"
)

const (
	Version     = 8
	TileSize    = 256
	RasterSrcID = "raster-tiles"
	BaseLayerID = "base-layer"
)

// Source is a style source entry. Only raster sources are synthesized.
type Source struct {
	Type        string   `json:"type"`
	Tiles       []string `json:"tiles,omitempty"`
	URL         string   `json:"url,omitempty"`
	TileSize    int      `json:"tileSize,omitempty"`
	Attribution string   `json:"attribution"`
}

type Layer struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Source string `json:"source,omitempty"`
}

// Spec is an inline style document.
type Spec struct {
	Version int               `json:"version"`
	Sources map[string]Source `json:"sources"`
	Layers  []Layer           `json:"layers"`
}

// Style is either a reference to an externally hosted style document (Ref)
// or an inline Spec. Exactly one is set.
type Style struct {
	Ref  string
	Spec *Spec
}

// Resolve builds the style for d. d must have passed Definition.Validate.
func Resolve(d catalog.Definition) Style {
	if d.Kind == catalog.KindRaster {
		return Style{Spec: rasterSpec(d.TileURL, d.Attribution)}
	}
	return Style{Ref: d.StyleRef}
}

func rasterSpec(tileURL, attribution string) *Spec {
	return &Spec{
		Version: Version,
		Sources: map[string]Source{
			RasterSrcID: {
				Type:        "raster",
				Tiles:       []string{tileURL},
				TileSize:    TileSize,
				Attribution: attribution,
			},
		},
		Layers: []Layer{
			{ID: BaseLayerID, Type: "raster", Source: RasterSrcID},
		},
	}
}

// IsRef reports whether the style points at an external document.
func (s Style) IsRef() bool { return s.Spec == nil }

// Equal compares two styles by value.
func (s Style) Equal(o Style) bool {
	if s.Ref != o.Ref || (s.Spec == nil) != (o.Spec == nil) {
		return false
	}
	if s.Spec == nil {
		return true
	}
	return s.Spec.equal(o.Spec)
}

func (s *Spec) equal(o *Spec) bool {
	if s.Version != o.Version || len(s.Sources) != len(o.Sources) || len(s.Layers) != len(o.Layers) {
		return false
	}
	for id, a := range s.Sources {
		b, ok := o.Sources[id]
		if !ok || a.Type != b.Type || a.URL != b.URL || a.TileSize != b.TileSize || a.Attribution != b.Attribution {
			return false
		}
		if len(a.Tiles) != len(b.Tiles) {
			return false
		}
		for i := range a.Tiles {
			if a.Tiles[i] != b.Tiles[i] {
				return false
			}
		}
	}
	for i := range s.Layers {
		if s.Layers[i] != o.Layers[i] {
			return false
		}
	}
	return true
}

// MarshalJSON writes a reference as a JSON string and a spec as an object.
func (s Style) MarshalJSON() ([]byte, error) {
	if s.Spec == nil {
		return json.Marshal(s.Ref)
	}
	return json.Marshal(s.Spec)
}

func (s Style) String() string {
	if s.Spec == nil {
		return s.Ref
	}
	if src, ok := s.Spec.Sources[RasterSrcID]; ok && len(src.Tiles) > 0 {
		return "raster:" + src.Tiles[0]
	}
	return "inline"
}
