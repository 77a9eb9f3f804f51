// Package catalog loads the read-only set of basemaps the viewer can switch
// between.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olablt/gio-basemaps/logger"
	"github.com/olablt/gio-basemaps/metrics"
)

// Kind tells how a basemap is drawn.
type Kind string

const (
	KindRaster Kind = "raster"
	KindStyle  Kind = "style"
)

// Definition describes one selectable basemap. TileURL is set for raster
// basemaps, StyleRef for style basemaps, never both.
type Definition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        Kind   `json:"type"`
	TileURL     string `json:"url,omitempty"`
	StyleRef    string `json:"styleUrl,omitempty"`
	Attribution string `json:"attribution,omitempty"`
}

// document is the wire shape of the catalog file.
type document struct {
	Basemaps  []Definition `json:"basemaps"`
	DefaultID string       `json:"defaultId"`
}

// Catalog is an immutable, ordered set of basemap definitions.
type Catalog struct {
	defs      []Definition
	index     map[string]int
	defaultID string
}

// Load fetches and validates the catalog document from src. Every failure is
// returned as a *LoadError.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	l := logger.L()

	b, err := src.Fetch(ctx)
	if err != nil {
		metrics.CatalogLoadsTotal.WithLabelValues("fetch_error").Inc()
		return nil, &LoadError{Source: src.String(), Op: "fetch", Err: err}
	}

	c, err := Parse(b)
	if err != nil {
		metrics.CatalogLoadsTotal.WithLabelValues("invalid").Inc()
		if le, ok := err.(*LoadError); ok {
			le.Source = src.String()
		}
		return nil, err
	}

	metrics.CatalogLoadsTotal.WithLabelValues("ok").Inc()
	l.Info("catalog_load_ok", "source", src.String(), "basemaps", c.Len(), "default", c.defaultID)
	return c, nil
}

// Parse decodes and validates a catalog document.
func Parse(b []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, &LoadError{Op: "parse", Err: err}
	}
	c, err := build(doc)
	if err != nil {
		return nil, &LoadError{Op: "validate", Err: err}
	}
	return c, nil
}

func build(doc document) (*Catalog, error) {
	if len(doc.Basemaps) == 0 {
		return nil, fmt.Errorf("catalog has no basemaps")
	}
	c := &Catalog{
		defs:      make([]Definition, 0, len(doc.Basemaps)),
		index:     make(map[string]int, len(doc.Basemaps)),
		defaultID: doc.DefaultID,
	}
	for i, d := range doc.Basemaps {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("basemap #%d: %w", i, err)
		}
		if _, dup := c.index[d.ID]; dup {
			return nil, fmt.Errorf("basemap #%d: duplicate id %q", i, d.ID)
		}
		c.index[d.ID] = len(c.defs)
		c.defs = append(c.defs, d)
	}
	if _, ok := c.index[doc.DefaultID]; !ok {
		return nil, fmt.Errorf("defaultId %q is not in the catalog", doc.DefaultID)
	}
	return c, nil
}

// Validate checks that the field required by the definition's kind is set
// and the other one is not.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("missing id")
	}
	switch d.Kind {
	case KindRaster:
		if d.TileURL == "" {
			return fmt.Errorf("raster basemap %q has no url", d.ID)
		}
		if d.StyleRef != "" {
			return fmt.Errorf("raster basemap %q must not set styleUrl", d.ID)
		}
	case KindStyle:
		if d.StyleRef == "" {
			return fmt.Errorf("style basemap %q has no styleUrl", d.ID)
		}
		if d.TileURL != "" {
			return fmt.Errorf("style basemap %q must not set url", d.ID)
		}
	default:
		return fmt.Errorf("basemap %q has unknown type %q", d.ID, d.Kind)
	}
	return nil
}

// DisplayName falls back to the id when the catalog gives no name.
func (d Definition) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// Len returns the number of basemaps. A nil catalog is empty.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.defs)
}

// All returns the definitions in document order.
func (c *Catalog) All() []Definition {
	if c == nil {
		return nil
	}
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Lookup finds a definition by id.
func (c *Catalog) Lookup(id string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

func (c *Catalog) DefaultID() string {
	if c == nil {
		return ""
	}
	return c.defaultID
}

// Default returns the definition named by DefaultID.
func (c *Catalog) Default() (Definition, bool) {
	return c.Lookup(c.DefaultID())
}
