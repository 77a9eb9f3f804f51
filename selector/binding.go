// Package selector binds the basemap catalog to the lifecycle controller:
// it lists the options, applies selections and exposes the attribution.
package selector

import (
	"context"

	"github.com/olablt/gio-basemaps/catalog"
	"github.com/olablt/gio-basemaps/lifecycle"
	"github.com/olablt/gio-basemaps/logger"
	"github.com/olablt/gio-basemaps/metrics"
	"github.com/olablt/gio-basemaps/style"
)

// Option is one entry of the selector.
type Option struct {
	ID   string
	Name string
}

// Binding is not safe for concurrent use; call it from the UI goroutine.
type Binding struct {
	catalog *catalog.Catalog
	ctl     *lifecycle.Controller
	options []Option
}

func New(ctl *lifecycle.Controller) *Binding {
	return &Binding{ctl: ctl}
}

// SetCatalog replaces the options and mounts the catalog's default basemap.
func (b *Binding) SetCatalog(ctx context.Context, c *catalog.Catalog) {
	b.catalog = c
	b.options = nil
	for _, d := range c.All() {
		b.options = append(b.options, Option{ID: d.ID, Name: d.DisplayName()})
	}
	if id := c.DefaultID(); id != "" {
		b.Select(ctx, id)
	}
}

// Options returns the entries in catalog order.
func (b *Binding) Options() []Option {
	return b.options
}

// Selected returns the id of the active basemap, or "" when none is mounted.
func (b *Binding) Selected() string {
	return b.ctl.ActiveID()
}

// Select activates the basemap with the given id. Ids that are not in the
// catalog come from a stale view and are ignored.
func (b *Binding) Select(ctx context.Context, id string) {
	d, ok := b.catalog.Lookup(id)
	if !ok {
		metrics.SelectionsTotal.WithLabelValues("unknown").Inc()
		logger.L().Debug("selection_unknown", "id", id)
		return
	}
	metrics.SelectionsTotal.WithLabelValues("applied").Inc()
	b.ctl.SetActiveState(ctx, lifecycle.ActiveState{
		ID:          d.ID,
		Style:       style.Resolve(d),
		Attribution: d.Attribution,
	})
}

// Attribution returns the active basemap's attribution as plain text.
func (b *Binding) Attribution() string {
	return PlainText(b.ctl.Attribution())
}
