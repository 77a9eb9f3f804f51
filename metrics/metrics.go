package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CatalogLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basemaps_catalog_loads_total",
		Help: "Catalog load attempts by result",
	}, []string{"result"})
	RendererMountsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "basemaps_renderer_mounts_total",
		Help: "Renderer instances constructed",
	})
	RendererTeardownsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "basemaps_renderer_teardowns_total",
		Help: "Renderer instances removed",
	})
	RendererErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basemaps_renderer_errors_total",
		Help: "Renderer failures by stage (prepare, construct)",
	}, []string{"stage"})
	RendererLive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "basemaps_renderer_live",
		Help: "Live renderer instances (0 or 1)",
	})
	SelectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basemaps_selections_total",
		Help: "Basemap selections by outcome (applied, unknown)",
	}, []string{"outcome"})
	TileFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "basemaps_tile_fetch_total",
		Help: "Tile fetches by result",
	}, []string{"result"})
	TileFetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "basemaps_tile_fetch_duration_ms",
		Help:    "Tile fetch duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000},
	})
)

func init() {
	prometheus.MustRegister(CatalogLoadsTotal)
	prometheus.MustRegister(RendererMountsTotal)
	prometheus.MustRegister(RendererTeardownsTotal)
	prometheus.MustRegister(RendererErrorsTotal)
	prometheus.MustRegister(RendererLive)
	prometheus.MustRegister(SelectionsTotal)
	prometheus.MustRegister(TileFetchTotal)
	prometheus.MustRegister(TileFetchDurationMs)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
