package selector

import (
	"context"
	"testing"

	"gioui.org/layout"
	"gioui.org/widget/material"

	"github.com/olablt/gio-basemaps/catalog"
	"github.com/olablt/gio-basemaps/lifecycle"
	"github.com/olablt/gio-basemaps/render"
	"github.com/olablt/gio-basemaps/style"
)

const scenario = `{
  "basemaps": [
    {"id":"osm","name":"OpenStreetMap","type":"raster","url":"https://tile.example/{z}/{x}/{y}.png","attribution":"© OSM"},
    {"id":"vec","name":"Vector","type":"style","styleUrl":"https://styles.example/vec.json"}
  ],
  "defaultId":"osm"
}`

type recordingEngine struct {
	mounted []render.Plan
	removed int
}

type recordingRenderer struct {
	e      *recordingEngine
	target *render.Target
}

func (e *recordingEngine) Prepare(ctx context.Context, s style.Style) (render.Plan, error) {
	return render.Plan{Style: s}, nil
}

func (e *recordingEngine) New(target *render.Target, plan render.Plan, view render.View) (render.Renderer, error) {
	r := &recordingRenderer{e: e, target: target}
	if err := target.Attach(r); err != nil {
		return nil, err
	}
	e.mounted = append(e.mounted, plan)
	return r, nil
}

func (r *recordingRenderer) AddControl(render.Control, render.Position) {}

func (r *recordingRenderer) Remove() {
	r.e.removed++
	r.target.Detach(r)
}

func (r *recordingRenderer) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	return layout.Dimensions{}
}

func newBinding(t *testing.T) (*Binding, *recordingEngine, *render.Target) {
	t.Helper()
	e := &recordingEngine{}
	target := render.NewTarget(nil)
	ctl := lifecycle.New(e, target, render.View{Zoom: 12, MaxZoom: 19})
	return New(ctl), e, target
}

func TestScenarioLoadThenSwitch(t *testing.T) {
	c, err := catalog.Parse([]byte(scenario))
	if err != nil {
		t.Fatal(err)
	}
	b, e, target := newBinding(t)
	ctx := context.Background()

	b.SetCatalog(ctx, c)

	opts := b.Options()
	if len(opts) != 2 || opts[0].Name != "OpenStreetMap" || opts[1].Name != "Vector" {
		t.Fatalf("Unexpected options %+v", opts)
	}
	if b.Selected() != "osm" {
		t.Errorf("Expected osm selected, got %q", b.Selected())
	}
	if len(e.mounted) != 1 {
		t.Fatalf("Expected one mount, got %d", len(e.mounted))
	}
	src := e.mounted[0].Style.Spec.Sources[style.RasterSrcID]
	if src.Tiles[0] != "https://tile.example/{z}/{x}/{y}.png" || src.Attribution != "© OSM" {
		t.Errorf("Unexpected raster source %+v", src)
	}
	if b.Attribution() != "© OSM" {
		t.Errorf("Expected attribution © OSM, got %q", b.Attribution())
	}

	b.Select(ctx, "vec")

	if e.removed != 1 || len(e.mounted) != 2 {
		t.Fatalf("Expected teardown and remount, got %d removes %d mounts", e.removed, len(e.mounted))
	}
	if e.mounted[1].Style.Ref != "https://styles.example/vec.json" || !e.mounted[1].Style.IsRef() {
		t.Errorf("Expected style reference, got %+v", e.mounted[1].Style)
	}
	if b.Selected() != "vec" || b.Attribution() != "" {
		t.Errorf("Unexpected selection %q attribution %q", b.Selected(), b.Attribution())
	}
	if !target.Occupied() {
		t.Errorf("Expected a mounted renderer")
	}
}

func TestUnknownSelectionIsIgnored(t *testing.T) {
	c, err := catalog.Parse([]byte(scenario))
	if err != nil {
		t.Fatal(err)
	}
	b, e, _ := newBinding(t)
	ctx := context.Background()
	b.SetCatalog(ctx, c)

	b.Select(ctx, "c")

	if b.Selected() != "osm" || len(e.mounted) != 1 || e.removed != 0 {
		t.Errorf("Unknown id changed state: selected %q, %d mounts, %d removes", b.Selected(), len(e.mounted), e.removed)
	}
}

func TestEmptyBinding(t *testing.T) {
	b, e, target := newBinding(t)
	b.SetCatalog(context.Background(), nil)
	b.Select(context.Background(), "osm")

	if len(b.Options()) != 0 || b.Selected() != "" || b.Attribution() != "" {
		t.Errorf("Expected empty selector")
	}
	if len(e.mounted) != 0 || target.Occupied() {
		t.Errorf("Expected no renderer")
	}
}

func TestPlainText(t *testing.T) {
	cases := map[string]string{
		"":                                    "",
		"© OSM":                               "© OSM",
		"&copy; OpenStreetMap contributors":   "© OpenStreetMap contributors",
		`<a href="https://gsi.go.jp">地理院タイル</a>`: "地理院タイル",
		"<b>Tom &amp; Jerry</b>":              "Tom & Jerry",
		`<img src=x onerror="alert(1)">Map`:   "Map",
		"line\n  break":                       "line break",
	}
	for in, want := range cases {
		if got := PlainText(in); got != want {
			t.Errorf("PlainText(%q) = %q, want %q", in, got, want)
		}
	}
}
