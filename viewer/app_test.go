package viewer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gioui.org/layout"
	"gioui.org/widget/material"

	"github.com/olablt/gio-basemaps/catalog"
	"github.com/olablt/gio-basemaps/lifecycle"
	"github.com/olablt/gio-basemaps/render"
	"github.com/olablt/gio-basemaps/style"
)

const doc = `{
  "basemaps": [
    {"id":"a","name":"Alpha","type":"raster","url":"https://a.example/{z}/{x}/{y}.png","attribution":"<a href=\"https://a.example\">A &amp; Co</a>"},
    {"id":"b","name":"Beta","type":"style","styleUrl":"https://b.example/style.json"}
  ],
  "defaultId":"b"
}`

type stubEngine struct{ mounts int }

type stubRenderer struct{ target *render.Target }

func (e *stubEngine) Prepare(ctx context.Context, s style.Style) (render.Plan, error) {
	return render.Plan{Style: s}, nil
}

func (e *stubEngine) New(target *render.Target, plan render.Plan, view render.View) (render.Renderer, error) {
	r := &stubRenderer{target: target}
	if err := target.Attach(r); err != nil {
		return nil, err
	}
	e.mounts++
	return r, nil
}

func (r *stubRenderer) AddControl(render.Control, render.Position) {}
func (r *stubRenderer) Remove()                                    { r.target.Detach(r) }
func (r *stubRenderer) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	return layout.Dimensions{}
}

func newApp(t *testing.T, src catalog.Source) (*App, *stubEngine, *render.Target) {
	t.Helper()
	e := &stubEngine{}
	target := render.NewTarget(nil)
	ctl := lifecycle.New(e, target, render.View{Zoom: 12, MaxZoom: 19})
	return New(src, ctl, target, nil), e, target
}

func writeCatalog(t *testing.T, body string) catalog.Source {
	t.Helper()
	p := filepath.Join(t.TempDir(), "basemaps.json")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return catalog.FileSource{Path: p}
}

// waitUpdate polls Update until a load result has been applied.
func waitUpdate(t *testing.T, a *App) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for a.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("catalog load did not finish")
		}
		a.Update()
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartLoadsCatalogAndSelectsDefault(t *testing.T) {
	a, e, target := newApp(t, writeCatalog(t, doc))

	a.Start(context.Background())
	if !a.Loading() {
		t.Fatalf("Expected load in flight")
	}
	waitUpdate(t, a)

	if a.Err() != nil {
		t.Fatalf("Unexpected load error: %v", a.Err())
	}
	opts := a.Binding().Options()
	if len(opts) != 2 || opts[0].ID != "a" || opts[1].ID != "b" {
		t.Fatalf("Unexpected options %+v", opts)
	}
	if a.Binding().Selected() != "b" || e.mounts != 1 || !target.Occupied() {
		t.Errorf("Expected default b mounted, got %q with %d mounts", a.Binding().Selected(), e.mounts)
	}
	if a.enum.Value != "b" {
		t.Errorf("Expected selector value b, got %q", a.enum.Value)
	}

	a.Binding().Select(context.Background(), "a")
	if got := a.Binding().Attribution(); got != "A & Co" {
		t.Errorf("Expected plain attribution, got %q", got)
	}
}

func TestLoadFailureLeavesSelectorEmpty(t *testing.T) {
	a, e, target := newApp(t, catalog.FileSource{Path: filepath.Join(t.TempDir(), "missing.json")})

	a.Start(context.Background())
	waitUpdate(t, a)

	if !errors.Is(a.Err(), catalog.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", a.Err())
	}
	if len(a.Binding().Options()) != 0 || e.mounts != 0 || target.Occupied() {
		t.Errorf("Expected no options and no renderer after failure")
	}
}

func TestResultAfterDisposeIsIgnored(t *testing.T) {
	a, e, target := newApp(t, writeCatalog(t, doc))
	c, err := catalog.Parse([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}

	a.loading = true
	a.Dispose()
	if a.handle(loadResult{catalog: c}) {
		t.Errorf("Disposed app must ignore load results")
	}
	if a.Loading() || e.mounts != 0 || target.Occupied() || len(a.Binding().Options()) != 0 {
		t.Errorf("Disposed app changed after a late result")
	}
	a.Dispose()
}

func TestStartAfterDisposeDoesNothing(t *testing.T) {
	a, _, _ := newApp(t, writeCatalog(t, doc))
	a.Dispose()
	a.Start(context.Background())
	if a.Loading() {
		t.Errorf("Disposed app must not start a load")
	}
}

func TestStartAfterFailureLoadsAgain(t *testing.T) {
	p := filepath.Join(t.TempDir(), "basemaps.json")
	a, e, _ := newApp(t, catalog.FileSource{Path: p})

	a.Start(context.Background())
	waitUpdate(t, a)
	if a.Err() == nil {
		t.Fatalf("Expected the first load to fail")
	}

	if err := os.WriteFile(p, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	a.Start(context.Background())
	if !a.Loading() {
		t.Fatalf("Expected a new load after failure")
	}
	waitUpdate(t, a)

	if a.Err() != nil || len(a.Binding().Options()) != 2 || e.mounts != 1 {
		t.Errorf("Expected retry to load the catalog, err %v, %d mounts", a.Err(), e.mounts)
	}

	a.Start(context.Background())
	if a.Loading() {
		t.Errorf("Start must not reload a loaded catalog")
	}
}
