package tiles

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"
)

type stubProvider struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
	gate  chan struct{}
}

func (p *stubProvider) GetTile(ctx context.Context, tile Tile) (image.Image, error) {
	p.mu.Lock()
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[tile.Key()]++
	p.mu.Unlock()

	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return image.NewRGBA(image.Rect(0, 0, TileSize, TileSize)), nil
}

func (p *stubProvider) count(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[key]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for condition")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestManagerLoadsInBackground(t *testing.T) {
	primary := &stubProvider{}
	m := NewManager(primary, NewPlaceholderProvider(), ManagerOptions{Workers: 2, CacheSize: 16})
	defer m.Close()

	loaded := make(chan struct{}, 1)
	m.SetOnLoadCallback(func() { loaded <- struct{}{} })

	tile := Tile{X: 1, Y: 1, Zoom: 2}
	if _, real := m.Tile(tile); real {
		t.Fatalf("Expected placeholder on first request")
	}
	select {
	case <-loaded:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for tile load")
	}
	if _, real := m.Tile(tile); !real {
		t.Errorf("Expected cached tile after load")
	}
	if n := primary.count(tile.Key()); n != 1 {
		t.Errorf("Expected one fetch, got %d", n)
	}
}

func TestManagerWrapsColumns(t *testing.T) {
	primary := &stubProvider{}
	m := NewManager(primary, NewPlaceholderProvider(), ManagerOptions{Workers: 1, CacheSize: 16})
	defer m.Close()

	m.Tile(Tile{X: -1, Y: 0, Zoom: 1})
	waitFor(t, func() bool { return primary.count("1/1/0") == 1 })
}

func TestManagerDoesNotRetryFailedTiles(t *testing.T) {
	primary := &stubProvider{err: errors.New("404")}
	m := NewManager(primary, NewPlaceholderProvider(), ManagerOptions{Workers: 1, CacheSize: 16})
	defer m.Close()

	tile := Tile{X: 0, Y: 0, Zoom: 0}
	m.Tile(tile)
	waitFor(t, func() bool { return primary.count(tile.Key()) == 1 && m.Loading() == 0 })

	for i := 0; i < 3; i++ {
		if _, real := m.Tile(tile); real {
			t.Fatalf("Failed tile reported as real")
		}
	}
	time.Sleep(20 * time.Millisecond)
	if n := primary.count(tile.Key()); n != 1 {
		t.Errorf("Expected failed tile to be fetched once, got %d", n)
	}
}

func TestManagerCloseCancelsInFlight(t *testing.T) {
	primary := &stubProvider{gate: make(chan struct{})}
	m := NewManager(primary, NewPlaceholderProvider(), ManagerOptions{Workers: 1, CacheSize: 16})

	called := false
	m.SetOnLoadCallback(func() { called = true })

	tile := Tile{X: 0, Y: 0, Zoom: 0}
	m.Tile(tile)
	waitFor(t, func() bool { return primary.count(tile.Key()) == 1 })

	m.Close()
	m.Close()

	if m.Loading() != 0 {
		t.Errorf("Expected nothing in flight after Close, got %d", m.Loading())
	}
	if called {
		t.Errorf("onLoad must not run after Close")
	}
	m.Tile(Tile{X: 0, Y: 0, Zoom: 1})
	time.Sleep(20 * time.Millisecond)
	if n := primary.count("1/0/0"); n != 0 {
		t.Errorf("Expected no fetch after Close, got %d", n)
	}
}
