package tiles

import (
	"context"
	"sync"

	"gioui.org/op/paint"

	"github.com/olablt/gio-basemaps/logger"
	"github.com/olablt/gio-basemaps/tiles/worker"
)

// Manager serves decoded tiles to the map widget. Missing tiles are loaded
// in the background through the worker pool; until they arrive, or when
// they fail, the fallback provider's tile is returned instead.
type Manager struct {
	primary  Provider
	fallback Provider
	cache    *Cache[paint.ImageOp]
	holders  *Cache[paint.ImageOp]
	pool     *worker.Pool

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	loading map[string]bool
	failed  map[string]bool
	closed  bool
	onLoad  func()
}

type ManagerOptions struct {
	Workers   int
	CacheSize int
}

func NewManager(primary, fallback Provider, opts ManagerOptions) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		primary:  primary,
		fallback: fallback,
		cache:    NewCache[paint.ImageOp](opts.CacheSize),
		holders:  NewCache[paint.ImageOp](64),
		pool:     worker.NewPool(opts.Workers, opts.CacheSize),
		ctx:      ctx,
		cancel:   cancel,
		loading:  make(map[string]bool),
		failed:   make(map[string]bool),
	}
}

// SetOnLoadCallback registers fn to run after each tile finishes loading.
func (m *Manager) SetOnLoadCallback(fn func()) {
	m.mu.Lock()
	m.onLoad = fn
	m.mu.Unlock()
}

// Tile returns the image for tile and whether it is the real one.
func (m *Manager) Tile(tile Tile) (paint.ImageOp, bool) {
	tile = tile.Wrap()
	key := tile.Key()

	if op, ok := m.cache.Get(key); ok {
		return op, true
	}
	m.schedule(tile)
	return m.placeholder(tile), false
}

func (m *Manager) schedule(tile Tile) {
	key := tile.Key()

	m.mu.Lock()
	if m.closed || m.loading[key] || m.failed[key] {
		m.mu.Unlock()
		return
	}
	m.loading[key] = true
	m.mu.Unlock()

	ok := m.pool.Submit(worker.Task{Ctx: m.ctx, Work: func(ctx context.Context) error {
		return m.load(ctx, tile)
	}})
	if !ok {
		// Queue full, retry on a later frame.
		m.mu.Lock()
		delete(m.loading, key)
		m.mu.Unlock()
	}
}

func (m *Manager) load(ctx context.Context, tile Tile) error {
	key := tile.Key()
	img, err := m.primary.GetTile(ctx, tile)

	m.mu.Lock()
	delete(m.loading, key)
	closed := m.closed
	if err != nil && ctx.Err() == nil {
		m.failed[key] = true
	}
	onLoad := m.onLoad
	m.mu.Unlock()

	if err != nil {
		if ctx.Err() == nil {
			logger.L().Warn("tile_load_error", "tile", key, "err", err)
		}
		return err
	}
	if closed {
		return nil
	}
	m.cache.Set(key, paint.NewImageOp(img))
	if onLoad != nil {
		onLoad()
	}
	return nil
}

func (m *Manager) placeholder(tile Tile) paint.ImageOp {
	key := tile.Key()
	if op, ok := m.holders.Get(key); ok {
		return op
	}
	img, err := m.fallback.GetTile(m.ctx, tile)
	if err != nil {
		return paint.ImageOp{}
	}
	op := paint.NewImageOp(img)
	m.holders.Set(key, op)
	return op
}

// Loading reports how many tiles are in flight.
func (m *Manager) Loading() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loading)
}

// Close cancels in-flight loads, stops the workers and drops the caches.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.onLoad = nil
	m.mu.Unlock()

	m.cancel()
	m.pool.Shutdown()
	m.cache.Clear()
	m.holders.Clear()
}
