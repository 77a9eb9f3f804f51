package tiles

import (
	"container/list"
	"sync"
)

// Cache is a size bounded LRU keyed by tile key.
type Cache[V any] struct {
	mu   sync.Mutex
	cap  int
	lst  *list.List
	dict map[string]*list.Element
}

type entry[V any] struct {
	k string
	v V
}

func NewCache[V any](capacity int) *Cache[V] {
	return &Cache[V]{
		cap:  max(capacity, 1),
		lst:  list.New(),
		dict: make(map[string]*list.Element),
	}
}

func (c *Cache[V]) Get(k string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		c.lst.MoveToFront(e)
		return e.Value.(entry[V]).v, true
	}
	var zero V
	return zero, false
}

func (c *Cache[V]) Set(k string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[k]; ok {
		e.Value = entry[V]{k: k, v: v}
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(entry[V]{k: k, v: v})
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(entry[V]).k)
		c.lst.Remove(back)
	}
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.lst.Init()
	c.dict = make(map[string]*list.Element)
	c.mu.Unlock()
}
