package web

import (
	"sync"

	"newtonmachine/pkg/expr"
)

// funcCache keeps the most recently compiled functions so repeated renders
// of one expression (zooming, resizing) skip parsing and differentiation.
// Compile errors are not cached.
type funcCache struct {
	mu    sync.Mutex
	size  int
	funcs map[string]*expr.Function
	order []string // oldest first
}

func newFuncCache(size int) *funcCache {
	return &funcCache{size: size, funcs: make(map[string]*expr.Function, size)}
}

func (c *funcCache) get(src string) (*expr.Function, error) {
	c.mu.Lock()
	fn, ok := c.funcs[src]
	c.mu.Unlock()
	if ok {
		compileCacheHits.Inc()
		return fn, nil
	}

	compileCacheMisses.Inc()
	fn, err := expr.Compile(src)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.funcs[src]; !ok {
		if len(c.order) >= c.size {
			delete(c.funcs, c.order[0])
			c.order = c.order[1:]
		}
		c.funcs[src] = fn
		c.order = append(c.order, src)
	}
	return c.funcs[src], nil
}

func (c *funcCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.funcs)
}
