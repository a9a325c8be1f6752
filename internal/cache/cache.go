// Package cache provides the tenant scoped, explicitly invalidated cache used
// for model clients and capabilities. Entries never expire on their own;
// they are dropped only through Clear or ClearAll. Concurrent first use of a
// key builds the value once.
package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Scoped caches values under (scope, key) pairs. The scope is the tenant
// identifier.
type Scoped[V any] struct {
	mu      sync.RWMutex
	entries map[string]map[string]V
	group   singleflight.Group
	gen     map[string]uint64
	epoch   uint64
}

// New creates an empty Scoped cache.
func New[V any]() *Scoped[V] {
	return &Scoped[V]{
		entries: map[string]map[string]V{},
		gen:     map[string]uint64{},
	}
}

// Get returns the cached value for (scope, key).
func (c *Scoped[V]) Get(scope, key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[scope][key]
	return v, ok
}

// GetOrBuild returns the cached value for (scope, key) or builds, stores and
// returns it. Concurrent callers for the same pair share one build, so build
// must not depend on the cancellation of any single caller; callers pass a
// context detached with context.WithoutCancel. Build failures are not
// cached.
func (c *Scoped[V]) GetOrBuild(scope, key string, build func() (V, error)) (V, error) {
	if v, ok := c.Get(scope, key); ok {
		return v, nil
	}

	res, err, _ := c.group.Do(scope+"\x00"+key, func() (any, error) {
		if v, ok := c.Get(scope, key); ok {
			return v, nil
		}
		epoch, gen := c.generation(scope)
		v, err := build()
		if err != nil {
			return v, err
		}
		c.store(scope, key, v, epoch, gen)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Len returns the number of cached entries across all scopes.
func (c *Scoped[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, m := range c.entries {
		n += len(m)
	}
	return n
}

// Clear drops every entry of scope.
func (c *Scoped[V]) Clear(scope string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, scope)
	c.gen[scope]++
}

// ClearAll drops every entry.
func (c *Scoped[V]) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]map[string]V{}
	c.epoch++
}

func (c *Scoped[V]) generation(scope string) (uint64, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch, c.gen[scope]
}

// store skips values built before a concurrent Clear or ClearAll.
func (c *Scoped[V]) store(scope, key string, v V, epoch, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.gen[scope] != gen {
		return
	}
	m, ok := c.entries[scope]
	if !ok {
		m = map[string]V{}
		c.entries[scope] = m
	}
	m[key] = v
}
