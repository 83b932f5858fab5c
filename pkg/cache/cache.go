// Package cache provides a thread-safe LRU cache for compiled remap programs.
//
// Compiling is far more expensive than evaluating, and a host typically runs
// the same handful of programs against every event. Entries are keyed by a
// Fingerprint of everything that influences compilation: the source, the
// function registry, the initial type state and the configuration.
//
// # Example
//
//	c := cache.New(1024)
//	key := cache.Fingerprint(src, reg, st, cfg)
//	res, err := c.GetOrCompile(key, func() (*compiler.CompilationResult, error) {
//	    return compiler.CompileSource(reg, src, st, cfg)
//	})
package cache

import (
	"cmp"
	"container/list"
	"fmt"
	"io"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/sandrolain/goremap/pkg/compiler"
	"github.com/sandrolain/goremap/pkg/functions"
	"github.com/sandrolain/goremap/pkg/state"
	"github.com/sandrolain/goremap/pkg/types"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 256

// entry is a cache entry stored in the doubly-linked list.
type entry struct {
	key    uint64
	result *compiler.CompilationResult
}

// Cache is a thread-safe LRU (Least Recently Used) cache for compilation
// results. Once the capacity is reached, the least recently accessed entry
// is evicted.
//
// Safe for concurrent use by multiple goroutines. Cached programs are
// immutable and may be evaluated concurrently.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[uint64]*list.Element
}

// New creates a new LRU cache with the given capacity.
// If capacity <= 0, DefaultCapacity is used.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[uint64]*list.Element, capacity),
	}
}

// Get retrieves a compilation result from the cache and marks it as most
// recently used.
func (c *Cache) Get(key uint64) (*compiler.CompilationResult, bool) {
	c.mu.RLock()
	el, ok := c.items[key]
	if !ok {
		c.mu.RUnlock()
		return nil, false
	}
	// an entry already at the front needs no write lock
	if c.ll.Front() == el {
		res := el.Value.(*entry).result
		c.mu.RUnlock()
		return res, true
	}
	c.mu.RUnlock()

	// re-check under the write lock in case of a concurrent eviction
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok = c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entry).result, true
}

// Set inserts or replaces a result in the cache.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache) Set(key uint64, res *compiler.CompilationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).result = res
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	el := c.ll.PushFront(&entry{key: key, result: res})
	c.items[key] = el
}

// GetOrCompile returns the result cached under key, or calls compile,
// caches what it returns and returns it. Failed compilations are not
// cached.
func (c *Cache) GetOrCompile(key uint64, compile func() (*compiler.CompilationResult, error)) (*compiler.CompilationResult, error) {
	if res, ok := c.Get(key); ok {
		return res, nil
	}
	res, err := compile()
	if err != nil {
		return nil, err
	}
	c.Set(key, res)
	return res, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Invalidate removes a single entry from the cache.
func (c *Cache) Invalidate(key uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[uint64]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry.
// Must be called with c.mu held for writing.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}

// Fingerprint hashes every input of a compilation. Registries are
// identified by their ID, so two registries with the same names never
// share entries. A nil st stands for the default state.
func Fingerprint(source string, reg *functions.Registry, st *state.TypeState, cfg compiler.CompileConfig) uint64 {
	if st == nil {
		st = state.New(nil)
	}
	h := xxhash.New()
	_, _ = h.WriteString(source)
	_, _ = fmt.Fprintf(h, "\x00%d", reg.ID())

	for _, name := range st.Local.Names() {
		td, _ := st.Local.Get(name)
		_, _ = fmt.Fprintf(h, "\x00%s=%t:", name, td.IsFallible())
		writeKind(h, td.Kind())
	}
	_, _ = h.WriteString("\x00")
	writeKind(h, st.External.Target())
	_, _ = h.WriteString("\x00")
	writeKind(h, st.External.Metadata())

	_, _ = fmt.Fprintf(h, "\x00%t%t", cfg.DeprecationsAsErrors, cfg.StrictSchema)
	for _, ro := range cfg.ReadOnlyPaths {
		_, _ = fmt.Fprintf(h, "\x00%s:%t", ro.Path, ro.Recursive)
	}
	return h.Sum64()
}

// writeKind writes a rendering of k that, unlike Kind.String, includes the
// shape of its collections.
func writeKind(w io.Writer, k types.Kind) {
	_, _ = io.WriteString(w, k.String())
	if c := k.ArrayCollection(); c != nil {
		writeCollection(w, c)
	}
	if c := k.ObjectCollection(); c != nil {
		writeCollection(w, c)
	}
}

func writeCollection[K cmp.Ordered](w io.Writer, c *types.Collection[K]) {
	_, _ = io.WriteString(w, "{")
	for _, key := range c.Keys() {
		_, _ = fmt.Fprintf(w, "%v:", key)
		writeKind(w, c.At(key))
		_, _ = io.WriteString(w, ",")
	}
	if u, ok := c.Unknown(); ok {
		_, _ = io.WriteString(w, "*:")
		if u.IsAny() {
			_, _ = io.WriteString(w, "any")
		} else {
			writeKind(w, u)
		}
	}
	_, _ = io.WriteString(w, "}")
}
