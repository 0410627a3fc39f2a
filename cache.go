package toast

import (
	"io"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache holds loaded resource text keyed by path.
//
// Entries are write-once: the first successful load of a path is kept for the
// lifetime of the cache and is never replaced, invalidated or evicted. A Cache
// is safe for concurrent use and is normally shared by every instance of a
// Runtime.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Get returns the cached text for path.
func (c *Cache) Get(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.entries[path]
	return text, ok
}

// Store records text for path unless the path is already cached, and returns
// the text that is cached after the call.
func (c *Cache) Store(path, text string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[path]; ok {
		return existing
	}
	c.entries[path] = text
	return text
}

// Len returns the number of cached paths.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Paths returns the cached paths in sorted order.
func (c *Cache) Paths() []string {
	c.mu.RLock()
	paths := make([]string, 0, len(c.entries))
	for p := range c.entries {
		paths = append(paths, p)
	}
	c.mu.RUnlock()
	sort.Strings(paths)
	return paths
}

// WriteTo writes a msgpack snapshot of the cache to w.
func (c *Cache) WriteTo(w io.Writer) (int64, error) {
	c.mu.RLock()
	packed, err := msgpack.Marshal(c.entries)
	c.mu.RUnlock()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(packed)
	return int64(n), err
}

// ReadFrom loads a snapshot produced by WriteTo. Paths that are already
// cached keep their current text.
func (c *Cache) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return int64(len(data)), err
	}
	var entries map[string]string
	if err := msgpack.Unmarshal(data, &entries); err != nil {
		return int64(len(data)), err
	}
	for path, text := range entries {
		c.Store(path, text)
	}
	return int64(len(data)), nil
}
