package parse

import (
	"path/filepath"
	"sync"

	"github.com/robfig/ngc/ast"
)

// Cache holds parsed templates keyed by absolute file path.  An entry is
// served only while the template text is unchanged; entries are otherwise
// removed only by Invalidate and Clear.
//
// A Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	text string
	opts Options
	file *ast.File
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Get returns the template cached for path if it was parsed from text with
// the default options.
func (c *Cache) Get(path, text string) (*ast.File, bool) {
	return c.get(path, text, Options{})
}

func (c *Cache) get(path, text string, opts Options) (*ast.File, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var e, ok = c.entries[cacheKey(path)]
	if !ok || e.text != text || e.opts != opts {
		return nil, false
	}
	return e.file, true
}

// Put stores a template parsed from text with the default options.
func (c *Cache) Put(path, text string, file *ast.File) {
	c.put(path, text, Options{}, file)
}

func (c *Cache) put(path, text string, opts Options, file *ast.File) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(path)] = cacheEntry{text, opts, file}
}

// Invalidate removes the entry for path, if any.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(path))
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of cached templates.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Parse returns the cached template for path, parsing and caching it if
// there is no entry for this text and these options.  Failed parses are not
// cached.
func (c *Cache) Parse(text, path string, opts Options) (*ast.File, error) {
	if file, ok := c.get(path, text, opts); ok {
		return file, nil
	}
	var file, err = opts.Parse(text, path)
	if err != nil {
		return nil, err
	}
	c.put(path, text, opts, file)
	return file, nil
}

// cacheKey returns the absolute form of path.
func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
