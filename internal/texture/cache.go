package texture

import (
	"image"
	"sync"
)

// Resolver resolves a texture reference to a decoded image.
type Resolver interface {
	Resolve(ref string) *image.NRGBA
}

// Cache is a concurrency-safe texture cache.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	paths PathResolver
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

// NewCache creates a cache. References are mapped to files through paths;
// with a nil resolver they are taken as file paths.
func NewCache(paths PathResolver) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		paths: paths,
	}
}

// Resolve loads and caches a texture. Returns nil if it cannot be found
// or decoded; Load reports why.
func (c *Cache) Resolve(ref string) *image.NRGBA {
	img, _ := c.Load(ref)
	return img
}

// Load is Resolve with the failure reason.
func (c *Cache) Load(ref string) (*image.NRGBA, error) {
	path := ref
	if c.paths != nil {
		p, err := c.paths.ResolveTexture(ref)
		if err != nil {
			if !fileExists(ref) {
				return nil, err
			}
		} else {
			path = p
		}
	}

	c.mu.RLock()
	if entry, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return entry.img, entry.err
	}
	c.mu.RUnlock()

	img, err := LoadTexture(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[path]; exists {
		return entry.img, entry.err
	}
	c.items[path] = &cacheEntry{img: img, err: err}
	return img, err
}

// Len returns the number of cached paths, failed loads included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
