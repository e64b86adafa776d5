package fetch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCacheEntries bounds the in-memory layer. Chapter texts average
// tens of KB, so this holds a full ingestion run's worth.
const defaultCacheEntries = 256

// Cache is a two-level response cache: an in-memory LRU in front of a
// directory of extracted-text files. The disk layer survives restarts;
// a nil or missing directory disables it.
type Cache struct {
	mem *lru.Cache[string, string]
	dir string
}

// NewCache creates a cache. dir may be empty for memory-only caching.
func NewCache(dir string) (*Cache, error) {
	mem, err := lru.New[string, string](defaultCacheEntries)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &Cache{mem: mem, dir: dir}, nil
}

// Get returns the cached text for url, promoting disk hits into memory.
func (c *Cache) Get(url string) (string, bool) {
	if text, ok := c.mem.Get(url); ok {
		return text, true
	}
	if c.dir == "" {
		return "", false
	}
	data, err := os.ReadFile(c.pathFor(url))
	if err != nil {
		return "", false
	}
	text := string(data)
	c.mem.Add(url, text)
	return text, true
}

// Put stores the text in both layers. Disk write failures are logged
// and ignored; the cache is an optimization, not a store of record.
func (c *Cache) Put(url, text string) {
	c.mem.Add(url, text)
	if c.dir == "" {
		return
	}
	if err := os.WriteFile(c.pathFor(url), []byte(text), 0o644); err != nil {
		slog.Warn("fetch_cache_write_failed",
			slog.String("url", url),
			slog.String("error", err.Error()))
	}
}

// Len returns the number of in-memory entries.
func (c *Cache) Len() int {
	return c.mem.Len()
}

func (c *Cache) pathFor(url string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%016x.txt", xxhash.Sum64String(url)))
}
