// Package schemastore keeps parsed declaration sources in memory and maps
// schema names to their declarations.
package schemastore

import (
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/artefactual-labs/apimock/internal/schema"
)

const (
	DefaultMaxAge     = 5 * time.Minute
	DefaultMaxEntries = 100
)

type CacheConfig struct {
	// MaxAge is how long a parsed source stays fresh.
	MaxAge time.Duration

	// MaxEntries bounds the number of cached sources.
	MaxEntries int
}

func (c CacheConfig) withDefaults() CacheConfig {
	if c.MaxAge <= 0 {
		c.MaxAge = DefaultMaxAge
	}
	if c.MaxEntries <= 0 {
		c.MaxEntries = DefaultMaxEntries
	}
	return c
}

type cacheEntry struct {
	schemas     []*schema.Schema
	fingerprint uint64
	timestamp   time.Time
}

// Cache memoizes parsed declaration sources by path. An entry is only
// served while the source content is unchanged and the entry is fresh.
type Cache struct {
	cfg CacheConfig
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type CacheOption func(*Cache)

// WithClock replaces the cache's time source.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

func NewCache(cfg CacheConfig, opts ...CacheOption) *Cache {
	c := &Cache{
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		entries: map[string]cacheEntry{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fingerprint returns the content hash used to detect stale entries.
func Fingerprint(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// Get returns the schemas cached for path if content still matches the
// cached fingerprint and the entry has not expired.
func (c *Cache) Get(path string, content []byte) ([]*schema.Schema, bool) {
	fp := Fingerprint(content)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok || e.fingerprint != fp || c.now().Sub(e.timestamp) >= c.cfg.MaxAge {
		return nil, false
	}
	return e.schemas, true
}

// Set stores the schemas parsed from content. Expired entries are dropped
// first; if the cache is still over capacity the oldest entries are evicted
// along with some headroom so the next few sets do not evict again.
func (c *Cache) Set(path string, content []byte, schemas []*schema.Schema) {
	fp := Fingerprint(content)
	for _, s := range schemas {
		s.Fingerprint = fp
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[path] = cacheEntry{schemas: schemas, fingerprint: fp, timestamp: now}

	for p, e := range c.entries {
		if now.Sub(e.timestamp) >= c.cfg.MaxAge {
			delete(c.entries, p)
		}
	}

	over := len(c.entries) - c.cfg.MaxEntries
	if over <= 0 {
		return
	}

	type aged struct {
		path string
		ts   time.Time
	}
	byAge := make([]aged, 0, len(c.entries))
	for p, e := range c.entries {
		if p == path {
			continue
		}
		byAge = append(byAge, aged{p, e.timestamp})
	}
	sort.Slice(byAge, func(i, j int) bool {
		return byAge[i].ts.Before(byAge[j].ts)
	})

	n := min(over+c.headroom(), len(byAge))
	for _, a := range byAge[:n] {
		delete(c.entries, a.path)
	}
}

func (c *Cache) headroom() int {
	return max(1, c.cfg.MaxEntries/10)
}

// Len returns the number of cached sources.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
}
