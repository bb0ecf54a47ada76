package schemastore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/artefactual-labs/apimock/internal/schema"
)

const DefaultCooldown = 5 * time.Second

// SourceExt is the extension of declaration sources.
const SourceExt = ".ts"

// Entry is a registered schema and the file it was declared in.
type Entry struct {
	Schema     *schema.Schema
	SourcePath string
}

type RegistryConfig struct {
	// Cooldown is the minimum interval between two scans of a directory,
	// unless a lookup misses.
	Cooldown time.Duration
}

// Registry maps schema names to declarations found under a directory. The
// map is rebuilt wholesale by each scan and is never partially updated.
type Registry struct {
	cache    *Cache
	cooldown time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	dir      string
	entries  map[string]Entry
	lastScan time.Time
	scans    int
}

type RegistryOption func(*Registry)

func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

func NewRegistry(cache *Cache, cfg RegistryConfig, opts ...RegistryOption) *Registry {
	if cache == nil {
		cache = NewCache(CacheConfig{})
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	r := &Registry{
		cache:    cache,
		cooldown: cfg.Cooldown,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the schema registered under name. The directory is
// rescanned when the cooldown has elapsed, when dir differs from the last
// scanned directory, or when name is unknown. A failed scan clears the
// registry and resolves nothing. A scan stopped by ctx leaves the registry
// as it was.
func (r *Registry) Resolve(ctx context.Context, name, dir string) (*schema.Schema, bool) {
	r.mu.Lock()
	e, known := r.entries[name]
	fresh := r.dir == dir && r.entries != nil && r.now().Sub(r.lastScan) < r.cooldown
	r.mu.Unlock()

	if known && fresh {
		return e.Schema, true
	}

	entries, err := r.scan(ctx, dir)
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scans++
	if aborted(ctx, err) {
		r.logger.Debug("Schema scan aborted.", "dir", dir, "err", err)
		return nil, false
	}
	if err != nil {
		r.logger.Debug("Schema scan failed.", "dir", dir, "err", err)
		r.entries = nil
		r.dir = ""
		r.lastScan = time.Time{}
		return nil, false
	}
	r.entries = entries
	r.dir = dir
	r.lastScan = r.now()

	e, ok := entries[name]
	return e.Schema, ok
}

// Entries returns the registered schemas sorted by name.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Schema.Name < out[j].Schema.Name
	})
	return out
}

// Scan rebuilds the registry from dir unconditionally.
func (r *Registry) Scan(ctx context.Context, dir string) error {
	entries, err := r.scan(ctx, dir)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.scans++
	if aborted(ctx, err) {
		return err
	}
	if err != nil {
		r.entries, r.dir, r.lastScan = nil, "", time.Time{}
		return err
	}
	r.entries, r.dir, r.lastScan = entries, dir, r.now()
	return nil
}

// aborted reports whether err comes from ctx ending rather than from the
// sources themselves.
func aborted(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Scans reports how many scans have completed, successful or not.
func (r *Registry) Scans() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.scans
}

// Reset drops every registered schema and cached source.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.entries, r.dir, r.lastScan = nil, "", time.Time{}
	r.mu.Unlock()

	r.cache.Clear()
}

func (r *Registry) scan(ctx context.Context, dir string) (map[string]Entry, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == SourceExt {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	entries := make(map[string]Entry)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		schemas, err := r.load(ctx, path)
		if err != nil {
			return nil, err
		}
		for _, s := range schemas {
			if prev, ok := entries[s.Name]; ok {
				r.logger.Warn("Duplicate schema declaration.", "name", s.Name, "path", path, "previous", prev.SourcePath)
			}
			entries[s.Name] = Entry{Schema: s, SourcePath: path}
		}
	}

	return entries, nil
}

func (r *Registry) load(ctx context.Context, path string) ([]*schema.Schema, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema source: %w", err)
	}
	if schemas, ok := r.cache.Get(path, content); ok {
		return schemas, nil
	}

	schemas, err := schema.Parse(ctx, path, content)
	if err != nil {
		return nil, err
	}
	r.cache.Set(path, content, schemas)

	return schemas, nil
}
