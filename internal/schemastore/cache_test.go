package schemastore_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/artefactual-labs/apimock/internal/schema"
	"github.com/artefactual-labs/apimock/internal/schemastore"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCacheHitAfterSet(t *testing.T) {
	t.Parallel()

	c := schemastore.NewCache(schemastore.CacheConfig{})
	content := []byte("interface A { a: string }")
	want := []*schema.Schema{{Name: "A"}}

	c.Set("a.ts", content, want)

	got, ok := c.Get("a.ts", content)
	assert.Assert(t, ok)
	assert.Equal(t, got[0].Name, "A")
	assert.Equal(t, got[0].Fingerprint, schemastore.Fingerprint(content))
}

func TestCacheMissOnChangedContent(t *testing.T) {
	t.Parallel()

	c := schemastore.NewCache(schemastore.CacheConfig{})
	c.Set("a.ts", []byte("interface A { a: string }"), []*schema.Schema{{Name: "A"}})

	_, ok := c.Get("a.ts", []byte("interface A { a: number }"))
	assert.Assert(t, !ok)

	_, ok = c.Get("b.ts", []byte("interface A { a: string }"))
	assert.Assert(t, !ok)
}

func TestCacheExpiry(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := schemastore.NewCache(schemastore.CacheConfig{MaxAge: time.Minute}, schemastore.WithClock(clock.Now))
	content := []byte("x")
	c.Set("a.ts", content, nil)

	clock.Advance(59 * time.Second)
	_, ok := c.Get("a.ts", content)
	assert.Assert(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("a.ts", content)
	assert.Assert(t, !ok)
}

func TestCacheSetEvictsExpiredEntries(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := schemastore.NewCache(schemastore.CacheConfig{MaxAge: time.Minute}, schemastore.WithClock(clock.Now))
	c.Set("old.ts", []byte("old"), nil)

	clock.Advance(2 * time.Minute)
	c.Set("new.ts", []byte("new"), nil)

	assert.Equal(t, c.Len(), 1)
}

func TestCacheSetEvictsOldestWithHeadroom(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := schemastore.NewCache(schemastore.CacheConfig{MaxEntries: 20}, schemastore.WithClock(clock.Now))
	for i := range 20 {
		c.Set(fmt.Sprintf("%02d.ts", i), []byte{byte(i)}, nil)
		clock.Advance(time.Second)
	}
	assert.Equal(t, c.Len(), 20)

	// One over capacity: the oldest entry goes, plus a headroom of two.
	c.Set("new.ts", []byte("new"), nil)
	assert.Equal(t, c.Len(), 18)

	for _, evicted := range []string{"00.ts", "01.ts", "02.ts"} {
		_, ok := c.Get(evicted, []byte{evicted[1] - '0'})
		assert.Assert(t, !ok, evicted)
	}
	_, ok := c.Get("03.ts", []byte{3})
	assert.Assert(t, ok)
	_, ok = c.Get("new.ts", []byte("new"))
	assert.Assert(t, ok)
}

func TestCacheMinimumHeadroom(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := schemastore.NewCache(schemastore.CacheConfig{MaxEntries: 3}, schemastore.WithClock(clock.Now))
	for i := range 4 {
		c.Set(fmt.Sprintf("%d.ts", i), []byte{byte(i)}, nil)
		clock.Advance(time.Second)
	}

	assert.Equal(t, c.Len(), 2)
}
