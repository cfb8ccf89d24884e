package registry

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"modcompat/internal/facts"
)

// DefaultCacheSize is the class capacity of Cached when size <= 0.
const DefaultCacheSize = 1024

type cachedClass struct {
	class *facts.ClassFact
	found bool
}

// CachedSnapshot memoizes Class lookups of another snapshot in a bounded
// LRU keyed by qualified class name. Misses are cached, errors are not.
// An evicted entry is fetched again from the inner snapshot, whose facts
// are immutable, so lookups never observe stale data.
//
// Not safe for concurrent callers: Class checks and then populates.
type CachedSnapshot struct {
	inner  ModuleSnapshot
	cache  *lru.Cache[string, cachedClass]
	hits   int
	misses int
}

// Cached wraps s. Wrapping a CachedSnapshot returns it unchanged.
func Cached(s ModuleSnapshot, size int) *CachedSnapshot {
	if c, ok := s.(*CachedSnapshot); ok {
		return c
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, cachedClass](size)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return &CachedSnapshot{inner: s, cache: cache}
}

func (c *CachedSnapshot) Descriptor() *facts.ModuleDescriptor { return c.inner.Descriptor() }
func (c *CachedSnapshot) Packages() []string                  { return c.inner.Packages() }

func (c *CachedSnapshot) ClassNames(pkg string) ([]string, error) {
	return c.inner.ClassNames(pkg)
}

func (c *CachedSnapshot) Class(pkg, name string) (*facts.ClassFact, bool, error) {
	key := facts.TypeRef{Package: pkg, Name: name}.Qualified()
	if v, ok := c.cache.Get(key); ok {
		c.hits++
		return v.class, v.found, nil
	}
	c.misses++
	cls, found, err := c.inner.Class(pkg, name)
	if err != nil {
		return nil, false, err
	}
	c.cache.Add(key, cachedClass{class: cls, found: found})
	return cls, found, nil
}

// Stats returns cache hits and misses since construction.
func (c *CachedSnapshot) Stats() (hits, misses int) { return c.hits, c.misses }

// Len returns the number of resident entries.
func (c *CachedSnapshot) Len() int { return c.cache.Len() }

// Unwrap returns the decorated snapshot.
func (c *CachedSnapshot) Unwrap() ModuleSnapshot { return c.inner }
