// Package cache provides a two-tier compilation cache in front of
// regex.Compile: an unbounded in-process map checked first, then an
// optional pluggable store with a time-to-live. A hit on either tier
// returns the previously built Pattern without re-running the lexer
// and parser; Patterns are immutable, so sharing them is safe.
package cache

import (
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/faustbrian/jsgrep/regex"
)

// Store is the contract the persistent tier must satisfy. The concrete
// backend is chosen by the host application; MemoryStore is the
// reference implementation.
type Store interface {
	Get(key string) (*regex.Pattern, bool)
	Put(key string, p *regex.Pattern, ttl time.Duration)
	Clear()
}

// Cache is safe for concurrent use. Two goroutines compiling the same
// never-seen key may both run the compiler; the results are equal and
// immutable, so last-write-wins is harmless.
type Cache struct {
	mu    sync.RWMutex
	local map[string]*regex.Pattern
	store Store
	ttl   time.Duration
}

// New builds a Cache over an optional persistent store. store may be
// nil, leaving only the in-process tier; ttl applies to store writes.
func New(store Store, ttl time.Duration) *Cache {
	return &Cache{
		local: make(map[string]*regex.Pattern),
		store: store,
		ttl:   ttl,
	}
}

// Key returns the stable cache key for a (source, flags) pair.
func Key(source string, flags regex.Flag) string {
	h := fnv.New64a()
	h.Write([]byte{byte(flags)})
	h.Write([]byte(source))
	return strconv.FormatUint(h.Sum64(), 16)
}

// Compile returns the cached Pattern for (source, flags), consulting
// the in-process tier, then the store, compiling only on a double
// miss. A store hit is promoted into the in-process tier.
func (c *Cache) Compile(source string, flags regex.Flag) (*regex.Pattern, error) {
	key := Key(source, flags)

	c.mu.RLock()
	p, ok := c.local[key]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	if c.store != nil {
		if p, ok := c.store.Get(key); ok {
			c.mu.Lock()
			c.local[key] = p
			c.mu.Unlock()
			return p, nil
		}
	}

	p, err := regex.Compile(source, flags)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.local[key] = p
	c.mu.Unlock()
	if c.store != nil {
		c.store.Put(key, p, c.ttl)
	}
	return p, nil
}

// Flush clears both tiers unconditionally.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.local = make(map[string]*regex.Pattern)
	c.mu.Unlock()
	if c.store != nil {
		c.store.Clear()
	}
}

// Default is the process-wide cache used by the package-level
// functions; it has no persistent tier.
var Default = New(nil, 0)

// Compile is Default.Compile.
func Compile(source string, flags regex.Flag) (*regex.Pattern, error) {
	return Default.Compile(source, flags)
}

// Flush is Default.Flush.
func Flush() {
	Default.Flush()
}
