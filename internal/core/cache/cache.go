// Package cache provides a bounded in-memory TTL cache with FIFO eviction.
//
// The eviction policy is deliberate: entries leave in insertion order, and
// a Get never refreshes an entry's position. This is not an LRU and must
// not become one; callers rely on old entries aging out predictably.
package cache

import (
	"regexp"
	"sync"
	"time"
)

// Defaults applied by New when the config leaves fields zero.
const (
	DefaultTTL     = 60 * time.Second
	DefaultMaxSize = 128
)

// Config tunes a Cache.
type Config struct {
	// TTL is the default entry lifetime. SetWithTTL overrides per entry.
	TTL time.Duration
	// MaxSize bounds the entry count. Inserting a new key at capacity
	// evicts the oldest entry first.
	MaxSize int
	// Clock is injectable for tests. Defaults to time.Now.
	Clock func() time.Time
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a mutex-guarded TTL cache, generic over the value type. Safe
// for concurrent use.
type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	clock   func() time.Time

	entries map[string]entry[V]
	order   []string // insertion order, oldest first
}

// New returns a Cache with defaults filled in.
func New[V any](cfg Config) *Cache[V] {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	return &Cache[V]{
		ttl:     cfg.TTL,
		maxSize: cfg.MaxSize,
		clock:   cfg.Clock,
		entries: make(map[string]entry[V]),
	}
}

func (c *Cache[V]) now() time.Time {
	if c.clock != nil {
		return c.clock()
	}
	return time.Now()
}

// Get returns the live value for key. Expired entries are deleted on
// access and reported as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	ent, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if !c.now().Before(ent.expiresAt) {
		c.removeLocked(key)
		return zero, false
	}
	return ent.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with an explicit TTL. Overwriting an
// existing key keeps its original insertion position; only a new key can
// trigger eviction.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent := entry[V]{value: value, expiresAt: c.now().Add(ttl)}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = ent
		return
	}

	if len(c.order) >= c.maxSize && len(c.order) > 0 {
		c.removeLocked(c.order[0])
	}
	c.entries[key] = ent
	c.order = append(c.order, key)
}

// Delete removes key, reporting whether it was present.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	c.removeLocked(key)
	return true
}

// DeletePattern removes every key matching the regular expression and
// returns how many were removed.
func (c *Cache[V]) DeletePattern(pattern string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for _, key := range c.keysLocked() {
		if re.MatchString(key) {
			c.removeLocked(key)
			removed++
		}
	}
	return removed, nil
}

// Cleanup purges every expired entry and returns the purge count. Run it
// periodically in long-lived processes; lazy expiry alone only reclaims
// keys that get read again.
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	purged := 0
	for _, key := range c.keysLocked() {
		if !now.Before(c.entries[key].expiresAt) {
			c.removeLocked(key)
			purged++
		}
	}
	return purged
}

// Len returns the current entry count, expired entries included until they
// are collected.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the keys in insertion order, oldest first.
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keysLocked()
}

func (c *Cache[V]) keysLocked() []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}

func (c *Cache[V]) removeLocked(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
