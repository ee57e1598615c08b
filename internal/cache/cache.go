// internal/cache/cache.go
//
// Bounded, time-expiring key→value cache used in front of every external
// relationship provider.
// Responsibilities:
//   - Lazy expiry: Get treats an entry older than ttl as absent and deletes it.
//   - Capacity eviction: Set on a full cache drops the oldest ~20% of entries
//     (by creation time) before inserting.
//   - Optional best-effort persistence through an injected Storage.
//
// Notes:
//   - One Cache per concern (word existence, dictionary entries, relationship
//     sets, embedding vectors, validation outcomes), each with its own
//     capacity/ttl.
//   - Safe for concurrent use. Callers that must not issue duplicate fetches
//     for the same key pair Get/Set with a singleflight group.

package cache

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/linkdle/internal/metrics"
)

// evictFraction is the share of capacity removed by one eviction pass.
const evictFraction = 0.2

// Entry is a cached value stamped with its creation time.
type Entry[V any] struct {
	Value     V         `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// Cache is a generic TTL cache with oldest-first capacity eviction.
type Cache[V any] struct {
	name     string
	capacity int
	ttl      time.Duration

	mu      sync.Mutex
	entries map[string]Entry[V]

	now     func() time.Time
	storage Storage
	log     zerolog.Logger
}

// options holds the non-generic construction knobs.
type options struct {
	now     func() time.Time
	storage Storage
	log     zerolog.Logger
}

// Option configures a Cache.
type Option func(*options)

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithStorage attaches a durable snapshot store used by Load and Save.
func WithStorage(s Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New constructs an empty cache. capacity < 1 is treated as 1.
func New[V any](name string, capacity int, ttl time.Duration, opts ...Option) *Cache[V] {
	o := options{now: time.Now, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[V]{
		name:     name,
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]Entry[V], capacity),
		now:      o.now,
		storage:  o.storage,
		log:      o.log.With().Str("cache", name).Logger(),
	}
}

// Name returns the cache name (also the snapshot key).
func (c *Cache[V]) Name() string { return c.name }

// Get returns the value for key. Expired entries are deleted and reported absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		metrics.CacheLookups.WithLabelValues(c.name, "miss").Inc()
		var zero V
		return zero, false
	}
	if c.expired(e, c.now()) {
		delete(c.entries, key)
		metrics.CacheLookups.WithLabelValues(c.name, "expired").Inc()
		var zero V
		return zero, false
	}
	metrics.CacheLookups.WithLabelValues(c.name, "hit").Inc()
	return e.Value, true
}

// Set stores value under key, evicting the oldest entries first when full.
// Overwriting an existing key never triggers eviction.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	c.entries[key] = Entry[V]{Value: value, CreatedAt: c.now()}
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns the stored keys in creation order (oldest first).
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keysByAge()
}

// evictOldest removes ceil(capacity*evictFraction) entries, oldest first.
// Caller holds c.mu.
func (c *Cache[V]) evictOldest() {
	n := int(math.Ceil(float64(c.capacity) * evictFraction))
	keys := c.keysByAge()
	if n > len(keys) {
		n = len(keys)
	}
	for _, k := range keys[:n] {
		delete(c.entries, k)
	}
	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
}

// keysByAge lists keys sorted by CreatedAt ascending. Caller holds c.mu.
func (c *Cache[V]) keysByAge() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return c.entries[a].CreatedAt.Compare(c.entries[b].CreatedAt)
	})
	return keys
}

func (c *Cache[V]) expired(e Entry[V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.CreatedAt) > c.ttl
}
