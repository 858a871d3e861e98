// Package cache provides an in-memory key/value store with a fixed
// time-to-live and a maximum entry count.
//
// Entries expire purely by age since insertion; reads never renew them.
// When the store is over capacity after expired entries are dropped, the
// oldest insertions are evicted first.
package cache

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config sizes a Cache.
type Config struct {
	// Name labels metrics and log lines.
	Name string
	// TTL is the maximum age of an entry. Zero or negative means entries never expire.
	TTL time.Duration
	// MaxEntries caps the number of entries held after every Put.
	MaxEntries int
}

// Option customizes a Cache.
type Option func(*options)

type options struct {
	now func() time.Time
	log *zap.Logger
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger attaches a logger for eviction diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

type entry[V any] struct {
	value      V
	insertedAt time.Time
	seq        uint64
}

// Cache is safe for concurrent use; a single mutex guards every operation.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	seq     uint64

	name       string
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	log        *zap.Logger
}

// New constructs an empty cache. A negative MaxEntries is treated as zero.
func New[V any](cfg Config, opts ...Option) *Cache[V] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if cfg.MaxEntries < 0 {
		cfg.MaxEntries = 0
	}
	return &Cache[V]{
		entries:    make(map[string]entry[V]),
		name:       cfg.Name,
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		now:        o.now,
		log:        o.log.With(zap.String("cache", cfg.Name)),
	}
}

// Get returns the value for key. An expired entry is removed and reported absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		cacheMisses.WithLabelValues(c.name).Inc()
		return zero, false
	}
	if c.expired(e, c.now()) {
		delete(c.entries, key)
		cacheEvictions.WithLabelValues(c.name, reasonExpired).Inc()
		cacheMisses.WithLabelValues(c.name).Inc()
		return zero, false
	}
	cacheHits.WithLabelValues(c.name).Inc()
	return e.value, true
}

// Put stores value under key with the current time, then drops expired
// entries and evicts the oldest ones until the size is within MaxEntries.
// With MaxEntries of zero the new entry is evicted immediately.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.seq++
	c.entries[key] = entry[V]{value: value, insertedAt: now, seq: c.seq}
	c.cleanup(now)
}

// Delete removes key if present.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, expired or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge removes every entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

func (c *Cache[V]) expired(e entry[V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.insertedAt) > c.ttl
}

// cleanup must be called with c.mu held.
func (c *Cache[V]) cleanup(now time.Time) {
	expired := 0
	for k, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, k)
			expired++
		}
	}
	if expired > 0 {
		cacheEvictions.WithLabelValues(c.name, reasonExpired).Add(float64(expired))
	}

	excess := len(c.entries) - c.maxEntries
	if excess <= 0 {
		return
	}

	type aged struct {
		key string
		at  time.Time
		seq uint64
	}
	byAge := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		byAge = append(byAge, aged{key: k, at: e.insertedAt, seq: e.seq})
	}
	sort.Slice(byAge, func(i, j int) bool {
		if byAge[i].at.Equal(byAge[j].at) {
			return byAge[i].seq < byAge[j].seq
		}
		return byAge[i].at.Before(byAge[j].at)
	})
	for _, a := range byAge[:excess] {
		delete(c.entries, a.key)
	}
	cacheEvictions.WithLabelValues(c.name, reasonCapacity).Add(float64(excess))
	c.log.Debug("evicted entries over capacity",
		zap.Int("evicted", excess),
		zap.Int("expired", expired),
		zap.Int("max_entries", c.maxEntries),
	)
}
