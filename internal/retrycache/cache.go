// Package retrycache holds the per-message retry counters used to bound
// decryption retry storms. The cache is process-local by design: counters
// must survive a session restart, which tears down the socket, but must not
// survive the process.
package retrycache

import (
	"sync"
	"time"
)

const (
	defaultMaxEntries = 512
	defaultMaxAge     = time.Hour
)

// Config bounds the cache. Zero values are replaced with defaults by New.
type Config struct {
	MaxEntries int
	MaxAge     time.Duration
}

type entry struct {
	count   uint32
	touched time.Time
}

// Cache is a bounded map of message ID to failure count. Counters only
// increase; eviction happens by age and by capacity, never by resetting a
// live counter. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	cfg     Config
	entries map[string]entry
}

// New creates a Cache with the given bounds.
func New(cfg Config) *Cache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = defaultMaxEntries
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultMaxAge
	}

	return &Cache{
		cfg:     cfg,
		entries: make(map[string]entry),
	}
}

// Get returns the current failure count for a message ID, zero when the
// message has never failed or its entry aged out.
func (c *Cache) Get(messageID string) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[messageID]
	if !ok || time.Since(e.touched) > c.cfg.MaxAge {
		return 0
	}
	return e.count
}

// Increment bumps the failure count for a message ID and returns the new
// value.
func (c *Cache) Increment(messageID string) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.evictLocked(now)

	e := c.entries[messageID]
	e.count++
	e.touched = now
	c.entries[messageID] = e
	return e.count
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked drops aged entries, then the oldest entry if the cache is
// still at capacity. Called with c.mu held before every insert.
func (c *Cache) evictLocked(now time.Time) {
	for id, e := range c.entries {
		if now.Sub(e.touched) > c.cfg.MaxAge {
			delete(c.entries, id)
		}
	}

	if len(c.entries) < c.cfg.MaxEntries {
		return
	}

	var (
		oldestID string
		oldestAt time.Time
	)
	for id, e := range c.entries {
		if oldestID == "" || e.touched.Before(oldestAt) {
			oldestID = id
			oldestAt = e.touched
		}
	}
	if oldestID != "" {
		delete(c.entries, oldestID)
	}
}
