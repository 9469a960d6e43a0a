// Ambler - Walkable Points-of-Interest Recommendations
// Copyright 2026 Ambler Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ambler-app/ambler

// Package cache provides the in-memory ranking-result cache: a
// thread-safe LRU with TTL expiry and a single-flight guard so one
// expensive fetch-and-rank pass runs per key at a time.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// entry is a node in the LRU's doubly-linked list.
type entry struct {
	key       string
	value     interface{}
	prev      *entry
	next      *entry
	expiresAt time.Time
}

// ResultCache is a thread-safe LRU cache with TTL support. It provides
// O(1) Get, Set, and eviction via a doubly-linked list over a hashmap.
// Expired entries are dropped lazily on access and in bulk via
// CleanupExpired.
type ResultCache struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration

	items map[string]*entry

	// head.next is most recently used, tail.prev is least recently used.
	head *entry
	tail *entry

	hits      int64
	misses    int64
	evictions int64

	// inflight serializes computations per key for GetOrCompute.
	inflight map[string]*call
}

// call is an in-progress computation shared by concurrent waiters.
type call struct {
	wg    sync.WaitGroup
	value interface{}
	err   error
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// New creates a ResultCache with the given capacity and TTL. Zero or
// negative values fall back to sensible defaults.
func New(capacity int, ttl time.Duration) *ResultCache {
	if capacity <= 0 {
		capacity = 1024
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	c := &ResultCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*entry, capacity),
		head:     &entry{},
		tail:     &entry{},
		inflight: make(map[string]*call),
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Key derives a stable cache key from any JSON-marshalable request
// shape. Two requests with identical normalized fields share a key.
func Key(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// Get retrieves a value. Found entries move to the front (most recently
// used); expired entries are removed and reported as misses.
func (c *ResultCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *ResultCache) getLocked(key string) (interface{}, bool) {
	if e, ok := c.items[key]; ok {
		if time.Now().After(e.expiresAt) {
			c.removeEntry(e)
			c.misses++
			return nil, false
		}
		c.moveToFront(e)
		c.hits++
		return e.value, true
	}
	c.misses++
	return nil, false
}

// Set adds or refreshes an entry, evicting the least recently used
// entry when over capacity.
func (c *ResultCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

func (c *ResultCache) setLocked(key string, value interface{}) {
	expiresAt := time.Now().Add(c.ttl)

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(e)
	c.items[key] = e

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// GetOrCompute returns the cached value for key, or runs compute exactly
// once per key while concurrent callers for the same key wait and share
// the outcome. Errors are not cached; the next caller recomputes.
func (c *ResultCache) GetOrCompute(key string, compute func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	if v, ok := c.getLocked(key); ok {
		c.mu.Unlock()
		return v, nil
	}
	if inflight, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		inflight.wg.Wait()
		return inflight.value, inflight.err
	}
	cl := &call{}
	cl.wg.Add(1)
	c.inflight[key] = cl
	c.mu.Unlock()

	cl.value, cl.err = compute()

	c.mu.Lock()
	delete(c.inflight, key)
	if cl.err == nil {
		c.setLocked(key, cl.value)
	}
	c.mu.Unlock()
	cl.wg.Done()

	return cl.value, cl.err
}

// Remove deletes an entry, reporting whether it was present.
func (c *ResultCache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.removeEntry(e)
		return true
	}
	return false
}

// Len returns the current number of entries.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// CleanupExpired removes all expired entries and returns how many were
// dropped. Intended to run on a background ticker.
func (c *ResultCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if now.After(e.expiresAt) {
			c.removeEntry(e)
			removed++
		}
		e = prev
	}
	return removed
}

// Stats returns hit/miss/eviction counters and the current size.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.items),
	}
}

// List manipulation. Must be called with the lock held.

func (c *ResultCache) addToFront(e *entry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *ResultCache) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

func (c *ResultCache) removeEntry(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

func (c *ResultCache) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
	c.evictions++
}
