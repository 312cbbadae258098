package llm

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/Italo-Ba-Hall/SITE/internal/domain"
)

// ResponseCache is a bounded, content-addressed cache of completion results.
// Identical conversational context plus an identical next message is treated
// as a deterministic query, so a prior result can be replayed within the TTL.
// Eviction is strict LRU; entries also expire after the TTL.
type ResponseCache struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

type cacheEntry struct {
	key      string
	result   *domain.CompletionResult
	storedAt time.Time
}

// NewResponseCache creates a cache bounded to capacity entries with the given TTL.
func NewResponseCache(capacity int, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Fingerprint derives the cache key for a (context, message) pair. The prior
// message contents are JSON-encoded in order, so identical inputs always hash
// to the same key regardless of call time.
func Fingerprint(prior []string, message string) string {
	contents, _ := json.Marshal(prior)
	sum := sha256.Sum256(append(append(contents, ':'), []byte(message)...))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached result for key, promoting it to most recently used.
// Expired entries are removed and reported absent.
func (c *ResponseCache) Get(key string) (*domain.CompletionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.order.Remove(el)
		delete(c.entries, key)
		return nil, false
	}
	c.order.MoveToFront(el)
	return entry.result, true
}

// Put stores result under key, evicting the least recently used entry when at
// capacity. An updated key is promoted to most recently used.
func (c *ResponseCache) Put(key string, result *domain.CompletionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.result = result
		entry.storedAt = c.now()
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		c.evictOldestLocked()
	}
	el := c.order.PushFront(&cacheEntry{key: key, result: result, storedAt: c.now()})
	c.entries[key] = el
}

// SweepExpired removes every entry older than the TTL and returns how many
// were dropped. Staleness is re-checked under the lock, so an entry refreshed
// by a concurrent Put survives.
func (c *ResponseCache) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		entry := el.Value.(*cacheEntry)
		if c.now().Sub(entry.storedAt) > c.ttl {
			c.order.Remove(el)
			delete(c.entries, entry.key)
			removed++
		}
		el = prev
	}
	return removed
}

// AutoCompact is the backpressure valve run by the janitor: above 80% of
// capacity it sweeps expired entries, and if still above the high-water mark it
// force-evicts the oldest 20% of what remains.
func (c *ResponseCache) AutoCompact() {
	highWater := c.capacity * 8 / 10

	if c.Len() <= highWater {
		return
	}
	c.SweepExpired()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.order.Len() <= highWater {
		return
	}
	toEvict := c.order.Len() / 5
	for i := 0; i < toEvict; i++ {
		c.evictOldestLocked()
	}
}

// Len returns the number of live entries.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats reports cache occupancy for the stats endpoint.
func (c *ResponseCache) Stats() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return map[string]any{
		"size":      c.order.Len(),
		"max_size":  c.capacity,
		"ttl_hours": c.ttl.Hours(),
	}
}

func (c *ResponseCache) evictOldestLocked() {
	el := c.order.Back()
	if el == nil {
		return
	}
	entry := el.Value.(*cacheEntry)
	c.order.Remove(el)
	delete(c.entries, entry.key)
}
