// Package keycache provides a bounded in-memory cache for JWKS verification
// keys. Entries are evicted least-recently-used first once the cache is full,
// and may additionally expire after a sliding TTL measured from the last
// successful access. Expiry is checked lazily on lookup; there is no
// background sweeper.
package keycache

import (
	"container/list"
	"crypto/rsa"
	"sync"
	"time"
)

// DefaultMaxSize is used when the configured capacity is zero or negative.
const DefaultMaxSize = 20

type entry struct {
	kid          string
	key          *rsa.PublicKey
	lastAccessed time.Time
}

// Cache is a thread-safe LRU cache mapping key ids to RSA public keys.
// All mutations (insert, promote, evict) happen under a single mutex, so
// concurrent validations can share one instance.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration // zero disables time-based expiry
	order   *list.List    // front = most recently used
	items   map[string]*list.Element

	now func() time.Time
}

// New creates a cache holding at most maxSize entries. Non-positive sizes
// fall back to DefaultMaxSize rather than meaning "unbounded". A ttl of zero
// disables sliding expiry.
func New(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Cache{
		maxSize: maxSize,
		ttl:     ttl,
		order:   list.New(),
		items:   make(map[string]*list.Element),
		now:     time.Now,
	}
}

// TryGet returns the key stored under kid, if present and not expired.
// A hit refreshes the entry's TTL clock and promotes it to most recently
// used. An entry past its TTL is removed and reported absent.
func (c *Cache) TryGet(kid string) (*rsa.PublicKey, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[kid]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	now := c.now()
	if c.ttl > 0 && now.Sub(e.lastAccessed) > c.ttl {
		c.order.Remove(el)
		delete(c.items, kid)
		return nil, false
	}
	e.lastAccessed = now
	c.order.MoveToFront(el)
	return e.key, true
}

// Put stores key under kid, overwriting any existing entry and resetting its
// recency and TTL clock. If the cache is full, the least recently accessed
// entry is evicted first.
func (c *Cache) Put(kid string, key *rsa.PublicKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[kid]; ok {
		e := el.Value.(*entry)
		e.key = key
		e.lastAccessed = c.now()
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).kid)
		}
	}
	el := c.order.PushFront(&entry{kid: kid, key: key, lastAccessed: c.now()})
	c.items[kid] = el
}

// Len reports the number of entries currently held, including any whose TTL
// has lapsed but that have not been touched since.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
