package bigint

import lru "github.com/hashicorp/golang-lru/v2"

// smallIntBound is the inclusive magnitude below which a big-integer value
// is eligible for the VM's shared small-integer cache, mirroring the
// reference compiler's integer-cache range.
const smallIntBound = 255

// Cache models the VM's shared small-integer cache consulted when a
// decomposed big-integer value escapes and must be re-boxed: small values
// are re-used from a shared pool of boxed objects (by cache slot) instead
// of allocating a fresh box every time. It is backed by an LRU so a cache
// with a bounded size still favors recently re-boxed values under memory
// pressure, matching how the reference VM bounds its own type caches.
type Cache struct {
	lru *lru.Cache[int64, int]
}

// NewCache returns a Cache holding at most size entries.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = 2*smallIntBound + 1
	}
	l, err := lru.New[int64, int](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l}, nil
}

// Slot returns the cache slot for v and whether v is small enough to use
// the shared cache at all. Repeated calls for the same v return the same
// slot.
func (c *Cache) Slot(v int64) (slot int, ok bool) {
	if c == nil || v < -smallIntBound || v > smallIntBound {
		return 0, false
	}
	if s, hit := c.lru.Get(v); hit {
		return s, true
	}
	s := int(v + smallIntBound)
	c.lru.Add(v, s)
	return s, true
}

// Box reports whether h is small enough to be re-boxed through the shared
// integer cache and, if so, which slot — the decision the materializer and
// the bigint-escape rewrite consult instead of always emitting a fresh
// allocation.
func (h Handle) Box(cache *Cache) (slot int, ok bool) {
	if cache == nil || !h.FitsInt64() {
		return 0, false
	}
	return cache.Slot(h.Int64())
}
