// Package cache implements an in-memory bounded cache over a [dict.Dict],
// with a doubly-linked recency list layered on top for FIFO or LRU
// eviction. It composes rather than reimplements ordering: every key
// comparison and teardown decision is delegated to the caller's [Handler].
package cache

import (
	"container/list"
	"time"

	"github.com/spsoft/spdict/dict"
)

// Policy selects the eviction discipline applied once Count exceeds
// capacity.
type Policy int

const (
	// FIFO evicts the oldest-inserted entry regardless of access pattern.
	FIFO Policy = iota
	// LRU evicts the least-recently-touched entry; a hit on Get moves the
	// entry to the tail of the recency list, same as a Put.
	LRU
)

func (p Policy) String() string {
	if p == LRU {
		return "LRU"
	}
	return "FIFO"
}

// PutResult reports whether Put inserted a new key or replaced an existing
// one.
type PutResult int

const (
	Inserted PutResult = iota
	Replaced
)

// GetResult reports whether Get found a live, unexpired entry.
type GetResult int

const (
	Hit GetResult = iota
	Miss
)

// EraseResult reports whether Erase found something to destroy.
type EraseResult int

const (
	Erased EraseResult = iota
	NotPresent
)

// Handler bundles the callbacks a [Cache] needs for its entire lifetime.
// Compare must impose the same strict total order for every call. Destroy
// is invoked exactly once per item that the cache stops owning by
// eviction, replacement, or Erase — never for an item returned by Remove.
// OnHit lets the caller copy the item out while still holding whatever
// lock guards the cache (see [Safe] and [RWSafe]); it runs with item as
// the live, cache-owned value, not a copy.
type Handler[K, T any] struct {
	Compare dict.Comparator[K]
	Destroy dict.Destroyer[T]
	OnHit   func(item T, outHolder *T)

	// Now returns the current time as a value comparable to the expTime
	// passed to Put. Defaults to time.Now().UnixNano() when nil. Tests
	// that need deterministic expiration should set this explicitly.
	Now func() int64
}

func (h Handler[K, T]) now() int64 {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UnixNano()
}

// Statistics is a point-in-time snapshot taken under whatever lock, if
// any, guards the cache.
type Statistics struct {
	Size      int
	Accesses  int64
	Hits      int64
	Evictions int64
}

// entry is the unit stored in both the dict and the recency list. Only the
// key participates in ordering; item and expTime are opaque cargo.
type entry[K, T any] struct {
	key     K
	item    T
	expTime int64
	elem    *list.Element
}

// Cache composes a [dict.Dict] keyed by K with a recency list of the same
// entries, giving either FIFO or LRU eviction over a bounded capacity.
// Capacity 0 disables eviction; the cache then grows without bound, same
// as a bare dict.
type Cache[K, T any] struct {
	policy   Policy
	capacity int
	h        Handler[K, T]
	d        dict.Dict[*entry[K, T]]
	recency  *list.List
	stats    Statistics
}

// New constructs a cache using kind as the backing ordered-dictionary
// engine. The default engine for callers that do not care is [dict.RBT].
func New[K, T any](kind dict.Kind, policy Policy, capacity int, h Handler[K, T]) *Cache[K, T] {
	c := &Cache[K, T]{
		policy:   policy,
		capacity: capacity,
		h:        h,
		recency:  list.New(),
	}
	c.d = dict.New(kind, dict.Handler[*entry[K, T]]{
		Compare: func(a, b *entry[K, T]) int { return h.Compare(a.key, b.key) },
		Destroy: func(e *entry[K, T]) {
			c.recency.Remove(e.elem)
			c.h.Destroy(e.item)
		},
	})
	return c
}

// Put installs item under key with expiration expTime (0 means never).
// On a key match the old item is destroyed via the dict's own replace
// path, which also splices the stale entry out of the recency list; the
// new entry is then appended to the tail. After insertion, while Count
// exceeds a positive capacity, the recency-list head is evicted.
func (c *Cache[K, T]) Put(key K, item T, expTime int64) PutResult {
	e := &entry[K, T]{key: key, item: item, expTime: expTime}
	action := c.d.Insert(e)
	e.elem = c.recency.PushBack(e)

	for c.capacity > 0 && c.d.Count() > c.capacity {
		c.evictHead()
	}

	if action == dict.Replaced {
		return Replaced
	}
	return Inserted
}

func (c *Cache[K, T]) evictHead() {
	front := c.recency.Front()
	if front == nil {
		return
	}
	c.eraseEntry(front.Value.(*entry[K, T]))
	c.stats.Evictions++
}

// eraseEntry retires e completely: out of the dict, out of the recency
// list, and its item destroyed. dict.Dict.Remove only returns ownership
// to the caller; it never unlinks the recency list or calls Destroy, so
// every caller that actually wants e torn down (as opposed to detached,
// see Remove below) must go through here instead of calling c.d.Remove
// directly.
func (c *Cache[K, T]) eraseEntry(e *entry[K, T]) {
	c.d.Remove(e)
	c.recency.Remove(e.elem)
	c.h.Destroy(e.item)
}

// Get reports whether key is present and unexpired. On a hit, h.OnHit
// copies the item into outHolder while the entry is still live; for an
// LRU cache the entry then moves to the tail of the recency list.
func (c *Cache[K, T]) Get(key K, outHolder *T) GetResult {
	c.stats.Accesses++

	e, found := c.d.Search(&entry[K, T]{key: key})
	if !found {
		return Miss
	}

	if e.expTime > 0 && e.expTime < c.h.now() {
		c.eraseEntry(e)
		return Miss
	}

	c.h.OnHit(e.item, outHolder)
	if c.policy == LRU {
		c.recency.MoveToBack(e.elem)
	}
	c.stats.Hits++
	return Hit
}

// Erase destroys the entry stored under key, if present.
func (c *Cache[K, T]) Erase(key K) EraseResult {
	e, found := c.d.Search(&entry[K, T]{key: key})
	if !found {
		return NotPresent
	}
	c.eraseEntry(e)
	return Erased
}

// Remove detaches the entry stored under key without destroying its
// item, returning ownership to the caller. outExpTime, if non-nil,
// receives the stored expiration.
func (c *Cache[K, T]) Remove(key K, outExpTime *int64) (item T, ok bool) {
	e, found := c.d.Search(&entry[K, T]{key: key})
	if !found {
		var zero T
		return zero, false
	}
	c.recency.Remove(e.elem)
	// Bypass the dict's own Destroy: this is a detach, not a teardown.
	c.removeWithoutDestroy(e)
	if outExpTime != nil {
		*outExpTime = e.expTime
	}
	return e.item, true
}

// removeWithoutDestroy detaches e from the dict without destroying its
// item: c.h.Destroy is swapped for a no-op for the duration of the
// c.d.Remove call and restored afterwards. It does not touch the recency
// list; Remove unlinks e.elem before calling it.
func (c *Cache[K, T]) removeWithoutDestroy(e *entry[K, T]) {
	savedDestroy := c.h.Destroy
	c.h.Destroy = func(T) {}
	c.d.Remove(e)
	c.h.Destroy = savedDestroy
}

// Count returns the number of live entries.
func (c *Cache[K, T]) Count() int { return c.d.Count() }

// Statistics snapshots hits/accesses/size/evictions.
func (c *Cache[K, T]) Statistics() Statistics {
	c.stats.Size = c.d.Count()
	return c.stats
}

// Destroy tears down the cache, destroying every remaining item.
func (c *Cache[K, T]) Destroy() {
	c.d.Destroy()
	c.recency.Init()
}
