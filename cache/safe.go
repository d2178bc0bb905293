package cache

import "sync"

// Safe serializes every public call behind a single mutex. Use this
// wrapper whenever a [Cache] is shared across goroutines and contention
// is not a concern.
type Safe[K, T any] struct {
	mu sync.Mutex
	c  *Cache[K, T]
}

func NewSafe[K, T any](c *Cache[K, T]) *Safe[K, T] {
	return &Safe[K, T]{c: c}
}

func (s *Safe[K, T]) Put(key K, item T, expTime int64) PutResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Put(key, item, expTime)
}

func (s *Safe[K, T]) Get(key K, outHolder *T) GetResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Get(key, outHolder)
}

func (s *Safe[K, T]) Erase(key K) EraseResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Erase(key)
}

func (s *Safe[K, T]) Remove(key K, outExpTime *int64) (item T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Remove(key, outExpTime)
}

func (s *Safe[K, T]) Statistics() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Statistics()
}

func (s *Safe[K, T]) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Destroy()
}

// RWSafe guards a [Cache] with a read-write lock. Put, Erase, Remove, and
// Destroy always take the write side, same as [Safe].
//
// Get is documented here as a cautionary tale: a naive port would take the
// read side because onHit only copies bytes out, reasoning that reads
// don't mutate. Under [LRU] that reasoning is wrong — Get also moves the
// hit entry to the tail of the recency list, a write to shared structure.
// A version that takes the read lock on an LRU Get races every concurrent
// Get against that recency-list splice. This type always takes the write
// lock on Get regardless of policy; callers who know their cache is FIFO
// and want read-side concurrency should use a plain [sync.RWMutex]
// themselves instead of this type.
type RWSafe[K, T any] struct {
	mu sync.RWMutex
	c  *Cache[K, T]
}

func NewRWSafe[K, T any](c *Cache[K, T]) *RWSafe[K, T] {
	return &RWSafe[K, T]{c: c}
}

func (s *RWSafe[K, T]) Put(key K, item T, expTime int64) PutResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Put(key, item, expTime)
}

// Get always takes the write lock; see the type doc comment.
func (s *RWSafe[K, T]) Get(key K, outHolder *T) GetResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Get(key, outHolder)
}

func (s *RWSafe[K, T]) Erase(key K) EraseResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Erase(key)
}

func (s *RWSafe[K, T]) Remove(key K, outExpTime *int64) (item T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Remove(key, outExpTime)
}

func (s *RWSafe[K, T]) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.c.Statistics()
}

func (s *RWSafe[K, T]) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Destroy()
}
