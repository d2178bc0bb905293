package shmcache

import "errors"

// Sentinel errors returned by shmcache operations. Callers should use
// [errors.Is] to check which one occurred.
var (
	// ErrIncompatible means an existing file's magic or stamped
	// (itemSize, bucketCount, length) disagree with the parameters
	// passed to Open.
	ErrIncompatible = errors.New("shmcache: incompatible file")

	// ErrOutOfMemory means Put could not allocate a record: the free
	// list was empty and the one targeted eviction retry also failed.
	ErrOutOfMemory = errors.New("shmcache: out of memory")

	errCycleInFreeList    = errors.New("shmcache: cycle in free list")
	errAllocatorAccounting = errors.New("shmcache: free+used record count mismatch")
)
