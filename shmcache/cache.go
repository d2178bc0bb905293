// Package shmcache implements a fixed-record cache whose entire state
// lives in a memory-mapped file, so it survives process restart and can
// be shared, read-mostly, across processes holding their own mapping of
// the same file. Cache takes no lock of its own: a writer must hold an
// external lock against every other access.
package shmcache

import (
	"fmt"
	"hash/fnv"
	"os"
	"sort"
	"time"

	"github.com/spsoft/spdict/cache"
	"github.com/spsoft/spdict/mmapfile"
)

// OpenResult reports whether Open created a fresh file or reused and
// recovered an existing one.
type OpenResult int

const (
	Created OpenResult = iota
	Reused
)

// Handler bundles the callbacks a Cache needs. Keys and values are fixed
// width (KeySize, ValueSize bytes); Compare orders two key byte slices.
// OnHit copies the matched value into outHolder.
type Handler struct {
	KeySize   int
	ValueSize int
	Compare   func(a, b []byte) int
	OnHit     func(value []byte, outHolder []byte)

	// Now returns the current time for expTime comparisons. Defaults to
	// time.Now().UnixNano() when nil.
	Now func() int64
}

func (h Handler) now() int64 {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UnixNano()
}

// Cache is a fixed-record, hash-indexed, crash-recoverable cache backed
// by one memory-mapped file.
type Cache struct {
	mf     *mmapfile.File
	region []byte
	header fileHeader
	l      layout
	alloc  *allocator
	hash   *hashIndex
	evict  *evictList
	h      Handler
	policy cache.Policy

	accesses int64
	hits     int64
}

// Open maps or creates path sized for exactly recordCount records (the
// reserved record 0 included) of keySize+valueSize bytes each, indexed by
// bucketCount hash buckets. On an existing file, Open verifies the
// stamped geometry matches and then runs the recovery pass described in
// spec.md §4.8: buckets and the eviction list are rebuilt from scratch by
// walking every record, keeping only those whose stored checksum still
// matches their payload, and re-inserting survivors in ascending expTime
// order so recency order is deterministic across reopens.
func Open(path string, keySize, valueSize, bucketCount, recordCount int, policy cache.Policy, h Handler) (*Cache, OpenResult, error) {
	l := newLayout(keySize, valueSize, bucketCount, recordCount)

	mf, isNew, err := mmapfile.OpenOrCreate(path, int64(l.totalLen()))
	if err != nil {
		if info, statErr := os.Stat(path); statErr == nil && info.Size() != int64(l.totalLen()) {
			return nil, 0, ErrIncompatible
		}
		return nil, 0, err
	}

	c := &Cache{mf: mf, region: mf.Bytes, l: l, h: h, policy: policy}
	c.header = fileHeader{buf: c.region[:fileHeaderLen]}
	c.alloc = &allocator{region: c.region, l: l}
	c.hash = &hashIndex{region: c.region, l: l, alloc: c.alloc}
	c.evict = &evictList{h: c.header, alloc: c.alloc}

	if isNew {
		c.header.setMagic()
		c.header.setItemSize(uint32(l.itemSize()))
		c.header.setBucketCount(uint32(bucketCount))
		c.header.setRecordCount(uint64(recordCount))
		c.header.setEvictHead(noLink)
		c.header.setEvictTail(noLink)
		c.header.setLiveCount(0)
		c.hash.clearBuckets()
		c.alloc.initFreeList()
		return c, Created, nil
	}

	if !c.header.magicOK() {
		_ = mf.Release()
		return nil, 0, ErrIncompatible
	}
	if c.header.itemSize() != uint32(l.itemSize()) ||
		c.header.bucketCount() != uint32(bucketCount) ||
		c.header.recordCount() != uint64(recordCount) {
		_ = mf.Release()
		return nil, 0, ErrIncompatible
	}

	c.hash.clearBuckets()
	c.evict.clear()

	if err := c.recover(); err != nil {
		_ = mf.Release()
		return nil, 0, err
	}
	return c, Reused, nil
}

func (c *Cache) keyOf(r record) []byte { return r.payload()[:c.l.keySize] }
func (c *Cache) valueOf(r record) []byte { return r.payload()[c.l.keySize:] }

func (c *Cache) recover() error {
	type survivor struct {
		offset  uint64
		expTime int64
	}

	raw := c.alloc.check(func(_ uint64, r record) bool {
		return payloadChecksum(r.payload()) == r.checksum()
	})

	survivors := make([]survivor, 0, len(raw))
	for _, off := range raw {
		r := c.alloc.record(off)
		survivors = append(survivors, survivor{offset: off, expTime: r.expTime()})
	}
	sort.Slice(survivors, func(i, j int) bool { return survivors[i].expTime < survivors[j].expTime })

	for _, s := range survivors {
		r := c.alloc.record(s.offset)
		c.hash.put(c.keyOf(r), s.offset)
		c.evict.append(s.offset)
	}
	c.header.setLiveCount(uint64(len(survivors)))
	return c.alloc.selfCheck()
}

func (c *Cache) stamp(r record, key, value []byte, expTime int64) {
	copy(r.payload()[:c.l.keySize], key)
	copy(r.payload()[c.l.keySize:], value)
	r.setExpTime(expTime)
	r.setChecksum(payloadChecksum(r.payload()))
}

// payloadChecksum is the FNV-1a-32 checksum stored with every record.
func payloadChecksum(payload []byte) uint32 {
	sum := fnv.New32a()
	sum.Write(payload)
	return sum.Sum32()
}

// Put installs value under key with expiration expTime (0 means never).
// On a hash match the payload is overwritten in place, the checksum
// recomputed, and the recency list updated unconditionally. On a miss it
// allocates a new record; if the allocator is full it makes one targeted
// eviction attempt against the recency-list head, evicting it only if
// already expired, then retries once before failing with
// [ErrOutOfMemory].
func (c *Cache) Put(key, value []byte, expTime int64) (cache.PutResult, error) {
	if len(key) != c.l.keySize || len(value) != c.l.valueSize {
		return 0, fmt.Errorf("shmcache: key/value size mismatch: got %d/%d, want %d/%d",
			len(key), len(value), c.l.keySize, c.l.valueSize)
	}

	if off, found := c.hash.get(key, c.keyOf, c.h.Compare); found {
		r := c.alloc.record(off)
		c.stamp(r, key, value, expTime)
		c.evict.update(off)
		return cache.Replaced, nil
	}

	off, ok := c.alloc.alloc()
	if !ok {
		off, ok = c.evictExpiredHeadAndRetryAlloc()
		if !ok {
			return 0, ErrOutOfMemory
		}
	}

	r := c.alloc.record(off)
	c.stamp(r, key, value, expTime)
	c.hash.put(key, off)
	c.evict.append(off)
	c.header.setLiveCount(c.header.liveCount() + 1)
	return cache.Inserted, nil
}

func (c *Cache) evictExpiredHeadAndRetryAlloc() (uint64, bool) {
	head := c.header.evictHead()
	if head == noLink {
		return 0, false
	}
	r := c.alloc.record(head)
	if r.expTime() == 0 || r.expTime() >= c.h.now() {
		return 0, false
	}
	c.eraseOffset(head, c.keyOf(r))
	return c.alloc.alloc()
}

// Get reports whether key is present and unexpired, copying the matched
// value into outHolder via h.OnHit on a hit. A LRU cache moves the entry
// to the recency-list tail on every hit; FIFO never does.
func (c *Cache) Get(key []byte, outHolder []byte) (cache.GetResult, error) {
	c.accesses++

	off, found := c.hash.get(key, c.keyOf, c.h.Compare)
	if !found {
		return cache.Miss, nil
	}

	r := c.alloc.record(off)
	if r.expTime() != 0 && r.expTime() < c.h.now() {
		c.eraseOffset(off, key)
		return cache.Miss, nil
	}

	c.h.OnHit(c.valueOf(r), outHolder)
	if c.policy == cache.LRU {
		c.evict.update(off)
	}
	c.hits++
	return cache.Hit, nil
}

// Erase destroys the record stored under key, if present.
func (c *Cache) Erase(key []byte) cache.EraseResult {
	off, found := c.hash.get(key, c.keyOf, c.h.Compare)
	if !found {
		return cache.NotPresent
	}
	c.eraseOffset(off, key)
	return cache.Erased
}

func (c *Cache) eraseOffset(off uint64, key []byte) {
	c.hash.remove(key, off)
	c.evict.remove(off)
	c.alloc.free(off)
	c.header.setLiveCount(c.header.liveCount() - 1)
}

// SetEvictAlgo switches the eviction policy applied on future Get hits.
func (c *Cache) SetEvictAlgo(policy cache.Policy) { c.policy = policy }

// Statistics snapshots hits/accesses/size. Unlike liveCount, the hit and
// access counters are process-local and reset across a reopen.
func (c *Cache) Statistics() cache.Statistics {
	return cache.Statistics{
		Size:     int(c.header.liveCount()),
		Accesses: c.accesses,
		Hits:     c.hits,
	}
}

// Close releases the mapping. It does not remove the file.
func (c *Cache) Close() error { return c.mf.Release() }
