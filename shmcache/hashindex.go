package shmcache

import "hash/fnv"

// hashIndex is the fixed bucket array described in spec.md §4.8.2: each
// bucket holds the offset of the head of a singly-linked chain of USED
// records, threaded through each record's next field (the same field the
// allocator uses for the free list — a record is in exactly one of those
// roles at a time, decided by its flag).
type hashIndex struct {
	region []byte
	l      layout
	alloc  *allocator
}

func (h *hashIndex) bucket(i int) uint64 {
	off := h.l.bucketsOffset() + i*8
	return leUint64(h.region[off : off+8])
}

func (h *hashIndex) setBucket(i int, offset uint64) {
	off := h.l.bucketsOffset() + i*8
	putLEUint64(h.region[off:off+8], offset)
}

func (h *hashIndex) clearBuckets() {
	for i := 0; i < h.l.bucketCount; i++ {
		h.setBucket(i, noLink)
	}
}

// bucketFor hashes key with FNV-1a-32, per spec.md §4.8.2.
func (h *hashIndex) bucketFor(key []byte) int {
	sum := fnv.New32a()
	sum.Write(key)
	return int(sum.Sum32() % uint32(h.l.bucketCount))
}

// put prepends offset to its key's bucket chain.
func (h *hashIndex) put(key []byte, offset uint64) {
	i := h.bucketFor(key)
	r := h.alloc.record(offset)
	r.setNext(h.bucket(i))
	h.setBucket(i, offset)
}

// get walks key's bucket chain, comparing each record's stored key bytes
// with compare, and returns the first match.
func (h *hashIndex) get(key []byte, keyOf func(r record) []byte, compare func(a, b []byte) int) (uint64, bool) {
	i := h.bucketFor(key)
	for off := h.bucket(i); off != noLink; {
		r := h.alloc.record(off)
		if compare(keyOf(r), key) == 0 {
			return off, true
		}
		off = r.next()
	}
	return 0, false
}

// remove splices offset out of its key's bucket chain.
func (h *hashIndex) remove(key []byte, offset uint64) {
	i := h.bucketFor(key)
	head := h.bucket(i)
	if head == offset {
		h.setBucket(i, h.alloc.record(offset).next())
		return
	}
	for off := head; off != noLink; {
		r := h.alloc.record(off)
		if r.next() == offset {
			r.setNext(h.alloc.record(offset).next())
			return
		}
		off = r.next()
	}
}
