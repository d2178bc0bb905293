package shmcache

// evictList is the doubly-linked recency list of spec.md §4.8.3, living
// inside the same mapped region. Head and tail are stored in the file
// header so they survive a reopen.
type evictList struct {
	h     fileHeader
	alloc *allocator
}

func (e *evictList) append(offset uint64) {
	r := e.alloc.record(offset)
	tail := e.h.evictTail()

	r.setEvictPrev(tail)
	r.setEvictNext(noLink)

	if tail == noLink {
		e.h.setEvictHead(offset)
	} else {
		e.alloc.record(tail).setEvictNext(offset)
	}
	e.h.setEvictTail(offset)
}

func (e *evictList) remove(offset uint64) {
	r := e.alloc.record(offset)
	prev, next := r.evictPrev(), r.evictNext()

	if prev == noLink {
		e.h.setEvictHead(next)
	} else {
		e.alloc.record(prev).setEvictNext(next)
	}
	if next == noLink {
		e.h.setEvictTail(prev)
	} else {
		e.alloc.record(next).setEvictPrev(prev)
	}

	r.setEvictPrev(noLink)
	r.setEvictNext(noLink)
}

// update gives LRU semantics when called on a hit: remove then append,
// moving offset to the tail. For FIFO mode the cache simply never calls
// this on a hit.
func (e *evictList) update(offset uint64) {
	e.remove(offset)
	e.append(offset)
}

func (e *evictList) clear() {
	e.h.setEvictHead(noLink)
	e.h.setEvictTail(noLink)
}
