package shmcache

// allocator is the offset slab allocator described in spec.md §4.8.1: the
// record region is carved into l.recordCount equal records, record 0
// reserved as the free-list head, the rest forming a singly-linked LIFO
// free chain through each record's next field.
type allocator struct {
	region []byte
	l      layout
}

func (a *allocator) record(offset uint64) record {
	base := a.l.recordsOffset() + int(offset)
	return record(a.region[base : base+a.l.recordLen])
}

func (a *allocator) head() record { return a.record(0) }

// valid reports whether offset addresses a real, in-range, aligned
// record other than the reserved record 0.
func (a *allocator) valid(offset uint64) bool {
	if offset == 0 || offset == noLink {
		return false
	}
	if offset%uint64(a.l.recordLen) != 0 {
		return false
	}
	return int(offset) < a.l.recordsLen()
}

// initFreeList links every record but record 0 into one ascending free
// chain, used when the file is freshly created.
func (a *allocator) initFreeList() {
	a.head().setNext(noLink)
	for i := a.l.recordCount - 1; i >= 1; i-- {
		off := uint64(i * a.l.recordLen)
		r := a.record(off)
		r.setFlag(recordFree)
		r.setNext(a.head().next())
		a.head().setNext(off)
	}
}

// alloc pops the free-list head, stamps it USED, and returns its offset.
// ok is false if the free list is empty.
func (a *allocator) alloc() (offset uint64, ok bool) {
	head := a.head()
	first := head.next()
	if first == noLink {
		return 0, false
	}
	r := a.record(first)
	head.setNext(r.next())
	r.setFlag(recordUsed)
	return first, true
}

// free marks offset FREE and pushes it onto the free-list head.
func (a *allocator) free(offset uint64) {
	r := a.record(offset)
	r.setFlag(recordFree)
	head := a.head()
	r.setNext(head.next())
	head.setNext(offset)
}

// check is the recovery routine of spec.md §4.8.1: it clears the
// free-list head, then for every USED record invokes verify, which
// decides keep/drop based on its own checksum logic. Surviving records
// are returned for the caller to re-insert into the hash index and
// eviction list. Finally every FREE record is pushed onto the
// reconstructed free list tail-to-head, so the lowest-addressed free
// record comes off first on the next alloc.
func (a *allocator) check(verify func(offset uint64, r record) (keep bool)) []uint64 {
	a.head().setNext(noLink)

	var surviving []uint64
	for i := 1; i < a.l.recordCount; i++ {
		off := uint64(i * a.l.recordLen)
		r := a.record(off)
		if r.flag() != recordUsed {
			continue
		}
		if verify(off, r) {
			surviving = append(surviving, off)
		} else {
			r.setFlag(recordFree)
		}
	}

	for i := a.l.recordCount - 1; i >= 1; i-- {
		off := uint64(i * a.l.recordLen)
		if a.record(off).flag() == recordFree {
			a.free(off)
		}
	}

	return surviving
}

// selfCheck walks the free chain, failing if it cycles or disagrees with
// the total record count — a sanity pass independent of the item-level
// verify callback used by check.
func (a *allocator) selfCheck() error {
	seen := make(map[uint64]bool)
	free := 0
	for off := a.head().next(); off != noLink; off = a.record(off).next() {
		if seen[off] {
			return errCycleInFreeList
		}
		seen[off] = true
		free++
		if free > a.l.recordCount {
			return errCycleInFreeList
		}
	}

	used := 0
	for i := 1; i < a.l.recordCount; i++ {
		if a.record(uint64(i*a.l.recordLen)).flag() == recordUsed {
			used++
		}
	}

	if free+used != a.l.recordCount-1 {
		return errAllocatorAccounting
	}
	return nil
}
