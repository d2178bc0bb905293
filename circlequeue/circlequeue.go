// Package circlequeue implements a bounded multi-process queue backed by
// a memory-mapped ring buffer plus a three-slot SysV semaphore set, per
// spec.md §4.10.
package circlequeue

import (
	"fmt"
	"io"

	"github.com/spsoft/spdict/mmapfile"
)

// Queue is a fixed-capacity FIFO whose ring buffer and header live in a
// memory-mapped file, so any process that opens the same path shares the
// same queue. Producers block on the pushSpace semaphore, consumers on
// popAvailable; both take the lock semaphore around the head/tail
// update, so Push and Pop are each safe to call concurrently from
// multiple processes.
type Queue struct {
	mf       *mmapfile.File
	region   []byte
	h        queueHeader
	sem      *semSet
	itemSize int
	maxCount int
}

// Open maps or creates path as a queue of maxCount items, itemSize bytes
// each. warnOut, if non-nil, receives a diagnostic line when reopening a
// non-empty queue whose stored count disagrees with head/tail.
func Open(path string, itemSize, maxCount int, warnOut io.Writer) (*Queue, bool, error) {
	length := int64(headerLen + maxCount*itemSize)

	mf, isNew, err := mmapfile.OpenOrCreate(path, length)
	if err != nil {
		return nil, false, err
	}

	q := &Queue{mf: mf, region: mf.Bytes, itemSize: itemSize, maxCount: maxCount}
	q.h = queueHeader{buf: q.region[:headerLen]}

	key, err := ftokKey(path, 'Q')
	if err != nil {
		_ = mf.Release()
		return nil, false, err
	}

	if isNew {
		q.h.setMagic()
		q.h.setItemSize(uint32(itemSize))
		q.h.setMaxCount(uint32(maxCount))
		q.h.setHead(0)
		q.h.setTail(0)
		q.h.setCount(0)

		sem, created, err := openOrCreateSemSet(key, [semCount]int{semLock: 1, semPopAvailable: 0, semPushSpace: maxCount})
		if err != nil {
			_ = mf.Release()
			return nil, false, err
		}
		if !created {
			// A set left behind under the same key is reset to the
			// values of an empty queue.
			sem.setval(semLock, 1)
			sem.setval(semPopAvailable, 0)
			sem.setval(semPushSpace, maxCount)
		}
		q.sem = sem
		return q, true, nil
	}

	if !q.h.magicOK() || q.h.itemSize() != uint32(itemSize) || q.h.maxCount() != uint32(maxCount) {
		_ = mf.Release()
		return nil, false, fmt.Errorf("circlequeue: %s geometry mismatch", path)
	}

	head, tail, stored := q.h.head(), q.h.tail(), q.h.count()
	recomputed := stored
	if head != tail {
		recomputed = (head - tail + uint32(maxCount)) % uint32(maxCount)
		if recomputed != stored && warnOut != nil {
			fmt.Fprintf(warnOut, "circlequeue: %s: stored count %d disagrees with head/tail, using %d\n",
				path, stored, recomputed)
		}
	}
	q.h.setCount(recomputed)

	sem, created, err := openOrCreateSemSet(key, [semCount]int{semLock: 1, semPopAvailable: int(recomputed), semPushSpace: maxCount - int(recomputed)})
	if err != nil {
		_ = mf.Release()
		return nil, false, err
	}
	if !created {
		// A prior process's semaphore set survived; force its values to
		// match the recomputed count rather than trust whatever state it
		// was left in.
		sem.setval(semLock, 1)
		sem.setval(semPopAvailable, int(recomputed))
		sem.setval(semPushSpace, maxCount-int(recomputed))
	}
	q.sem = sem

	return q, false, nil
}

// Push blocks until a slot is free, then appends item at the head.
func (q *Queue) Push(item []byte) error {
	if len(item) != q.itemSize {
		return fmt.Errorf("circlequeue: item is %d bytes, want %d", len(item), q.itemSize)
	}
	if err := q.sem.wait(semPushSpace); err != nil {
		return err
	}
	if err := q.sem.wait(semLock); err != nil {
		return err
	}

	head := int(q.h.head())
	copy(q.slot(head), item)
	q.h.setHead(uint32((head + 1) % q.maxCount))
	q.h.setCount(q.h.count() + 1)

	if err := q.sem.post(semLock); err != nil {
		return err
	}
	return q.sem.post(semPopAvailable)
}

// Pop blocks until an item is available, then removes it from the tail
// into outItem.
func (q *Queue) Pop(outItem []byte) error {
	if len(outItem) != q.itemSize {
		return fmt.Errorf("circlequeue: outItem is %d bytes, want %d", len(outItem), q.itemSize)
	}
	if err := q.sem.wait(semPopAvailable); err != nil {
		return err
	}
	if err := q.sem.wait(semLock); err != nil {
		return err
	}

	tail := int(q.h.tail())
	copy(outItem, q.slot(tail))
	q.h.setTail(uint32((tail + 1) % q.maxCount))
	q.h.setCount(q.h.count() - 1)

	if err := q.sem.post(semLock); err != nil {
		return err
	}
	return q.sem.post(semPushSpace)
}

func (q *Queue) slot(i int) []byte {
	off := headerLen + i*q.itemSize
	return q.region[off : off+q.itemSize]
}

// Count returns the header's current item count.
func (q *Queue) Count() int { return int(q.h.count()) }

// Close releases the mapping. The semaphore set is left in place for
// other processes that may still hold the queue open.
func (q *Queue) Close() error { return q.mf.Release() }
