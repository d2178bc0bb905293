package shmcache

import "encoding/binary"

// File layout:
//
//	[fileHeaderLen bytes]  fixed header
//	[bucketCount*8 bytes]  hash-index bucket array (uint64 offsets)
//	[recordCount*recordLen bytes] record region, record 0 reserved
//
// Every offset stored anywhere in the file — a bucket head, a record's
// next/evictPrev/evictNext field, the header's evictHead/evictTail — is
// relative to the start of the record region, not the start of the file.
// Record 0 sits at relative offset 0 and is reserved as the free-list
// head; it never holds a caller item, which lets offset 0 double as the
// "record 0" address without colliding with a real data record. A
// distinct out-of-band value, noLink, marks "no record" for every other
// use of these fields (empty bucket, end of free/hash/evict chain).
const noLink = ^uint64(0)

const (
	magicByte0 = 'S'
	magicByte1 = 'P'
)

const fileHeaderLen = 64

const (
	offMagic       = 0  // [2]byte
	offItemSize    = 8  // uint32
	offBucketCount = 12 // uint32
	offRecordCount = 16 // uint64 (includes reserved record 0)
	offEvictHead   = 24 // uint64
	offEvictTail   = 32 // uint64
	offLiveCount   = 40 // uint64
)

// fileHeader is a thin accessor over the mapped region's first
// fileHeaderLen bytes. It never copies: every getter/setter reads or
// writes the live mmap bytes directly, since other processes may be
// sharing the same mapping.
type fileHeader struct {
	buf []byte
}

func (h fileHeader) magicOK() bool {
	return h.buf[offMagic] == magicByte0 && h.buf[offMagic+1] == magicByte1
}

func (h fileHeader) setMagic() {
	h.buf[offMagic] = magicByte0
	h.buf[offMagic+1] = magicByte1
}

func (h fileHeader) itemSize() uint32  { return binary.LittleEndian.Uint32(h.buf[offItemSize:]) }
func (h fileHeader) setItemSize(v uint32) { binary.LittleEndian.PutUint32(h.buf[offItemSize:], v) }

func (h fileHeader) bucketCount() uint32 {
	return binary.LittleEndian.Uint32(h.buf[offBucketCount:])
}
func (h fileHeader) setBucketCount(v uint32) {
	binary.LittleEndian.PutUint32(h.buf[offBucketCount:], v)
}

func (h fileHeader) recordCount() uint64 {
	return binary.LittleEndian.Uint64(h.buf[offRecordCount:])
}
func (h fileHeader) setRecordCount(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[offRecordCount:], v)
}

func (h fileHeader) evictHead() uint64 { return binary.LittleEndian.Uint64(h.buf[offEvictHead:]) }
func (h fileHeader) setEvictHead(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[offEvictHead:], v)
}

func (h fileHeader) evictTail() uint64 { return binary.LittleEndian.Uint64(h.buf[offEvictTail:]) }
func (h fileHeader) setEvictTail(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[offEvictTail:], v)
}

func (h fileHeader) liveCount() uint64 { return binary.LittleEndian.Uint64(h.buf[offLiveCount:]) }
func (h fileHeader) setLiveCount(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[offLiveCount:], v)
}

// Record layout (relative offsets within one record):
//
//	0  flag        uint8
//	8  next        uint64  // free-list link when FREE, hash-chain link when USED
//	16 evictPrev   uint64
//	24 evictNext   uint64
//	32 expTime     int64
//	40 checksum    uint32
//	44 ..44+keySize    key bytes
//	44+keySize ..      value bytes
const recordHeaderLen = 44

const (
	recOffFlag      = 0
	recOffNext      = 8
	recOffEvictPrev = 16
	recOffEvictNext = 24
	recOffExpTime   = 32
	recOffChecksum  = 40
)

type recordFlag uint8

const (
	recordFree recordFlag = 0
	recordUsed recordFlag = 1
)

type record []byte

func (r record) flag() recordFlag   { return recordFlag(r[recOffFlag]) }
func (r record) setFlag(f recordFlag) { r[recOffFlag] = byte(f) }

func (r record) next() uint64     { return binary.LittleEndian.Uint64(r[recOffNext:]) }
func (r record) setNext(v uint64) { binary.LittleEndian.PutUint64(r[recOffNext:], v) }

func (r record) evictPrev() uint64     { return binary.LittleEndian.Uint64(r[recOffEvictPrev:]) }
func (r record) setEvictPrev(v uint64) { binary.LittleEndian.PutUint64(r[recOffEvictPrev:], v) }

func (r record) evictNext() uint64     { return binary.LittleEndian.Uint64(r[recOffEvictNext:]) }
func (r record) setEvictNext(v uint64) { binary.LittleEndian.PutUint64(r[recOffEvictNext:], v) }

func (r record) expTime() int64     { return int64(binary.LittleEndian.Uint64(r[recOffExpTime:])) }
func (r record) setExpTime(v int64) { binary.LittleEndian.PutUint64(r[recOffExpTime:], uint64(v)) }

func (r record) checksum() uint32     { return binary.LittleEndian.Uint32(r[recOffChecksum:]) }
func (r record) setChecksum(v uint32) { binary.LittleEndian.PutUint32(r[recOffChecksum:], v) }

func (r record) payload() []byte { return r[recordHeaderLen:] }

// layout captures the derived geometry of one shmcache file for a given
// (keySize, valueSize, bucketCount, recordCount).
type layout struct {
	keySize     int
	valueSize   int
	recordLen   int
	bucketCount int
	recordCount int
}

func newLayout(keySize, valueSize, bucketCount, recordCount int) layout {
	return layout{
		keySize:     keySize,
		valueSize:   valueSize,
		recordLen:   recordHeaderLen + keySize + valueSize,
		bucketCount: bucketCount,
		recordCount: recordCount,
	}
}

func (l layout) itemSize() int        { return l.keySize + l.valueSize }
func (l layout) bucketsOffset() int   { return fileHeaderLen }
func (l layout) bucketsLen() int      { return l.bucketCount * 8 }
func (l layout) recordsOffset() int   { return l.bucketsOffset() + l.bucketsLen() }
func (l layout) recordsLen() int      { return l.recordCount * l.recordLen }
func (l layout) totalLen() int        { return l.recordsOffset() + l.recordsLen() }
