package circlequeue

import "encoding/binary"

const (
	magicByte0 = 'P'
	magicByte1 = 'Q'
)

const headerLen = 32

const (
	offMagic    = 0  // [2]byte
	offItemSize = 4  // uint32
	offMaxCount = 8  // uint32
	offHead     = 12 // uint32
	offTail     = 16 // uint32
	offCount    = 20 // uint32
)

// queueHeader is a thin accessor over the mapped region's first
// headerLen bytes, read and written in place like [shmcache]'s
// fileHeader — it never caches a value in a plain Go field, since
// another process may hold the same mapping.
type queueHeader struct {
	buf []byte
}

func (h queueHeader) magicOK() bool {
	return h.buf[offMagic] == magicByte0 && h.buf[offMagic+1] == magicByte1
}

func (h queueHeader) setMagic() {
	h.buf[offMagic] = magicByte0
	h.buf[offMagic+1] = magicByte1
}

func (h queueHeader) itemSize() uint32     { return binary.LittleEndian.Uint32(h.buf[offItemSize:]) }
func (h queueHeader) setItemSize(v uint32) { binary.LittleEndian.PutUint32(h.buf[offItemSize:], v) }

func (h queueHeader) maxCount() uint32     { return binary.LittleEndian.Uint32(h.buf[offMaxCount:]) }
func (h queueHeader) setMaxCount(v uint32) { binary.LittleEndian.PutUint32(h.buf[offMaxCount:], v) }

func (h queueHeader) head() uint32     { return binary.LittleEndian.Uint32(h.buf[offHead:]) }
func (h queueHeader) setHead(v uint32) { binary.LittleEndian.PutUint32(h.buf[offHead:], v) }

func (h queueHeader) tail() uint32     { return binary.LittleEndian.Uint32(h.buf[offTail:]) }
func (h queueHeader) setTail(v uint32) { binary.LittleEndian.PutUint32(h.buf[offTail:], v) }

func (h queueHeader) count() uint32     { return binary.LittleEndian.Uint32(h.buf[offCount:]) }
func (h queueHeader) setCount(v uint32) { binary.LittleEndian.PutUint32(h.buf[offCount:], v) }
