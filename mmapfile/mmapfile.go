// Package mmapfile is the single place OS specifics live for the
// shared-memory packages built on top of it: opening or creating a
// fixed-length file and mapping it read-write shared.
package mmapfile

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

// File is a fixed-length file mapped read-write and shared, so writes
// through Bytes are visible to every other process with the same file
// mapped.
type File struct {
	f      *os.File
	Bytes  []byte
	length int64
}

// OpenOrCreate maps path, creating it at exactly length bytes if it does
// not exist. isNew reports which path was taken. On create, the zeroed
// content is written to a temp file in the same directory and renamed
// into place via [atomic.WriteFile], so a crash mid-bootstrap never
// leaves a half-written file visible at path (two callers racing to
// create the same new path both produce an identical all-zero file, so
// the lack of O_EXCL-style exclusivity here is harmless). On open, the
// existing file's size must equal length exactly; any mismatch is almost
// certainly a caller passing the wrong item-size/bucket-count/length
// combination against a file stamped with different ones, and is
// reported as an error rather than silently truncating or growing it.
func OpenOrCreate(path string, length int64) (file *File, isNew bool, err error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if os.IsNotExist(err) {
		if err := createZeroed(path, length); err != nil {
			return nil, false, fmt.Errorf("mmapfile: create %s: %w", path, err)
		}
		f, err := os.OpenFile(path, os.O_RDWR, 0o644)
		if err != nil {
			return nil, false, fmt.Errorf("mmapfile: open %s after create: %w", path, err)
		}
		mapped, err := mapShared(f, length)
		if err != nil {
			_ = f.Close()
			return nil, false, err
		}
		return &File{f: f, Bytes: mapped, length: length}, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("mmapfile: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, false, fmt.Errorf("mmapfile: stat %s: %w", path, err)
	}
	if info.Size() != length {
		_ = f.Close()
		return nil, false, fmt.Errorf("mmapfile: %s has size %d, want %d", path, info.Size(), length)
	}

	mapped, err := mapShared(f, length)
	if err != nil {
		_ = f.Close()
		return nil, false, err
	}
	return &File{f: f, Bytes: mapped, length: length}, false, nil
}

// createZeroed atomically materializes a fresh, all-zero file of exactly
// length bytes at path.
func createZeroed(path string, length int64) error {
	return atomic.WriteFile(path, bytes.NewReader(make([]byte, length)))
}

func mapShared(f *os.File, length int64) ([]byte, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmapfile: mmap: %w", err)
	}
	return data, nil
}

// Release unmaps the file and closes the underlying descriptor. It does
// not remove the file.
func (mf *File) Release() error {
	if err := unix.Munmap(mf.Bytes); err != nil {
		_ = mf.f.Close()
		return fmt.Errorf("mmapfile: munmap: %w", err)
	}
	return mf.f.Close()
}

// Len reports the mapped length in bytes.
func (mf *File) Len() int64 { return mf.length }
