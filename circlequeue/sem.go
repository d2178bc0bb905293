package circlequeue

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Semaphore slots within the one SysV set backing a queue, per spec.md
// §4.10: lock guards the header and ring buffer, popAvailable counts
// items a consumer may take, pushSpace counts free slots a producer may
// fill.
const (
	semLock = iota
	semPopAvailable
	semPushSpace
	semCount
)

type semSet struct {
	id int
}

// ftokKey reproduces the traditional ftok(3) key derivation from a
// file's device and inode plus a caller-chosen project id, so every
// process opening the same queue file derives the same SysV IPC key
// without a side-channel.
func ftokKey(path string, projID byte) (int, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, fmt.Errorf("circlequeue: stat %s for ipc key: %w", path, err)
	}
	key := (int(projID) << 24) | (int(st.Dev&0xff) << 16) | int(st.Ino&0xffff)
	return key, nil
}

// openOrCreateSemSet gets the 3-semaphore set for key, initializing it
// to initial only if this call created it; a set left behind by a prior
// process is reused as-is, its values reset by the caller (to an empty
// queue's values on create, to the recomputed queue count on reopen).
func openOrCreateSemSet(key int, initial [semCount]int) (s *semSet, created bool, err error) {
	id, err := unix.Semget(key, semCount, unix.IPC_CREAT|unix.IPC_EXCL|0o644)
	if err == nil {
		s = &semSet{id: id}
		for i, v := range initial {
			if err := s.setval(i, v); err != nil {
				return nil, false, err
			}
		}
		return s, true, nil
	}
	if err != unix.EEXIST {
		return nil, false, fmt.Errorf("circlequeue: semget: %w", err)
	}

	id, err = unix.Semget(key, semCount, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("circlequeue: semget existing: %w", err)
	}
	return &semSet{id: id}, false, nil
}

// setval and getval issue SEMCTL directly via the raw syscall: the
// golang.org/x/sys/unix package does not expose a portable Semctl
// wrapper because the fourth argument's type depends on cmd (the union
// semun from <sys/sem.h>). For SETVAL/GETVAL that argument is a plain
// int, so passing it through a uintptr is correct on every platform this
// package targets.
func (s *semSet) setval(semNum, val int) error {
	_, _, errno := unix.Syscall6(unix.SYS_SEMCTL, uintptr(s.id), uintptr(semNum), uintptr(unix.SETVAL), uintptr(val), 0, 0)
	if errno != 0 {
		return os.NewSyscallError("semctl SETVAL", errno)
	}
	return nil
}

func (s *semSet) getval(semNum int) (int, error) {
	r, _, errno := unix.Syscall6(unix.SYS_SEMCTL, uintptr(s.id), uintptr(semNum), uintptr(unix.GETVAL), 0, 0, 0)
	if errno != 0 {
		return 0, os.NewSyscallError("semctl GETVAL", errno)
	}
	return int(r), nil
}

func (s *semSet) wait(semNum int) error {
	return unix.Semop(s.id, []unix.Sembuf{{Semnum: uint16(semNum), Semop: -1}})
}

func (s *semSet) post(semNum int) error {
	return unix.Semop(s.id, []unix.Sembuf{{Semnum: uint16(semNum), Semop: 1}})
}
