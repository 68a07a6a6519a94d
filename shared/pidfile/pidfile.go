// Package pidfile implements atomic PID-file publication and stale-entry
// reclaim: an anonymous, advisory-locked file is written and linked into
// its final path in one indivisible step, readable by any number of later
// processes, and reclaimable once its lock disappears.
package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/nsbox/userns/shared/revert"
)

// ErrLocked is returned by Publish when an existing PID file at the target
// path is still locked by a live process.
var ErrLocked = fmt.Errorf("pidfile locked")

// Publish claims the session name dir/name, writing pid into a
// freshly-linked PID file covered end to end by an exclusive advisory lock.
// The returned file is the lock-holding descriptor: it is not close-on-exec,
// so the caller may hand it down into a process that will exec over itself
// and still keep the lock for its entire lifetime.
func Publish(dir string, name string, pid int) (*os.File, error) {
	if err := os.Mkdir(dir, 0700); err != nil && !os.IsExist(err) {
		return nil, fmt.Errorf("Create pidfile directory %q: %w", dir, err)
	}

	r := revert.New()
	defer r.Fail()

	tmpFd, err := unix.Open(dir, unix.O_TMPFILE|unix.O_WRONLY|unix.O_CLOEXEC, 0600)
	if err != nil {
		return nil, fmt.Errorf("Open pidfile: %w", err)
	}

	tmpOpen := true
	r.Add(func() {
		if tmpOpen {
			_ = unix.Close(tmpFd)
		}
	})

	data := []byte(strconv.Itoa(pid))

	n, err := unix.Write(tmpFd, data)
	if err != nil || n != len(data) {
		if err == nil {
			err = fmt.Errorf("short write")
		}

		return nil, fmt.Errorf("Write pidfile: %w", err)
	}

	if err := unix.Fdatasync(tmpFd); err != nil {
		return nil, fmt.Errorf("Sync pidfile: %w", err)
	}

	length := int64(len(data))

	// Dup before closing the write descriptor: the duplicate does not
	// inherit close-on-exec, and locks attach to the open-file
	// description, which the dup shares with the original.
	lockFd, err := unix.Dup(tmpFd)
	if err != nil {
		return nil, fmt.Errorf("Dup pidfile: %w", err)
	}

	r.Add(func() { _ = unix.Close(lockFd) })

	// The write-buffered descriptor has done its job; only the lock
	// descriptor needs to survive.
	_ = unix.Close(tmpFd)
	tmpOpen = false

	if err := lockExclusive(lockFd, length); err != nil {
		return nil, fmt.Errorf("Lock pidfile: %w", err)
	}

	target := filepath.Join(dir, name)
	source := fmt.Sprintf("/proc/self/fd/%d", lockFd)

	for {
		err := unix.Linkat(unix.AT_FDCWD, source, unix.AT_FDCWD, target, unix.AT_SYMLINK_FOLLOW)
		if err == nil {
			break
		}

		if err != unix.EEXIST {
			return nil, fmt.Errorf("Link pidfile: %w", err)
		}

		// Either the stale entry was just removed, or it vanished on
		// its own between our EEXIST and this check; either way, loop
		// around and retry the link.
		_, err = reclaimStale(target)
		if err != nil {
			return nil, err
		}
	}

	r.Success()

	return os.NewFile(uintptr(lockFd), target), nil
}

// reclaimStale inspects an existing PID file that collided with a link
// attempt. It returns (true, nil) once the stale entry has been removed and
// the caller should retry the link, (false, nil) when the entry vanished on
// its own and the caller should retry immediately, or a non-nil error when
// the entry is still locked by a live process (ErrLocked) or some other
// failure occurred.
func reclaimStale(target string) (bool, error) {
	fd, err := unix.Open(target, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		if err == unix.ENOENT {
			return false, nil
		}

		return false, fmt.Errorf("Open existing pidfile: %w", err)
	}
	defer func() { _ = unix.Close(fd) }()

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		return false, fmt.Errorf("Stat existing pidfile: %w", err)
	}

	locked, err := probeLocked(fd, stat.Size)
	if err != nil {
		return false, fmt.Errorf("Probe existing pidfile: %w", err)
	}

	if locked {
		return false, ErrLocked
	}

	if err := unix.Unlink(target); err != nil && err != unix.ENOENT {
		return false, fmt.Errorf("Unlink stale pidfile: %w", err)
	}

	return true, nil
}

// lockExclusive places a write lock covering [0, length) of fd, using the
// open-file-description variant (F_OFD_SETLK) rather than the traditional
// per-process fcntl lock. This matters here specifically: the lock-holding
// descriptor is handed from the Spawner to the leader across an SCM_RIGHTS
// socketpair transfer (shared/fdpass) before the leader's own exec, i.e. to
// a different process than the one that placed the lock. A traditional
// F_SETLK lock is owned by the locking process and does not follow a
// descriptor across such a handoff; an OFD lock is owned by the open file
// description itself and is visible to, and releasable by, any process
// holding any descriptor that refers to it.
func lockExclusive(fd int, length int64) error {
	lock := unix.Flock_t{
		Type:   unix.F_WRLCK,
		Whence: int16(unix.SEEK_SET),
		Start:  0,
		Len:    length,
	}

	return unix.FcntlFlock(uintptr(fd), unix.F_OFD_SETLK, &lock)
}

// probeLocked reports whether fd's [0, length) range is currently covered
// by an open-file-description lock held by any process.
func probeLocked(fd int, length int64) (bool, error) {
	lock := unix.Flock_t{
		Type:   unix.F_WRLCK,
		Whence: int16(unix.SEEK_SET),
		Start:  0,
		Len:    length,
	}

	if err := unix.FcntlFlock(uintptr(fd), unix.F_OFD_GETLK, &lock); err != nil {
		return false, err
	}

	return lock.Type != unix.F_UNLCK, nil
}

// Open opens an existing PID file read-only and returns it along with its
// current length, for use by ReadPID, ProbeLocked, and Close.
func Open(path string) (*os.File, int64, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, 0, fmt.Errorf("Open pidfile %q: %w", path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, fmt.Errorf("Stat pidfile %q: %w", path, err)
	}

	return f, stat.Size(), nil
}

// ReadPID reads and parses the decimal PID stored in f, which must have
// length bytes available starting at offset 0. Trailing whitespace
// (including a trailing newline) is tolerated.
func ReadPID(f *os.File, length int64) (int, error) {
	buf := make([]byte, length)

	if _, err := f.ReadAt(buf, 0); err != nil {
		return 0, fmt.Errorf("Read pidfile: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(buf)))
	if err != nil {
		return 0, fmt.Errorf("Parse pidfile contents: %w", err)
	}

	return pid, nil
}

// ProbeLocked reports whether f's [0, length) range is currently held by an
// exclusive advisory lock. A false result means the session is dead; the
// PID file is reclaimable.
func ProbeLocked(f *os.File, length int64) (bool, error) {
	return probeLocked(int(f.Fd()), length)
}
