package main

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// enterRoot acquires path descriptors for the target leader's working
// directory and root before namespace attachment, since paths under /proc
// may stop resolving once we have chrooted. attach is called with both
// descriptors already open, then the caller's root and cwd are switched
// to the leader's.
func enterRoot(pid int, attach func() error) error {
	cwdPath := fmt.Sprintf("/proc/%d/cwd", pid)
	rootPath := fmt.Sprintf("/proc/%d/root", pid)

	cwdFd, err := unix.Open(cwdPath, unix.O_PATH|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("Open %s: %w", cwdPath, err)
	}
	defer func() { _ = unix.Close(cwdFd) }()

	rootFd, err := unix.Open(rootPath, unix.O_PATH|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("Open %s: %w", rootPath, err)
	}
	defer func() { _ = unix.Close(rootFd) }()

	if err := attach(); err != nil {
		return err
	}

	if err := unix.Fchdir(rootFd); err != nil {
		return fmt.Errorf("Change to target root: %w", err)
	}

	if err := unix.Chroot("."); err != nil {
		return fmt.Errorf("Chroot: %w", err)
	}

	if err := unix.Fchdir(cwdFd); err != nil {
		return fmt.Errorf("Change to target working directory: %w", err)
	}

	return nil
}
