package main

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// joinNetNS attaches the calling process to a preexisting, named network
// namespace. Done in the Spawner itself, before clone, so the leader
// inherits the joined namespace without a CLONE_NEWNET flag of its own.
func joinNetNS(name string) error {
	path := filepath.Join("/var/run/netns", name)

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("Open network namespace %q: %w", name, err)
	}
	defer func() { _ = unix.Close(fd) }()

	if err := unix.Setns(fd, unix.CLONE_NEWNET); err != nil {
		return fmt.Errorf("Join network namespace %q: %w", name, err)
	}

	return nil
}
