package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapIdentity unshares a new user namespace in the calling process and
// maps the invoker's own uid/gid to root inside it. Done before clone so
// the leader, which deliberately omits CLONE_NEWUSER from its own flags,
// inherits the mapping automatically. Caller must hold the OS thread
// (runtime.LockOSThread) across this call and the subsequent clone.
func mapIdentity() error {
	euid := os.Geteuid()
	egid := os.Getegid()

	if err := unix.Unshare(unix.CLONE_NEWUSER); err != nil {
		return fmt.Errorf("Unshare user namespace: %w", err)
	}

	if err := os.WriteFile("/proc/self/setgroups", []byte("deny"), 0666); err != nil {
		return fmt.Errorf("Write setgroups: %w", err)
	}

	if err := os.WriteFile("/proc/self/uid_map", []byte(fmt.Sprintf("0 %d 1", euid)), 0666); err != nil {
		return fmt.Errorf("Write uid_map: %w", err)
	}

	if err := os.WriteFile("/proc/self/gid_map", []byte(fmt.Sprintf("0 %d 1", egid)), 0666); err != nil {
		return fmt.Errorf("Write gid_map: %w", err)
	}

	return nil
}
