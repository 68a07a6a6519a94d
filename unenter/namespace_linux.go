package main

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/nsbox/userns/shared/session"
)

// attachNamespaces joins the calling process to each of the target pid's
// namespaces. Namespaces the Spawner suppressed (or that already match
// ours) are inode-compared away, correctly skipping redundant or
// impossible attachments without the caller needing to know which toggles
// the Spawner used.
func attachNamespaces(pid int) error {
	for _, ns := range session.Vector {
		selfPath := fmt.Sprintf("/proc/self/ns/%s", ns.ProcName)
		targetPath := fmt.Sprintf("/proc/%d/ns/%s", pid, ns.ProcName)

		var selfStat unix.Stat_t
		if err := unix.Stat(selfPath, &selfStat); err != nil {
			return fmt.Errorf("Stat %s: %w", selfPath, err)
		}

		fd, err := unix.Open(targetPath, unix.O_RDONLY|unix.O_CLOEXEC, 0)
		if err != nil {
			return fmt.Errorf("Open %s: %w", targetPath, err)
		}

		var targetStat unix.Stat_t
		if err := unix.Fstat(fd, &targetStat); err != nil {
			_ = unix.Close(fd)
			return fmt.Errorf("Stat %s: %w", targetPath, err)
		}

		if selfStat.Ino == targetStat.Ino {
			_ = unix.Close(fd)
			continue
		}

		err = unix.Setns(fd, ns.CloneFlag)
		_ = unix.Close(fd)
		if err != nil {
			return fmt.Errorf("Attach %s namespace: %w", ns.Kind, err)
		}
	}

	return nil
}
