package main

import (
	"golang.org/x/sys/unix"

	"github.com/nsbox/userns/shared/session"
)

// cloneFlags computes the clone(2) flag set for the leader process: every
// namespace in the vector except user (mapped in the Spawner itself before
// clone, so the leader inherits it) and except net unless a fresh network
// namespace was requested (--net without a name; joining a named,
// preexisting namespace is done in the Spawner before clone). PID and
// cgroup are masked out by the caller's suppression flags.
func cloneFlags(cfg session.SpawnConfig) int {
	flags := 0

	for _, ns := range session.Vector {
		switch ns.Kind {
		case session.KindUser:
			continue
		case session.KindNet:
			if cfg.NetNS && cfg.NetNSName == "" {
				flags |= ns.CloneFlag
			}
		case session.KindPID:
			if !cfg.NoPID {
				flags |= ns.CloneFlag
			}
		case session.KindCgroup:
			if !cfg.NoCgroup {
				flags |= ns.CloneFlag
			}
		default:
			flags |= ns.CloneFlag
		}
	}

	return flags
}

// childPdeathsig is sent to the not-yet-exec'd leader if the Spawner dies
// first, so a killed Spawner never leaves an orphaned, half-initialized
// leader behind.
const childPdeathsig = unix.SIGKILL
