package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/nsbox/userns/shared/pidfile"
	"github.com/nsbox/userns/shared/session"
)

type cmdCheck struct {
	flagName    string
	flagPidfile string
	flagKill    bool
}

func (c *cmdCheck) command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.RunE = c.run

	cmd.Flags().StringVarP(&c.flagName, "name", "n", "", "Name of the namespace session")
	cmd.Flags().StringVar(&c.flagPidfile, "pidfile", "", "Path to the PID file")
	cmd.Flags().BoolVarP(&c.flagKill, "kill", "k", false, "Kill the session leader")

	return cmd
}

func (c *cmdCheck) run(cmd *cobra.Command, args []string) error {
	dir, base, err := session.ResolvePidfile(c.flagPidfile, c.flagName)
	if err != nil {
		return err
	}

	f, length, err := pidfile.Open(filepath.Join(dir, base))
	if err != nil {
		return err
	}
	defer f.Close()

	pid, err := pidfile.ReadPID(f, length)
	if err != nil {
		return err
	}

	locked, err := pidfile.ProbeLocked(f, length)
	if err != nil {
		return fmt.Errorf("Probe pidfile lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("pidfile not locked")
	}

	if !c.flagKill {
		return nil
	}

	return killByPidfd(pid)
}

// killByPidfd sends SIGKILL through a pidfd obtained immediately after the
// lock probe above, narrowing (not eliminating) the race where pid has
// already been reused by an unrelated process by the time we act on it.
func killByPidfd(pid int) error {
	fd, err := unix.PidfdOpen(pid, 0)
	if err != nil {
		if err == unix.ESRCH {
			return fmt.Errorf("Session leader %d no longer exists", pid)
		}

		return fmt.Errorf("Open pidfd for %d: %w", pid, err)
	}
	defer func() { _ = unix.Close(fd) }()

	if err := unix.PidfdSendSignal(fd, unix.SIGKILL, nil, 0); err != nil {
		return fmt.Errorf("Kill session leader %d: %w", pid, err)
	}

	return nil
}
