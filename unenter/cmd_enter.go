package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/nsbox/userns/shared/execstatus"
	"github.com/nsbox/userns/shared/pidfile"
	"github.com/nsbox/userns/shared/session"
)

type cmdEnter struct {
	flagName    string
	flagPidfile string
}

func (c *cmdEnter) command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.RunE = c.run
	cmd.Args = cobra.ArbitraryArgs
	cmd.Flags().SetInterspersed(false)

	cmd.Flags().StringVarP(&c.flagName, "name", "n", "", "Name of the namespace session")
	cmd.Flags().StringVar(&c.flagPidfile, "pidfile", "", "Path to the PID file")

	return cmd
}

func (c *cmdEnter) run(cmd *cobra.Command, args []string) error {
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

	// Namespace attachment, chroot and environment projection mutate this
	// process in place; it then forks to run the target command inside the
	// result, inheriting everything.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// Environment must be read from /proc before the chroot below: once
	// rooted at the target's filesystem, /proc may no longer be reachable
	// at all, and even if it is, /proc/<pid>/environ would no longer name
	// the same process the way the caller expects.
	if err := projectEnviron(pid); err != nil {
		return err
	}

	if err := enterRoot(pid, func() error { return attachNamespaces(pid) }); err != nil {
		return err
	}

	locked, err := pidfile.ProbeLocked(f, length)
	if err != nil {
		return fmt.Errorf("Probe pidfile lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("Session died before attachment completed")
	}

	command := session.ResolveCommand(args)

	target := exec.Command(command[0], command[1:]...)
	target.Stdin = os.Stdin
	target.Stdout = os.Stdout
	target.Stderr = os.Stderr

	runErr := target.Run()
	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); !ok {
			return fmt.Errorf("Run %q: %w", command[0], runErr)
		}
	}

	code := execstatus.FromError(runErr)
	if code != 0 {
		os.Exit(code)
	}

	return nil
}
