package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/nsbox/userns/shared/fdpass"
	"github.com/nsbox/userns/shared/rendezvous"
)

// Fixed fd numbers assigned by the Spawner's ExtraFiles ordering: the
// leader is re-exec'd with exactly these three descriptors inherited
// beyond the standard three.
const (
	fdReadyW   = 3
	fdContR    = 4
	fdLockChan = 5
)

// cmdLeader is the hidden re-exec entry point a cloned leader process runs
// as, in place of raw post-clone code in a multi-threaded Go runtime.
type cmdLeader struct {
	flagName   string
	flagDomain string
}

func (c *cmdLeader) command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "__leader__"
	cmd.Hidden = true
	cmd.RunE = c.run
	cmd.Args = cobra.ArbitraryArgs
	cmd.Flags().SetInterspersed(false)

	cmd.Flags().StringVar(&c.flagName, "name", "", "")
	cmd.Flags().StringVar(&c.flagDomain, "domain", "", "")

	return cmd
}

func (c *cmdLeader) run(cmd *cobra.Command, args []string) error {
	readyW := os.NewFile(fdReadyW, "rendezvous-ready")
	contR := os.NewFile(fdContR, "rendezvous-continue")
	lockChan := os.NewFile(fdLockChan, "lock-channel")

	if err := os.Setenv("USERNS_NAME", c.flagName); err != nil {
		return fmt.Errorf("Set environment USERNS_NAME: %w", err)
	}

	if err := os.Setenv("USERNS_DOMAIN", c.flagDomain); err != nil {
		return fmt.Errorf("Set environment USERNS_DOMAIN: %w", err)
	}

	if err := unix.Sethostname([]byte(c.flagName)); err != nil {
		return fmt.Errorf("Set hostname: %w", err)
	}

	if err := unix.Setdomainname([]byte(c.flagDomain)); err != nil {
		return fmt.Errorf("Set domain name: %w", err)
	}

	if err := rendezvous.SignalReady(readyW); err != nil {
		return fmt.Errorf("Signal readiness: %w", err)
	}

	if err := rendezvous.AwaitContinue(contR); err != nil {
		return fmt.Errorf("Await continuation: %w", err)
	}

	_, _, err := fdpass.Recv(lockChan)
	if err != nil {
		return fmt.Errorf("Receive pidfile lock: %w", err)
	}

	// None of the rendezvous descriptors belong in the command we are
	// about to become; the received lock descriptor (not tracked by name
	// past this point) is deliberately left open and not close-on-exec,
	// so it survives the exec below for exactly as long as this process
	// does.
	_ = readyW.Close()
	_ = contR.Close()
	_ = lockChan.Close()

	// The SIGKILL parent-death signal covers only the rendezvous; the
	// exec'd command must outlive a Spawner that detaches.
	if err := unix.Prctl(unix.PR_SET_PDEATHSIG, 0, 0, 0, 0); err != nil {
		return fmt.Errorf("Clear parent-death signal: %w", err)
	}

	if len(args) == 0 {
		return fmt.Errorf("Missing command")
	}

	path, err := exec.LookPath(args[0])
	if err != nil {
		return fmt.Errorf("Exec %q: %w", args[0], err)
	}

	err = unix.Exec(path, args, os.Environ())

	return fmt.Errorf("Exec %q: %w", args[0], err)
}
