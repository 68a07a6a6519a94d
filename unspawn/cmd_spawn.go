package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nsbox/userns/shared/execstatus"
	"github.com/nsbox/userns/shared/fdpass"
	"github.com/nsbox/userns/shared/pidfile"
	"github.com/nsbox/userns/shared/rendezvous"
	"github.com/nsbox/userns/shared/session"
)

// netnsUnset is the sentinel stored by the --net flag's NoOptDefVal, so
// "--net" (no value) and "--net=foo" can be told apart after parsing.
const netnsUnset = "\x00unset"

type cmdSpawn struct {
	flagName     string
	flagDomain   string
	flagUserNS   bool
	flagNet      string
	flagNoPID    bool
	flagNoCgroup bool
	flagPidfile  string
	flagWait     bool
}

func (c *cmdSpawn) command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.RunE = c.run
	cmd.Args = cobra.ArbitraryArgs
	cmd.Flags().SetInterspersed(false)

	cmd.Flags().StringVarP(&c.flagName, "name", "n", "", "Name of the namespace session")
	cmd.Flags().StringVarP(&c.flagDomain, "domain", "d", "", "Domain of the namespace session")
	cmd.Flags().BoolVar(&c.flagUserNS, "user", false, "Create a new user namespace")
	cmd.Flags().StringVar(&c.flagNet, "net", netnsUnset, "Create a new network namespace, or join the named one")
	cmd.Flags().Lookup("net").NoOptDefVal = ""
	cmd.Flags().BoolVar(&c.flagNoPID, "no-pid", false, "Do not create a new PID namespace")
	cmd.Flags().BoolVar(&c.flagNoCgroup, "no-cgroup", false, "Do not create a new cgroup namespace")
	cmd.Flags().StringVar(&c.flagPidfile, "pidfile", "", "Path to the PID file (default ${XDG_RUNTIME_DIR}/userns/${name})")
	cmd.Flags().BoolVar(&c.flagWait, "wait", false, "Block until the session leader exits and propagate its exit status")

	return cmd
}

func (c *cmdSpawn) run(cmd *cobra.Command, args []string) error {
	if c.flagName == "" {
		return fmt.Errorf("Missing required --name")
	}

	cfg := session.SpawnConfig{
		Name:        c.flagName,
		Domain:      session.ResolveDomain(c.flagDomain),
		UserNS:      c.flagUserNS,
		NoPID:       c.flagNoPID,
		NoCgroup:    c.flagNoCgroup,
		PidfilePath: c.flagPidfile,
		Wait:        c.flagWait,
		Command:     session.ResolveCommand(args),
	}

	if c.flagNet != netnsUnset {
		cfg.NetNS = true
		cfg.NetNSName = c.flagNet
	}

	dir, base, err := session.ResolvePidfile(cfg.PidfilePath, cfg.Name)
	if err != nil {
		return err
	}

	lockFile, cmdHandle, err := spawnLeader(cfg, dir, base)
	if err != nil {
		return err
	}
	defer lockFile.Close()

	if !cfg.Wait {
		return nil
	}

	waitErr := cmdHandle.Wait()
	code := execstatus.FromError(waitErr)
	if code != 0 {
		os.Exit(code)
	}

	return nil
}

// spawnLeader runs the full Spawner algorithm: it returns once the leader
// is confirmed alive and the PID file is published, handing back the
// lock-holding descriptor (now also held by the leader across its own
// exec) and the exec.Cmd used to reap it later.
func spawnLeader(cfg session.SpawnConfig, dir, base string) (*os.File, *exec.Cmd, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if cfg.NetNS && cfg.NetNSName != "" {
		if err := joinNetNS(cfg.NetNSName); err != nil {
			return nil, nil, err
		}
	}

	if cfg.UserNS {
		if err := mapIdentity(); err != nil {
			return nil, nil, err
		}
	}

	pipes, err := rendezvous.New()
	if err != nil {
		return nil, nil, fmt.Errorf("Create rendezvous pipes: %w", err)
	}
	defer pipes.Close()

	lockChan, err := fdpass.New()
	if err != nil {
		return nil, nil, fmt.Errorf("Create fd-passing channel: %w", err)
	}
	defer lockChan.Close()

	sigchld, stopSigchld := subscribeSIGCHLD()
	defer stopSigchld()

	leaderArgs := []string{"__leader__", "--name", cfg.Name, "--domain", cfg.Domain, "--"}
	leaderArgs = append(leaderArgs, cfg.Command...)

	leaderCmd := exec.Command("/proc/self/exe", leaderArgs...)
	leaderCmd.Stdin = os.Stdin
	leaderCmd.Stdout = os.Stdout
	leaderCmd.Stderr = os.Stderr
	leaderCmd.ExtraFiles = []*os.File{pipes.ReadyW, pipes.ContR, lockChan.Remote}
	leaderCmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: uintptr(cloneFlags(cfg)),
		Pdeathsig:  childPdeathsig,
	}

	if err := leaderCmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("Clone leader: %w", err)
	}

	// These three descriptors now live in the leader's fd table too; our
	// own copies only matter for EOF detection on the read ends and must
	// not linger open past this point.
	_ = pipes.ReadyW.Close()
	_ = pipes.ContR.Close()
	_ = lockChan.Remote.Close()

	_ = os.Stdin.Close()
	_ = os.Stdout.Close()

	state := rendezvous.Await(pipes.ReadyR, sigchld)
	if state == rendezvous.ChildExited {
		_, _ = leaderCmd.Process.Wait()
		return nil, nil, fmt.Errorf("Leader exited before completing namespace setup")
	}

	pid := leaderCmd.Process.Pid

	lockFile, err := pidfile.Publish(dir, base, pid)
	if err != nil {
		_ = leaderCmd.Process.Kill()
		_, _ = leaderCmd.Process.Wait()
		return nil, nil, fmt.Errorf("Publish pidfile: %w", err)
	}

	if err := rendezvous.SignalContinue(pipes.ContW); err != nil {
		_ = leaderCmd.Process.Kill()
		_, _ = leaderCmd.Process.Wait()
		_ = os.Remove(lockFile.Name())
		_ = lockFile.Close()
		return nil, nil, fmt.Errorf("Signal leader to continue: %w", err)
	}

	if err := fdpass.Send(lockChan.Local, 1, int(lockFile.Fd())); err != nil {
		_ = leaderCmd.Process.Kill()
		_, _ = leaderCmd.Process.Wait()
		_ = os.Remove(lockFile.Name())
		_ = lockFile.Close()
		return nil, nil, fmt.Errorf("Hand off pidfile lock: %w", err)
	}

	return lockFile, leaderCmd, nil
}
