package session

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDomainName is used when neither --domain nor $USERNS_DOMAIN is set.
const DefaultDomainName = "localdomain"

// SpawnConfig is the explicit, non-global configuration record for the
// Spawner, built from flags instead of package-level option variables.
type SpawnConfig struct {
	Name        string
	Domain      string
	UserNS      bool
	NetNS       bool
	NetNSName   string
	NoPID       bool
	NoCgroup    bool
	PidfilePath string
	Wait        bool
	Command     []string
}

// EnterConfig is the explicit configuration record for the Enterer.
type EnterConfig struct {
	Name        string
	PidfilePath string
	Command     []string
}

// CheckConfig is the explicit configuration record for the Checker.
type CheckConfig struct {
	Name        string
	PidfilePath string
	Kill        bool
}

// ResolvePidfile returns the directory and base name of the PID file for a
// session, given an explicit --pidfile path (if any) and the session name.
// When pidfilePath is empty, it is derived from $XDG_RUNTIME_DIR/userns/<name>.
func ResolvePidfile(pidfilePath, name string) (dir string, base string, err error) {
	if pidfilePath != "" {
		return filepath.Dir(pidfilePath), filepath.Base(pidfilePath), nil
	}

	if name == "" {
		return "", "", fmt.Errorf("Missing session name")
	}

	rundir := os.Getenv("XDG_RUNTIME_DIR")
	if rundir == "" {
		return "", "", fmt.Errorf("Environment variable XDG_RUNTIME_DIR not set")
	}

	return filepath.Join(rundir, "userns"), name, nil
}

// ResolveDomain applies the --domain / $USERNS_DOMAIN / "localdomain"
// fallback chain.
func ResolveDomain(explicit string) string {
	if explicit != "" {
		return explicit
	}

	if env := os.Getenv("USERNS_DOMAIN"); env != "" {
		return env
	}

	return DefaultDomainName
}

// ResolveCommand applies the default-shell fallback: the caller's command
// vector if given, else $SHELL, else /bin/sh.
func ResolveCommand(command []string) []string {
	if len(command) > 0 {
		return command
	}

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	return []string{shell}
}
