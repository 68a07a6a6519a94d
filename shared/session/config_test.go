package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsbox/userns/shared/session"
)

func TestResolvePidfileExplicit(t *testing.T) {
	dir, base, err := session.ResolvePidfile("/run/foo/bar.pid", "ignored")
	require.NoError(t, err)
	assert.Equal(t, "/run/foo", dir)
	assert.Equal(t, "bar.pid", base)
}

func TestResolvePidfileFromRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")

	dir, base, err := session.ResolvePidfile("", "foo")
	require.NoError(t, err)
	assert.Equal(t, "/run/user/1000/userns", dir)
	assert.Equal(t, "foo", base)
}

func TestResolvePidfileMissingRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	_, _, err := session.ResolvePidfile("", "foo")
	assert.Error(t, err)
}

func TestResolvePidfileMissingName(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")

	_, _, err := session.ResolvePidfile("", "")
	assert.Error(t, err)
}

func TestResolveDomain(t *testing.T) {
	t.Setenv("USERNS_DOMAIN", "")
	assert.Equal(t, "localdomain", session.ResolveDomain(""))

	t.Setenv("USERNS_DOMAIN", "example.com")
	assert.Equal(t, "example.com", session.ResolveDomain(""))
	assert.Equal(t, "explicit.net", session.ResolveDomain("explicit.net"))
}

func TestResolveCommand(t *testing.T) {
	assert.Equal(t, []string{"/bin/ls"}, session.ResolveCommand([]string{"/bin/ls"}))

	t.Setenv("SHELL", "/bin/zsh")
	assert.Equal(t, []string{"/bin/zsh"}, session.ResolveCommand(nil))

	t.Setenv("SHELL", "")
	assert.Equal(t, []string{"/bin/sh"}, session.ResolveCommand(nil))
}
