package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/nsbox/userns/shared/session"
)

func TestCloneFlagsDefaultIncludesPidAndCgroup(t *testing.T) {
	flags := cloneFlags(session.SpawnConfig{})

	assert.NotZero(t, flags&unix.CLONE_NEWPID)
	assert.NotZero(t, flags&unix.CLONE_NEWCGROUP)
	assert.NotZero(t, flags&unix.CLONE_NEWNS)
	assert.NotZero(t, flags&unix.CLONE_NEWUTS)
	assert.NotZero(t, flags&unix.CLONE_NEWIPC)
	assert.Zero(t, flags&unix.CLONE_NEWUSER, "user namespace is mapped before clone, never requested in clone flags")
	assert.Zero(t, flags&unix.CLONE_NEWNET, "no --net given, leader shares the invoker's network namespace")
}

func TestCloneFlagsSuppressions(t *testing.T) {
	flags := cloneFlags(session.SpawnConfig{NoPID: true, NoCgroup: true})

	assert.Zero(t, flags&unix.CLONE_NEWPID)
	assert.Zero(t, flags&unix.CLONE_NEWCGROUP)
}

func TestCloneFlagsFreshNetNamespace(t *testing.T) {
	flags := cloneFlags(session.SpawnConfig{NetNS: true})
	assert.NotZero(t, flags&unix.CLONE_NEWNET)
}

func TestCloneFlagsJoinedNetNamespaceOmitsCloneFlag(t *testing.T) {
	flags := cloneFlags(session.SpawnConfig{NetNS: true, NetNSName: "work"})
	assert.Zero(t, flags&unix.CLONE_NEWNET, "joining a named netns happens via setns before clone, not via a clone flag")
}
