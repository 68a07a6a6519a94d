package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnCommandNetFlagDefaultsToNoNetNS(t *testing.T) {
	c := &cmdSpawn{}
	cmd := c.command()

	require.NoError(t, cmd.Flags().Parse([]string{"--name", "foo"}))
	assert.Equal(t, netnsUnset, c.flagNet)
}

func TestSpawnCommandNetFlagBareEnablesFreshNamespace(t *testing.T) {
	c := &cmdSpawn{}
	cmd := c.command()

	require.NoError(t, cmd.Flags().Parse([]string{"--name", "foo", "--net"}))
	assert.Equal(t, "", c.flagNet)
	assert.NotEqual(t, netnsUnset, c.flagNet)
}

func TestSpawnCommandNetFlagWithValueJoinsNamedNamespace(t *testing.T) {
	c := &cmdSpawn{}
	cmd := c.command()

	require.NoError(t, cmd.Flags().Parse([]string{"--name", "foo", "--net=work"}))
	assert.Equal(t, "work", c.flagNet)
}

func TestSpawnCommandRejectsMissingName(t *testing.T) {
	c := &cmdSpawn{}
	cmd := c.command()
	cmd.SetArgs([]string{})

	err := c.run(cmd, nil)
	require.Error(t, err)
}
