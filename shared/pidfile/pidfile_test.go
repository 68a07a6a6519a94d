//go:build linux

package pidfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsbox/userns/shared/pidfile"
)

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0600)
}

func TestPublishCreatesLockedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "userns")

	lockFile, err := pidfile.Publish(dir, "foo", 4242)
	require.NoError(t, err)
	defer lockFile.Close()

	reader, length, err := pidfile.Open(filepath.Join(dir, "foo"))
	require.NoError(t, err)
	defer reader.Close()

	pid, err := pidfile.ReadPID(reader, length)
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)

	locked, err := pidfile.ProbeLocked(reader, length)
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestPublishSecondFailsWhileFirstLocked(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "userns")

	lockFile, err := pidfile.Publish(dir, "foo", 1)
	require.NoError(t, err)
	defer lockFile.Close()

	_, err = pidfile.Publish(dir, "foo", 2)
	require.ErrorIs(t, err, pidfile.ErrLocked)
}

func TestPublishReclaimsStaleEntry(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "userns")

	lockFile, err := pidfile.Publish(dir, "foo", 1)
	require.NoError(t, err)

	// Simulate the leader exiting: closing every descriptor referring to
	// the open-file-description releases the advisory lock, but the
	// directory entry itself is left behind.
	require.NoError(t, lockFile.Close())

	lockFile2, err := pidfile.Publish(dir, "foo", 2)
	require.NoError(t, err)
	defer lockFile2.Close()

	reader, length, err := pidfile.Open(filepath.Join(dir, "foo"))
	require.NoError(t, err)
	defer reader.Close()

	pid, err := pidfile.ReadPID(reader, length)
	require.NoError(t, err)
	assert.Equal(t, 2, pid)
}

func TestReadPIDTrimsTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pid")

	require.NoError(t, writeFile(path, "123\n"))

	f, length, err := pidfile.Open(path)
	require.NoError(t, err)
	defer f.Close()

	pid, err := pidfile.ReadPID(f, length)
	require.NoError(t, err)
	assert.Equal(t, 123, pid)
}
