//go:build linux

package fdpass_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsbox/userns/shared/fdpass"
)

func TestSendRecvRoundTripsDistinctDescriptor(t *testing.T) {
	pair, err := fdpass.New()
	require.NoError(t, err)
	defer pair.Close()

	tmp, err := os.CreateTemp(t.TempDir(), "fdpass")
	require.NoError(t, err)
	defer tmp.Close()

	const payload = "hello from the other side"
	_, err = tmp.WriteString(payload)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- fdpass.Send(pair.Local, 0x02, int(tmp.Fd()))
	}()

	tag, fd, err := fdpass.Recv(pair.Remote)
	require.NoError(t, err)
	require.NoError(t, <-done)

	assert.Equal(t, byte(0x02), tag)
	assert.NotEqual(t, int(tmp.Fd()), fd, "receiver must get its own descriptor, not the sender's number")

	received := os.NewFile(uintptr(fd), "received")
	defer received.Close()

	buf := make([]byte, len(payload))
	_, err = received.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, payload, string(buf))
}
