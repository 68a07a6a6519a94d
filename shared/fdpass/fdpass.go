// Package fdpass carries a single file descriptor across a Unix domain
// socketpair using SCM_RIGHTS ancillary data. The Spawner needs it because
// the PID-file lock descriptor does not exist until after the leader has
// already been cloned and re-exec'd once: by the time pidfile.Publish
// returns a lock-holding descriptor, the leader's os/exec.Cmd.ExtraFiles
// list is long closed, so the only way to hand that descriptor down is to
// send it over a channel the leader is still reading.
package fdpass

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Pair is a connected pair of SOCK_SEQPACKET descriptors suitable for one fd
// handoff plus a one-byte payload in each direction. Local is kept by the
// process that creates the pair; Remote is inherited by a child across
// clone/exec via os/exec.Cmd.ExtraFiles.
type Pair struct {
	Local, Remote *os.File
}

// New creates a socketpair for a single fd handoff. Both descriptors are
// close-on-exec; handing Remote to a child through os/exec.Cmd.ExtraFiles
// clears that flag on the child's copy the same way it does for any other
// inherited descriptor.
func New() (*Pair, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_SEQPACKET|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("Create fd-passing socketpair: %w", err)
	}

	return &Pair{
		Local:  os.NewFile(uintptr(fds[0]), "fdpass-local"),
		Remote: os.NewFile(uintptr(fds[1]), "fdpass-remote"),
	}, nil
}

// Close closes both ends. Safe to call after one end has already been
// handed to a child; closing the parent's copy of an inherited descriptor
// does not affect the child's copy.
func (p *Pair) Close() {
	_ = p.Local.Close()
	_ = p.Remote.Close()
}

// Send writes a one-byte tag alongside fd as SCM_RIGHTS ancillary data.
// The receiver gets its own, independent duplicate of fd; the sender's
// copy is unaffected and should be closed normally once no longer needed.
func Send(conn *os.File, tag byte, fd int) error {
	rights := unix.UnixRights(fd)

	return unix.Sendmsg(int(conn.Fd()), []byte{tag}, rights, nil, 0)
}

// Recv reads a one-byte tag and the fd sent alongside it with Send. The
// returned descriptor is not close-on-exec: it is meant to survive the
// receiver's own later exec.
func Recv(conn *os.File) (tag byte, fd int, err error) {
	msgBuf := make([]byte, 1)
	oobBuf := make([]byte, unix.CmsgSpace(4))

	n, oobn, _, _, err := unix.Recvmsg(int(conn.Fd()), msgBuf, oobBuf, 0)
	if err != nil {
		return 0, -1, fmt.Errorf("Receive fd: %w", err)
	}

	if n != 1 {
		return 0, -1, fmt.Errorf("Receive fd: short message read (%d bytes)", n)
	}

	cmsgs, err := unix.ParseSocketControlMessage(oobBuf[:oobn])
	if err != nil || len(cmsgs) != 1 {
		return 0, -1, fmt.Errorf("Receive fd: parse control message: %w", err)
	}

	fds, err := unix.ParseUnixRights(&cmsgs[0])
	if err != nil || len(fds) != 1 {
		return 0, -1, fmt.Errorf("Receive fd: parse unix rights: %w", err)
	}

	return msgBuf[0], fds[0], nil
}
