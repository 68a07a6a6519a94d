// Package rendezvous implements the pipe-based readiness protocol that
// stands in for the reference implementation's signalfd-based rendezvous:
// the Spawner must learn that the not-yet-exec'd leader has finished
// namespace setup, or that it died first, before it publishes the PID
// file; the leader must not exec the user command until the PID file is
// actually in place.
package rendezvous

import "os"

// State names where the parent's wait for the leader currently stands.
type State int

const (
	// AwaitingChild is never observed by callers; it names the period
	// before Await returns.
	AwaitingChild State = iota
	// ChildRunning means the leader reached the rendezvous point alive.
	ChildRunning
	// ChildExited means the leader died, or its readiness pipe closed,
	// before reaching the rendezvous point.
	ChildExited
)

// Pipes is the pair of one-shot pipes carried across the leader's clone and
// re-exec.
type Pipes struct {
	ReadyR, ReadyW *os.File
	ContR, ContW   *os.File
}

// New creates both pipes that make up a rendezvous.
func New() (*Pipes, error) {
	readyR, readyW, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	contR, contW, err := os.Pipe()
	if err != nil {
		_ = readyR.Close()
		_ = readyW.Close()
		return nil, err
	}

	return &Pipes{ReadyR: readyR, ReadyW: readyW, ContR: contR, ContW: contW}, nil
}

// Close closes every descriptor in the set.
func (p *Pipes) Close() {
	_ = p.ReadyR.Close()
	_ = p.ReadyW.Close()
	_ = p.ContR.Close()
	_ = p.ContW.Close()
}

// SignalReady is called by the leader once namespace, hostname, domain, and
// environment setup are complete, to wake a parent blocked in Await.
func SignalReady(w *os.File) error {
	_, err := w.Write([]byte{1})
	return err
}

// AwaitContinue is called by the leader after SignalReady; it blocks until
// the parent has published the PID file and called SignalContinue.
func AwaitContinue(r *os.File) error {
	buf := make([]byte, 1)
	_, err := r.Read(buf)
	return err
}

// SignalContinue is called by the parent once the PID file is published, to
// release a leader blocked in AwaitContinue.
func SignalContinue(w *os.File) error {
	_, err := w.Write([]byte{1})
	return err
}

// Await blocks until the leader either signals readiness on readyR or is
// reported dead via sigchld, implementing the AwaitingChild -> {ChildRunning,
// ChildExited} transition. sigchld is a channel the caller has already
// subscribed with signal.Notify(ch, syscall.SIGCHLD).
func Await(readyR *os.File, sigchld <-chan struct{}) State {
	result := make(chan State, 2)

	go func() {
		buf := make([]byte, 1)
		n, err := readyR.Read(buf)
		if err != nil || n == 0 {
			result <- ChildExited
			return
		}

		result <- ChildRunning
	}()

	go func() {
		<-sigchld
		result <- ChildExited
	}()

	return <-result
}
