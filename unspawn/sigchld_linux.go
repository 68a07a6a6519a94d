package main

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// subscribeSIGCHLD starts forwarding SIGCHLD notifications onto a
// buffered channel suitable for racing against the rendezvous readiness
// pipe. The returned stop function must be called once the race is
// resolved.
func subscribeSIGCHLD() (ch <-chan struct{}, stop func()) {
	raw := make(chan os.Signal, 1)
	signal.Notify(raw, unix.SIGCHLD)

	out := make(chan struct{}, 1)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-raw:
				select {
				case out <- struct{}{}:
				default:
				}
			case <-done:
				return
			}
		}
	}()

	return out, func() {
		signal.Stop(raw)
		close(done)
	}
}
