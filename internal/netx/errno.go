//go:build linux

// Package netx implements the non-blocking, edge-triggered TCP connection
// manager the HTTP facade is built on: a single-threaded epoll accept/recv/
// send loop with a per-connection outbound write queue and a deferred close
// queue.
package netx

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// SyscallError wraps a failed syscall with the operation name and the
// underlying errno, so callers can still errors.Is/As against it.
type SyscallError struct {
	Op  string
	Err error
}

func (e *SyscallError) Error() string {
	return fmt.Sprintf("netx: %s: %v", e.Op, e.Err)
}

func (e *SyscallError) Unwrap() error { return e.Err }

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &SyscallError{Op: op, Err: err}
}

// isTransient reports whether err is EAGAIN/EWOULDBLOCK, i.e. not a real
// error but the edge-triggered multiplexer telling us to stop draining.
func isTransient(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}
