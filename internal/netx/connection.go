//go:build linux

package netx

// Connection is a lightweight, non-owning handle to one accepted socket.
// It is valid to call Write/Close from within a ProtocolCallbacks.OnData
// invocation; the manager is the sole owner of the underlying fd. A Write
// on a connection that is scheduled for close is still attempted until the
// close runs, and whatever is then still queued is dropped; operations
// against an fd that has already been closed are dropped silently instead
// of erroring.
type Connection struct {
	fd  int
	mgr *Manager
}

// Fd returns the underlying file descriptor. Exposed so a higher layer
// (the HTTP facade) can key its own per-connection state by it.
func (c Connection) Fd() int { return c.fd }

// Write submits data to be sent on this connection. If cb is non-nil it
// fires once all of data has reached the kernel send buffer. Writes on
// the same connection complete in the order Write was called.
func (c Connection) Write(data []byte, cb func()) {
	c.mgr.tryWrite(c.fd, data, cb)
}

// Close schedules the connection for close at the end of the current
// event batch. Any write tasks still queued for it are dropped, not
// flushed, once the close actually runs.
func (c Connection) Close() {
	c.mgr.scheduleClose(c.fd)
}
