//go:build linux

package netx

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// DefaultBufferSize is the size of the reusable recv(2) buffer used when a
// Config does not specify one.
const DefaultBufferSize = 2048

const maxEpollEvents = 128

// readEvents is the edge-triggered read/hangup mask registered for every
// accepted client socket.
const readEvents = unix.EPOLLIN | unix.EPOLLET | unix.EPOLLRDHUP

// ProtocolCallbacks is implemented by the layer above the connection
// manager (the HTTP facade). OnData is invoked once per non-empty recv(2)
// chunk, in arrival order; OnClose fires once the fd has actually been
// closed so per-connection state can be discarded.
type ProtocolCallbacks interface {
	OnData(conn Connection, data []byte)
	OnClose(fd int)
}

// Config controls the listening socket and the reusable receive buffer.
type Config struct {
	// Port is the TCP port to bind on INADDR_ANY. 0 lets the kernel choose
	// an ephemeral port (recoverable via Manager.Port once NewManager has
	// returned).
	Port uint16
	// BufferSize is the size of the reusable recv(2) buffer. Defaults to
	// DefaultBufferSize.
	BufferSize int
}

type connState struct {
	writeQueue     []*WriteTask
	writeEnabled   bool
	closeRequested bool
}

// Manager is the edge-triggered accept/recv/send loop: it owns the
// listening socket, the epoll instance, the set of accepted connections,
// their outbound write queues and the deferred close queue.
type Manager struct {
	cfg   Config
	proto ProtocolCallbacks
	log   *logrus.Entry

	listenFd int
	poller   *poller

	conns map[int]*connState
	close []int

	recvBuf []byte

	wakeR, wakeW int
	stopped      atomic.Bool
}

// NewManager creates the listening socket and the epoll instance but does
// not start accepting connections; call Start for that.
func NewManager(cfg Config, proto ProtocolCallbacks) (*Manager, error) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}

	lfd, err := listen(cfg.Port)
	if err != nil {
		return nil, err
	}

	p, err := newPoller()
	if err != nil {
		_ = unix.Close(lfd)
		return nil, err
	}

	if err := p.add(lfd, unix.EPOLLIN|unix.EPOLLOUT|unix.EPOLLET); err != nil {
		_ = p.close()
		_ = unix.Close(lfd)
		return nil, err
	}

	r, w, err := newWakePipe(p)
	if err != nil {
		_ = p.close()
		_ = unix.Close(lfd)
		return nil, err
	}

	m := &Manager{
		cfg:      cfg,
		proto:    proto,
		log:      logrus.WithField("component", "netx.manager"),
		listenFd: lfd,
		poller:   p,
		conns:    make(map[int]*connState),
		recvBuf:  make([]byte, cfg.BufferSize),
		wakeR:    r,
		wakeW:    w,
	}
	return m, nil
}

// Port returns the bound listening port, resolving an ephemeral (0)
// Config.Port to the one the kernel actually assigned.
func (m *Manager) Port() (uint16, error) {
	return localPort(m.listenFd)
}

// Start runs the event loop. It blocks until Stop is called or a fatal
// syscall error occurs on the listening fd or the multiplexer itself, in
// which case that error is returned to the caller (ServerFatalError per
// the error taxonomy: the server terminates).
func (m *Manager) Start() error {
	events := make([]unix.EpollEvent, maxEpollEvents)

	for {
		n, err := m.poller.wait(events)
		if err != nil {
			return err
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			fd := int(ev.Fd)

			switch {
			case fd == m.wakeR:
				if m.stopped.Load() {
					m.drainCloseQueue()
					return nil
				}
			case fd == m.listenFd:
				if err := m.acceptLoop(); err != nil {
					return err
				}
			default:
				m.handleClientEvent(fd, ev.Events)
			}
		}

		m.drainCloseQueue()
	}
}

// Stop requests the event loop to return. The loop returns when it handles
// the resulting wake-up event, after draining the close queue; events that
// follow it in the same batch are not handled. Safe to call from any
// goroutine.
func (m *Manager) Stop() {
	m.stopped.Store(true)
	_, _ = unix.Write(m.wakeW, []byte{0})
}

func (m *Manager) handleClientEvent(fd int, events uint32) {
	if events&unix.EPOLLIN != 0 {
		m.receiveLoop(fd)
	}
	if events&unix.EPOLLOUT != 0 {
		m.continueWrite(fd)
	}
	if events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
		m.scheduleClose(fd)
	}
}

// acceptLoop drains accept(2) until EAGAIN, as required for an
// edge-triggered listening socket. Any other accept(2) failure is returned.
func (m *Manager) acceptLoop() error {
	for {
		fd, _, err := unix.Accept4(m.listenFd, unix.SOCK_NONBLOCK)
		if err != nil {
			if isTransient(err) {
				return nil
			}
			return wrapErr("accept4", err)
		}

		if err := m.poller.add(fd, readEvents); err != nil {
			m.log.WithError(err).Warn("epoll_ctl add for accepted fd failed")
			_ = unix.Close(fd)
			continue
		}

		m.conns[fd] = &connState{}
	}
}

// receiveLoop drains recv(2) until EAGAIN or EOF, forwarding each
// non-empty chunk to the protocol callback.
func (m *Manager) receiveLoop(fd int) {
	for {
		n, err := unix.Read(fd, m.recvBuf)
		if n > 0 {
			m.proto.OnData(Connection{fd: fd, mgr: m}, m.recvBuf[:n])
		}
		if err != nil {
			if isTransient(err) {
				return
			}
			m.scheduleClose(fd)
			return
		}
		if n == 0 {
			m.scheduleClose(fd)
			return
		}
	}
}

// tryWrite attempts an immediate send; a partial or EAGAIN'd write is
// queued as a WriteTask and the connection's epoll mask gains EPOLLOUT.
func (m *Manager) tryWrite(fd int, data []byte, cb func()) {
	cs, ok := m.conns[fd]
	if !ok {
		// Connection already closed in this batch; drop silently.
		return
	}

	if len(cs.writeQueue) == 0 {
		n, err := unix.Write(fd, data)
		if err == nil && n == len(data) {
			if cb != nil {
				cb()
			}
			return
		}
		if err != nil && !isTransient(err) {
			m.scheduleClose(fd)
			return
		}

		written := 0
		if n > 0 {
			written = n
		}
		m.enqueueWrite(fd, cs, data, written, cb)
		return
	}

	// Tasks already pending: preserve ordering by enqueueing behind them
	// rather than racing a fresh send ahead of queued bytes.
	m.enqueueWrite(fd, cs, data, 0, cb)
}

func (m *Manager) enqueueWrite(fd int, cs *connState, data []byte, written int, cb func()) {
	cs.writeQueue = append(cs.writeQueue, newWriteTask(data, written, cb))
	if !cs.writeEnabled {
		if err := m.poller.modify(fd, readEvents|unix.EPOLLOUT); err != nil {
			m.log.WithError(err).Warn("epoll_ctl mod (add EPOLLOUT) failed")
			m.scheduleClose(fd)
			return
		}
		cs.writeEnabled = true
	}
}

// continueWrite pops and sends queued write tasks in FIFO order until the
// queue drains or the kernel refuses more (EAGAIN).
func (m *Manager) continueWrite(fd int) {
	cs, ok := m.conns[fd]
	if !ok {
		return
	}

	for len(cs.writeQueue) > 0 {
		task := cs.writeQueue[0]

		n, err := unix.Write(fd, task.remaining())
		if n > 0 {
			task.written += n
		}

		if err != nil {
			if isTransient(err) {
				break
			}
			m.scheduleClose(fd)
			return
		}

		if task.done() {
			task.fire()
			cs.writeQueue = cs.writeQueue[1:]
			continue
		}
		break
	}

	if len(cs.writeQueue) == 0 && cs.writeEnabled {
		if err := m.poller.modify(fd, readEvents); err != nil {
			m.log.WithError(err).Warn("epoll_ctl mod (drop EPOLLOUT) failed")
			m.scheduleClose(fd)
			return
		}
		cs.writeEnabled = false
	}
}

func (m *Manager) scheduleClose(fd int) {
	cs, ok := m.conns[fd]
	if !ok || cs.closeRequested {
		return
	}
	cs.closeRequested = true
	m.close = append(m.close, fd)
}

func (m *Manager) drainCloseQueue() {
	for _, fd := range m.close {
		m.closeSocket(fd)
	}
	m.close = m.close[:0]
}

func (m *Manager) closeSocket(fd int) {
	_ = m.poller.remove(fd)
	_ = unix.Close(fd)
	delete(m.conns, fd)
	m.proto.OnClose(fd)
}

// Close tears down the listening socket, the epoll instance and the wake
// pipe. It does not close accepted connections still in flight; call Stop
// and let the event loop's own close queue drain first.
func (m *Manager) Close() error {
	_ = unix.Close(m.wakeR)
	_ = unix.Close(m.wakeW)
	pErr := m.poller.close()
	lErr := unix.Close(m.listenFd)
	if pErr != nil {
		return pErr
	}
	return wrapErr("close(listener)", lErr)
}

func newWakePipe(p *poller) (r, w int, err error) {
	fds := make([]int, 2)
	if err := unix.Pipe2(fds, unix.O_NONBLOCK); err != nil {
		return -1, -1, wrapErr("pipe2", err)
	}
	if err := p.add(fds[0], unix.EPOLLIN); err != nil {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
		return -1, -1, err
	}
	return fds[0], fds[1], nil
}
