//go:build linux

package netx

import "golang.org/x/sys/unix"

// poller is a thin wrapper around an epoll instance.
type poller struct {
	fd int
}

func newPoller() (*poller, error) {
	fd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, wrapErr("epoll_create1", err)
	}
	return &poller{fd: fd}, nil
}

func (p *poller) add(fd int, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	return wrapErr("epoll_ctl(ADD)", unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &ev))
}

func (p *poller) modify(fd int, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	return wrapErr("epoll_ctl(MOD)", unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, &ev))
}

func (p *poller) remove(fd int) error {
	// Linux ignores the event argument for EPOLL_CTL_DEL, but older kernels
	// require a non-nil pointer.
	return wrapErr("epoll_ctl(DEL)", unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, &unix.EpollEvent{}))
}

// wait blocks indefinitely until at least one fd is ready, filling events
// and returning how many slots were populated.
func (p *poller) wait(events []unix.EpollEvent) (int, error) {
	for {
		n, err := unix.EpollWait(p.fd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return 0, wrapErr("epoll_wait", err)
		}
		return n, nil
	}
}

func (p *poller) close() error {
	return wrapErr("close(epoll)", unix.Close(p.fd))
}
