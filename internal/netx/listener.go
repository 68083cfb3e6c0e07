//go:build linux

package netx

import "golang.org/x/sys/unix"

// listen creates a non-blocking, SO_REUSEADDR stream socket bound to
// 0.0.0.0:port and listening with the OS-max backlog. port == 0 lets the
// kernel pick an ephemeral port; callers can recover it via localPort.
func listen(port uint16) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, wrapErr("socket", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return -1, wrapErr("setsockopt(SO_REUSEADDR)", err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return -1, wrapErr("setnonblock(listen)", err)
	}

	sa := &unix.SockaddrInet4{Port: int(port)}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return -1, wrapErr("bind", err)
	}

	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		_ = unix.Close(fd)
		return -1, wrapErr("listen", err)
	}

	return fd, nil
}

// localPort reads back the port the kernel bound fd to (useful when the
// caller requested port 0).
func localPort(fd int) (uint16, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return 0, wrapErr("getsockname", err)
	}
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		return uint16(in4.Port), nil
	}
	return 0, wrapErr("getsockname", unix.EINVAL)
}
