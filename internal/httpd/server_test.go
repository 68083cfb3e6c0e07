//go:build linux

package httpd

import (
	"bufio"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andycostintoma/http1/internal/httpx"
	"github.com/andycostintoma/http1/internal/netx"
)

func startServer(t *testing.T, h Handler) string {
	t.Helper()
	s, err := NewServer(netx.Config{Port: 0, BufferSize: 64}, h)
	require.NoError(t, err)

	port, err := s.Port()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	t.Cleanup(func() {
		s.Stop()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("server did not stop in time")
		}
		_ = s.Close()
	})

	return net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port)))
}

func TestServerRoundTripsMinimalGET(t *testing.T) {
	h := HandlerFunc(func(req *httpx.Request) *httpx.Response {
		require.Equal(t, httpx.Get, req.Method)
		require.Equal(t, "/", req.Target)

		resp := &httpx.Response{StatusCode: httpx.StatusOK, Reason: "OK"}
		resp.Header.Add("Content-Length", "2")
		resp.Body = []byte("ok")
		return resp
	})

	addr := startServer(t, h)
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)

	r := bufio.NewReader(conn)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "HTTP/1.1 200 OK\r\n", line)
}

func TestServerClosesConnectionOnMalformedRequest(t *testing.T) {
	h := HandlerFunc(func(req *httpx.Request) *httpx.Response {
		t.Fatal("handler should not run for a malformed request")
		return nil
	})

	addr := startServer(t, h)
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Write([]byte("BADMETHOD / HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, err := conn.Read(buf)
	require.True(t, n == 0)
	require.Error(t, err)
}

func TestServerEchoesPostBody(t *testing.T) {
	h := HandlerFunc(func(req *httpx.Request) *httpx.Response {
		resp := &httpx.Response{StatusCode: httpx.StatusOK, Reason: "OK"}
		resp.Header.Add("Content-Length", strconv.Itoa(len(req.Body)))
		resp.Body = req.Body
		return resp
	})

	addr := startServer(t, h)
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))
	req := "POST / HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"
	_, err = conn.Write([]byte(req))
	require.NoError(t, err)

	r := bufio.NewReader(conn)
	status, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "HTTP/1.1 200 OK\r\n", status)

	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if line == "\r\n" {
			break
		}
	}
	body := make([]byte, 5)
	_, err = r.Read(body)
	require.NoError(t, err)
	require.Equal(t, "hello", string(body))
}
