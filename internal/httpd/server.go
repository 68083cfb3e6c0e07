//go:build linux

// Package httpd is the HTTP server facade: it binds a per-connection
// httpx.RequestParser to a netx.Manager, dispatches parsed requests to a
// user Handler, serializes the returned response, and writes it back
// through the connection handle.
package httpd

import (
	"github.com/sirupsen/logrus"

	"github.com/andycostintoma/http1/internal/httpx"
	"github.com/andycostintoma/http1/internal/netx"
)

// Handler answers one fully parsed request with a response to serialize
// and send back. It runs synchronously on the event-loop goroutine and
// must not block.
type Handler interface {
	Handle(req *httpx.Request) *httpx.Response
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(req *httpx.Request) *httpx.Response

func (f HandlerFunc) Handle(req *httpx.Request) *httpx.Response { return f(req) }

// Server implements netx.ProtocolCallbacks, owning one httpx.RequestParser
// per live connection.
type Server struct {
	handler Handler
	log     *logrus.Entry

	mgr     *netx.Manager
	parsers map[int]*httpx.RequestParser
}

// NewServer creates the listening socket and epoll instance (via
// netx.NewManager) and wires it to handler. Call Start to begin serving.
func NewServer(cfg netx.Config, handler Handler) (*Server, error) {
	s := &Server{
		handler: handler,
		log:     logrus.WithField("component", "httpd.server"),
		parsers: make(map[int]*httpx.RequestParser),
	}

	mgr, err := netx.NewManager(cfg, s)
	if err != nil {
		return nil, err
	}
	s.mgr = mgr
	return s, nil
}

// Port returns the bound listening port.
func (s *Server) Port() (uint16, error) { return s.mgr.Port() }

// Start runs the event loop; see netx.Manager.Start.
func (s *Server) Start() error { return s.mgr.Start() }

// Stop requests the event loop to return.
func (s *Server) Stop() { s.mgr.Stop() }

// Close tears down the listening socket and epoll instance.
func (s *Server) Close() error { return s.mgr.Close() }

// OnData implements netx.ProtocolCallbacks. It looks up or creates the
// parser for this connection and feeds it data; a ParseError closes the
// connection instead of propagating, per the core's recoverable-error
// policy.
func (s *Server) OnData(conn netx.Connection, data []byte) {
	fd := conn.Fd()
	p, ok := s.parsers[fd]
	if !ok {
		p = httpx.NewRequestParser(func(req *httpx.Request) {
			s.respond(conn, req)
		})
		s.parsers[fd] = p
	}

	if err := p.Feed(data); err != nil {
		s.log.WithError(err).WithField("fd", fd).Warn("request parse failed, closing connection")
		conn.Close()
	}
}

// OnClose implements netx.ProtocolCallbacks, discarding per-connection
// parser state.
func (s *Server) OnClose(fd int) {
	delete(s.parsers, fd)
}

func (s *Server) respond(conn netx.Connection, req *httpx.Request) {
	resp := s.handler.Handle(req)
	if resp == nil {
		s.log.WithField("fd", conn.Fd()).Warn("handler returned nil response, closing connection")
		conn.Close()
		return
	}
	conn.Write(resp.Serialize(), nil)
}
