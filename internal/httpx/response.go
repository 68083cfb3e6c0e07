package httpx

import (
	"strconv"
	"strings"
)

// Response is a minimal HTTP/1.x response: a status, an ordered header
// list, and raw body bytes. There is no automatic Content-Length
// insertion; the handler that builds a Response is responsible for it.
type Response struct {
	StatusCode StatusCode
	// Reason overrides StatusCode.ReasonPhrase() when non-empty; an empty
	// Reason falls back to the registry phrase. When both are empty (an
	// unregistered code), the status line still ends with the trailing
	// space.
	Reason string
	Header HeaderList
	Body   []byte
}

// reasonPhrase returns r.Reason if set, else the registry phrase for
// r.StatusCode (which may itself be "").
func (r *Response) reasonPhrase() string {
	if r.Reason != "" {
		return r.Reason
	}
	return r.StatusCode.ReasonPhrase()
}

// Serialize produces the wire bytes of r: the status line, each header
// field in insertion order with caller-controlled casing, a blank line,
// then the body verbatim. Version is always "HTTP/1.1".
func (r *Response) Serialize() []byte {
	var b strings.Builder
	b.Grow(64 + len(r.Body))

	b.WriteString("HTTP/1.1 ")
	b.WriteString(strconv.Itoa(int(r.StatusCode)))
	b.WriteByte(' ')
	b.WriteString(r.reasonPhrase())
	b.WriteString("\r\n")

	for _, f := range r.Header {
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")

	out := make([]byte, 0, b.Len()+len(r.Body))
	out = append(out, b.String()...)
	out = append(out, r.Body...)
	return out
}
