package httpx

import "fmt"

// requestLine models the first line of a parsed HTTP/1.x request.
type requestLine struct {
	Method  Method
	Target  string
	Version string
}

// String returns the serialized form of the request line.
func (r requestLine) String() string {
	name, _ := r.Method.Serialize()
	return fmt.Sprintf("%s %s %s", name, r.Target, r.Version)
}

// Request is a fully parsed HTTP/1.x request, as produced by
// RequestParser.Feed and handed to the on_request callback.
type Request struct {
	requestLine

	// Header is the ordered, duplicate-preserving sequence of fields as
	// they appeared on the wire (names lowercased, values trimmed).
	Header HeaderList

	// ContentLength caches the last "content-length" field's value (last
	// occurrence wins); it is 0 when the field was absent.
	ContentLength int64

	// Body is nil for ContentLength == 0 and exactly ContentLength bytes
	// otherwise.
	Body []byte
}

// String returns a human-readable representation of the request line.
func (r *Request) String() string {
	if r == nil {
		return "<nil request>"
	}
	return r.requestLine.String()
}
