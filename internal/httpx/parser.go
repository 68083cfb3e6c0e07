package httpx

import (
	"strconv"
	"strings"
)

// parserState is the header-terminator recognition state; see Feed.
type parserState uint8

const (
	stateBeforeCR1 parserState = iota
	stateCR1
	stateLF1
	stateCR2
	stateBody
)

// RequestParser is a byte-incremental HTTP/1.x request parser. Feed may be
// called with arbitrarily small or large chunks, including single bytes
// and the concatenation of several pipelined requests; it never blocks
// and never retains a view into the caller's slice past the call.
//
// A RequestParser is not safe for concurrent use; callers that need one
// per connection should construct a fresh value per connection.
type RequestParser struct {
	onRequest func(*Request)

	state parserState
	// buf is the single carryover buffer: it accumulates header bytes
	// while state != stateBody, and body bytes while state == stateBody.
	// It is always empty immediately after a request has been emitted.
	buf []byte

	method        Method
	target        string
	version       string
	header        HeaderList
	contentLength int64
}

// NewRequestParser constructs a parser that invokes onRequest, in order
// of arrival, once per fully parsed request.
func NewRequestParser(onRequest func(*Request)) *RequestParser {
	return &RequestParser{onRequest: onRequest}
}

// Feed consumes data incrementally, emitting zero or more requests via
// the configured callback. After a ParseError, the parser's internal
// state is unspecified; the caller is expected to close the connection.
func (p *RequestParser) Feed(data []byte) error {
	i := 0
	for i < len(data) {
		if p.state == stateBody {
			need := int(p.contentLength) - len(p.buf)
			take := len(data) - i
			if take > need {
				take = need
			}
			p.buf = append(p.buf, data[i:i+take]...)
			i += take
			if len(p.buf) == int(p.contentLength) {
				req := p.buildRequest(p.buf)
				p.buf = p.buf[:0]
				p.state = stateBeforeCR1
				p.onRequest(req)
			}
			continue
		}

		b := data[i]
		i++
		p.buf = append(p.buf, b)

		switch p.state {
		case stateBeforeCR1:
			if b == '\r' {
				p.state = stateCR1
			}

		case stateCR1:
			switch b {
			case '\n':
				p.state = stateLF1
			case '\r':
				// a second CR stays in CR1, treating it as the new candidate
			default:
				p.state = stateBeforeCR1
			}

		case stateLF1:
			if b == '\r' {
				p.state = stateCR2
			} else {
				p.state = stateBeforeCR1
			}

		case stateCR2:
			switch b {
			case '\n':
				header := p.buf[:len(p.buf)-4]
				if err := p.finishHeader(header); err != nil {
					p.buf = p.buf[:0]
					p.state = stateBeforeCR1
					return err
				}
				if p.contentLength == 0 {
					req := p.buildRequest(nil)
					p.buf = p.buf[:0]
					p.state = stateBeforeCR1
					p.onRequest(req)
				} else {
					p.buf = p.buf[:0]
					p.state = stateBody
				}
			case '\r':
				p.state = stateCR1
			default:
				p.state = stateBeforeCR1
			}
		}
	}
	return nil
}

// finishHeader parses the assembled header block (request line plus
// field lines, terminator already stripped) and populates the parser's
// pending method/target/version/header/contentLength.
func (p *RequestParser) finishHeader(raw []byte) error {
	s := string(raw)
	reqLine := s
	rest := ""
	if idx := strings.Index(s, "\r\n"); idx >= 0 {
		reqLine = s[:idx]
		rest = s[idx+2:]
	}
	if reqLine == "" {
		return ErrEmptyRequestLine
	}

	parts := strings.Split(reqLine, " ")
	if len(parts) != 3 {
		return newParseError("request line must have exactly three tokens", nil)
	}
	method, err := ParseMethod(parts[0])
	if err != nil {
		return err
	}

	p.method = method
	p.target = parts[1]
	p.version = parts[2]
	p.header = p.header[:0]
	p.contentLength = 0

	if rest == "" {
		return nil
	}
	for _, line := range strings.Split(rest, "\r\n") {
		field, err := ParseHeaderField(line)
		if err != nil {
			return err
		}
		p.header.Add(field.Name, field.Value)
		if field.Name == "content-length" {
			n, err := strconv.ParseInt(field.Value, 10, 64)
			if err != nil || n < 0 {
				return newParseError("invalid content-length", err)
			}
			p.contentLength = n
		}
	}
	return nil
}

// buildRequest copies the parser's pending fields (and body, if any)
// into a freshly owned Request; the parser's own buffers are reused for
// the next request immediately after this returns.
func (p *RequestParser) buildRequest(body []byte) *Request {
	header := make(HeaderList, len(p.header))
	copy(header, p.header)

	var owned []byte
	if body != nil {
		owned = make([]byte, len(body))
		copy(owned, body)
	}

	return &Request{
		requestLine:   requestLine{Method: p.method, Target: p.target, Version: p.version},
		Header:        header,
		ContentLength: p.contentLength,
		Body:          owned,
	}
}
