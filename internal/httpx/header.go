package httpx

import "strings"

// HeaderField is a single parsed "name: value" header line. Field names
// are ASCII-lowercased at parse time; values are trimmed of leading and
// trailing SP/HTAB, with internal whitespace preserved verbatim. Two
// fields are equal only if both name and value match exactly, post
// normalization.
type HeaderField struct {
	Name  string
	Value string
}

// ParseHeaderField splits line on the first ':'. A missing colon is a
// ParseError. The name is ASCII-lowercased; the value has leading and
// trailing " " and "\t" trimmed (an all-whitespace value yields "").
func ParseHeaderField(line string) (HeaderField, error) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return HeaderField{}, newParseError("header field missing ':'", nil)
	}
	name := asciiLower(line[:idx])
	value := trimOWS(line[idx+1:])
	return HeaderField{Name: name, Value: value}, nil
}

// asciiLower lowercases A-Z only; it never consults locale-aware case
// tables, matching the wire format's ASCII-only grammar.
func asciiLower(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}

// trimOWS trims leading/trailing optional whitespace (SP, HTAB) only.
func trimOWS(s string) string {
	start := 0
	for start < len(s) && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	end := len(s)
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}

// HeaderList is an ordered, duplicate-preserving sequence of header
// fields, used for both parsed requests and serialized responses.
type HeaderList []HeaderField

// Add appends field (name, value) to the list without any
// transformation; used by response builders, where the caller controls
// casing.
func (h *HeaderList) Add(name, value string) {
	*h = append(*h, HeaderField{Name: name, Value: value})
}

// Get returns the first value whose Name equals name exactly (callers
// comparing against parsed request headers should pass a lowercased
// name), and whether it was found.
func (h HeaderList) Get(name string) (string, bool) {
	for _, f := range h {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Values returns every value associated with name, in insertion order.
func (h HeaderList) Values(name string) []string {
	var out []string
	for _, f := range h {
		if f.Name == name {
			out = append(out, f.Value)
		}
	}
	return out
}
