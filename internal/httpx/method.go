package httpx

// Method is a tagged HTTP method variant. The zero value is Unknown, so
// a default-constructed Request never silently claims to be a GET.
type Method uint8

const (
	Unknown Method = iota
	Get
	Head
	Post
	Put
	Delete
	Connect
	Options
	Trace
	Patch
)

var methodNames = [...]string{
	Unknown: "",
	Get:     "GET",
	Head:    "HEAD",
	Post:    "POST",
	Put:     "PUT",
	Delete:  "DELETE",
	Connect: "CONNECT",
	Options: "OPTIONS",
	Trace:   "TRACE",
	Patch:   "PATCH",
}

var methodByName = func() map[string]Method {
	m := make(map[string]Method, len(methodNames)-1)
	for tag, name := range methodNames {
		if name != "" {
			m[name] = Method(tag)
		}
	}
	return m
}()

// ParseMethod does an exact, case-sensitive lookup against the standard
// method table. Anything else, including lowercase variants, is a
// ParseError.
func ParseMethod(s string) (Method, error) {
	if m, ok := methodByName[s]; ok {
		return m, nil
	}
	return Unknown, newParseError("unknown method", nil)
}

// String returns the wire form of m, or "" for Unknown and any
// out-of-range value; Serialize reports those as a SerializeError instead.
func (m Method) String() string {
	if int(m) < len(methodNames) && m != Unknown {
		return methodNames[m]
	}
	return ""
}

// Serialize returns the wire form of m, or a SerializeError for Unknown
// or any out-of-range value.
func (m Method) Serialize() (string, error) {
	if int(m) >= len(methodNames) || m == Unknown {
		return "", newSerializeError("invalid method")
	}
	return methodNames[m], nil
}
