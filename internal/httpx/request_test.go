package httpx

import "testing"

func TestRequestLineString(t *testing.T) {
	rl := requestLine{Method: Get, Target: "/a/b?x=1", Version: "HTTP/1.1"}
	want := "GET /a/b?x=1 HTTP/1.1"
	if got := rl.String(); got != want {
		t.Fatalf("requestLine.String() = %q, want %q", got, want)
	}
}

func TestRequestStringNilSafe(t *testing.T) {
	var req *Request
	if got := req.String(); got != "<nil request>" {
		t.Fatalf("String() on nil = %q", got)
	}
}

func TestRequestHeaderAndContentLength(t *testing.T) {
	req := &Request{
		requestLine:   requestLine{Method: Post, Target: "/", Version: "HTTP/1.1"},
		ContentLength: 5,
		Body:          []byte("hello"),
	}
	req.Header.Add("content-type", "text/plain")

	if v, ok := req.Header.Get("content-type"); !ok || v != "text/plain" {
		t.Fatalf("Header.Get(content-type) = %q, %v", v, ok)
	}
	if req.ContentLength != int64(len(req.Body)) {
		t.Fatalf("ContentLength %d != len(Body) %d", req.ContentLength, len(req.Body))
	}
}
