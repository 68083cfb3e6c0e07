package httpx

import (
	"bytes"
	"testing"
)

func TestResponseSerializeStatusLineAndHeaders(t *testing.T) {
	resp := &Response{StatusCode: StatusOK, Reason: "OK"}
	resp.Header.Add("Content-Type", "text/plain")
	resp.Header.Add("Content-Length", "5")
	resp.Body = []byte("hello")

	got := string(resp.Serialize())
	want := "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nhello"
	if got != want {
		t.Fatalf("Serialize() = %q, want %q", got, want)
	}
}

func TestResponseSerializeEmptyReasonKeepsTrailingSpace(t *testing.T) {
	resp := &Response{StatusCode: 599}
	got := string(resp.Serialize())
	want := "HTTP/1.1 599 \r\n\r\n"
	if got != want {
		t.Fatalf("Serialize() = %q, want %q", got, want)
	}
}

func TestResponseSerializeFallsBackToRegistryReason(t *testing.T) {
	resp := &Response{StatusCode: StatusNotFound}
	got := string(resp.Serialize())
	want := "HTTP/1.1 404 Not Found\r\n\r\n"
	if got != want {
		t.Fatalf("Serialize() = %q, want %q", got, want)
	}
}

func TestResponseSerializeNoBody(t *testing.T) {
	resp := &Response{StatusCode: StatusNoContent, Reason: "No Content"}
	got := resp.Serialize()
	want := []byte("HTTP/1.1 204 No Content\r\n\r\n")
	if !bytes.Equal(got, want) {
		t.Fatalf("Serialize() = %q, want %q", got, want)
	}
}

const nginxWelcomeBody = `<!DOCTYPE html>
<html>
<head>
<title>Welcome to nginx!</title>
<style>
html { color-scheme: light dark; }
body { width: 35em; margin: 0 auto;
font-family: Tahoma, Verdana, Arial, sans-serif; }
</style>
</head>
<body>
<h1>Welcome to nginx!</h1>
<p>If you see this page, the nginx web server is successfully installed and
working. Further configuration is required.</p>

<p>For online documentation and support please refer to
<a href="http://nginx.org/">nginx.org</a>.<br/>
Commercial support is available at
<a href="http://nginx.com/">nginx.com</a>.</p>

<p><em>Thank you for using nginx.</em></p>
</body>
</html>
`

func TestResponseSerializeNginxFixtureRoundTrip(t *testing.T) {
	resp := &Response{StatusCode: StatusOK, Reason: "OK"}
	resp.Header.Add("Server", "nginx/1.22.1")
	resp.Header.Add("Date", "Sun, 28 May 2023 10:57:01 GMT")
	resp.Header.Add("Content-Type", "text/html")
	resp.Header.Add("Content-Length", "615")
	resp.Header.Add("Last-Modified", "Tue, 01 Nov 2022 21:46:23 GMT")
	resp.Header.Add("Connection", "keep-alive")
	resp.Header.Add("ETag", `"636193af-267"`)
	resp.Header.Add("Accept-Ranges", "bytes")
	resp.Body = []byte(nginxWelcomeBody)

	want := "HTTP/1.1 200 OK\r\n" +
		"Server: nginx/1.22.1\r\n" +
		"Date: Sun, 28 May 2023 10:57:01 GMT\r\n" +
		"Content-Type: text/html\r\n" +
		"Content-Length: 615\r\n" +
		"Last-Modified: Tue, 01 Nov 2022 21:46:23 GMT\r\n" +
		"Connection: keep-alive\r\n" +
		`ETag: "636193af-267"` + "\r\n" +
		"Accept-Ranges: bytes\r\n" +
		"\r\n" +
		nginxWelcomeBody

	if got := string(resp.Serialize()); got != want {
		t.Fatalf("Serialize() mismatch\ngot:  %q\nwant: %q", got, want)
	}
}
