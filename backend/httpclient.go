package backend

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// newHTTPClient builds the shared HTTP client for REST-speaking backends.
// Keep-alives and a warm connection pool matter here: a cold TLS or TCP
// handshake inside a timed operation would show up as backend latency.
// No request timeout is set; a hanging operation hangs the benchmark.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   50,
		MaxConnsPerHost:       100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if err := http2.ConfigureTransport(transport); err != nil {
		panic(fmt.Sprintf("failed to configure HTTP/2: %v", err))
	}

	return &http.Client{Transport: transport}
}
