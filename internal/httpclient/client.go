package httpclient

import (
	"net"
	"net/http"
	"time"
)

// NewClient creates an HTTP client tuned for a pool of workers hitting the
// same hosts. The client has no overall timeout; every request is bounded by
// its context deadline.
func NewClient(workers int) *http.Client {
	if workers < 1 {
		workers = 1
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   max(workers, 32),
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
	}
}
