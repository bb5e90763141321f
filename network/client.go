// Package network provides the HTTP clients shared by network-backed providers.
package network

import (
	"net/http"
	"time"
)

// Client is the HTTP client shared by builtin providers. It is tuned for
// many concurrent requests against a handful of hosts.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 20
	t.MaxConnsPerHost = 50
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = time.Second
	return t
}
