package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/medley-cli/medley/constant"
	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

const tlsTimeout = 30 * time.Second

// TLSClient presents a Chrome TLS fingerprint. Scripted providers use it
// for sites that reject the Go handshake.
var TLSClient = &http.Client{
	Timeout:   tlsTimeout,
	Transport: &fingerprintTransport{},
}

// fingerprintTransport tries HTTP/2 over a fingerprinted connection first
// and falls back to HTTP/1.1 when the server refuses h2.
type fingerprintTransport struct {
	once sync.Once
	h2   *http2.Transport
	h1   *http.Transport
}

func (t *fingerprintTransport) init() {
	t.h2 = &http2.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return dialFingerprinted(ctx, network, addr, nil)
		},
	}
	t.h1 = &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialFingerprinted(ctx, network, addr, []string{"http/1.1"})
		},
		Proxy: http.ProxyFromEnvironment,
	}
}

func (t *fingerprintTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.once.Do(t.init)

	if req.Header.Get("User-Agent") == "" || req.Header.Get("User-Agent") == constant.UserAgent {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", constant.BrowserUserAgent)
		req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	}

	if req.URL.Scheme != "https" {
		return http.DefaultTransport.RoundTrip(req)
	}

	resp, err := t.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}

	if req.Body != nil && req.GetBody == nil {
		return nil, err
	}
	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		if retry.Body, err = req.GetBody(); err != nil {
			return nil, err
		}
	}
	return t.h1.RoundTrip(retry)
}

// dialFingerprinted opens a TLS connection whose ClientHello mimics Chrome 120.
// A nil protos list keeps the fingerprint's own ALPN offer (h2, http/1.1).
func dialFingerprinted(ctx context.Context, network, addr string, protos []string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: tlsTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
		NextProtos: protos,
	}, utls.HelloChrome_120)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
