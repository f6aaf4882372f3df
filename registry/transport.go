package registry

import (
	"crypto/tls"
	"net/http"
	"time"

	quic "github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"golang.org/x/net/http2"

	"github.com/trackd/ModuleFast/internal/log"
)

// maxConnsPerOrigin bounds concurrent connections per origin for the
// HTTP/1.1 fallback transport (§4.3).
const maxConnsPerOrigin = 100

// newTransport builds the registry client's round tripper. It attempts
// HTTP/3 first when enableHTTP3 is set, falling back to an HTTP/2-capable
// transport (which itself falls back to HTTP/1.1 via ALPN negotiation) when
// QUIC is unavailable on the network path, e.g. because UDP egress is
// blocked. All requests over the HTTP/1.1 fallback share a single pool of at
// most maxConnsPerOrigin connections per origin.
func newTransport(enableHTTP3 bool) http.RoundTripper {
	h2 := &http.Transport{
		MaxConnsPerHost:     maxConnsPerOrigin,
		MaxIdleConnsPerHost: maxConnsPerOrigin,
		ForceAttemptHTTP2:   true,
		IdleConnTimeout:     90 * time.Second,
	}
	if err := http2.ConfigureTransport(h2); err != nil {
		log.Warnf("registry: could not configure HTTP/2 transport, falling back to HTTP/1.1: %v", err)
	}
	if !enableHTTP3 {
		return h2
	}

	h3 := &http3.Transport{
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS13, NextProtos: []string{"h3"}},
		QUICConfig: &quic.Config{
			MaxIdleTimeout:  30 * time.Second,
			KeepAlivePeriod: 15 * time.Second,
		},
	}
	return &fallbackRoundTripper{primary: h3, fallback: h2}
}

// fallbackRoundTripper tries primary and, on any error (most commonly a
// blocked or unsupported QUIC path), retries the request over fallback.
type fallbackRoundTripper struct {
	primary, fallback http.RoundTripper
}

func (t *fallbackRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.primary.RoundTrip(req)
	if err == nil {
		return resp, nil
	}
	log.Debugf("registry: HTTP/3 attempt for %s failed (%v), retrying over HTTP/2", req.URL, err)

	// The failed attempt may have consumed the request body; rewind it
	// before retrying over the fallback transport.
	if req.GetBody != nil {
		if body, berr := req.GetBody(); berr == nil {
			req.Body = body
		}
	}
	return t.fallback.RoundTrip(req)
}
