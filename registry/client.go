// Package registry implements ModuleFast's HTTP client for a NuGet v3-style
// registration API: a single long-lived client, reused across every index,
// page, and archive request issued during a resolve+install run.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/trackd/ModuleFast/internal/errs"
)

// defaultUserAgent is sent on every request. Registries gate emission of
// trimmed, dependency-only registration documents on it; a client that omits
// it still works, but receives larger payloads (§4.3).
const defaultUserAgent = "ModuleFast/1.0 (+https://github.com/trackd/ModuleFast)"

// Client is a reusable HTTP client for a single registry base endpoint.
type Client struct {
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithHTTP3 enables HTTP/3 negotiation (falling back to HTTP/2/1.1 when QUIC
// is unreachable). Off by default so tests and restrictive networks default
// to the always-available fallback path.
func WithHTTP3() Option {
	return func(c *Client) {
		c.http.Transport = newTransport(true)
	}
}

// New creates a Client. The returned client is safe for concurrent use and
// should be created once per run and closed (via Close) at the end.
func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Transport: newTransport(false),
			Timeout:   0, // per-request cancellation comes from context
		},
		userAgent: defaultUserAgent,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Close releases any resources held by the client's transport (e.g. open
// HTTP/3 connections).
func (c *Client) Close() error {
	if closer, ok := c.http.Transport.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
	return nil
}

// baseURL strips any trailing "*.json" path component from source, per
// §4.3: FetchRegistrationIndex builds its URL against {base}/registration/....
func baseURL(source string) (string, error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("%w: invalid registry source %q: %v", errs.ErrInvalidArgument, source, err)
	}
	if strings.HasSuffix(strings.ToLower(u.Path), ".json") {
		if idx := strings.LastIndex(u.Path, "/"); idx >= 0 {
			u.Path = u.Path[:idx]
		}
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}

// FetchRegistrationIndex fetches the registration index for name against
// source, mapping HTTP 404 to errs.ErrNotFound.
func (c *Client) FetchRegistrationIndex(ctx context.Context, source, name string) (Index, error) {
	base, err := baseURL(source)
	if err != nil {
		return Index{}, err
	}
	idxURL := fmt.Sprintf("%s/registration/%s/index.json", base, strings.ToLower(name))

	doc, err := c.getJSON(ctx, idxURL, name)
	if err != nil {
		return Index{}, err
	}
	idx, err := parseIndex(doc)
	if err != nil {
		return Index{}, fmt.Errorf("%s: %w", name, err)
	}
	return idx, nil
}

// FetchRegistrationPage fetches an absolute page URI, as given by a
// non-inlined Page's ID.
func (c *Client) FetchRegistrationPage(ctx context.Context, pageURI string) (Page, error) {
	doc, err := c.getJSON(ctx, pageURI, pageURI)
	if err != nil {
		return Page{}, err
	}
	p, err := parsePage(doc)
	if err != nil {
		return Page{}, err
	}
	if !p.Inlined {
		return Page{}, fmt.Errorf("%w: page fetched from %s still has no inlined leaves", errs.ErrInvalidRegistryResponse, pageURI)
	}
	return p, nil
}

// OpenArchiveStream GETs a module archive and returns its body as an
// in-flight, cancellable stream. The caller owns closing it.
func (c *Client) OpenArchiveStream(ctx context.Context, archiveURI string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, archiveURI)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("%w: %s fetching archive %s", errs.ErrTransport, resp.Status, archiveURI)
	}
	return resp.Body, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL, subject string) (gjson.Result, error) {
	resp, err := c.do(ctx, rawURL)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return gjson.Result{}, fmt.Errorf("%w: %s", errs.ErrNotFound, subject)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("%w: %s fetching %s", errs.ErrTransport, resp.Status, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: reading response from %s: %v", errs.ErrTransport, rawURL, err)
	}
	doc := gjson.ParseBytes(body)
	if !doc.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: empty or malformed JSON from %s", errs.ErrInvalidRegistryResponse, rawURL)
	}
	return doc, nil
}

func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %v", errs.ErrInvalidArgument, rawURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", errs.ErrCancelled, err)
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrTransport, err)
	}
	return resp, nil
}
