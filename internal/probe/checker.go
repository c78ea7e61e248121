package probe

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Checker performs a single reachability check against one target
type Checker interface {
	Check(ctx context.Context, target string) error
}

// CheckerFunc adapts a function to the Checker interface
type CheckerFunc func(ctx context.Context, target string) error

func (f CheckerFunc) Check(ctx context.Context, target string) error {
	return f(ctx, target)
}

// HTTPChecker expects an HTTP 204 without following redirects. Captive
// portals answer generate_204 style endpoints with a redirect or a login
// page, which counts as unreachable.
type HTTPChecker struct {
	client *http.Client
}

// NewHTTPChecker creates an HTTPChecker
func NewHTTPChecker() *HTTPChecker {
	return &HTTPChecker{
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DisableKeepAlives:   true,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}
}

func (c *HTTPChecker) Check(ctx context.Context, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		return fmt.Errorf("redirected to %q (captive portal)", resp.Header.Get("Location"))
	default:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// TCPChecker succeeds when a TCP connection can be opened
type TCPChecker struct {
	dialer net.Dialer
}

func (c *TCPChecker) Check(ctx context.Context, target string) error {
	conn, err := c.dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		return err
	}
	return conn.Close()
}

// schemeChecker dispatches on the target's URL scheme
type schemeChecker struct {
	http *HTTPChecker
	tcp  *TCPChecker
}

// DefaultChecker handles http, https and tcp://host:port targets
func DefaultChecker() Checker {
	return &schemeChecker{http: NewHTTPChecker(), tcp: &TCPChecker{}}
}

func (c *schemeChecker) Check(ctx context.Context, target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "http", "https":
		return c.http.Check(ctx, target)
	case "tcp":
		return c.tcp.Check(ctx, u.Host)
	}
	return fmt.Errorf("unsupported scheme %q", u.Scheme)
}
