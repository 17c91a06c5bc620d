package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout bounds the SOCKS5 handshake performed by CheckProxy.
const checkProxyTimeout = 2 * time.Second

// dialTimeout bounds establishing a TCP connection, direct or proxied.
const dialTimeout = 10 * time.Second

// SOCKS5 protocol constants used by CheckProxy.
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthNoAccept = 0xFF
)

// Options configures a Client.
type Options struct {
	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	// Empty means direct connections.
	ProxyAddress string

	// Timeout is an upper bound for a whole HTTP exchange. Zero leaves the
	// bound to the request context, which is how the providers use it.
	Timeout time.Duration

	// UserAgent is set on every request that does not carry one.
	UserAgent string
}

// Client creates HTTP clients for provider traffic.
type Client struct {
	opts   Options
	dialer proxy.ContextDialer
}

// NewClient validates the options and prepares the dialer. It does not
// contact the proxy; call CheckProxy to verify it.
func NewClient(opts Options) (*Client, error) {
	direct := &net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}
	if opts.ProxyAddress == "" {
		return &Client{opts: opts, dialer: direct}, nil
	}

	if !isValidProxyAddress(opts.ProxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	// nil auth: SOCKS5 proxies used for egress typically accept no-auth
	// connections from trusted networks.
	d, err := proxy.SOCKS5("tcp", opts.ProxyAddress, nil, direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("SOCKS5 dialer for %s does not support contexts", opts.ProxyAddress)
	}
	return &Client{opts: opts, dialer: cd}, nil
}

// isValidProxyAddress checks if the address is in valid "host:port" format
// with a non-empty host and a port between 1 and 65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// ProxyAddress returns the configured proxy address, or "" for direct connections.
func (c *Client) ProxyAddress() string {
	return c.opts.ProxyAddress
}

// CheckProxy verifies that the configured proxy accepts a SOCKS5 handshake
// without authentication. It returns ProxyStatusDirect when no proxy is set.
func (c *Client) CheckProxy(ctx context.Context) ProxyStatus {
	if c.opts.ProxyAddress == "" {
		return ProxyStatusDirect
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.opts.ProxyAddress)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// version, one method, "no authentication"
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if resp[0] != socks5Version || resp[1] == socks5AuthNoAccept || resp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}

// NewHTTPClient creates an HTTP client whose connections go through the
// configured dialer. TLS verification stays on: every provider endpoint
// is a public HTTPS API.
func (c *Client) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext:         c.dialer.DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if c.opts.ProxyAddress == "" {
		transport.Proxy = http.ProxyFromEnvironment
	}

	var rt http.RoundTripper = transport
	if c.opts.UserAgent != "" {
		rt = &userAgentTransport{base: transport, userAgent: c.opts.UserAgent}
	}

	return &http.Client{
		Transport: rt,
		Timeout:   c.opts.Timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// userAgentTransport sets a default User-Agent on every request.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}
