package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout bounds the SOCKS5 handshake in CheckConnection.
const checkProxyTimeout = 2 * time.Second

// maxRedirects is the number of redirects a client follows.
const maxRedirects = 10

// SOCKS5 protocol constants used by CheckConnection.
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthPassword = 0x02
	socks5AuthNoAccept = 0xFF
)

// Client creates HTTP clients for fetching pages, optionally through a
// SOCKS5 proxy.
type Client struct {
	// proxyAddress is the proxy in "host:port" form. Empty for direct.
	proxyAddress string

	// auth holds proxy credentials from a socks5:// URL.
	auth *proxy.Auth

	// dialer routes connections through the proxy. Nil for direct.
	dialer proxy.Dialer

	// timeout is the overall timeout of the HTTP clients created.
	timeout time.Duration

	// maxIdleConnsPerHost sizes the connection pool to the crawl concurrency.
	maxIdleConnsPerHost int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithProxy routes connections through the SOCKS5 proxy at address.
// The address is either "host:port" or "socks5://[user:pass@]host:port".
func WithProxy(address string) ClientOption {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithMaxIdleConnsPerHost sets the idle connection pool size per host.
func WithMaxIdleConnsPerHost(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxIdleConnsPerHost = n
		}
	}
}

// NewClient creates a Client whose HTTP clients time out after timeout.
//
// When a proxy is configured its address format is validated here, but the
// proxy itself is not contacted. Call CheckConnection to verify it.
func NewClient(timeout time.Duration, opts ...ClientOption) (*Client, error) {
	c := &Client{
		timeout:             timeout,
		maxIdleConnsPerHost: 4,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.proxyAddress == "" {
		return c, nil
	}

	address, auth, err := parseProxyAddress(c.proxyAddress)
	if err != nil {
		return nil, err
	}

	dialer, err := proxy.SOCKS5("tcp", address, auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	c.proxyAddress = address
	c.auth = auth
	c.dialer = dialer
	return c, nil
}

// parseProxyAddress accepts "host:port" or a socks5:// URL and returns the
// host:port together with any credentials.
func parseProxyAddress(raw string) (string, *proxy.Auth, error) {
	if !strings.Contains(raw, "://") {
		if !isValidProxyAddress(raw) {
			return "", nil, ErrInvalidProxyAddress
		}
		return raw, nil, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", nil, ErrInvalidProxyAddress
	}
	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		return "", nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidProxyAddress, u.Scheme)
	}
	if !isValidProxyAddress(u.Host) {
		return "", nil, ErrInvalidProxyAddress
	}

	var auth *proxy.Auth
	if u.User != nil {
		password, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: password}
	}
	return u.Host, auth, nil
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return portNum >= 1 && portNum <= 65535
}

// ProxyAddress returns the proxy "host:port", or "" for direct connections.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// UsesProxy reports whether connections go through a proxy.
func (c *Client) UsesProxy() bool {
	return c.dialer != nil
}

// CheckConnection performs a SOCKS5 method negotiation with the proxy to
// verify it is reachable and speaks SOCKS5. Direct clients are always OK.
func (c *Client) CheckConnection(ctx context.Context) ProxyStatus {
	if c.dialer == nil {
		return ProxyStatusOK
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
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

	// Client sends: version, number of methods, methods.
	method := byte(socks5AuthNone)
	if c.auth != nil {
		method = socks5AuthPassword
	}
	if _, err := conn.Write([]byte{socks5Version, 0x01, method}); err != nil {
		return ProxyStatusCannotConnect
	}

	// Server replies: version, selected method.
	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if resp[0] != socks5Version || resp[1] == socks5AuthNoAccept || resp[1] != method {
		return ProxyStatusWrongType
	}

	return ProxyStatusOK
}

// NewHTTPClient creates an HTTP client for page fetches.
//
// No cookie jar is attached; every request is anonymous. Redirects are
// followed up to a fixed limit.
func (c *Client) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               nil,
		MaxIdleConns:        c.maxIdleConnsPerHost * 2,
		MaxIdleConnsPerHost: c.maxIdleConnsPerHost,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if c.dialer != nil {
		transport.DialContext = c.dialContext
	} else {
		transport.DialContext = (&net.Dialer{
			Timeout:   c.timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// dialContext dials through the proxy, honoring ctx when the dialer
// supports it.
func (c *Client) dialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if cd, ok := c.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)

	go func() {
		conn, err := c.dialer.Dial(network, address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case result := <-resultCh:
		return result.conn, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
