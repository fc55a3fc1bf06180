package transport

import "errors"

var (
	// ErrProxyNotSOCKS5 means something answered on the proxy port without
	// speaking SOCKS5, typically an HTTP proxy.
	ErrProxyNotSOCKS5 = errors.New("proxy is not a SOCKS5 proxy")
	// ErrProxyCannotConnect means the proxy port refused or dropped the connection.
	ErrProxyCannotConnect = errors.New("cannot connect to proxy")
	// ErrProxyTimeout means the proxy did not answer the greeting in time.
	ErrProxyTimeout = errors.New("timeout connecting to proxy")
	// ErrInvalidProxyAddress rejects anything other than host:port or
	// socks5://[user:pass@]host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	errUnknownProxyStatus = errors.New("unknown proxy status")
)

// ProxyStatus is the outcome of Client.CheckConnection.
type ProxyStatus int

// Proxy check outcomes.
const (
	ProxyStatusOK ProxyStatus = iota
	ProxyStatusWrongType
	ProxyStatusCannotConnect
	ProxyStatusTimeout
)

var proxyStatuses = map[ProxyStatus]struct {
	text string
	err  error
}{
	ProxyStatusOK:            {"OK", nil},
	ProxyStatusWrongType:     {"wrong type (not SOCKS5)", ErrProxyNotSOCKS5},
	ProxyStatusCannotConnect: {"cannot connect", ErrProxyCannotConnect},
	ProxyStatusTimeout:       {"timeout", ErrProxyTimeout},
}

func (s ProxyStatus) String() string {
	if st, ok := proxyStatuses[s]; ok {
		return st.text
	}
	return "unknown"
}

// Error maps the status to one of the Err* values, nil for ProxyStatusOK.
func (s ProxyStatus) Error() error {
	if st, ok := proxyStatuses[s]; ok {
		return st.err
	}
	return errUnknownProxyStatus
}
