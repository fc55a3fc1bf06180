package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// Fetcher retrieves the content of a single URL.
// Implementations must honor ctx cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*FetchResult, error)
}

// FetchResult is the successful outcome of a fetch.
type FetchResult struct {
	// URL is the URL that was requested.
	URL string

	// FinalURL is the URL after redirects.
	FinalURL string

	// StatusCode is the HTTP status of the final response.
	StatusCode int

	// ContentType is the Content-Type header of the final response.
	ContentType string

	// Body is the response body decoded to UTF-8.
	Body []byte

	// Duration is how long the fetch took.
	Duration time.Duration
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// ErrUnsupportedContent is returned for responses that are not HTML or text.
var ErrUnsupportedContent = errors.New("unsupported content type")

// Default HTTPFetcher settings.
const (
	DefaultFetchTimeout = 15 * time.Second
	DefaultMaxBodySize  = 5 * 1024 * 1024 // 5MB
	DefaultUserAgent    = "wordscraper/1.0 (+https://github.com/nao1215/wordscraper)"
)

// HTTPFetcher fetches pages with a plain HTTP GET.
type HTTPFetcher struct {
	client      *http.Client
	timeout     time.Duration
	maxBodySize int64
	userAgent   string
}

// HTTPFetcherOption configures an HTTPFetcher.
type HTTPFetcherOption func(*HTTPFetcher)

// WithFetchTimeout bounds each fetch, including reading the body.
func WithFetchTimeout(d time.Duration) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.timeout = d
	}
}

// WithMaxBodySize caps the number of body bytes read per page.
func WithMaxBodySize(size int64) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.maxBodySize = size
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// NewHTTPFetcher returns a fetcher that uses client for requests.
// The client is expected to come from the transport package.
func NewHTTPFetcher(client *http.Client, opts ...HTTPFetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      client,
		timeout:     DefaultFetchTimeout,
		maxBodySize: DefaultMaxBodySize,
		userAgent:   DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs a GET request for pageURL.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	start := time.Now()

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isTextual(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContent, contentType)
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode body: %w", err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return &FetchResult{
		URL:         pageURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
		Duration:    time.Since(start),
	}, nil
}

// isTextual accepts HTML, XHTML and plain text. A missing Content-Type is
// accepted since some servers omit it.
func isTextual(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html" ||
		mediaType == "application/xhtml+xml" ||
		strings.HasPrefix(mediaType, "text/plain")
}
