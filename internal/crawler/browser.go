package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in a headless Chrome before extraction, so
// words inserted by JavaScript are indexed too. Create with
// NewBrowserFetcher and call Close when done.
type BrowserFetcher struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration
	userAgent     string
	proxyServer   string
}

// BrowserFetcherOption configures a BrowserFetcher.
type BrowserFetcherOption func(*BrowserFetcher)

// WithBrowserTimeout sets the per-page render timeout.
func WithBrowserTimeout(d time.Duration) BrowserFetcherOption {
	return func(f *BrowserFetcher) {
		f.timeout = d
	}
}

// WithBrowserUserAgent sets the User-Agent the browser reports.
func WithBrowserUserAgent(ua string) BrowserFetcherOption {
	return func(f *BrowserFetcher) {
		f.userAgent = ua
	}
}

// WithBrowserProxy routes the browser through a proxy such as
// "socks5://127.0.0.1:9050". Chrome does not support SOCKS credentials.
func WithBrowserProxy(proxyServer string) BrowserFetcherOption {
	return func(f *BrowserFetcher) {
		f.proxyServer = proxyServer
	}
}

// NewBrowserFetcher starts a headless browser. It fails when Chrome or
// Chromium cannot be launched.
func NewBrowserFetcher(opts ...BrowserFetcherOption) (*BrowserFetcher, error) {
	f := &BrowserFetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.userAgent),
	)
	if f.proxyServer != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(f.proxyServer))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty Run launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start headless browser: %w", err)
	}

	f.allocCancel = allocCancel
	f.browserCtx = browserCtx
	f.browserCancel = browserCancel
	return f, nil
}

// Fetch opens pageURL in a new tab and returns the rendered document.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	start := time.Now()

	tabCtx, cancel := chromedp.NewContext(f.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if f.timeout > 0 {
		var timeoutCancel context.CancelFunc
		tabCtx, timeoutCancel = context.WithTimeout(tabCtx, f.timeout)
		defer timeoutCancel()
	}

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(pageURL))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to navigate to %s: %w", pageURL, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("no response for %s", pageURL)
	}

	status := int(resp.Status)
	if status < 200 || status > 299 {
		return nil, &StatusError{URL: pageURL, StatusCode: status}
	}
	if !isTextual(resp.MimeType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContent, resp.MimeType)
	}

	var rendered, finalURL string
	if err := chromedp.Run(tabCtx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &rendered, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", pageURL, err)
	}

	return &FetchResult{
		URL:         pageURL,
		FinalURL:    finalURL,
		StatusCode:  status,
		ContentType: resp.MimeType,
		Body:        []byte(rendered),
		Duration:    time.Since(start),
	}, nil
}

// Close shuts down the browser.
func (f *BrowserFetcher) Close() {
	f.browserCancel()
	f.allocCancel()
}
