package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
var (
	// ErrNoTarget is returned when no seed URL is specified.
	ErrNoTarget = errors.New("no target specified: provide a URL as an argument or with --url")

	// ErrInvalidURL is returned when the seed URL cannot be crawled:
	// it does not parse, has no host, or uses a scheme other than http(s).
	ErrInvalidURL = errors.New("invalid URL: must be an http or https URL with a host")

	// ErrConflictingProxies is returned when both --tor and --proxy are set.
	ErrConflictingProxies = errors.New("conflicting proxies: --tor and --proxy are mutually exclusive")

	// ErrOnionNeedsProxy is returned for an onion seed without --tor or
	// --proxy. Onion services cannot be reached directly.
	ErrOnionNeedsProxy = errors.New("onion sites require --tor or a Tor SOCKS5 --proxy")

	// ErrInvalidTorStartupTimeout is returned when --tor is set and the
	// bootstrap timeout is not positive.
	ErrInvalidTorStartupTimeout = errors.New("invalid tor startup timeout: must be positive")

	// ErrNegativeDepth is returned when the crawl depth is negative.
	// Use 0 to crawl nothing.
	ErrNegativeDepth = errors.New("invalid depth: must be non-negative")

	// ErrConflictingLengthFilters is returned when both --length and
	// --fixed-length are set. Only one length filter can be used at a time.
	ErrConflictingLengthFilters = errors.New("conflicting length filters: --length and --fixed-length are mutually exclusive")

	// ErrInvalidLength is returned when a length filter is negative.
	ErrInvalidLength = errors.New("invalid length: must be non-negative")

	// ErrInvalidCount is returned when the number of words to select is negative.
	ErrInvalidCount = errors.New("invalid count: must be non-negative")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	// A timeout of zero or negative would cause immediate fetch failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxDuration is returned when the maximum crawl duration is negative.
	// Use 0 for no limit.
	ErrInvalidMaxDuration = errors.New("invalid max duration: must be non-negative")

	// ErrInvalidConcurrency is returned when the number of concurrent fetches
	// is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxPages is returned when the page cap is negative.
	// Use 0 for no limit.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// A negative delay is invalid; use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
