package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/wordscraper/internal/tor"
)

// Default configuration values.
const (
	// DefaultDepth crawls only the seed page, like a single-page scrape.
	DefaultDepth = 1

	// DefaultCount is the number of words selected for the wordlist.
	DefaultCount = 10

	// DefaultTimeout bounds every single fetch. Slow pages are dropped
	// rather than stalling the crawl.
	DefaultTimeout = 15 * time.Second

	// DefaultConcurrency is the number of fetches in flight at once.
	// Small enough not to hammer a single site.
	DefaultConcurrency = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "wordscraper"

	// DefaultUserAgent identifies wordscraper in HTTP requests.
	DefaultUserAgent = "wordscraper/1.0 (+https://github.com/nao1215/wordscraper)"

	// DefaultTorStartupTimeout bounds the embedded Tor bootstrap.
	DefaultTorStartupTimeout = tor.DefaultStartupTimeout

	// DefaultMaxBodySize limits the maximum response body size to read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Config holds all configuration options for wordscraper.
// It is populated from CLI flags and the optional site configuration file,
// and passed through the application rather than kept in global state.
type Config struct {
	// Target is the seed URL. A missing scheme defaults to http.
	Target string

	// Depth is the crawl depth budget. 1 fetches only the seed,
	// 0 fetches nothing.
	Depth int

	// MinLength keeps only words with at least this many characters.
	// 0 disables the filter. Mutually exclusive with ExactLength.
	MinLength int

	// ExactLength keeps only words with exactly this many characters.
	// 0 disables the filter. Mutually exclusive with MinLength.
	ExactLength int

	// Count is the number of longest words to select.
	Count int

	// Mutate enables the mutation engine. Without it Leet and Chars have
	// no effect.
	Mutate bool

	// Leet adds leetspeak variants.
	Leet bool

	// Chars adds digit and symbol suffixes.
	Chars bool

	// SearchTargets are words to look up in the index. When set the run
	// reports their locations instead of producing a wordlist.
	SearchTargets []string

	// OutputFile is the path the wordlist or report is also written to.
	// Directories are created automatically if they don't exist.
	OutputFile string

	// JSONReport enables JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// Timeout is the timeout for each fetch.
	Timeout time.Duration

	// MaxDuration bounds the whole crawl. 0 means no bound; the crawl can
	// still be interrupted with a signal.
	MaxDuration time.Duration

	// Concurrency is the number of fetches in flight at once.
	Concurrency int

	// MaxPages caps the number of pages claimed per crawl. 0 means no cap.
	MaxPages int

	// CrawlDelay is the delay before each fetch.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// ProxyAddress routes fetches through a SOCKS5 proxy when set.
	ProxyAddress string

	// UseBrowser renders pages in a headless browser instead of plain HTTP.
	UseBrowser bool

	// UseTor starts an embedded Tor daemon and routes fetches through it.
	// Mutually exclusive with ProxyAddress.
	UseTor bool

	// TorStartupTimeout bounds the Tor bootstrap.
	TorStartupTimeout time.Duration

	// PushgatewayURL is the Prometheus Pushgateway crawl metrics are pushed
	// to after the run. Empty disables pushing.
	PushgatewayURL string

	// DBDir is the directory of the run history database.
	// Defaults to XDG data directory (~/.local/share/wordscraper on Linux).
	DBDir string

	// SaveToDB records the run summary in the history database.
	SaveToDB bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .wordscraper in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config file.
	SiteConfigs *File

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogJSON switches the log output to JSON.
	LogJSON bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Depth:       DefaultDepth,
		Count:       DefaultCount,
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,

		TorStartupTimeout: DefaultTorStartupTimeout,
		SaveToDB:    true,
	}
}

// XDGDataDir returns the XDG data directory for wordscraper.
// On Linux: ~/.local/share/wordscraper
// On macOS: ~/Library/Application Support/wordscraper
// On Windows: %LOCALAPPDATA%\wordscraper
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for wordscraper.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// NormalizeTarget adds the http scheme to a bare host such as
// "example.com/path".
func NormalizeTarget(target string) string {
	target = strings.TrimSpace(target)
	if target != "" && !strings.Contains(target, "://") {
		return "http://" + target
	}
	return target
}

// TargetHost returns the host[:port] of the seed URL, or "" when the
// target does not parse.
func (c *Config) TargetHost() string {
	u, err := url.Parse(NormalizeTarget(c.Target))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// ApplySiteConfig overrides crawl settings with the entry of the
// configuration file that matches the target host. Settings the user set
// explicitly on the command line, listed in explicit by flag name, win.
func (c *Config) ApplySiteConfig(explicit map[string]bool) SiteConfig {
	if c.SiteConfigs == nil {
		return SiteConfig{}
	}

	site := c.SiteConfigs.GetSiteConfig(c.TargetHost())
	if site.Depth != 0 && !explicit["depth"] {
		c.Depth = site.Depth
	}
	if site.MaxPages != 0 && !explicit["max-pages"] {
		c.MaxPages = site.MaxPages
	}
	if site.UserAgent != "" && !explicit["user-agent"] {
		c.UserAgent = site.UserAgent
	}
	return site
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error, so callers can
// use errors.Is. This is called once after CLI parsing, before any
// crawling begins.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Target) == "" {
		return ErrNoTarget
	}

	u, err := url.Parse(NormalizeTarget(c.Target))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURL
	}

	if c.UseTor && c.ProxyAddress != "" {
		return ErrConflictingProxies
	}

	// Onion sites are only reachable through Tor.
	if tor.IsOnionHost(u.Hostname()) {
		if err := tor.ValidateOnionHost(u.Hostname()); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidURL, err)
		}
		if !c.UseTor && c.ProxyAddress == "" {
			return ErrOnionNeedsProxy
		}
	}

	if c.Depth < 0 {
		return ErrNegativeDepth
	}

	if c.MinLength < 0 || c.ExactLength < 0 {
		return ErrInvalidLength
	}

	// --length and --fixed-length are mutually exclusive
	if c.MinLength > 0 && c.ExactLength > 0 {
		return ErrConflictingLengthFilters
	}

	if c.Count < 0 {
		return ErrInvalidCount
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxDuration < 0 {
		return ErrInvalidMaxDuration
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.UseTor && c.TorStartupTimeout <= 0 {
		return ErrInvalidTorStartupTimeout
	}

	return nil
}
