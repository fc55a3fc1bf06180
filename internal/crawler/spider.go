package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/wordscraper/internal/index"
	"github.com/nao1215/wordscraper/internal/model"
)

var (
	errUnsupportedScheme = errors.New("scheme must be http or https")
	errMissingHost       = errors.New("missing host")
)

// DefaultConcurrency is the default number of concurrent fetches.
const DefaultConcurrency = 4

// Observer is notified about every fetch the Spider performs.
// Implementations must be safe for concurrent use.
type Observer interface {
	PageFetched(pageURL string, d time.Duration)
	PageFailed(pageURL string, err error)
}

// Spider crawls a site from a seed URL within a depth budget.
// A Spider may be reused; each Crawl call starts with fresh state.
type Spider struct {
	// fetcher retrieves page content.
	fetcher Fetcher

	// concurrency caps the number of fetches in flight.
	concurrency int

	// maxPages caps the number of URLs claimed per crawl. 0 means no cap.
	maxPages int

	// maxDuration bounds the wall-clock time of a crawl. 0 means no bound.
	maxDuration time.Duration

	// delay is waited by a worker before each fetch.
	delay time.Duration

	// ignorePatterns are URL path patterns that are never crawled.
	ignorePatterns []string

	// followPatterns, when set, restrict crawling to matching paths.
	followPatterns []string

	observer Observer
	logger   *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithConcurrency sets the worker pool size. Values below 1 are ignored.
func WithConcurrency(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithMaxPages caps the number of pages claimed per crawl.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithMaxDuration bounds the total crawl time. When it elapses the crawl
// stops and the partial result is returned with TimedOut set.
func WithMaxDuration(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.maxDuration = d
	}
}

// WithDelay sets a politeness delay before each fetch.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithIgnorePatterns sets URL path patterns to skip.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf").
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns restricts crawling to URL paths matching at least one
// pattern. The seed is always crawled.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// WithObserver registers an Observer for fetch events.
func WithObserver(o Observer) SpiderOption {
	return func(s *Spider) {
		s.observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider that fetches pages with fetcher.
func NewSpider(fetcher Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CrawlResult is everything one crawl produced.
type CrawlResult struct {
	// Seed is the normalized seed URL.
	Seed string

	// Index maps every extracted word to the pages it occurs on.
	Index *index.Index

	// Visited holds every URL the crawl claimed, fetched or not.
	Visited *index.Visited

	// Pages summarizes the successfully fetched pages.
	Pages []model.Page

	// Failed lists the claimed URLs whose fetch or parse failed.
	Failed []model.FailedFetch

	// TimedOut is true when the maximum duration cut the crawl short.
	TimedOut bool
}

// Words returns every word reachable from the seed, sorted.
func (r *CrawlResult) Words() []string {
	return r.Index.Words()
}

// task is one worklist entry: a URL and the hop budget left for it.
type task struct {
	url   string
	depth int
}

// crawlState is the shared state of a single Crawl call.
type crawlState struct {
	visited *index.Visited
	index   *index.Index
	claimed atomic.Int64

	mu     sync.Mutex
	pages  []model.Page
	failed []model.FailedFetch
}

// Crawl visits seedURL and every same-origin page reachable from it within
// depth hops. A depth of 0 fetches nothing.
//
// Fetch failures never fail the crawl. If ctx is cancelled the partial
// result is returned together with ctx.Err(). If the maximum duration
// elapses the partial result is returned with TimedOut set and a nil error.
func (s *Spider) Crawl(ctx context.Context, seedURL string, depth int) (*CrawlResult, error) {
	seed, err := ParseSeed(seedURL)
	if err != nil {
		return nil, err
	}

	state := &crawlState{
		visited: index.NewVisited(),
		index:   index.New(),
	}
	result := &CrawlResult{
		Seed:    seed.String(),
		Index:   state.index,
		Visited: state.visited,
	}

	crawlCtx := ctx
	if s.maxDuration > 0 {
		var cancel context.CancelFunc
		crawlCtx, cancel = context.WithTimeout(ctx, s.maxDuration)
		defer cancel()
	}

	frontier := []task{{url: seed.String(), depth: depth}}
	for hop := 0; len(frontier) > 0; hop++ {
		frontier = s.claim(state, frontier)
		if len(frontier) == 0 {
			break
		}

		s.logger.Info("crawling hop", "hop", hop, "pages", len(frontier))

		next, err := s.expand(crawlCtx, state, frontier)
		if err != nil {
			break
		}
		frontier = next
	}

	result.Pages = state.pages
	result.Failed = state.failed

	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	if crawlCtx.Err() != nil {
		s.logger.Warn("crawl stopped at maximum duration",
			"max_duration", s.maxDuration,
			"pages", len(result.Pages),
		)
		result.TimedOut = true
	}

	return result, nil
}

// claim drops tasks with no depth left or whose URL is already visited and
// marks the rest as visited. Marking happens before any of them is fetched.
func (s *Spider) claim(state *crawlState, tasks []task) []task {
	claimed := make([]task, 0, len(tasks))
	for _, t := range tasks {
		if t.depth <= 0 {
			continue
		}
		if s.maxPages > 0 && state.claimed.Load() >= int64(s.maxPages) {
			break
		}
		if !state.visited.MarkIfNotVisited(t.url) {
			continue
		}
		state.claimed.Add(1)
		claimed = append(claimed, t)
	}
	return claimed
}

// expand fetches every task of one hop on the worker pool and returns the
// next hop. It returns an error only when ctx is done.
func (s *Spider) expand(ctx context.Context, state *crawlState, tasks []task) ([]task, error) {
	var mu sync.Mutex
	next := make([]task, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, t := range tasks {
		g.Go(func() error {
			if err := s.wait(gctx); err != nil {
				return err
			}

			links := s.visit(gctx, state, t)
			if t.depth-1 <= 0 || len(links) == 0 {
				return nil
			}

			mu.Lock()
			for _, link := range links {
				next = append(next, task{url: link, depth: t.depth - 1})
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return next, nil
}

// wait applies the politeness delay, returning early if ctx is done.
func (s *Spider) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.delay):
		return nil
	}
}

// visit fetches one claimed URL, records its words and returns its
// crawlable links. Failures are recorded and yield no links.
func (s *Spider) visit(ctx context.Context, state *crawlState, t task) []string {
	fetched, err := s.fetcher.Fetch(ctx, t.url)
	if err != nil {
		s.fail(state, t.url, err)
		return nil
	}

	base, err := url.Parse(t.url)
	if err != nil {
		s.fail(state, t.url, err)
		return nil
	}
	if final, err := url.Parse(fetched.FinalURL); err == nil && strings.EqualFold(final.Host, base.Host) {
		base = final
	}

	extraction, err := Extract(fetched.Body, base)
	if err != nil {
		s.fail(state, t.url, err)
		return nil
	}

	state.index.Add(t.url, extraction.Tokens)

	state.mu.Lock()
	state.pages = append(state.pages, model.Page{
		URL:         t.url,
		StatusCode:  fetched.StatusCode,
		ContentType: fetched.ContentType,
		Title:       extraction.Title,
		TokenCount:  len(extraction.Tokens),
		LinkCount:   len(extraction.Links),
		Hash:        model.HashContent(fetched.Body),
		FetchMillis: fetched.Duration.Milliseconds(),
	})
	state.mu.Unlock()

	if s.observer != nil {
		s.observer.PageFetched(t.url, fetched.Duration)
	}
	s.logger.Info("page fetched",
		"url", t.url,
		"word_count", len(extraction.Tokens),
		"links", len(extraction.Links),
	)

	links := make([]string, 0, len(extraction.Links))
	for _, link := range extraction.Links {
		if state.visited.Contains(link) || !s.shouldCrawl(link) {
			continue
		}
		links = append(links, link)
	}
	return links
}

// fail records a failed fetch. The URL stays visited.
func (s *Spider) fail(state *crawlState, pageURL string, err error) {
	state.mu.Lock()
	state.failed = append(state.failed, model.FailedFetch{URL: pageURL, Reason: err.Error()})
	state.mu.Unlock()

	if s.observer != nil {
		s.observer.PageFailed(pageURL, err)
	}
	s.logger.Debug("fetch failed", "url", pageURL, "error", err)
}

// shouldCrawl checks a URL against the ignore and follow patterns.
//
// Logic:
//  1. If the path matches any ignore pattern, skip it
//  2. If follow patterns are set and none matches, skip it
//  3. Otherwise crawl it
func (s *Spider) shouldCrawl(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(s.followPatterns) > 0 {
		for _, pattern := range s.followPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}

	return true
}

// matchPattern checks if a path matches a glob pattern.
// "/dir/*" matches everything below /dir, "*.ext" matches by extension,
// anything else goes through filepath.Match on the path and, for patterns
// without a slash, on the last path segment.
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") && strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
		return true
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}

	return false
}
