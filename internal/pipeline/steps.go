package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/wordscraper/internal/crawler"
	"github.com/nao1215/wordscraper/internal/model"
	"github.com/nao1215/wordscraper/internal/mutation"
	"github.com/nao1215/wordscraper/internal/wordlist"
)

// ErrNoIndex is returned by steps that need the word index when no crawl
// step ran before them.
var ErrNoIndex = errors.New("no word index: crawl step must run first")

// CrawlStep crawls the report's seed and stores the index and page
// summaries in the report.
type CrawlStep struct {
	// fetcher retrieves page content (plain HTTP or headless browser).
	fetcher crawler.Fetcher

	// concurrency caps the number of fetches in flight.
	concurrency int

	// maxPages limits total pages to crawl. 0 means no limit.
	maxPages int

	// maxDuration bounds the whole crawl. 0 means no bound.
	maxDuration time.Duration

	// delay before each request for politeness.
	delay time.Duration

	// ignorePatterns are URL path patterns to skip during crawling.
	ignorePatterns []string

	// followPatterns are URL path patterns to follow during crawling.
	followPatterns []string

	// observer receives fetch events, e.g. for metrics.
	observer crawler.Observer

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlConcurrency sets the number of concurrent fetches.
func WithCrawlConcurrency(n int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.concurrency = n
	}
}

// WithCrawlMaxPages sets the maximum pages to crawl.
func WithCrawlMaxPages(maxPages int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxPages = maxPages
	}
}

// WithCrawlMaxDuration bounds the total crawl time.
func WithCrawlMaxDuration(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxDuration = d
	}
}

// WithCrawlDelay sets the delay before each request.
func WithCrawlDelay(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.delay = d
	}
}

// WithCrawlIgnorePatterns sets URL path patterns to skip during crawling.
func WithCrawlIgnorePatterns(patterns []string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.ignorePatterns = patterns
	}
}

// WithCrawlFollowPatterns sets URL path patterns to follow during crawling.
func WithCrawlFollowPatterns(patterns []string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.followPatterns = patterns
	}
}

// WithCrawlObserver registers an observer for fetch events.
func WithCrawlObserver(o crawler.Observer) CrawlStepOption {
	return func(s *CrawlStep) {
		s.observer = o
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawling step that fetches with fetcher.
func NewCrawlStep(fetcher crawler.Fetcher, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		fetcher:     fetcher,
		concurrency: crawler.DefaultConcurrency,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step. Whatever was crawled before a cancellation
// is kept in the report even though the step fails.
func (s *CrawlStep) Do(ctx context.Context, report *model.RunReport) error {
	spiderOpts := []crawler.SpiderOption{
		crawler.WithConcurrency(s.concurrency),
		crawler.WithMaxPages(s.maxPages),
		crawler.WithMaxDuration(s.maxDuration),
		crawler.WithDelay(s.delay),
		crawler.WithLogger(s.logger),
	}
	if len(s.ignorePatterns) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithIgnorePatterns(s.ignorePatterns))
	}
	if len(s.followPatterns) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithFollowPatterns(s.followPatterns))
	}
	if s.observer != nil {
		spiderOpts = append(spiderOpts, crawler.WithObserver(s.observer))
	}

	spider := crawler.NewSpider(s.fetcher, spiderOpts...)

	result, err := spider.Crawl(ctx, report.Seed, report.Depth)
	if result == nil {
		return fmt.Errorf("failed to start crawl: %w", err)
	}

	report.Seed = result.Seed
	report.Index = result.Index
	report.Visited = result.Visited.Len()
	report.Pages = result.Pages
	report.Failed = result.Failed
	report.UniqueWords = result.Index.Len()
	report.TimedOut = result.TimedOut

	s.logger.Info("crawl completed",
		"pages_visited", report.Visited,
		"pages_fetched", len(report.Pages),
		"pages_failed", len(report.Failed),
		"unique_words", report.UniqueWords,
		"timed_out", report.TimedOut,
	)

	return err
}

// SearchStep looks the report's target words up in the index.
// It applies to search runs only.
type SearchStep struct {
	logger *slog.Logger
}

// NewSearchStep creates a new search step.
func NewSearchStep(logger *slog.Logger) *SearchStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchStep{logger: logger}
}

// Name returns the step name.
func (s *SearchStep) Name() string {
	return "search"
}

// Applies reports whether the run has search targets.
func (s *SearchStep) Applies(report *model.RunReport) bool {
	return report.IsSearch()
}

// Do executes the search step.
func (s *SearchStep) Do(_ context.Context, report *model.RunReport) error {
	if report.Index == nil {
		return ErrNoIndex
	}

	report.Search = wordlist.Search(report.Index, report.Targets)

	s.logger.Info("search completed",
		"found", len(report.Search.Found),
		"not_found", len(report.Search.NotFound),
	)
	return nil
}

// SelectStep picks the longest words that pass the length filter.
// It applies to wordlist runs only.
type SelectStep struct {
	logger *slog.Logger
}

// NewSelectStep creates a new selection step.
func NewSelectStep(logger *slog.Logger) *SelectStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SelectStep{logger: logger}
}

// Name returns the step name.
func (s *SelectStep) Name() string {
	return "select"
}

// Applies reports whether the run produces a wordlist.
func (s *SelectStep) Applies(report *model.RunReport) bool {
	return !report.IsSearch()
}

// Do executes the selection step.
func (s *SelectStep) Do(_ context.Context, report *model.RunReport) error {
	if report.Index == nil {
		return ErrNoIndex
	}

	filter := wordlist.LengthFilter{Min: report.MinLength, Exact: report.ExactLength}
	sel, err := wordlist.SelectTop(report.Index.Words(), report.Count, filter)
	if err != nil {
		return err
	}

	report.Matched = sel.Matched
	report.Selected = make([]model.WordEntry, len(sel.Words))
	for i, word := range sel.Words {
		report.Selected[i] = model.WordEntry{Word: word}
	}

	s.logger.Info("words selected",
		"matched", sel.Matched,
		"selected", len(sel.Words),
	)
	return nil
}

// MutateStep expands every selected word with the mutation engine.
// It applies to wordlist runs that asked for mutation.
type MutateStep struct {
	logger *slog.Logger
}

// NewMutateStep creates a new mutation step.
func NewMutateStep(logger *slog.Logger) *MutateStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &MutateStep{logger: logger}
}

// Name returns the step name.
func (s *MutateStep) Name() string {
	return "mutate"
}

// Applies reports whether mutation was requested on a wordlist run.
func (s *MutateStep) Applies(report *model.RunReport) bool {
	return !report.IsSearch() && report.Mutate
}

// largeLeetExpansion is the leet variant count above which MutateStep warns.
const largeLeetExpansion = 1 << 16

// Do executes the mutation step.
func (s *MutateStep) Do(ctx context.Context, report *model.RunReport) error {
	opts := mutation.Options{Mutate: report.Mutate, Leet: report.Leet, Chars: report.Chars}
	total := 0
	for i := range report.Selected {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry := &report.Selected[i]
		if opts.Mutate && opts.Leet {
			if n := mutation.LeetCount(entry.Word); n > largeLeetExpansion {
				s.logger.Warn("large leet expansion", "word", entry.Word, "variants", n)
			}
		}
		entry.Mutations = mutation.PasswordMutation(entry.Word, opts)
		total += len(entry.Mutations)
	}

	s.logger.Info("mutations generated",
		"words", len(report.Selected),
		"variants", total,
	)
	return nil
}

// DefaultPipeline creates a pipeline with every step in order:
// crawl, search, select, mutate. The pipeline skips the steps that do not
// apply, so the same pipeline serves search and wordlist runs.
func DefaultPipeline(fetcher crawler.Fetcher, pipelineOpts []Option, crawlOpts ...CrawlStepOption) *Pipeline {
	p := New(pipelineOpts...)

	p.AddSteps(
		NewCrawlStep(fetcher, append([]CrawlStepOption{WithCrawlLogger(p.logger)}, crawlOpts...)...),
		NewSearchStep(p.logger),
		NewSelectStep(p.logger),
		NewMutateStep(p.logger),
	)

	return p
}
