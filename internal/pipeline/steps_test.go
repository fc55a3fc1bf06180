package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/nao1215/wordscraper/internal/crawler"
	"github.com/nao1215/wordscraper/internal/index"
	"github.com/nao1215/wordscraper/internal/model"
	"github.com/nao1215/wordscraper/internal/wordlist"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFlowerServer serves two linked pages:
//
//	/  : sunflower moon, links to /b via "moonlight"
//	/b : sunflower daisy
func newFlowerServer(t *testing.T) *httptest.Server {
	t.Helper()

	page := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(body))
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", page(`<html><body><p>sunflower moon</p><a href="/b">moonlight</a></body></html>`))
	mux.HandleFunc("/b", page(`<html><body><p>sunflower daisy</p></body></html>`))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newFlowerReport(server *httptest.Server) *model.RunReport {
	report := model.NewRunReport(server.URL, 2)
	report.Count = 10
	return report
}

// TestNewCrawlStep tests the CrawlStep constructor.
func TestNewCrawlStep(t *testing.T) {
	t.Parallel()

	t.Run("creates with defaults", func(t *testing.T) {
		t.Parallel()

		step := NewCrawlStep(crawler.NewHTTPFetcher(http.DefaultClient))

		if step.concurrency != crawler.DefaultConcurrency {
			t.Errorf("expected default concurrency %d, got %d", crawler.DefaultConcurrency, step.concurrency)
		}
		if step.maxPages != 0 {
			t.Errorf("expected unlimited pages, got %d", step.maxPages)
		}
		if step.logger == nil {
			t.Error("expected non-nil logger")
		}
		if step.Name() != "crawl" {
			t.Errorf("expected name 'crawl', got %q", step.Name())
		}
	})

	t.Run("applies all options", func(t *testing.T) {
		t.Parallel()

		logger := discardLogger()
		step := NewCrawlStep(crawler.NewHTTPFetcher(http.DefaultClient),
			WithCrawlConcurrency(8),
			WithCrawlMaxPages(50),
			WithCrawlMaxDuration(time.Minute),
			WithCrawlDelay(time.Second),
			WithCrawlIgnorePatterns([]string{"/admin/*"}),
			WithCrawlFollowPatterns([]string{"/blog/*"}),
			WithCrawlLogger(logger),
		)

		if step.concurrency != 8 {
			t.Errorf("expected concurrency 8, got %d", step.concurrency)
		}
		if step.maxPages != 50 {
			t.Errorf("expected maxPages 50, got %d", step.maxPages)
		}
		if step.maxDuration != time.Minute {
			t.Errorf("expected maxDuration 1m, got %v", step.maxDuration)
		}
		if step.delay != time.Second {
			t.Errorf("expected delay 1s, got %v", step.delay)
		}
		if len(step.ignorePatterns) != 1 || step.ignorePatterns[0] != "/admin/*" {
			t.Errorf("unexpected ignore patterns: %v", step.ignorePatterns)
		}
		if len(step.followPatterns) != 1 || step.followPatterns[0] != "/blog/*" {
			t.Errorf("unexpected follow patterns: %v", step.followPatterns)
		}
		if step.logger != logger {
			t.Error("expected custom logger")
		}
	})
}

// TestCrawlStepDo tests the CrawlStep.Do method.
func TestCrawlStepDo(t *testing.T) {
	t.Parallel()

	t.Run("fills crawl results", func(t *testing.T) {
		t.Parallel()

		server := newFlowerServer(t)
		step := NewCrawlStep(crawler.NewHTTPFetcher(server.Client()), WithCrawlLogger(discardLogger()))
		report := newFlowerReport(server)

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if report.Seed != server.URL+"/" {
			t.Errorf("expected normalized seed, got %q", report.Seed)
		}
		if report.Visited != 2 {
			t.Errorf("expected 2 visited pages, got %d", report.Visited)
		}
		if len(report.Pages) != 2 {
			t.Errorf("expected 2 fetched pages, got %d", len(report.Pages))
		}
		if report.UniqueWords != 4 {
			t.Errorf("expected 4 unique words, got %d (%v)", report.UniqueWords, report.Index.Words())
		}
		if report.TimedOut {
			t.Error("did not expect a timeout")
		}
	})

	t.Run("respects max pages", func(t *testing.T) {
		t.Parallel()

		server := newFlowerServer(t)
		step := NewCrawlStep(crawler.NewHTTPFetcher(server.Client()),
			WithCrawlMaxPages(1),
			WithCrawlLogger(discardLogger()),
		)
		report := newFlowerReport(server)

		if err := step.Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(report.Pages) != 1 {
			t.Errorf("expected 1 fetched page, got %d", len(report.Pages))
		}
	})

	t.Run("returns error for invalid seed", func(t *testing.T) {
		t.Parallel()

		step := NewCrawlStep(crawler.NewHTTPFetcher(http.DefaultClient), WithCrawlLogger(discardLogger()))
		report := model.NewRunReport("ftp://example.com/", 1)

		if err := step.Do(context.Background(), report); err == nil {
			t.Error("expected error for unsupported scheme")
		}
		if report.Index != nil {
			t.Error("expected no index on failed start")
		}
	})
}

// TestSearchStepDo tests the SearchStep.Do method.
func TestSearchStepDo(t *testing.T) {
	t.Parallel()

	t.Run("requires an index", func(t *testing.T) {
		t.Parallel()

		report := model.NewRunReport("http://example.com/", 1)
		report.Targets = []string{"moon"}
		err := NewSearchStep(discardLogger()).Do(context.Background(), report)
		if !errors.Is(err, ErrNoIndex) {
			t.Errorf("expected ErrNoIndex, got %v", err)
		}
	})

	t.Run("looks up targets", func(t *testing.T) {
		t.Parallel()

		ix := index.New()
		ix.Add("http://example.com/", []string{"moon", "sun"})
		report := model.NewRunReport("http://example.com/", 1)
		report.Index = ix
		report.Targets = []string{"moon", "star"}

		if err := NewSearchStep(nil).Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := report.Search.Found["moon"]; !ok {
			t.Error("expected moon to be found")
		}
		if !slices.Equal(report.Search.NotFound, []string{"star"}) {
			t.Errorf("expected star not found, got %v", report.Search.NotFound)
		}
	})
}

// TestSelectStepDo tests the SelectStep.Do method.
func TestSelectStepDo(t *testing.T) {
	t.Parallel()

	newReport := func() *model.RunReport {
		ix := index.New()
		ix.Add("http://example.com/", []string{"sunflower", "moon", "moonlight", "daisy"})
		report := model.NewRunReport("http://example.com/", 1)
		report.Index = ix
		report.Count = 10
		return report
	}

	t.Run("ranks longest first with lexicographic ties", func(t *testing.T) {
		t.Parallel()

		report := newReport()
		report.Count = 3
		if err := NewSelectStep(discardLogger()).Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"moonlight", "sunflower", "daisy"}
		if got := report.SelectedWords(); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		if report.Matched != 4 {
			t.Errorf("expected 4 matched words, got %d", report.Matched)
		}
	})

	t.Run("applies minimum length", func(t *testing.T) {
		t.Parallel()

		report := newReport()
		report.MinLength = 6
		if err := NewSelectStep(discardLogger()).Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Matched != 2 {
			t.Errorf("expected 2 matched words, got %d", report.Matched)
		}
	})

	t.Run("applies exact length", func(t *testing.T) {
		t.Parallel()

		report := newReport()
		report.ExactLength = 4
		if err := NewSelectStep(discardLogger()).Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := report.SelectedWords(); !slices.Equal(got, []string{"moon"}) {
			t.Errorf("expected [moon], got %v", got)
		}
	})

	t.Run("no survivors is not an error", func(t *testing.T) {
		t.Parallel()

		report := newReport()
		report.ExactLength = 20
		if err := NewSelectStep(discardLogger()).Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Matched != 0 || len(report.Selected) != 0 {
			t.Errorf("expected empty selection, got %d matched, %v", report.Matched, report.Selected)
		}
	})

	t.Run("rejects conflicting filters", func(t *testing.T) {
		t.Parallel()

		report := newReport()
		report.MinLength = 3
		report.ExactLength = 4
		err := NewSelectStep(discardLogger()).Do(context.Background(), report)
		if !errors.Is(err, wordlist.ErrConflictingFilters) {
			t.Errorf("expected ErrConflictingFilters, got %v", err)
		}
	})
}

// TestMutateStepDo tests the MutateStep.Do method.
func TestMutateStepDo(t *testing.T) {
	t.Parallel()

	newReport := func() *model.RunReport {
		report := model.NewRunReport("http://example.com/", 1)
		report.Selected = []model.WordEntry{{Word: "moon"}}
		return report
	}

	t.Run("adds case variants", func(t *testing.T) {
		t.Parallel()

		report := newReport()
		report.Mutate = true
		if err := NewMutateStep(discardLogger()).Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"MOON", "Moon", "moon"}
		if got := report.Selected[0].Mutations; !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("adds suffixes", func(t *testing.T) {
		t.Parallel()

		report := newReport()
		report.Mutate = true
		report.Chars = true
		if err := NewMutateStep(discardLogger()).Do(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Contains(report.Selected[0].Mutations, "moon7") {
			t.Errorf("expected moon7 in %v", report.Selected[0].Mutations)
		}
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report := newReport()
		report.Mutate = true
		err := NewMutateStep(discardLogger()).Do(ctx, report)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestDefaultPipeline tests the complete pipeline end to end.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("has steps in order", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(crawler.NewHTTPFetcher(http.DefaultClient), nil)
		want := []string{"crawl", "search", "select", "mutate"}
		if got := p.StepNames(); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("produces wordlist", func(t *testing.T) {
		t.Parallel()

		server := newFlowerServer(t)
		p := DefaultPipeline(crawler.NewHTTPFetcher(server.Client()),
			[]Option{WithLogger(discardLogger())},
			WithCrawlConcurrency(2),
		)
		report := newFlowerReport(server)
		report.Count = 2
		report.Mutate = true

		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{
			"moonlight", "MOONLIGHT", "Moonlight", "moonlight",
			"sunflower", "SUNFLOWER", "Sunflower", "sunflower",
		}
		if got := report.Lines(); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		if want := []string{"crawl", "select", "mutate"}; !slices.Equal(report.PerformedSteps, want) {
			t.Errorf("expected performed steps %v, got %v", want, report.PerformedSteps)
		}
	})

	t.Run("produces search result", func(t *testing.T) {
		t.Parallel()

		server := newFlowerServer(t)
		p := DefaultPipeline(crawler.NewHTTPFetcher(server.Client()), []Option{WithLogger(discardLogger())})
		report := newFlowerReport(server)
		report.Targets = []string{"sunflower", "tulip"}

		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{server.URL + "/", server.URL + "/b"}
		if got := report.Search.Found["sunflower"]; !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		if !slices.Equal(report.Search.NotFound, []string{"tulip"}) {
			t.Errorf("expected tulip not found, got %v", report.Search.NotFound)
		}
		if len(report.Selected) != 0 {
			t.Errorf("expected no selection on search run, got %v", report.Selected)
		}
		if want := []string{"crawl", "search"}; !slices.Equal(report.PerformedSteps, want) {
			t.Errorf("expected performed steps %v, got %v", want, report.PerformedSteps)
		}
	})
}

// TestStepApplies tests which steps run for which kind of run.
func TestStepApplies(t *testing.T) {
	t.Parallel()

	wordlistRun := model.NewRunReport("http://example.com/", 1)
	mutateRun := model.NewRunReport("http://example.com/", 1)
	mutateRun.Mutate = true
	searchRun := model.NewRunReport("http://example.com/", 1)
	searchRun.Targets = []string{"moon"}
	searchRun.Mutate = true

	tests := []struct {
		name   string
		step   Conditional
		report *model.RunReport
		want   bool
	}{
		{name: "search on wordlist run", step: NewSearchStep(nil), report: wordlistRun, want: false},
		{name: "search on search run", step: NewSearchStep(nil), report: searchRun, want: true},
		{name: "select on wordlist run", step: NewSelectStep(nil), report: wordlistRun, want: true},
		{name: "select on search run", step: NewSelectStep(nil), report: searchRun, want: false},
		{name: "mutate without mutation", step: NewMutateStep(nil), report: wordlistRun, want: false},
		{name: "mutate with mutation", step: NewMutateStep(nil), report: mutateRun, want: true},
		{name: "mutate on search run", step: NewMutateStep(nil), report: searchRun, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.step.Applies(tt.report); got != tt.want {
				t.Errorf("Applies() = %v, want %v", got, tt.want)
			}
		})
	}
}
