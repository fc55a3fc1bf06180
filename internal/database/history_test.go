package database

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/nao1215/wordscraper/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// newWordlistReport creates a finished wordlist report started at start.
func newWordlistReport(seed string, start time.Time) *model.RunReport {
	report := model.NewRunReport(seed, 2)
	report.DateStarted = start
	report.DateFinished = start.Add(1500 * time.Millisecond)
	report.Count = 2
	report.Visited = 3
	report.Pages = []model.Page{
		{URL: seed, StatusCode: 200, ContentType: "text/html", Title: "Home", TokenCount: 10, LinkCount: 2, Hash: "aa", FetchMillis: 12},
		{URL: seed + "about", StatusCode: 200, ContentType: "text/html", Title: "About", TokenCount: 4, Hash: "bb", FetchMillis: 8},
	}
	report.Failed = []model.FailedFetch{{URL: seed + "missing", Reason: "unexpected status 404"}}
	report.UniqueWords = 14
	report.Matched = 6
	report.Selected = []model.WordEntry{{Word: "moonlight"}, {Word: "sunflower"}}
	return report
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		dbPath := filepath.Join(dbDir, FileName)
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("expected path %q, got %q", dbPath, db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		if _, err := db.SaveRun(context.Background(), newWordlistReport("http://example.com/", time.Now())); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		_ = db.Close()

		db, err = Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to open existing database: %v", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 run, got %d", len(runs))
		}
	})
}

// TestDefaultOptions tests the default database options.
func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	if !opts.CreateIfNotExists {
		t.Error("expected CreateIfNotExists to be true")
	}
	if !opts.EnableWAL {
		t.Error("expected EnableWAL to be true")
	}
}

// TestSaveRun tests storing and reading back runs.
func TestSaveRun(t *testing.T) {
	t.Parallel()

	t.Run("stores wordlist summary", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		id, err := db.SaveRun(ctx, newWordlistReport("http://example.com/", start))
		if err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		runs, err := db.ListRuns(ctx, "", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}

		got := runs[0]
		if got.ID != id {
			t.Errorf("expected id %d, got %d", id, got.ID)
		}
		if got.Mode != ModeWordlist {
			t.Errorf("expected mode %q, got %q", ModeWordlist, got.Mode)
		}
		if !got.StartedAt.Equal(start) {
			t.Errorf("expected start %v, got %v", start, got.StartedAt)
		}
		if got.Duration != 1500*time.Millisecond {
			t.Errorf("expected duration 1.5s, got %v", got.Duration)
		}
		if got.PagesFetched != 2 || got.PagesFailed != 1 {
			t.Errorf("unexpected page counts: %d fetched, %d failed", got.PagesFetched, got.PagesFailed)
		}
		if got.UniqueWords != 14 || got.MatchedWords != 6 {
			t.Errorf("unexpected word counts: %d unique, %d matched", got.UniqueWords, got.MatchedWords)
		}
		if !slices.Equal(got.Words, []string{"moonlight", "sunflower"}) {
			t.Errorf("unexpected words: %v", got.Words)
		}
	})

	t.Run("stores search summary", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		report := newWordlistReport("http://example.com/", time.Now())
		report.Selected = nil
		report.Targets = []string{"moon", "tulip"}
		report.Search = model.NewSearchResult()
		report.Search.Found["moon"] = []string{"http://example.com/"}
		report.Search.NotFound = []string{"tulip"}
		report.TimedOut = true

		if _, err := db.SaveRun(ctx, report); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		runs, err := db.ListRuns(ctx, "", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if runs[0].Mode != ModeSearch {
			t.Errorf("expected mode %q, got %q", ModeSearch, runs[0].Mode)
		}
		if !slices.Equal(runs[0].Words, []string{"moon"}) {
			t.Errorf("expected found words [moon], got %v", runs[0].Words)
		}
		if !runs[0].TimedOut {
			t.Error("expected timed out flag")
		}
	})

	t.Run("stores error message", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		report := newWordlistReport("http://example.com/", time.Now())
		report.SetError(context.Canceled)

		if _, err := db.SaveRun(ctx, report); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		runs, err := db.ListRuns(ctx, "", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if runs[0].Error != context.Canceled.Error() {
			t.Errorf("expected error message, got %q", runs[0].Error)
		}
	})
}

// TestListRuns tests run listing with filters.
func TestListRuns(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	seeds := []string{"http://a.example/", "http://b.example/", "http://a.example/"}
	for i, seed := range seeds {
		if _, err := db.SaveRun(ctx, newWordlistReport(seed, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}

	t.Run("returns newest first", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRuns(ctx, "", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(runs))
		}
		if !runs[0].StartedAt.After(runs[1].StartedAt) || !runs[1].StartedAt.After(runs[2].StartedAt) {
			t.Errorf("runs not in descending order: %v, %v, %v",
				runs[0].StartedAt, runs[1].StartedAt, runs[2].StartedAt)
		}
	})

	t.Run("filters by seed", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRuns(ctx, "http://a.example/", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("expected 2 runs, got %d", len(runs))
		}
	})

	t.Run("filters by host", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRuns(ctx, "B.example", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 || runs[0].Seed != "http://b.example/" {
			t.Errorf("unexpected runs: %+v", runs)
		}
	})

	t.Run("applies limit", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRuns(ctx, "", 2)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("expected 2 runs, got %d", len(runs))
		}
	})

	t.Run("lists seeds", func(t *testing.T) {
		t.Parallel()

		seeds, err := db.ListSeeds(ctx)
		if err != nil {
			t.Fatalf("failed to list seeds: %v", err)
		}
		if !slices.Equal(seeds, []string{"http://a.example/", "http://b.example/"}) {
			t.Errorf("unexpected seeds: %v", seeds)
		}
	})
}

// TestGetRun tests loading a stored report.
func TestGetRun(t *testing.T) {
	t.Parallel()

	t.Run("returns nil for non-existent ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		report, err := db.GetRun(context.Background(), 999)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report != nil {
			t.Error("expected nil report")
		}
	})

	t.Run("retrieves report and pages by ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		id, err := db.SaveRun(ctx, newWordlistReport("http://example.com/", time.Now()))
		if err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		report, err := db.GetRun(ctx, id)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if report == nil {
			t.Fatal("expected report")
		}
		if report.Seed != "http://example.com/" || report.Depth != 2 {
			t.Errorf("unexpected report: seed %q depth %d", report.Seed, report.Depth)
		}
		if report.Index != nil {
			t.Error("index must not be stored")
		}
		if len(report.Pages) != 2 {
			t.Errorf("expected GetRun to load 2 pages, got %d", len(report.Pages))
		}

		pages, err := db.GetRunPages(ctx, id)
		if err != nil {
			t.Fatalf("failed to get pages: %v", err)
		}
		if len(pages) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(pages))
		}
		if pages[0].URL != "http://example.com/" || pages[0].Title != "Home" || pages[0].Hash != "aa" {
			t.Errorf("unexpected first page: %+v", pages[0])
		}
	})
}

// TestDeleteRun tests removing a run.
func TestDeleteRun(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.SaveRun(ctx, newWordlistReport("http://example.com/", time.Now()))
	if err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	deleted, err := db.DeleteRun(ctx, id)
	if err != nil {
		t.Fatalf("failed to delete run: %v", err)
	}
	if !deleted {
		t.Error("expected run to be deleted")
	}

	pages, err := db.GetRunPages(ctx, id)
	if err != nil {
		t.Fatalf("failed to get pages: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected pages to be deleted, got %d", len(pages))
	}

	deleted, err = db.DeleteRun(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted {
		t.Error("expected second delete to report nothing deleted")
	}
}

// TestParseTimestamp tests timestamp parsing.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{name: "stored layout", input: formatTimestamp(want)},
		{name: "rfc3339", input: "2025-03-01T12:30:00Z"},
		{name: "sqlite default", input: "2025-03-01 12:30:00"},
		{name: "empty", input: "", zero: true},
		{name: "garbage", input: "yesterday", zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if tt.zero {
				if !got.IsZero() {
					t.Errorf("expected zero time, got %v", got)
				}
				return
			}
			if !got.Equal(want) {
				t.Errorf("expected %v, got %v", want, got)
			}
		})
	}
}

// TestHostOf tests host extraction from seeds.
func TestHostOf(t *testing.T) {
	t.Parallel()

	if got := hostOf("http://Example.COM:8080/path"); got != "example.com" {
		t.Errorf("expected example.com, got %q", got)
	}
	if got := hostOf("not a url"); got != "not a url" {
		t.Errorf("expected input back, got %q", got)
	}
}
