package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/wordscraper/internal/database"
	"github.com/nao1215/wordscraper/internal/model"
)

// seedHistory stores one wordlist run and one search run and returns the
// database directory.
func seedHistory(t *testing.T) string {
	t.Helper()

	dbDir := t.TempDir()
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	wordlist := model.NewRunReport("http://example.com/", 2)
	wordlist.DateStarted = start
	wordlist.DateFinished = start.Add(time.Second)
	wordlist.Count = 2
	wordlist.Visited = 2
	wordlist.UniqueWords = 4
	wordlist.Matched = 4
	wordlist.Selected = []model.WordEntry{{Word: "moonlight"}, {Word: "sunflower"}}

	search := model.NewRunReport("http://other.example/", 1)
	search.DateStarted = start.Add(time.Hour)
	search.DateFinished = start.Add(time.Hour + time.Second)
	search.Targets = []string{"tulip"}
	search.Search = &model.SearchResult{Found: map[string][]string{}, NotFound: []string{"tulip"}}

	for _, r := range []*model.RunReport{wordlist, search} {
		if _, err := db.SaveRun(context.Background(), r); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}
	return dbDir
}

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()
	if cmd.Use != "history [seed]" {
		t.Errorf("expected use 'history [seed]', got %q", cmd.Use)
	}
	for _, name := range []string{"id", "seeds", "limit", "json", "markdown", "delete", "db-dir"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}

// TestRunHistoryCmd tests listing, showing and deleting runs.
func TestRunHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists runs newest first", func(t *testing.T) {
		t.Parallel()

		stdout, err := executeRoot(t, "history", "--db-dir", seedHistory(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(stdout, "Run history (2 runs)") {
			t.Errorf("expected run count, got %q", stdout)
		}
		other := strings.Index(stdout, "http://other.example/")
		first := strings.Index(stdout, "http://example.com/")
		if other < 0 || first < 0 || other > first {
			t.Errorf("expected newest run first, got %q", stdout)
		}
		if !strings.Contains(stdout, "moonlight, sunflower") {
			t.Errorf("expected top words, got %q", stdout)
		}
		if !strings.Contains(stdout, "no matches") {
			t.Errorf("expected search outcome, got %q", stdout)
		}
	})

	t.Run("filters by host", func(t *testing.T) {
		t.Parallel()

		stdout, err := executeRoot(t, "history", "example.com", "--db-dir", seedHistory(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Run history (1 runs)") {
			t.Errorf("expected one run, got %q", stdout)
		}
		if strings.Contains(stdout, "other.example") {
			t.Errorf("unexpected run of another host: %q", stdout)
		}
	})

	t.Run("filters by seed URL", func(t *testing.T) {
		t.Parallel()

		stdout, err := executeRoot(t, "history", "http://EXAMPLE.com", "--db-dir", seedHistory(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Run history (1 runs)") {
			t.Errorf("expected one run, got %q", stdout)
		}
	})

	t.Run("empty database", func(t *testing.T) {
		t.Parallel()

		stdout, err := executeRoot(t, "history", "--db-dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "No runs found") {
			t.Errorf("expected empty message, got %q", stdout)
		}
	})

	t.Run("lists runs as JSON", func(t *testing.T) {
		t.Parallel()

		stdout, err := executeRoot(t, "history", "-j", "--db-dir", seedHistory(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var entries []historyEntry
		if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Mode != database.ModeSearch || entries[1].Mode != database.ModeWordlist {
			t.Errorf("unexpected modes: %s, %s", entries[0].Mode, entries[1].Mode)
		}
	})

	t.Run("lists seeds", func(t *testing.T) {
		t.Parallel()

		stdout, err := executeRoot(t, "history", "--seeds", "--db-dir", seedHistory(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Seeds (2)") {
			t.Errorf("expected two seeds, got %q", stdout)
		}
	})

	t.Run("shows a run", func(t *testing.T) {
		t.Parallel()

		stdout, err := executeRoot(t, "history", "--id", "1", "--db-dir", seedHistory(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Run 1: http://example.com/ (depth 2)") {
			t.Errorf("expected run header, got %q", stdout)
		}
		if !strings.Contains(stdout, "moonlight\nsunflower\n") {
			t.Errorf("expected stored wordlist, got %q", stdout)
		}
	})

	t.Run("shows a run as markdown", func(t *testing.T) {
		t.Parallel()

		stdout, err := executeRoot(t, "history", "--id", "1", "--markdown", "--db-dir", seedHistory(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "# Wordscraper Report") {
			t.Errorf("expected markdown report, got %q", stdout)
		}
	})

	t.Run("missing run", func(t *testing.T) {
		t.Parallel()

		_, err := executeRoot(t, "history", "--id", "99", "--db-dir", seedHistory(t))
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("markdown requires an id", func(t *testing.T) {
		t.Parallel()

		if _, err := executeRoot(t, "history", "--markdown", "--db-dir", t.TempDir()); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("deletes a run", func(t *testing.T) {
		t.Parallel()

		dbDir := seedHistory(t)

		stdout, err := executeRoot(t, "history", "--delete", "1", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Deleted run 1") {
			t.Errorf("unexpected output %q", stdout)
		}

		if _, err := executeRoot(t, "history", "--delete", "1", "--db-dir", dbDir); err == nil {
			t.Error("expected error when deleting a missing run")
		}
	})
}

// TestFormatRunStatus tests the one-line run outcome.
func TestFormatRunStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		summary database.RunSummary
		want    string
	}{
		{
			name:    "words",
			summary: database.RunSummary{Mode: database.ModeWordlist, Words: []string{"a", "b"}},
			want:    "a, b",
		},
		{
			name:    "truncated words",
			summary: database.RunSummary{Mode: database.ModeWordlist, Words: []string{"a", "b", "c", "d", "e"}},
			want:    "a, b, c, ... (+2)",
		},
		{
			name:    "no words",
			summary: database.RunSummary{Mode: database.ModeWordlist},
			want:    "no words",
		},
		{
			name:    "timed out search without matches",
			summary: database.RunSummary{Mode: database.ModeSearch, TimedOut: true},
			want:    "[timed out] no matches",
		},
		{
			name:    "interrupted",
			summary: database.RunSummary{Mode: database.ModeWordlist, Error: "context canceled", Words: []string{"a"}},
			want:    "[interrupted] a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatRunStatus(tt.summary); got != tt.want {
				t.Errorf("formatRunStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestNormalizeSeedFilter tests seed filter normalization.
func TestNormalizeSeedFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: ""},
		{input: "example.com", want: "example.com"},
		{input: "http://Example.com", want: "http://example.com/"},
		{input: "ftp://example.com", want: "ftp://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := normalizeSeedFilter(tt.input); got != tt.want {
				t.Errorf("normalizeSeedFilter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
