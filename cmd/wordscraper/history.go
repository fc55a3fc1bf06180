package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/wordscraper/internal/config"
	"github.com/nao1215/wordscraper/internal/crawler"
	"github.com/nao1215/wordscraper/internal/database"
)

// maxListedWords is the number of words shown per run in the history list.
const maxListedWords = 3

// NewHistoryCmd creates the history command.
// This command shows past runs stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [seed]",
		Short: "Show past runs",
		Long: `History lists the runs recorded by 'wordscraper crawl', newest first.

A seed URL restricts the list to runs of that URL; a bare host such as
example.com lists every run against that host. Only summaries are kept:
the selected words, the search outcome and the pages fetched.

Examples:
  # List recent runs
  wordscraper history

  # List runs against one site
  wordscraper history example.com

  # Show the wordlist of run 5 again
  wordscraper history --id 5

  # Show run 5 as JSON
  wordscraper history --id 5 --json

  # List every seed in the database
  wordscraper history --seeds

  # Remove run 5
  wordscraper history --delete 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// Selection flags
	cmd.Flags().Int64P("id", "i", 0,
		"Show the run with this ID (use the list to see available IDs)")
	cmd.Flags().BoolP("seeds", "S", false,
		"List all seed URLs in the database")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list (0 = all)")
	cmd.Flags().Int64("delete", 0,
		"Delete the run with this ID")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().Bool("markdown", false,
		"Output a run in Markdown format (with --id)")

	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// historyOptions holds the parsed history flags.
type historyOptions struct {
	seed           string
	id             int64
	deleteID       int64
	listSeeds      bool
	limit          int
	jsonOutput     bool
	markdownOutput bool
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseHistoryFlags(cmd, args)
	if err != nil {
		return err
	}

	dbDir, err := dbDirFlag(cmd)
	if err != nil {
		return err
	}

	// Validate flags before opening the database so nothing is created
	// for a command line that would fail anyway.
	if opts.jsonOutput && opts.markdownOutput {
		return config.ErrConflictingReportFormats
	}
	if opts.markdownOutput && opts.id == 0 {
		return errors.New("--markdown requires --id")
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case opts.deleteID > 0:
		return deleteRun(ctx, out, db, opts.deleteID)
	case opts.listSeeds:
		return listSeeds(ctx, out, db, opts.jsonOutput)
	case opts.id > 0:
		return showRun(ctx, out, db, opts)
	default:
		return listRuns(ctx, out, db, opts)
	}
}

// parseHistoryFlags reads the history command flags.
func parseHistoryFlags(cmd *cobra.Command, args []string) (historyOptions, error) {
	var (
		opts historyOptions
		err  error
	)
	flags := cmd.Flags()

	if len(args) > 0 {
		opts.seed = args[0]
	}
	if opts.id, err = flags.GetInt64("id"); err != nil {
		return opts, err
	}
	if opts.deleteID, err = flags.GetInt64("delete"); err != nil {
		return opts, err
	}
	if opts.listSeeds, err = flags.GetBool("seeds"); err != nil {
		return opts, err
	}
	if opts.limit, err = flags.GetInt("limit"); err != nil {
		return opts, err
	}
	if opts.jsonOutput, err = flags.GetBool("json"); err != nil {
		return opts, err
	}
	if opts.markdownOutput, err = flags.GetBool("markdown"); err != nil {
		return opts, err
	}
	return opts, nil
}

// listSeeds lists all seeds that have runs in the database.
func listSeeds(ctx context.Context, out io.Writer, db *database.HistoryDB, jsonOutput bool) error {
	seeds, err := db.ListSeeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to list seeds: %w", err)
	}

	if jsonOutput {
		if seeds == nil {
			seeds = []string{}
		}
		return writeJSON(out, seeds)
	}

	if len(seeds) == 0 {
		fmt.Fprintln(out, "No runs found in the history database.")
		fmt.Fprintln(out, "\nUse 'wordscraper crawl <url>' to crawl a site.")
		return nil
	}

	fmt.Fprintf(out, "Seeds (%d):\n\n", len(seeds))
	for _, seed := range seeds {
		fmt.Fprintf(out, "  • %s\n", seed)
	}
	fmt.Fprintln(out, "\nUse 'wordscraper history <seed>' to see the runs of a seed.")

	return nil
}

// listRuns lists run summaries, optionally for one seed.
func listRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, opts historyOptions) error {
	runs, err := db.ListRuns(ctx, normalizeSeedFilter(opts.seed), opts.limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if opts.jsonOutput {
		entries := make([]historyEntry, len(runs))
		for i, r := range runs {
			entries[i] = newHistoryEntry(r)
		}
		return writeJSON(out, entries)
	}

	if len(runs) == 0 {
		if opts.seed != "" {
			fmt.Fprintf(out, "No runs found for %s\n", opts.seed)
		} else {
			fmt.Fprintln(out, "No runs found in the history database.")
		}
		fmt.Fprintln(out, "\nUse 'wordscraper crawl <url>' to crawl a site.")
		return nil
	}

	fmt.Fprintf(out, "Run history (%d runs):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-19s  %-8s  %-5s  %-6s  %-6s  %s\n",
		"ID", "Date", "Mode", "Depth", "Pages", "Words", "Seed / Top words")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 90))

	for _, r := range runs {
		fmt.Fprintf(out, "  %-6d  %-19s  %-8s  %-5d  %-6d  %-6d  %s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Mode,
			r.Depth,
			r.PagesFetched,
			r.UniqueWords,
			r.Seed,
		)
		fmt.Fprintf(out, "  %-6s  %-19s  %-8s  %-5s  %-6s  %-6s  %s\n",
			"", "", "", "", "", "", formatRunStatus(r))
	}

	fmt.Fprintln(out, "\nUse 'wordscraper history --id <id>' to show a run.")

	return nil
}

// formatRunStatus describes the outcome of a run in one short line.
func formatRunStatus(r database.RunSummary) string {
	var prefix string
	switch {
	case r.Error != "":
		prefix = "[interrupted] "
	case r.TimedOut:
		prefix = "[timed out] "
	}

	if len(r.Words) == 0 {
		if r.Mode == database.ModeSearch {
			return prefix + "no matches"
		}
		return prefix + "no words"
	}

	words := r.Words
	suffix := ""
	if len(words) > maxListedWords {
		suffix = fmt.Sprintf(", ... (+%d)", len(words)-maxListedWords)
		words = words[:maxListedWords]
	}
	return prefix + strings.Join(words, ", ") + suffix
}

// normalizeSeedFilter turns a seed URL into its stored form. Bare hosts
// are passed through and matched against the host column.
func normalizeSeedFilter(seed string) string {
	if seed == "" || !strings.Contains(seed, "://") {
		return seed
	}
	u, err := crawler.ParseSeed(seed)
	if err != nil {
		return seed
	}
	return u.String()
}

// showRun prints one stored run with the report writers.
func showRun(ctx context.Context, out io.Writer, db *database.HistoryDB, opts historyOptions) error {
	runReport, err := db.GetRun(ctx, opts.id)
	if err != nil {
		return fmt.Errorf("failed to get run %d: %w", opts.id, err)
	}
	if runReport == nil {
		return fmt.Errorf("run with ID %d not found", opts.id)
	}

	cfg := &config.Config{JSONReport: opts.jsonOutput, MarkdownReport: opts.markdownOutput}
	if !opts.jsonOutput && !opts.markdownOutput {
		fmt.Fprintf(out, "Run %d: %s (depth %d) on %s\n",
			opts.id, runReport.Seed, runReport.Depth,
			runReport.DateStarted.Local().Format("2006-01-02 15:04:05"))
	}

	if _, err := newWriter(out, cfg, true).Write(runReport); err != nil {
		return fmt.Errorf("failed to write run: %w", err)
	}
	return nil
}

// deleteRun removes a run from the database.
func deleteRun(ctx context.Context, out io.Writer, db *database.HistoryDB, id int64) error {
	deleted, err := db.DeleteRun(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete run %d: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("run with ID %d not found", id)
	}
	fmt.Fprintf(out, "Deleted run %d\n", id)
	return nil
}

// historyEntry is the JSON form of a run summary.
type historyEntry struct {
	ID           int64     `json:"id"`
	Seed         string    `json:"seed"`
	Mode         string    `json:"mode"`
	Depth        int       `json:"depth"`
	StartedAt    time.Time `json:"started_at"`
	DurationMS   int64     `json:"duration_ms"`
	PagesFetched int       `json:"pages_fetched"`
	PagesFailed  int       `json:"pages_failed"`
	UniqueWords  int       `json:"unique_words"`
	MatchedWords int       `json:"matched_words"`
	TimedOut     bool      `json:"timed_out"`
	Words        []string  `json:"words"`
	Error        string    `json:"error,omitempty"`
}

// newHistoryEntry converts a run summary for JSON output.
func newHistoryEntry(r database.RunSummary) historyEntry {
	words := r.Words
	if words == nil {
		words = []string{}
	}
	return historyEntry{
		ID:           r.ID,
		Seed:         r.Seed,
		Mode:         r.Mode,
		Depth:        r.Depth,
		StartedAt:    r.StartedAt,
		DurationMS:   r.Duration.Milliseconds(),
		PagesFetched: r.PagesFetched,
		PagesFailed:  r.PagesFailed,
		UniqueWords:  r.UniqueWords,
		MatchedWords: r.MatchedWords,
		TimedOut:     r.TimedOut,
		Words:        words,
		Error:        r.Error,
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
