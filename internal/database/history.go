package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/wordscraper/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "wordscraper.db"

// Run modes stored in the runs table.
const (
	ModeWordlist = "wordlist"
	ModeSearch   = "search"
)

// HistoryDB stores summaries of past runs.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a crawl first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the path of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		host TEXT NOT NULL,
		mode TEXT NOT NULL,
		depth INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		pages_fetched INTEGER NOT NULL DEFAULT 0,
		pages_failed INTEGER NOT NULL DEFAULT 0,
		unique_words INTEGER NOT NULL DEFAULT 0,
		matched_words INTEGER NOT NULL DEFAULT 0,
		timed_out INTEGER NOT NULL DEFAULT 0,
		words TEXT,
		report_json TEXT NOT NULL,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed);
	CREATE INDEX IF NOT EXISTS idx_runs_host ON runs(host);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Pages fetched during a run
	CREATE TABLE IF NOT EXISTS run_pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		token_count INTEGER,
		link_count INTEGER,
		hash TEXT,
		fetch_ms INTEGER,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON run_pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_hash ON run_pages(hash);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunSummary is one row of the run history.
type RunSummary struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Seed is the normalized seed URL.
	Seed string

	// Mode is ModeWordlist or ModeSearch.
	Mode string

	// Depth is the crawl depth budget.
	Depth int

	// StartedAt is when the run began.
	StartedAt time.Time

	// Duration is how long the run took.
	Duration time.Duration

	// PagesFetched and PagesFailed count the crawl outcome.
	PagesFetched int
	PagesFailed  int

	// UniqueWords is the number of distinct words the crawl found.
	UniqueWords int

	// MatchedWords is the number of words that passed the length filter.
	MatchedWords int

	// TimedOut is true when the crawl hit its maximum duration.
	TimedOut bool

	// Words are the selected words (wordlist runs) or the found target
	// words (search runs).
	Words []string

	// Error is the message of the error that ended the run, if any.
	Error string
}

// SaveRun stores report and its pages in one transaction and returns the
// new run ID.
func (hdb *HistoryDB) SaveRun(ctx context.Context, report *model.RunReport) (id int64, err error) {
	// Pages live in run_pages only.
	stored := *report
	stored.Pages = nil
	reportJSON, err := json.Marshal(&stored)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	mode, words := ModeWordlist, report.SelectedWords()
	if report.IsSearch() {
		mode = ModeSearch
		words = nil
		if report.Search != nil {
			words = report.Search.FoundWords()
		}
	}
	wordsJSON, err := json.Marshal(words)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize words: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
	INSERT INTO runs (seed, host, mode, depth, started_at, finished_at,
		pages_fetched, pages_failed, unique_words, matched_words, timed_out,
		words, report_json, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		report.Seed,
		hostOf(report.Seed),
		mode,
		report.Depth,
		formatTimestamp(report.DateStarted),
		formatTimestamp(report.DateFinished),
		len(report.Pages),
		len(report.Failed),
		report.UniqueWords,
		report.Matched,
		report.TimedOut,
		string(wordsJSON),
		string(reportJSON),
		report.ErrorMessage,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	pageQuery := `
	INSERT INTO run_pages (run_id, url, status_code, content_type, title, token_count, link_count, hash, fetch_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, url) DO NOTHING
	`
	for _, p := range report.Pages {
		if _, err = tx.ExecContext(ctx, pageQuery,
			id, p.URL, p.StatusCode, p.ContentType, p.Title, p.TokenCount, p.LinkCount, p.Hash, p.FetchMillis,
		); err != nil {
			return 0, fmt.Errorf("failed to insert page %s: %w", p.URL, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// ListRuns returns run summaries, newest first. A non-empty seed restricts
// the list to runs of that seed URL; a seed without a scheme or path is
// matched against the host instead. limit <= 0 means no limit.
func (hdb *HistoryDB) ListRuns(ctx context.Context, seed string, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, seed, mode, depth, started_at, finished_at, pages_fetched, pages_failed,
		unique_words, matched_words, timed_out, words, error
	FROM runs
	WHERE 1=1
	`
	args := make([]any, 0)

	switch {
	case seed == "":
	case strings.Contains(seed, "://"):
		query += " AND seed = ?"
		args = append(args, seed)
	default:
		query += " AND host = ?"
		args = append(args, strings.ToLower(seed))
	}

	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var (
			s         RunSummary
			started   string
			finished  sql.NullString
			wordsJSON sql.NullString
			errMsg    sql.NullString
		)

		err := rows.Scan(
			&s.ID,
			&s.Seed,
			&s.Mode,
			&s.Depth,
			&started,
			&finished,
			&s.PagesFetched,
			&s.PagesFailed,
			&s.UniqueWords,
			&s.MatchedWords,
			&s.TimedOut,
			&wordsJSON,
			&errMsg,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		s.StartedAt = parseTimestamp(started)
		if finished.Valid {
			if end := parseTimestamp(finished.String); !end.IsZero() {
				s.Duration = end.Sub(s.StartedAt)
			}
		}
		if wordsJSON.Valid && wordsJSON.String != "" {
			if err := json.Unmarshal([]byte(wordsJSON.String), &s.Words); err != nil {
				s.Words = nil
			}
		}
		s.Error = errMsg.String

		results = append(results, s)
	}

	return results, rows.Err()
}

// GetRun retrieves the stored report of a run by its ID, pages included.
// It returns nil and no error when the run does not exist.
func (hdb *HistoryDB) GetRun(ctx context.Context, id int64) (*model.RunReport, error) {
	query := `
	SELECT report_json FROM runs
	WHERE id = ?
	`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	if report.Pages, err = hdb.GetRunPages(ctx, id); err != nil {
		return nil, err
	}
	return &report, nil
}

// GetRunPages returns the pages fetched during a run, ordered by URL.
func (hdb *HistoryDB) GetRunPages(ctx context.Context, id int64) ([]model.Page, error) {
	query := `
	SELECT url, status_code, content_type, title, token_count, link_count, hash, fetch_ms
	FROM run_pages
	WHERE run_id = ?
	ORDER BY url
	`

	rows, err := hdb.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run pages: %w", err)
	}
	defer rows.Close()

	var pages []model.Page
	for rows.Next() {
		var p model.Page
		if err := rows.Scan(
			&p.URL,
			&p.StatusCode,
			&p.ContentType,
			&p.Title,
			&p.TokenCount,
			&p.LinkCount,
			&p.Hash,
			&p.FetchMillis,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, p)
	}

	return pages, rows.Err()
}

// ListSeeds returns every seed URL with at least one stored run.
func (hdb *HistoryDB) ListSeeds(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT seed FROM runs
	ORDER BY seed
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list seeds: %w", err)
	}
	defer rows.Close()

	var seeds []string
	for rows.Next() {
		var seed string
		if err := rows.Scan(&seed); err != nil {
			return nil, fmt.Errorf("failed to scan seed: %w", err)
		}
		seeds = append(seeds, seed)
	}

	return seeds, rows.Err()
}

// DeleteRun removes a run and its pages. It reports whether a run was deleted.
func (hdb *HistoryDB) DeleteRun(ctx context.Context, id int64) (bool, error) {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_pages WHERE run_id = ?", id); err != nil {
		return false, fmt.Errorf("failed to delete run pages: %w", err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to count deleted runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}
	return n > 0, nil
}

// hostOf returns the lower-cased host of a seed URL, or the seed itself
// when it does not parse.
func hostOf(seed string) string {
	u, err := url.Parse(seed)
	if err != nil || u.Host == "" {
		return strings.ToLower(seed)
	}
	return strings.ToLower(u.Hostname())
}

// timestampLayout is fixed-width so that lexical order is chronological.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
