// Package database provides SQLite-based run history for wordscraper.
//
// Every run stores a summary: the seed and its options, crawl statistics,
// the selected words or search outcome, and one row per fetched page.
// The word location index itself is never stored; it lives only for the
// duration of a run.
//
// The database is a single file under the XDG data directory, opened with
// modernc.org/sqlite so no cgo toolchain is needed.
package database
