// Package report renders a finished run.
//
// TextWriter prints the wordlist (one entry per line, ready for password
// tools) or the search result, optionally with the terminal summary.
// JSONWriter emits the RunReport, wrapped in a versioned Envelope for the
// crawl command. MarkdownWriter produces a shareable summary with crawl
// statistics and the selected words.
package report
