// Package wordlist turns a word-location index into output: it filters and
// ranks candidate words for a password wordlist, and it looks target words
// up for the search report.
//
// Ranking is deterministic. Words are ordered by descending character
// length with ties broken by ascending lexicographic order, so two runs
// over the same index always select the same words.
package wordlist
