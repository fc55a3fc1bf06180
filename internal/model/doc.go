// Package model defines the data structures shared by the crawler, the
// pipeline, the report writers and the history database.
//
// The main types are:
//   - Page: a summary of one fetched page
//   - RunReport: everything one wordscraper run produced
//   - SearchResult: the outcome of looking target words up in the index
//   - WordEntry: a selected word and its mutation set
//
// Models live in their own package so that every other package can depend
// on them without import cycles. They serialize to JSON for the JSON
// report and for the history database.
package model
