// Package index holds the two accumulators a crawl builds: the set of
// visited URLs and the word-location index mapping every extracted word to
// the set of pages it was found on.
//
// Both types are scoped to a single crawl invocation and are safe for
// concurrent use, so the Spider's workers can share them without further
// locking. Neither is ever persisted.
package index
