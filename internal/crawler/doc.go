// Package crawler walks a web site from a seed URL and builds the
// word-location index.
//
// # Architecture
//
// The Spider coordinates the crawl. It keeps a worklist of (URL, remaining
// depth) items and processes it one hop at a time: every URL of the current
// hop is claimed in the shared visited set before it is fetched, its words
// are recorded in the index, and its same-origin links form the next hop.
// Claiming before expanding is what makes cyclic link graphs terminate.
//
// Processing hop by hop means each page is claimed at its shortest distance
// from the seed, so the set of visited pages and the resulting index do not
// depend on the order in which sibling links are fetched. Within a hop the
// fetches run on a bounded worker pool.
//
// # Components
//
//   - Spider: the worklist, the worker pool and the crawl bookkeeping
//   - Fetcher: retrieves page content; HTTPFetcher uses net/http and
//     BrowserFetcher drives a headless Chrome for script-rendered sites
//   - Extractor: turns HTML into tokens and same-origin links
//
// # Failure handling
//
// A failed fetch (network error, non-2xx status, unsupported content) is
// local to its URL. The URL stays visited, yields no words and no links, and
// the crawl carries on. Every fetch has a timeout and the whole crawl can be
// bounded by a maximum duration or cancelled through its context.
//
// # Usage
//
//	fetcher := crawler.NewHTTPFetcher(client)
//	spider := crawler.NewSpider(fetcher, crawler.WithConcurrency(4))
//	result, err := spider.Crawl(ctx, "https://example.com", 2)
package crawler
