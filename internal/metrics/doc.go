// Package metrics records crawl statistics as Prometheus metrics.
//
// A Collector owns a private registry, so several crawls in one process
// (tests, for example) never share counters. It implements
// crawler.Observer and is handed to the spider; after the run the
// registry can be pushed to a Pushgateway, since a one-shot CLI has no
// endpoint to be scraped from.
package metrics
