// Package transport builds the HTTP clients wordscraper fetches pages with.
//
// A Client either connects directly or routes every connection through a
// SOCKS5 proxy (for example a local Tor daemon or an SSH dynamic forward).
// The proxy address is validated when the Client is created, but nothing
// is dialed until CheckConnection or the first request.
//
// The package is designed for dependency injection: create a Client once in
// the command layer and hand its HTTP client to the crawler.
package transport
