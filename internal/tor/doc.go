// Package tor lets wordscraper crawl onion sites.
//
// Daemon starts an embedded Tor process through tornago and exposes its
// SOCKS5 address, which the transport package dials through. The onion
// helpers recognize .onion hosts and verify v3 address checksums before
// a crawl is started, since Tor only reports a bad address after a long
// circuit build.
package tor
