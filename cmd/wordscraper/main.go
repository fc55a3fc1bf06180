// Package main provides the entry point for the wordscraper CLI.
//
// wordscraper crawls a website to a bounded depth, indexes every word it
// finds, and turns the longest words into a password candidate list,
// optionally expanded with case, leetspeak and suffix mutations. It can
// also report on which pages given words appear.
//
// Usage:
//
//	wordscraper crawl <url>
//	wordscraper crawl -u <url> -d 2 -l 8 -c 20 -m -L -C -o words.txt
//	wordscraper crawl -u <url> -s password -s admin
//
// See --help for all available options.
package main

// main is the entry point for wordscraper.
func main() {
	Execute()
}
