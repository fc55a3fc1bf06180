// Package config provides configuration structures and utilities for
// wordscraper. It defines the crawl settings, the word selection and
// mutation options, report preferences, and the optional .wordscraper
// site configuration file.
package config
