package model

import "sort"

// SearchResult is the outcome of a word search against the index.
// Found and NotFound are always non-nil, even when empty.
type SearchResult struct {
	// Found maps each target word present in the index to the sorted URLs
	// it was found on.
	Found map[string][]string `json:"found"`

	// NotFound lists the target words absent from the index, sorted.
	NotFound []string `json:"not_found"`
}

// NewSearchResult returns an empty result.
func NewSearchResult() *SearchResult {
	return &SearchResult{
		Found:    make(map[string][]string),
		NotFound: make([]string, 0),
	}
}

// FoundWords returns the keys of Found in ascending order.
func (r *SearchResult) FoundWords() []string {
	words := make([]string, 0, len(r.Found))
	for w := range r.Found {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// HasMatches reports whether at least one target word was found.
func (r *SearchResult) HasMatches() bool {
	return len(r.Found) > 0
}
