package wordlist

import (
	"errors"
	"sort"
	"unicode/utf8"
)

// ErrConflictingFilters is returned when a LengthFilter sets both a minimum
// and an exact length.
var ErrConflictingFilters = errors.New("minimum length and exact length are mutually exclusive")

// LengthFilter restricts candidate words by character length.
// A zero value for either field means that bound is not set.
type LengthFilter struct {
	// Min keeps words with at least Min characters.
	Min int

	// Exact keeps words with exactly Exact characters.
	Exact int
}

// Validate rejects a filter that sets both bounds.
func (f LengthFilter) Validate() error {
	if f.Min > 0 && f.Exact > 0 {
		return ErrConflictingFilters
	}
	return nil
}

// Match reports whether word passes the filter.
func (f LengthFilter) Match(word string) bool {
	n := utf8.RuneCountInString(word)
	switch {
	case f.Exact > 0:
		return n == f.Exact
	case f.Min > 0:
		return n >= f.Min
	default:
		return true
	}
}

// Filter returns the distinct words that pass f, in no particular order.
func Filter(words []string, f LengthFilter) ([]string, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		if f.Match(w) {
			out = append(out, w)
		}
	}
	return out, nil
}

// Rank sorts words in place by descending character length, then by
// ascending lexicographic order.
func Rank(words []string) {
	sort.Slice(words, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(words[i]), utf8.RuneCountInString(words[j])
		if li != lj {
			return li > lj
		}
		return words[i] < words[j]
	})
}

// Selection is the outcome of SelectTop.
type Selection struct {
	// Words are the selected words, best first.
	Words []string

	// Matched is the number of distinct words that passed the filter,
	// before the count limit was applied.
	Matched int
}

// Empty reports whether no word survived the filter.
func (s Selection) Empty() bool {
	return s.Matched == 0
}

// SelectTop filters words with f, ranks the survivors and keeps the first
// count of them. Zero survivors is not an error: the returned Selection is
// simply empty.
func SelectTop(words []string, count int, f LengthFilter) (Selection, error) {
	survivors, err := Filter(words, f)
	if err != nil {
		return Selection{}, err
	}

	Rank(survivors)

	sel := Selection{Matched: len(survivors)}
	if count < 0 {
		count = 0
	}
	if count > len(survivors) {
		count = len(survivors)
	}
	sel.Words = survivors[:count]
	return sel, nil
}
