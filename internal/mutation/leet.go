package mutation

import (
	"sort"
	"unicode"
)

// leetTable maps a lower-case letter to its substitutes.
// Substitutes replace the letter verbatim regardless of the original case.
var leetTable = map[rune][]string{
	'a': {"4", "@"},
	'e': {"3"},
	'i': {"1", "!"},
	'o': {"0"},
	's': {"5", "$"},
	't': {"7"},
	'b': {"8"},
	'g': {"6"},
	'q': {"9"},
	'z': {"2"},
}

// Substitutes returns the leetspeak substitutes registered for r.
// The lookup is keyed by the lower-case form of r.
func Substitutes(r rune) []string {
	return leetTable[unicode.ToLower(r)]
}

// LeetTransform returns every string obtained by choosing, for each
// character of word, either the character itself or one of its
// substitutes. When enabled is false the result is exactly {word}.
//
// The result has one entry per combination, so its size is the product of
// (1 + len(Substitutes(c))) over the characters of word. The empty word
// yields {""}.
func LeetTransform(word string, enabled bool) []string {
	if !enabled {
		return []string{word}
	}

	variants := []string{""}
	for _, r := range word {
		options := append([]string{string(r)}, Substitutes(r)...)

		next := make([]string, 0, len(variants)*len(options))
		for _, prefix := range variants {
			for _, opt := range options {
				next = append(next, prefix+opt)
			}
		}
		variants = next
	}

	sort.Strings(variants)
	return variants
}

// LeetCount returns the number of variants LeetTransform(word, true)
// produces without building them.
func LeetCount(word string) int {
	n := 1
	for _, r := range word {
		n *= 1 + len(Substitutes(r))
	}
	return n
}
