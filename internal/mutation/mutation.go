package mutation

import (
	"sort"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Digits are appended one at a time when character suffixing is enabled.
const Digits = "0123456789"

// Symbols are appended one at a time when character suffixing is enabled.
const Symbols = `!@#$%^&*()-_+=[]{}|\:;"'<>,.?/`

// Options selects which expansions PasswordMutation performs.
type Options struct {
	// Mutate enables the expansions below. When false only the case
	// variants are produced, whatever Leet and Chars say.
	Mutate bool

	// Leet adds every leetspeak variant of the word.
	Leet bool

	// Chars appends each digit and each symbol to every base string.
	Chars bool
}

// Capitalize title-cases the first character of word and leaves the rest
// unchanged, so "ßx" becomes "Ssx".
func Capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if size == 0 {
		return word
	}
	// Casers are stateful; one per call.
	return cases.Title(language.Und, cases.NoLower).String(string(r)) + word[size:]
}

// Uppercase upper-cases every character of word.
func Uppercase(word string) string {
	return cases.Upper(language.Und).String(word)
}

// PasswordMutation returns the mutation set of word under opts.
// The set always contains word, Capitalize(word) and Uppercase(word).
func PasswordMutation(word string, opts Options) []string {
	result := map[string]struct{}{
		word:             {},
		Capitalize(word): {},
		Uppercase(word):  {},
	}

	if opts.Mutate {
		base := []string{word}
		if opts.Leet {
			base = LeetTransform(word, true)
			for _, b := range base {
				result[b] = struct{}{}
			}
		}

		if opts.Chars {
			for _, b := range base {
				for _, d := range Digits {
					result[b+string(d)] = struct{}{}
				}
				for _, s := range Symbols {
					result[b+string(s)] = struct{}{}
				}
			}
		}
	}

	out := make([]string, 0, len(result))
	for s := range result {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
