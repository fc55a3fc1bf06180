// Package mutation expands a single word into candidate password variants.
//
// Three independent switches drive the expansion:
//   - case variants (the word, its capitalized form and its upper-cased form)
//     are always produced;
//   - leetspeak substitution replaces letters with look-alike digits and
//     symbols in every combination;
//   - character suffixing appends one digit or one symbol.
//
// Suffixes are applied to a base set that is computed up front: the leet
// variants when leet is enabled, the bare word otherwise. Each switch is
// therefore well defined on its own and suffixing never depends on the leet
// step having run.
//
// All functions are pure and safe for concurrent use. Results are returned
// as sorted, duplicate-free slices so output is reproducible.
package mutation
