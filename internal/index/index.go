package index

import (
	"sort"
	"sync"
)

// Index maps a word to the set of URLs whose fetched content contained it.
// Words are stored exactly as extracted; there is no case folding.
type Index struct {
	mu    sync.RWMutex
	words map[string]map[string]struct{}
}

// New returns an empty index.
func New() *Index {
	return &Index{words: make(map[string]map[string]struct{})}
}

// Add records that every word in words occurs on pageURL.
// Duplicate words in the slice are harmless.
func (ix *Index) Add(pageURL string, words []string) {
	if len(words) == 0 {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, w := range words {
		urls, ok := ix.words[w]
		if !ok {
			urls = make(map[string]struct{})
			ix.words[w] = urls
		}
		urls[pageURL] = struct{}{}
	}
}

// Lookup returns the sorted URLs recorded for word and whether the word
// is present at all.
func (ix *Index) Lookup(word string) ([]string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	urls, ok := ix.words[word]
	if !ok {
		return nil, false
	}
	return sortedKeys(urls), true
}


// Words returns every key of the index in ascending order.
func (ix *Index) Words() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return sortedKeys(ix.words)
}

// Len returns the number of distinct words.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.words)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
